// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"errors"
	"path/filepath"

	"github.com/scanbridge/scanbridge/internal/model"
	"github.com/scanbridge/scanbridge/internal/snapshot"
)

// Collect builds the classpaths of one module from its descriptor and the
// source sets resolved for it. variant is the active Android variant.
// Entries keep declaration order; an entry seen earlier is not repeated.
// Any artifact that failed to resolve fails the whole module with a
// *DependencyResolutionError.
func Collect(n *model.Node, sets []model.SourceSet, variant string) (model.Classpaths, error) {
	p := n.Project
	var (
		cp   model.Classpaths
		errs []error
	)

	convert := func(config string, entries []snapshot.Entry) []model.Entry {
		out := make([]model.Entry, 0, len(entries))
		for _, e := range entries {
			me, err := toModel(n.Path, config, e)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out = append(out, me)
		}
		return out
	}

	for _, ss := range sets {
		if ss.Role == model.RoleMain {
			cp.MainBinaries = model.AppendUnique(cp.MainBinaries, ss.Outputs...)
		} else {
			cp.TestBinaries = model.AppendUnique(cp.TestBinaries, ss.Outputs...)
		}
	}

	var boot []model.Entry
	if a := p.Android; a != nil {
		for _, b := range a.BootClasspath {
			boot = append(boot, model.File(b))
		}
	}
	jdk := jdkRuntime(p.Compile)

	mainLibs := model.AppendUnique(nil, boot...)
	testLibs := model.AppendUnique(nil, boot...)

	if v := activeVariant(p, variant); v != nil {
		if n.Kind == model.KindAndroidTest {
			testLibs = model.AppendUnique(testLibs, convert(v.Name, v.Classpath)...)
		} else {
			mainLibs = model.AppendUnique(mainLibs, convert(v.Name, v.Classpath)...)
			for _, t := range []*snapshot.VariantTest{v.UnitTest, v.AndroidTest} {
				if t != nil {
					testLibs = model.AppendUnique(testLibs, convert(v.Name, t.Classpath)...)
				}
			}
		}
	}

	mainLibs = model.AppendUnique(mainLibs, convert(snapshot.CompileClasspath, p.Configurations[snapshot.CompileClasspath])...)
	mainLibs = model.AppendUnique(mainLibs, jdk...)
	testLibs = model.AppendUnique(testLibs, convert(snapshot.TestCompileClasspath, p.Configurations[snapshot.TestCompileClasspath])...)
	testLibs = model.AppendUnique(testLibs, jdk...)

	// Runtime-only configurations are validated so a broken artifact there
	// still fails the analysis, but they do not feed the analyzed classpath.
	convert(snapshot.RuntimeClasspath, p.Configurations[snapshot.RuntimeClasspath])
	convert(snapshot.TestRuntimeClasspath, p.Configurations[snapshot.TestRuntimeClasspath])

	if len(errs) > 0 {
		return model.Classpaths{}, errors.Join(errs...)
	}

	cp.MainLibraries = mainLibs
	cp.TestLibraries = testLibs
	return cp, nil
}

func toModel(module, config string, e snapshot.Entry) (model.Entry, error) {
	switch {
	case e.Task != "":
		return model.TaskOutput(e.Task, e.Output), nil
	case e.Project != "":
		return model.ProjectOutput(e.Project, e.SourceSet), nil
	case e.Artifact != "":
		if e.Error != "" || e.File == "" {
			reason := e.Error
			if reason == "" {
				reason = "no file was resolved"
			}
			return model.Entry{}, resolutionError(&DependencyResolutionError{
				Module:        module,
				Configuration: config,
				Dependency:    e.Artifact,
				Reason:        reason,
			})
		}
		return model.Entry{Kind: model.EntryFile, Ref: e.File, Name: e.Artifact}, nil
	default:
		return model.File(e.File), nil
	}
}

func activeVariant(p *snapshot.Project, name string) *snapshot.AndroidVariant {
	if p.Android == nil || name == "" {
		return nil
	}
	for i := range p.Android.Variants {
		if p.Android.Variants[i].Name == name {
			return &p.Android.Variants[i]
		}
	}
	return nil
}

// jdkRuntime returns the JDK runtime image candidates under jdkHome. Only the
// one that exists survives materialization.
func jdkRuntime(c *snapshot.CompileOptions) []model.Entry {
	if c == nil || c.JdkHome == "" {
		return nil
	}
	return []model.Entry{
		model.File(filepath.Join(c.JdkHome, "jre", "lib", "rt.jar")),
		model.File(filepath.Join(c.JdkHome, "lib", "jrt-fs.jar")),
	}
}
