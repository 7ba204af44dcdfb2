// SPDX-License-Identifier: MPL-2.0

package reducer

import (
	"path/filepath"
	"strconv"

	"github.com/scanbridge/scanbridge/internal/model"
	"github.com/scanbridge/scanbridge/internal/props"
	"github.com/scanbridge/scanbridge/internal/walker"
)

// level is one precedence level of a module's values.
type level map[string]props.Value

func (l level) literal(key, v string) {
	if v != "" {
		l[key] = props.Value{Literal: v}
	}
}

func (l level) list(key string, list *props.PathList) {
	if !list.Empty() {
		l[key] = props.Value{List: list}
	}
}

// computed derives the defaults of one module from its descriptor and its
// resolved source sets and classpaths.
func computed(t *model.Tree, i int, m *walker.Module, extraSources []string) level {
	n := &t.Nodes[i]
	p := n.Project
	l := make(level)

	l.literal(props.ProjectName, p.Name)
	l.literal(props.ProjectDescription, p.Description)
	if p.Version != unspecifiedVersion {
		l.literal(props.ProjectVersion, p.Version)
	}
	l.literal(props.ProjectBaseDir, p.Dir)
	if n.Caps.Has(model.CapKotlin) || n.Caps.Has(model.CapKotlinDSL) {
		l.literal(props.KotlinGradleProjectRoot, t.Root().Project.Dir)
	}
	if n.IsRoot() {
		l.literal(props.ProjectKey, projectKey(p))
		l.literal(props.WorkingDirectory, filepath.Join(p.BuildDir, "sonar"))
	}

	var sources, tests []string
	for _, ss := range m.SourceSets {
		if ss.Role == model.RoleTest {
			tests = append(tests, ss.Dirs()...)
		} else {
			sources = append(sources, ss.Dirs()...)
		}
	}
	sources = append(sources, m.Scripts...)
	sources = append(sources, extraSources...)
	l.list(props.Sources, props.Files(n.Path, sources...))
	l.list(props.Tests, props.Files(n.Path, tests...))

	cp := m.Classpaths
	if n.Caps.Has(model.CapJava) || n.Caps.Has(model.CapKotlin) || n.Caps.Has(model.CapGroovy) {
		l.list(props.JavaBinaries, props.Classpath(n.Path, cp.MainBinaries))
		l.list(props.JavaLibraries, props.Classpath(n.Path, cp.MainLibraries))
		l.list(props.JavaTestBinaries, props.Classpath(n.Path, cp.TestBinaries))
		l.list(props.JavaTestLibraries, props.Classpath(n.Path, cp.TestLibraries))
		l.list(props.Binaries, props.Classpath(n.Path, cp.MainBinaries))
		l.list(props.Libraries, props.Classpath(n.Path, cp.MainLibraries))
	}
	if n.Caps.Has(model.CapGroovy) {
		l.list(props.GroovyBinaries, props.Classpath(n.Path, cp.MainBinaries))
	}

	if c := p.Compile; c != nil {
		source, target := c.Source, c.Target
		if c.Release != "" {
			source, target = c.Release, c.Release
		}
		l.literal(props.JavaSource, source)
		l.literal(props.JavaTarget, target)
		l.literal(props.JavaJdkHome, c.JdkHome)
		l.literal(props.SourceEncoding, c.Encoding)
		if c.EnablePreview {
			l.literal(props.JavaEnablePreview, "true")
		}
	}

	if r := p.Reports; r != nil {
		for _, key := range []string{props.JUnitReportPaths, props.JUnitReportsPath, props.SurefireReportsPath} {
			junit := props.Files(n.Path, r.JUnit...)
			junit.JUnit = true
			l.list(key, junit)
		}
		if r.Jacoco != "" {
			l.list(props.JacocoXMLReportPaths, props.Files(n.Path, r.Jacoco))
		}
		if r.AndroidLint != "" {
			l.list(props.AndroidLintReportPaths, props.Files(n.Path, r.AndroidLint))
		}
	}

	if n.Caps.Has(model.CapAndroid) {
		l.literal(props.AndroidDetected, "true")
		if lo, hi, ok := minSdkRange(n); ok {
			l.literal(props.AndroidMinSdkMin, strconv.Itoa(lo))
			l.literal(props.AndroidMinSdkMax, strconv.Itoa(hi))
		}
	}
	return l
}

// minSdkRange returns the smallest and largest minSdk over all variants.
func minSdkRange(n *model.Node) (lo, hi int, ok bool) {
	a := n.Project.Android
	if a == nil {
		return 0, 0, false
	}
	for _, v := range a.Variants {
		if v.MinSdk <= 0 {
			continue
		}
		if !ok || v.MinSdk < lo {
			lo = v.MinSdk
		}
		if !ok || v.MinSdk > hi {
			hi = v.MinSdk
		}
		ok = true
	}
	return lo, hi, ok
}
