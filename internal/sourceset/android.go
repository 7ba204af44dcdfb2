// SPDX-License-Identifier: MPL-2.0

package sourceset

import (
	"fmt"

	"github.com/scanbridge/scanbridge/internal/model"
	"github.com/scanbridge/scanbridge/internal/snapshot"
)

const (
	unitTestSuffix    = "UnitTest"
	androidTestSuffix = "AndroidTest"
)

func resolveAndroid(n *model.Node, opts Options) (Result, error) {
	p := n.Project
	if p.Android == nil || len(p.Android.Variants) == 0 {
		return Result{}, nil
	}

	fallback := opts.AndroidVariant
	var diags []model.Diagnostic
	if p.AndroidVariant == "" && fallback != "" && !hasVariant(p, fallback) {
		diags = append(diags, model.Warning(model.CodeAndroidVariantMissing, n.Path, "",
			fmt.Sprintf("module has no Android variant %q, using its default variant", fallback), nil))
		fallback = ""
	}

	v, err := SelectVariant(n.Path, p, fallback)
	if err != nil {
		return Result{}, err
	}

	res := Result{Variant: v.Name, Diagnostics: diags}
	mainRole := model.RoleMain
	if n.Kind == model.KindAndroidTest {
		// The main variant of a test module holds instrumentation tests.
		mainRole = model.RoleTest
	}
	res.SourceSets = append(res.SourceSets, providerSet(v.Name, v.Name, mainRole, v.Sources, v.Outputs))

	if n.Kind != model.KindAndroidTest {
		if t := v.UnitTest; t != nil {
			res.SourceSets = append(res.SourceSets, providerSet(v.Name+unitTestSuffix, v.Name, model.RoleTest, t.Sources, t.Outputs))
		}
		if t := v.AndroidTest; t != nil {
			res.SourceSets = append(res.SourceSets, providerSet(v.Name+androidTestSuffix, v.Name, model.RoleTest, t.Sources, t.Outputs))
		}
	}
	return res, nil
}

func hasVariant(p *snapshot.Project, name string) bool {
	for _, v := range p.Android.Variants {
		if v.Name == name {
			return true
		}
	}
	return false
}

// SelectVariant picks the active variant of an Android module: the one the
// module configures, else the configured fallback, else the first variant
// built with the test build type, else the first variant. A configured name
// that does not exist is an error listing the candidates.
func SelectVariant(module string, p *snapshot.Project, fallback string) (*snapshot.AndroidVariant, error) {
	variants := p.Android.Variants
	wanted := p.AndroidVariant
	if wanted == "" {
		wanted = fallback
	}

	if wanted != "" {
		for i := range variants {
			if variants[i].Name == wanted {
				return &variants[i], nil
			}
		}
		candidates := make([]string, 0, len(variants))
		for _, v := range variants {
			candidates = append(candidates, v.Name)
		}
		return nil, variantError(module, wanted, candidates)
	}

	testBuildType := p.Android.TestBuildType
	if testBuildType == "" {
		testBuildType = "debug"
	}
	for i := range variants {
		if variants[i].BuildType == testBuildType {
			return &variants[i], nil
		}
	}
	return &variants[0], nil
}

// providerSet flattens source providers into one source set. Code-like
// directories (java, kotlin, aidl, renderscript, c, cpp) and the manifest are
// sources; res, assets and resources are resources.
func providerSet(name, variant string, role model.Role, providers []snapshot.SourceProvider, outs []snapshot.Entry) model.SourceSet {
	ss := model.SourceSet{Name: name, Role: role, Variant: variant, Outputs: outputs(outs)}
	for _, sp := range providers {
		if sp.Manifest != "" {
			ss.Sources = union(ss.Sources, []string{sp.Manifest})
		}
		ss.Sources = union(ss.Sources, sp.Java, sp.Kotlin, sp.Aidl, sp.Renderscript, sp.C, sp.Cpp)
		ss.Resources = union(ss.Resources, sp.Res, sp.Assets, sp.Resources)
	}
	return ss
}
