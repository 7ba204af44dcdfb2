// SPDX-License-Identifier: MPL-2.0

package snapshot

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path/filepath"
	"slices"

	"github.com/scanbridge/scanbridge/internal/issue"
	"github.com/scanbridge/scanbridge/pkg/cueutil"
)

// DefaultFileName is looked up in the working directory when no snapshot
// path is given.
const DefaultFileName = "scanbridge.cue"

//go:embed snapshot_schema.cue
var schema []byte

// Load reads, validates and normalizes the snapshot at path. Relative paths
// inside the snapshot are made absolute (see Normalize).
func Load(path string) (*Snapshot, error) {
	result, err := cueutil.ParseFile[Snapshot](schema, path, "#Snapshot")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, issue.NewErrorContext().
				WithOperation("load project snapshot").
				WithResource(path).
				WithSuggestion("Export the snapshot from the build, or pass its path as the first argument").
				WithIssue(issue.SnapshotNotFoundId).
				Wrap(err).
				BuildError()
		}
		return nil, parseError(path, err)
	}

	snap := result.Value
	if err := snap.Normalize(filepath.Dir(path)); err != nil {
		return nil, parseError(path, err)
	}
	return snap, nil
}

// Parse validates and normalizes snapshot data that did not come from a file.
// baseDir resolves a relative rootDir.
func Parse(data []byte, filename, baseDir string) (*Snapshot, error) {
	result, err := cueutil.ParseAndDecode[Snapshot](schema, data, "#Snapshot", cueutil.WithFilename(filename))
	if err != nil {
		return nil, parseError(filename, err)
	}
	snap := result.Value
	if err := snap.Normalize(baseDir); err != nil {
		return nil, parseError(filename, err)
	}
	return snap, nil
}

func parseError(resource string, err error) error {
	return issue.NewErrorContext().
		WithOperation("parse project snapshot").
		WithResource(resource).
		WithSuggestion("Re-export the snapshot with the same scanbridge version").
		WithIssue(issue.SnapshotParseErrorId).
		Wrap(err).
		BuildError()
}

// Normalize makes every path absolute and fills defaults: rootDir against
// baseDir, project dirs against rootDir, all other paths against the owning
// project's dir. buildDir defaults to <dir>/build. It also validates classpath
// entries.
func (s *Snapshot) Normalize(baseDir string) error {
	s.RootDir = abs(baseDir, s.RootDir)
	if root, err := filepath.Abs(s.RootDir); err == nil {
		s.RootDir = root
	}

	var errs []error
	for i := range s.Projects {
		p := &s.Projects[i]
		p.Dir = abs(s.RootDir, p.Dir)
		if p.BuildDir == "" {
			p.BuildDir = filepath.Join(p.Dir, "build")
		} else {
			p.BuildDir = abs(p.Dir, p.BuildDir)
		}
		if p.BuildFile != "" {
			p.BuildFile = abs(p.Dir, p.BuildFile)
		}
		if err := p.normalize(); err != nil {
			errs = append(errs, fmt.Errorf("project %s: %w", p.Path, err))
		}
	}
	return errors.Join(errs...)
}

func (p *Project) normalize() error {
	var errs []error
	entries := func(list []Entry) {
		for i := range list {
			if err := list[i].validate(); err != nil {
				errs = append(errs, err)
			}
			if list[i].File != "" {
				list[i].File = abs(p.Dir, list[i].File)
			}
		}
	}

	for i := range p.SourceSets {
		ss := &p.SourceSets[i]
		absAll(p.Dir, ss.Java, ss.Groovy, ss.Kotlin, ss.Resources)
		entries(ss.Outputs)
	}
	for i := range p.KotlinSourceSets {
		ks := &p.KotlinSourceSets[i]
		absAll(p.Dir, ks.Kotlin, ks.Resources)
		entries(ks.Outputs)
	}
	if a := p.Android; a != nil {
		absAll(p.Dir, a.BootClasspath)
		for i := range a.Variants {
			v := &a.Variants[i]
			p.providers(v.Sources)
			entries(v.Outputs)
			entries(v.Classpath)
			for _, t := range []*VariantTest{v.UnitTest, v.AndroidTest} {
				if t == nil {
					continue
				}
				p.providers(t.Sources)
				entries(t.Outputs)
				entries(t.Classpath)
			}
		}
	}
	if c := p.Compile; c != nil && c.JdkHome != "" {
		c.JdkHome = abs(p.Dir, c.JdkHome)
	}
	for _, name := range slices.Sorted(maps.Keys(p.Configurations)) {
		entries(p.Configurations[name])
	}
	for i := range p.Tasks {
		for j := range p.Tasks[i].Outputs {
			o := &p.Tasks[i].Outputs[j]
			o.Path = abs(p.Dir, o.Path)
		}
	}
	if r := p.Reports; r != nil {
		absAll(p.Dir, r.JUnit)
		if r.Jacoco != "" {
			r.Jacoco = abs(p.Dir, r.Jacoco)
		}
		if r.AndroidLint != "" {
			r.AndroidLint = abs(p.Dir, r.AndroidLint)
		}
	}
	return errors.Join(errs...)
}

func (p *Project) providers(list []SourceProvider) {
	for i := range list {
		sp := &list[i]
		if sp.Manifest != "" {
			sp.Manifest = abs(p.Dir, sp.Manifest)
		}
		absAll(p.Dir, sp.Java, sp.Kotlin, sp.Res, sp.Assets, sp.Resources, sp.Aidl, sp.Renderscript, sp.C, sp.Cpp)
	}
}

func abs(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

func absAll(base string, lists ...[]string) {
	for _, list := range lists {
		for i := range list {
			list[i] = abs(base, list[i])
		}
	}
}
