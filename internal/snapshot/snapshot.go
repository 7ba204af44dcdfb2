// SPDX-License-Identifier: MPL-2.0

// Package snapshot defines the read-only project graph exported by the build
// and loads it from a CUE or JSON file validated against an embedded schema.
package snapshot

import (
	"fmt"
	"slices"
	"strings"
)

// Well-known dependency configuration names.
const (
	CompileClasspath     = "compileClasspath"
	RuntimeClasspath     = "runtimeClasspath"
	TestCompileClasspath = "testCompileClasspath"
	TestRuntimeClasspath = "testRuntimeClasspath"
)

type (
	// Snapshot is the whole build graph at the moment it was exported.
	Snapshot struct {
		RootDir   string    `json:"rootDir"`
		BuildTool string    `json:"buildTool,omitempty"`
		Projects  []Project `json:"projects"`
	}

	// Project describes one module. Projects appear in no particular order;
	// the tree is rebuilt from Path.
	Project struct {
		Path             string             `json:"path"`
		Name             string             `json:"name"`
		Group            string             `json:"group,omitempty"`
		Version          string             `json:"version,omitempty"`
		Description      string             `json:"description,omitempty"`
		Dir              string             `json:"dir"`
		BuildDir         string             `json:"buildDir,omitempty"`
		BuildFile        string             `json:"buildFile,omitempty"`
		Plugins          []string           `json:"plugins,omitempty"`
		Skip             bool               `json:"skip,omitempty"`
		AndroidVariant   string             `json:"androidVariant,omitempty"`
		Properties       []PropertyBlock    `json:"properties,omitempty"`
		SourceSets       []SourceSet        `json:"sourceSets,omitempty"`
		KotlinSourceSets []KotlinSourceSet  `json:"kotlinSourceSets,omitempty"`
		Android          *Android           `json:"android,omitempty"`
		Compile          *CompileOptions    `json:"compile,omitempty"`
		Configurations   map[string][]Entry `json:"configurations,omitempty"`
		Tasks            []Task             `json:"tasks,omitempty"`
		Reports          *Reports           `json:"reports,omitempty"`
	}

	// PropertyBlock is one set of analysis properties declared on a project.
	// Origin names the declaring script or plugin; two blocks with different
	// origins may not assign different values to the same key.
	PropertyBlock struct {
		Origin string         `json:"origin"`
		Values map[string]any `json:"values"`
	}

	SourceSet struct {
		Name      string   `json:"name"`
		Java      []string `json:"java,omitempty"`
		Groovy    []string `json:"groovy,omitempty"`
		Kotlin    []string `json:"kotlin,omitempty"`
		Resources []string `json:"resources,omitempty"`
		Outputs   []Entry  `json:"outputs,omitempty"`
	}

	KotlinSourceSet struct {
		Name      string   `json:"name"`
		Kotlin    []string `json:"kotlin,omitempty"`
		Resources []string `json:"resources,omitempty"`
		Outputs   []Entry  `json:"outputs,omitempty"`
	}

	Android struct {
		TestBuildType string           `json:"testBuildType,omitempty"`
		BootClasspath []string         `json:"bootClasspath,omitempty"`
		Variants      []AndroidVariant `json:"variants,omitempty"`
	}

	AndroidVariant struct {
		Name        string           `json:"name"`
		BuildType   string           `json:"buildType,omitempty"`
		MinSdk      int              `json:"minSdk,omitempty"`
		Sources     []SourceProvider `json:"sources,omitempty"`
		Outputs     []Entry          `json:"outputs,omitempty"`
		Classpath   []Entry          `json:"classpath,omitempty"`
		UnitTest    *VariantTest     `json:"unitTest,omitempty"`
		AndroidTest *VariantTest     `json:"androidTest,omitempty"`
	}

	VariantTest struct {
		Sources   []SourceProvider `json:"sources,omitempty"`
		Outputs   []Entry          `json:"outputs,omitempty"`
		Classpath []Entry          `json:"classpath,omitempty"`
	}

	// SourceProvider is one Android source provider (main, a flavor, a build
	// type) contributing directories to a variant.
	SourceProvider struct {
		Name         string   `json:"name"`
		Manifest     string   `json:"manifest,omitempty"`
		Java         []string `json:"java,omitempty"`
		Kotlin       []string `json:"kotlin,omitempty"`
		Res          []string `json:"res,omitempty"`
		Assets       []string `json:"assets,omitempty"`
		Resources    []string `json:"resources,omitempty"`
		Aidl         []string `json:"aidl,omitempty"`
		Renderscript []string `json:"renderscript,omitempty"`
		C            []string `json:"c,omitempty"`
		Cpp          []string `json:"cpp,omitempty"`
	}

	CompileOptions struct {
		Release       string `json:"release,omitempty"`
		Source        string `json:"source,omitempty"`
		Target        string `json:"target,omitempty"`
		JdkHome       string `json:"jdkHome,omitempty"`
		Encoding      string `json:"encoding,omitempty"`
		EnablePreview bool   `json:"enablePreview,omitempty"`
	}

	// Entry is one classpath element as exported. Exactly one of File, Task,
	// Project or Artifact identifies it; an artifact may carry the File it
	// resolved to, or the Error that prevented resolution.
	Entry struct {
		File      string `json:"file,omitempty"`
		Task      string `json:"task,omitempty"`
		Output    string `json:"output,omitempty"`
		Project   string `json:"project,omitempty"`
		SourceSet string `json:"sourceSet,omitempty"`
		Artifact  string `json:"artifact,omitempty"`
		Error     string `json:"error,omitempty"`
	}

	Task struct {
		Path      string       `json:"path"`
		Outputs   []TaskOutput `json:"outputs,omitempty"`
		DependsOn []string     `json:"dependsOn,omitempty"`
	}

	TaskOutput struct {
		Name string `json:"name"`
		Path string `json:"path"`
	}

	Reports struct {
		JUnit       []string `json:"junit,omitempty"`
		Jacoco      string   `json:"jacoco,omitempty"`
		AndroidLint string   `json:"androidLint,omitempty"`
	}
)

// validate checks what the schema cannot express.
func (e Entry) validate() error {
	ids := 0
	for _, s := range []string{e.Task, e.Project, e.Artifact} {
		if s != "" {
			ids++
		}
	}
	switch {
	case ids > 1:
		return fmt.Errorf("classpath entry %s names more than one of task, project and artifact", e)
	case ids == 0 && e.File == "":
		return fmt.Errorf("classpath entry has neither file, task, project nor artifact")
	case e.File != "" && (e.Task != "" || e.Project != ""):
		return fmt.Errorf("classpath entry %s mixes a file with a task or project reference", e)
	case e.Output != "" && e.Task == "":
		return fmt.Errorf("classpath entry %s sets output without a task", e)
	case e.SourceSet != "" && e.Project == "":
		return fmt.Errorf("classpath entry %s sets sourceSet without a project", e)
	case e.Error != "" && e.Artifact == "":
		return fmt.Errorf("classpath entry %s sets error without an artifact", e)
	}
	return nil
}

func (e Entry) String() string {
	switch {
	case e.Task != "":
		if e.Output != "" {
			return e.Task + "#" + e.Output
		}
		return e.Task
	case e.Project != "":
		return "project(" + e.Project + ")"
	case e.Artifact != "":
		return e.Artifact
	default:
		return e.File
	}
}

// Project returns the project with the given path.
func (s *Snapshot) Project(path string) (*Project, bool) {
	i := slices.IndexFunc(s.Projects, func(p Project) bool { return p.Path == path })
	if i < 0 {
		return nil, false
	}
	return &s.Projects[i], true
}

// HasPlugin reports whether any of ids is applied to the project.
func (p *Project) HasPlugin(ids ...string) bool {
	for _, id := range ids {
		if slices.Contains(p.Plugins, id) {
			return true
		}
	}
	return false
}

// TaskOwner returns the project path owning a task path: ":a:b:jar" is owned
// by ":a:b" and ":jar" by the root.
func TaskOwner(task string) string {
	i := strings.LastIndex(task, ":")
	if i <= 0 {
		return ":"
	}
	return task[:i]
}
