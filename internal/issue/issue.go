// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	SnapshotNotFoundId Id = iota + 1
	SnapshotParseErrorId
	InvalidProjectTreeId
	DependencyResolutionFailedId
	ConflictingConfigurationId
	DependencyCycleId
	UnknownAndroidVariantId
	ConfigLoadFailedId
	EngineNotConfiguredId
	EngineFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render returns the issue page rendered for the terminal using the glamour
// style at stylePath ("" selects the default style).
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	snapshotNotFoundIssue = &Issue{
		id: SnapshotNotFoundId,
		mdMsg: `
# Project snapshot not found!

scanbridge reads the module tree from a snapshot file exported by the build.

## Search locations (in order of precedence):
1. The path given as the command argument
2. "scanbridge.cue" in the current directory

## Things you can try:
- Point scanbridge at the snapshot explicitly:
~~~
$ scanbridge analyze build/scanbridge/snapshot.cue
~~~`,
	}

	snapshotParseErrorIssue = &Issue{
		id: SnapshotParseErrorId,
		mdMsg: `
# Failed to parse the project snapshot!

The snapshot does not match the expected schema.

## Common issues:
- A project entry is missing "path" or "baseDir"
- A classpath entry mixes "artifact" with "task" or "project"
- A property value is not a string, list of strings, number or boolean

## Example snapshot structure:
~~~cue
projects: [
  {
    path:    ":"
    name:    "shop"
    group:   "com.example"
    baseDir: "/src/shop"
    plugins: ["java"]
  },
]
~~~`,
	}

	invalidProjectTreeIssue = &Issue{
		id: InvalidProjectTreeId,
		mdMsg: `
# Invalid project tree!

Every project path must be unique, the root project must have path ":"
and every other project's parent path must also be present in the snapshot.

## Things you can try:
- Re-export the snapshot from the build so the tree is complete
- Inspect what scanbridge sees:
~~~
$ scanbridge tree snapshot.cue
~~~`,
	}

	dependencyResolutionFailedIssue = &Issue{
		id: DependencyResolutionFailedId,
		mdMsg: `
# Dependency resolution failed!

A classpath entry could not be resolved to a file. Analysis needs every
library to be present, so scanbridge stops rather than report partial results.

## Things you can try:
- Run the build's dependency resolution and re-export the snapshot
- Check repository credentials and network access
- Look at the "error" recorded for the artifact in the snapshot`,
	}

	conflictingConfigurationIssue = &Issue{
		id: ConflictingConfigurationId,
		mdMsg: `
# Conflicting configuration!

The same analysis property was given two different values at the same level
of precedence for the same module.

## Precedence (lowest to highest):
1. Values computed from the build model
2. Values declared on an ancestor module (nearest wins)
3. Values declared on the module itself
4. Values passed on the command line or in the config file

## Things you can try:
- Declare the key only once per module
- Use "-Dkey=value" to override it for the whole run`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

Task outputs that feed a classpath depend on each other in a loop, so
there is no order in which they can be produced.

## Things you can try:
- Check the "dependsOn" lists of the tasks named in the error
- Remove the edge that closes the loop`,
	}

	unknownAndroidVariantIssue = &Issue{
		id: UnknownAndroidVariantId,
		mdMsg: `
# Unknown Android variant!

The variant the module selects for itself does not exist on it. The error
lists the variants that do. A global "android_variant" that a module lacks
is only a warning; that module keeps its default variant.

## Things you can try:
- Set the module's "androidVariant" to one of the listed names
- Remove the setting to let scanbridge pick the variant matching the
  module's test build type`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The scanbridge config file exists but could not be read or validated.

## Things you can try:
- Show the effective configuration:
~~~
$ scanbridge config show
~~~
- Write a fresh default file:
~~~
$ scanbridge config init --force
~~~`,
	}

	engineNotConfiguredIssue = &Issue{
		id: EngineNotConfiguredId,
		mdMsg: `
# No analysis engine configured!

"analyze" needs a command to hand the properties file to.

## Things you can try:
- Set "engine.command" in your config file
- Or only print the properties:
~~~
$ scanbridge analyze --dry-run
~~~`,
	}

	engineFailedIssue = &Issue{
		id: EngineFailedId,
		mdMsg: `
# Analysis engine failed!

The engine process could not be started or exited with an error. Its exit
code is passed through unchanged.

## Things you can try:
- Run the engine by hand with the generated properties file
- Check "engine.working_dir" and the engine's own logs`,
	}

	issues = map[Id]*Issue{
		snapshotNotFoundIssue.Id():           snapshotNotFoundIssue,
		snapshotParseErrorIssue.Id():         snapshotParseErrorIssue,
		invalidProjectTreeIssue.Id():         invalidProjectTreeIssue,
		dependencyResolutionFailedIssue.Id(): dependencyResolutionFailedIssue,
		conflictingConfigurationIssue.Id():   conflictingConfigurationIssue,
		dependencyCycleIssue.Id():            dependencyCycleIssue,
		unknownAndroidVariantIssue.Id():      unknownAndroidVariantIssue,
		configLoadFailedIssue.Id():           configLoadFailedIssue,
		engineNotConfiguredIssue.Id():        engineNotConfiguredIssue,
		engineFailedIssue.Id():               engineFailedIssue,
	}
)

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, v := range issues {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
