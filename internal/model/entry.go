// SPDX-License-Identifier: MPL-2.0

package model

import "fmt"

const (
	// EntryFile is a concrete file or directory.
	EntryFile EntryKind = iota + 1
	// EntryTaskOutput refers to an output of a build task. It is expanded
	// only at materialization.
	EntryTaskOutput
	// EntryProjectOutput refers to the compiled outputs of another module's
	// source set. It is expanded only at materialization.
	EntryProjectOutput
)

type (
	EntryKind int

	// Entry is one classpath element. Ref holds the file path, task path or
	// project path depending on Kind. Name is the task output name or the
	// source set name; for a file that came from a resolved artifact it is
	// the artifact coordinate.
	Entry struct {
		Kind EntryKind
		Ref  string
		Name string
	}

	// Classpaths are the ordered classpath entries collected for one module.
	Classpaths struct {
		MainBinaries  []Entry
		MainLibraries []Entry
		TestBinaries  []Entry
		TestLibraries []Entry
	}
)

// File returns a concrete entry.
func File(path string) Entry {
	return Entry{Kind: EntryFile, Ref: path}
}

// TaskOutput returns a deferred reference to a task output. An empty name
// selects every output of the task.
func TaskOutput(task, output string) Entry {
	return Entry{Kind: EntryTaskOutput, Ref: task, Name: output}
}

// ProjectOutput returns a deferred reference to the outputs of a module's
// source set. An empty set name selects "main".
func ProjectOutput(project, sourceSet string) Entry {
	return Entry{Kind: EntryProjectOutput, Ref: project, Name: sourceSet}
}

// Deferred reports whether the entry needs materialization.
func (e Entry) Deferred() bool {
	return e.Kind == EntryTaskOutput || e.Kind == EntryProjectOutput
}

// Key identifies an entry for deduplication. Two files with the same path
// are the same entry regardless of the artifact they came from.
func (e Entry) Key() string {
	if e.Kind == EntryFile {
		return "f\x00" + e.Ref
	}
	return fmt.Sprintf("%d\x00%s\x00%s", e.Kind, e.Ref, e.Name)
}

func (e Entry) String() string {
	switch e.Kind {
	case EntryTaskOutput:
		if e.Name == "" {
			return "task(" + e.Ref + ")"
		}
		return "task(" + e.Ref + "#" + e.Name + ")"
	case EntryProjectOutput:
		if e.Name == "" {
			return "project(" + e.Ref + ")"
		}
		return "project(" + e.Ref + "#" + e.Name + ")"
	default:
		return e.Ref
	}
}

// AppendUnique appends entries not already present in dst, keeping the first
// occurrence of each.
func AppendUnique(dst []Entry, src ...Entry) []Entry {
	seen := make(map[string]bool, len(dst)+len(src))
	for _, e := range dst {
		seen[e.Key()] = true
	}
	for _, e := range src {
		if seen[e.Key()] {
			continue
		}
		seen[e.Key()] = true
		dst = append(dst, e)
	}
	return dst
}
