// SPDX-License-Identifier: MPL-2.0

package model

const (
	RoleMain Role = iota
	RoleTest
)

type (
	// Role distinguishes production from test source sets.
	Role int

	// SourceSet is a named group of source and resource directories for one
	// role. Directories are absolute and deduplicated but may not exist.
	SourceSet struct {
		Name string
		Role Role
		// Variant is the Android variant the set belongs to, if any.
		Variant   string
		Sources   []string
		Resources []string
		// Outputs are the compiled class directories of the set.
		Outputs []Entry
	}
)

func (r Role) String() string {
	if r == RoleTest {
		return "test"
	}
	return "main"
}

// Dirs returns sources followed by resources.
func (s *SourceSet) Dirs() []string {
	out := make([]string, 0, len(s.Sources)+len(s.Resources))
	out = append(out, s.Sources...)
	return append(out, s.Resources...)
}
