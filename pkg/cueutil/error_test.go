// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "snapshot.cue"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("plain error is prefixed with the file name", func(t *testing.T) {
		t.Parallel()

		err := FormatError(errors.New("boom"), "snapshot.cue")
		if err == nil {
			t.Fatal("expected error")
		}
		if got := err.Error(); got != "snapshot.cue: boom" {
			t.Errorf("got %q", got)
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path []string
		want string
	}{
		{"empty", nil, ""},
		{"single", []string{"rootDir"}, "rootDir"},
		{"nested", []string{"engine", "command"}, "engine.command"},
		{"index", []string{"projects", "2", "path"}, "projects[2].path"},
		{"index chain", []string{"projects", "0", "sourceSets", "1", "java"}, "projects[0].sourceSets[1].java"},
		{"leading digits are a field", []string{"0", "name"}, "0.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatPath(tt.path); got != tt.want {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 10), 10, "a.cue"); err != nil {
		t.Errorf("size at limit should pass, got %v", err)
	}

	err := CheckFileSize(make([]byte, 11), 10, "a.cue")
	if err == nil {
		t.Fatal("expected error above limit")
	}
	for _, want := range []string{"a.cue", "11", "10"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}
