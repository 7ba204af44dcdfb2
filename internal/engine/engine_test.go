// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanbridge/scanbridge/internal/issue"
	"github.com/scanbridge/scanbridge/internal/model"
	"github.com/scanbridge/scanbridge/internal/props"
)

type recordingEngine struct {
	calls int
}

func (r *recordingEngine) Run(context.Context, props.Map) (Result, error) {
	r.calls++
	return Result{ExitCode: 7}, nil
}

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
}

func TestInvoke_Skips(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		m    props.Map
	}{
		{"empty map", props.Map{}},
		{"sonar.skip", props.Map{props.Skip: "TRUE", props.ProjectKey: "k"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := &recordingEngine{}
			res, err := Invoke(context.Background(), e, tt.m)
			require.NoError(t, err)
			assert.True(t, res.Skipped)
			assert.Zero(t, e.calls)
			assert.True(t, res.ExitCode.IsSuccess())
			require.Len(t, res.Diagnostics, 1)
			assert.Equal(t, model.CodeAnalysisSkipped, res.Diagnostics[0].Code)
			assert.Equal(t, model.SeverityWarning, res.Diagnostics[0].Severity)
		})
	}
}

func TestInvoke_PassesExitCodeThrough(t *testing.T) {
	t.Parallel()

	e := &recordingEngine{}
	res, err := Invoke(context.Background(), e, props.Map{props.ProjectKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, 1, e.calls)
	assert.Equal(t, ExitCode(7), res.ExitCode)
	assert.False(t, res.Skipped)
}

func TestInvoke_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := &recordingEngine{}
	_, err := Invoke(ctx, e, props.Map{props.ProjectKey: "k"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, e.calls)
}

func TestDumpEngine_Stream(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	d := &DumpEngine{Out: &buf, Format: props.FormatJSON}
	res, err := d.Run(context.Background(), props.Map{"b": "2", "a": "1"})
	require.NoError(t, err)
	assert.Empty(t, res.PropertiesFile)
	assert.JSONEq(t, `{"a":"1","b":"2"}`, buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestDumpEngine_StreamWriteError(t *testing.T) {
	t.Parallel()

	d := &DumpEngine{Out: failingWriter{}, Format: props.FormatProperties}
	_, err := d.Run(context.Background(), props.Map{"a": "1"})
	require.Error(t, err)

	var ae *issue.ActionableError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "write properties", ae.Operation)
	assert.EqualError(t, err, "failed to write properties: disk full")
}

func TestDumpEngine_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "dump.properties")
	d := &DumpEngine{Path: path}
	m := props.Map{props.ProjectKey: "org:shop", "a.sonar.sources": `C:\src,x`}
	res, err := d.Run(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, path, res.PropertiesFile)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	got, err := props.ReadProperties(data)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestProcessEngine_ExitCodeVerbatim(t *testing.T) {
	t.Parallel()
	requireShell(t)

	dir := t.TempDir()
	var stdout bytes.Buffer
	e := &ProcessEngine{
		Command:    `sh -c 'cat "$SCANBRIDGE_PROPERTIES"; exit 3'`,
		WorkingDir: dir,
		Stdout:     &stdout,
		Stderr:     &stdout,
	}
	res, err := e.Run(context.Background(), props.Map{props.ProjectKey: "org:shop"})
	require.NoError(t, err)
	assert.Equal(t, ExitCode(3), res.ExitCode)
	assert.Equal(t, filepath.Join(dir, DefaultPropertiesFile), res.PropertiesFile)
	assert.Contains(t, stdout.String(), "sonar.projectKey = org:shop")
}

func TestProcessEngine_DefaultsToWorkingDirectoryProperty(t *testing.T) {
	t.Parallel()
	requireShell(t)

	wd := filepath.Join(t.TempDir(), "build", "sonar")
	e := &ProcessEngine{
		Command:        "true",
		PropertiesFile: "scan.properties",
		Env:            []string{"PATH=" + os.Getenv("PATH")},
	}
	res, err := e.Run(context.Background(), props.Map{props.WorkingDirectory: wd})
	require.NoError(t, err)
	assert.True(t, res.ExitCode.IsSuccess())
	assert.FileExists(t, filepath.Join(wd, "scan.properties"))
}

func TestProcessEngine_ExpandsVariables(t *testing.T) {
	t.Parallel()
	requireShell(t)

	dir := t.TempDir()
	var stdout bytes.Buffer
	e := &ProcessEngine{
		Command:    `echo "$GREETING" $SCANBRIDGE_PROPERTIES`,
		WorkingDir: dir,
		Env:        []string{"PATH=" + os.Getenv("PATH"), "GREETING=hello world"},
		Stdout:     &stdout,
	}
	_, err := e.Run(context.Background(), props.Map{props.ProjectKey: "k"})
	require.NoError(t, err)
	want := "hello world " + filepath.Join(dir, DefaultPropertiesFile)
	assert.Equal(t, want, strings.TrimSpace(stdout.String()))
}

func TestProcessEngine_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		command string
		want    issue.Id
	}{
		{"not configured", "  ", issue.EngineNotConfiguredId},
		{"unbalanced quote", `scanner "oops`, issue.EngineFailedId},
		{"missing binary", "scanbridge-no-such-scanner-binary", issue.EngineFailedId},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := &ProcessEngine{Command: tt.command, WorkingDir: t.TempDir(), Env: []string{}}
			_, err := e.Run(context.Background(), props.Map{props.ProjectKey: "k"})
			require.Error(t, err)
			assert.Equal(t, tt.want, issue.IDOf(err))
		})
	}
}

func TestProcessEngine_NotConfiguredSuggestsDryRun(t *testing.T) {
	t.Parallel()

	e := &ProcessEngine{WorkingDir: t.TempDir()}
	_, err := e.Run(context.Background(), props.Map{props.ProjectKey: "k"})

	var ae *issue.ActionableError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, []string{
		"Set engine.command in the configuration file",
		"Use --dry-run to only write the properties",
	}, ae.Suggestions)
}
