// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/scanbridge/scanbridge/internal/issue"
	"github.com/scanbridge/scanbridge/internal/props"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Workers != 0 {
		t.Errorf("expected default workers to be 0, got %d", cfg.Workers)
	}
	if cfg.LogLevel != LogLevelInfo {
		t.Errorf("expected default log level to be info, got %s", cfg.LogLevel)
	}
	if cfg.Output.Format != props.FormatProperties {
		t.Errorf("expected default output format to be properties, got %s", cfg.Output.Format)
	}
	if !strings.Contains(cfg.Engine.Command, "$SCANBRIDGE_PROPERTIES") {
		t.Errorf("default engine command %q does not reference the properties file", cfg.Engine.Command)
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup only applies on Linux")
	}

	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if want := filepath.Join("/tmp/test-xdg-config", AppName); dir != want {
		t.Errorf("ConfigDir() = %s, want %s", dir, want)
	}
}

func TestConfigDir_Override(t *testing.T) {
	SetConfigDirOverride("/custom/dir")
	t.Cleanup(func() { SetConfigDirOverride("") })

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if dir != "/custom/dir" {
		t.Errorf("ConfigDir() = %s, want /custom/dir", dir)
	}
}

func TestLoad_ReturnsDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("expected no config path, got %s", cfg.Path)
	}
	if cfg.Engine.Command != DefaultEngineCommand {
		t.Errorf("expected default engine command, got %q", cfg.Engine.Command)
	}
	if len(cfg.Properties) != 0 {
		t.Errorf("expected no properties, got %v", cfg.Properties)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, `
workers: 3
log_level: "debug"
scan_all: true
skip: [":docs"]
exclusions: ["**/node_modules/**"]
android_variant: "release"
properties: {
	"sonar.host.url":    "https://sonar.example.com"
	"sonar.verbose":     true
	"sonar.java.source": 17
}
engine: {
	command:     "scanner -X"
	working_dir: "/tmp/scan"
}
output: format: "yaml"
`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Path != path {
		t.Errorf("Path = %s, want %s", cfg.Path, path)
	}
	if cfg.Workers != 3 || cfg.LogLevel != LogLevelDebug || !cfg.ScanAll {
		t.Errorf("scalar settings not loaded: %+v", cfg)
	}
	if len(cfg.Skip) != 1 || cfg.Skip[0] != ":docs" {
		t.Errorf("Skip = %v", cfg.Skip)
	}
	if len(cfg.Exclusions) != 1 || cfg.Exclusions[0] != "**/node_modules/**" {
		t.Errorf("Exclusions = %v", cfg.Exclusions)
	}
	if cfg.AndroidVariant != "release" {
		t.Errorf("AndroidVariant = %s", cfg.AndroidVariant)
	}
	wantProps := map[string]string{
		"sonar.host.url":    "https://sonar.example.com",
		"sonar.verbose":     "true",
		"sonar.java.source": "17",
	}
	for k, want := range wantProps {
		if got := cfg.Properties[k]; got != want {
			t.Errorf("Properties[%s] = %q, want %q", k, got, want)
		}
	}
	if cfg.Engine.Command != "scanner -X" || cfg.Engine.WorkingDir != "/tmp/scan" {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if cfg.Engine.PropertiesFile == "" {
		t.Error("unset engine.properties_file should keep its default")
	}
	if cfg.Output.Format != props.FormatYAML {
		t.Errorf("Output.Format = %s", cfg.Output.Format)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "workers: 3\nengine: command: \"from-file\"\n")
	t.Setenv("SCANBRIDGE_WORKERS", "5")
	t.Setenv("SCANBRIDGE_ENGINE_COMMAND", "from-env")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Workers != 5 {
		t.Errorf("Workers = %d, want 5", cfg.Workers)
	}
	if cfg.Engine.Command != "from-env" {
		t.Errorf("Engine.Command = %q, want from-env", cfg.Engine.Command)
	}
}

func TestLoad_CustomPath_NotFound_ReturnsError(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.cue")
	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: missing})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), missing) {
		t.Errorf("error should name the file, got: %v", err)
	}
	if issue.IDOf(err) != issue.ConfigLoadFailedId {
		t.Errorf("error should carry ConfigLoadFailedId, got %v", issue.IDOf(err))
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"negative workers", "workers: -2\n", "workers"},
		{"unknown field", "colour: \"red\"\n", "colour"},
		{"bad format", "output: format: \"xml\"\n", "format"},
		{"skip without colon", "skip: [\"docs\"]\n", "skip"},
		{"invalid syntax", "workers: {\n", "config.cue"},
		{"bad glob", "exclusions: [\"src/[a-\"]\n", "exclusions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error should mention %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Workers = 2
	cfg.Skip = []string{":a", ":b:c"}
	cfg.Properties = map[string]string{"sonar.projectKey": "org:shop", "sonar.host.url": "http://x"}
	cfg.Engine.WorkingDir = "/w"

	dir := t.TempDir()
	writeConfig(t, dir, GenerateCUE(cfg))

	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() of generated CUE returned error: %v", err)
	}
	if loaded.Workers != 2 || len(loaded.Skip) != 2 || loaded.Engine.WorkingDir != "/w" {
		t.Errorf("generated config did not round-trip: %+v", loaded)
	}
	if loaded.Properties["sonar.projectKey"] != "org:shop" {
		t.Errorf("properties did not round-trip: %v", loaded.Properties)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.cue")
	written, err := CreateDefaultConfig(path)
	if err != nil || !written {
		t.Fatalf("CreateDefaultConfig() = %v, %v", written, err)
	}
	written, err = CreateDefaultConfig(path)
	if err != nil || written {
		t.Errorf("second CreateDefaultConfig() = %v, %v, want false, nil", written, err)
	}
}
