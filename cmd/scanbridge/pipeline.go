// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scanbridge/scanbridge/internal/analyzer"
	"github.com/scanbridge/scanbridge/internal/config"
	"github.com/scanbridge/scanbridge/internal/snapshot"
)

// pipelineFlags are shared by every command that reduces a snapshot.
type pipelineFlags struct {
	defines []string
	workers int
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.defines, "define", "D", nil, "set an analysis property on the root module (key=value, repeatable)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "number of modules resolved concurrently (default from config, 0 uses every CPU)")
}

// request builds the analyzer request for the optional snapshot argument.
func (f *pipelineFlags) request(args []string, cfg *config.Config) (analyzer.Request, error) {
	defines, err := parseDefines(f.defines)
	if err != nil {
		return analyzer.Request{}, err
	}
	if f.workers < 0 {
		return analyzer.Request{}, fmt.Errorf("invalid --workers %d: must not be negative", f.workers)
	}
	return analyzer.Request{
		SnapshotPath: snapshotPath(args),
		Config:       cfg,
		Defines:      defines,
		Workers:      f.workers,
	}, nil
}

func snapshotPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return snapshot.DefaultFileName
}

// parseDefines turns key=value pairs into a map. Later pairs win. An empty
// value removes the key from the analysis.
func parseDefines(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid define %q: expected key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}
