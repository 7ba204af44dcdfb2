// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/scanbridge/scanbridge/internal/issue"
	"github.com/scanbridge/scanbridge/internal/props"
)

// DumpEngine writes the map instead of analyzing it. With an empty Path the
// map goes to Out.
type DumpEngine struct {
	Path   string
	Out    io.Writer
	Format props.Format
}

// Run writes the map and always reports success.
func (d *DumpEngine) Run(_ context.Context, m props.Map) (Result, error) {
	if d.Path == "" {
		if err := m.Encode(d.Out, d.Format); err != nil {
			return Result{}, issue.WrapWithOperation(err, "write properties")
		}
		return Result{}, nil
	}

	if err := writeFile(d.Path, m, d.Format); err != nil {
		return Result{}, err
	}
	return Result{PropertiesFile: d.Path}, nil
}

func writeFile(path string, m props.Map, f props.Format) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()
	if err := m.Encode(file, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
