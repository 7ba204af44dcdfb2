// SPDX-License-Identifier: MPL-2.0

package analyzer

import (
	"context"
	"io"
	"maps"

	"github.com/charmbracelet/log"

	"github.com/scanbridge/scanbridge/internal/classpath"
	"github.com/scanbridge/scanbridge/internal/config"
	"github.com/scanbridge/scanbridge/internal/engine"
	"github.com/scanbridge/scanbridge/internal/model"
	"github.com/scanbridge/scanbridge/internal/props"
	"github.com/scanbridge/scanbridge/internal/reducer"
	"github.com/scanbridge/scanbridge/internal/snapshot"
	"github.com/scanbridge/scanbridge/internal/sourceset"
	"github.com/scanbridge/scanbridge/internal/walker"
)

type (
	// Request captures the inputs of one analysis.
	Request struct {
		// SnapshotPath is the project snapshot file.
		SnapshotPath string
		// Config is the loaded application configuration. Nil means
		// config.DefaultConfig().
		Config *config.Config
		// Defines are --define overrides. They win over Config.Properties.
		Defines map[string]string
		// Workers overrides Config.Workers when positive.
		Workers int
	}

	// Report is everything the pipeline produced. Fields are filled up to
	// the last stage that ran.
	Report struct {
		Snapshot   *snapshot.Snapshot
		Tree       *model.Tree
		Resolution *walker.Result
		Plan       *props.Plan
		Properties props.Map
		// ScanAll reports whether extra files were collected for the root.
		ScanAll     bool
		Engine      engine.Result
		Diagnostics []model.Diagnostic
	}

	// Service runs the pipeline.
	Service struct {
		logger *log.Logger
	}
)

// New creates a Service. A nil logger discards log output.
func New(logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{logger: logger}
}

// Tree loads the snapshot and builds the module tree.
func (s *Service) Tree(_ context.Context, req Request) (*Report, error) {
	cfg := req.config()

	snap, err := snapshot.Load(req.SnapshotPath)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("loaded project snapshot", "path", req.SnapshotPath, "projects", len(snap.Projects))

	tree, err := walker.Build(snap, cfg.Skip)
	if err != nil {
		return nil, err
	}
	return &Report{Snapshot: snap, Tree: tree}, nil
}

// Properties runs the pipeline up to and including materialization.
func (s *Service) Properties(ctx context.Context, req Request) (*Report, error) {
	r, err := s.Tree(ctx, req)
	if err != nil {
		return nil, err
	}
	cfg := req.config()

	workers := cfg.Workers
	if req.Workers > 0 {
		workers = req.Workers
	}
	r.Resolution, err = walker.Resolve(ctx, r.Tree, walker.Options{
		Workers: workers,
		Sources: sourceset.Options{AndroidVariant: cfg.AndroidVariant},
		Logger:  s.logger,
	})
	if err != nil {
		return nil, err
	}
	r.Diagnostics = append(r.Diagnostics, r.Resolution.Diagnostics()...)

	opts := reducer.Options{Overrides: req.overrides()}
	reduced, err := reducer.Reduce(r.Tree, r.Resolution, opts)
	if err != nil {
		return nil, err
	}

	if cfg.ScanAll || reduced.Plan.Literals().Bool(props.ScanAll) {
		extra, diags, err := scanAll(r.Tree, r.Resolution, reduced.Plan, cfg.Exclusions)
		if err != nil {
			return nil, err
		}
		r.ScanAll = true
		r.Diagnostics = append(r.Diagnostics, diags...)
		s.logger.Debug("scan-all collected files", "count", len(extra))
		if len(extra) > 0 {
			opts.ExtraSources = extra
			if reduced, err = reducer.Reduce(r.Tree, r.Resolution, opts); err != nil {
				return nil, err
			}
		}
	}
	r.Plan = reduced.Plan
	r.Diagnostics = append(r.Diagnostics, reduced.Diagnostics...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := classpath.NewMaterializer(r.Snapshot, r.Resolution.Outputs(r.Tree))
	r.Properties, err = m.Materialize(r.Plan)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("materialized properties", "keys", len(r.Properties))
	return r, nil
}

// Analyze runs the whole pipeline and invokes eng. Any error before the
// engine prevents the invocation.
func (s *Service) Analyze(ctx context.Context, req Request, eng engine.Engine) (*Report, error) {
	r, err := s.Properties(ctx, req)
	if err != nil {
		return nil, err
	}
	r.Engine, err = engine.Invoke(ctx, eng, r.Properties)
	if err != nil {
		return nil, err
	}
	r.Diagnostics = append(r.Diagnostics, r.Engine.Diagnostics...)
	if !r.Engine.Skipped {
		s.logger.Info("analysis engine finished", "exit_code", r.Engine.ExitCode)
	}
	return r, nil
}

func (req Request) config() *config.Config {
	if req.Config == nil {
		return config.DefaultConfig()
	}
	return req.Config
}

func (req Request) overrides() map[string]string {
	out := make(map[string]string)
	maps.Copy(out, req.config().Properties)
	maps.Copy(out, req.Defines)
	return out
}
