package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/vscan/internal/dataset"
	"github.com/JonMunkholm/vscan/internal/logging"
	"github.com/JonMunkholm/vscan/internal/report"
	"github.com/JonMunkholm/vscan/internal/runlog"
	"github.com/JonMunkholm/vscan/internal/schema"
	"github.com/JonMunkholm/vscan/internal/summary"
)

// Artifact is one finished report file.
type Artifact struct {
	Label    string `json:"label"`
	Path     string `json:"path"`
	Rows     int    `json:"rows"`
	Password string `json:"password,omitempty"`
	Backend  string `json:"backend,omitempty"`
}

// Result describes a finished run.
type Result struct {
	RunID   string   `json:"run_id"`
	Input   string   `json:"input"`
	Variant string   `json:"schema"`
	Missing []string `json:"missing_roles,omitempty"`

	// Dir holds the run's artifacts.
	Dir string `json:"-"`

	// Artifacts are in period order.
	Artifacts []Artifact `json:"artifacts"`

	// LogEntries are the run log entries of Artifacts, index for index.
	// With several workers the run log itself may hold them in another order.
	LogEntries []runlog.Entry `json:"-"`

	// Skipped counts rows without a usable timestamp.
	Skipped int `json:"skipped_rows"`
}

// ProcessFile loads the dataset at path and processes it.
func (s *Service) ProcessFile(ctx context.Context, path string, opts Options) (*Result, error) {
	ds, err := dataset.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s.Process(ctx, ds, opts)
}

// Process partitions ds into period buckets and writes one report per bucket.
//
// Unless the service uses flat output, each run writes into its own
// directory under the output root (see RunDir), so concurrent runs covering
// the same period never touch each other's files.
//
// Buckets are independent: up to Workers of them are processed at once and
// each appends its own run log entry when its artifact is final. The first
// fatal error (a write failure or exhausted encryption) stops buckets that
// have not started yet and is returned; artifacts already finished stay on
// disk and are recorded in the run log.
func (s *Service) Process(ctx context.Context, ds *dataset.Dataset, opts Options) (*Result, error) {
	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		defer s.limiter.Release()
	}

	runID := uuid.New().String()
	logger := logging.WithFields(ctx, "run_id", runID, "input", ds.Name)

	m := ds.Mapping()
	res := &Result{RunID: runID, Input: ds.Name, Variant: m.Variant(), Dir: s.RunDir(runID)}
	for _, r := range m.Missing() {
		res.Missing = append(res.Missing, string(r))
	}
	logger.Info("run started", "rows", ds.Len(), "schema", m.Variant(), "mapping", m.String())

	var dims []summary.Dimension
	for _, d := range []summary.Dimension{
		{Role: schema.RoleCard, TopN: opts.TopNCards},
		{Role: schema.RoleCashier, TopN: opts.TopNCashiers},
	} {
		if d.TopN <= 0 {
			continue
		}
		if err := m.Require(d.Role); err != nil {
			logger.Warn("dimension unavailable, omitting summary", "role", d.Role, "error", err)
			continue
		}
		dims = append(dims, d)
	}
	if err := m.Require(schema.RoleTimestamp); err != nil {
		logger.Warn("no timestamp column, summaries disabled", "error", err)
	}

	buckets, skipped := summary.Partition(ds.Records(m), m, opts.Period, s.now())
	res.Skipped = skipped
	if skipped > 0 {
		logger.Warn("rows without a usable timestamp skipped", "count", skipped)
	}

	res.Artifacts = make([]Artifact, len(buckets))
	res.LogEntries = make([]runlog.Entry, len(buckets))
	asm := s.assembler.In(res.Dir)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, b := range buckets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			sum := summary.SummarizeBucket(b, m, dims, opts.IncludeIntervals)
			path, err := asm.Write(report.Input{
				Dataset:       ds,
				Summary:       sum,
				SeparateCards: opts.SeparateCards,
			})
			if err != nil {
				return fmt.Errorf("bucket %s: %w", b.Label, err)
			}

			fin, err := s.pipeline.Finalize(path, opts.Encrypt, runlog.Entry{
				RunID:   runID,
				Input:   ds.Name,
				Options: opts.logOptions(m.Variant()),
			})
			if fin != nil {
				res.Artifacts[i] = Artifact{
					Label:    b.Label,
					Path:     fin.Path,
					Rows:     len(b.Records),
					Password: fin.Password,
					Backend:  fin.Backend,
				}
				res.LogEntries[i] = fin.Entry
			}
			if err != nil {
				return fmt.Errorf("bucket %s: %w", b.Label, err)
			}

			logger.Info("report written", "period", b.Label, "path", fin.Path, "rows", len(b.Records))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("run failed", "error", err)
		s.removeRunDir(res.Dir, logger)
		return nil, err
	}

	logger.Info("run completed", "artifacts", len(res.Artifacts))
	return res, nil
}
