package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JonMunkholm/vscan/internal/dataset"
	"github.com/JonMunkholm/vscan/internal/logging"
	"github.com/JonMunkholm/vscan/internal/runlog"
	"github.com/JonMunkholm/vscan/internal/schema"
	"github.com/JonMunkholm/vscan/internal/summary"
)

// LookupOptions are the switches of a single-entity lookup.
type LookupOptions struct {
	Encrypt          bool
	IncludeIntervals bool
}

// LookupResult describes a finished lookup.
type LookupResult struct {
	RunID    string                `json:"run_id"`
	Summary  summary.EntitySummary `json:"-"`
	Artifact Artifact              `json:"artifact"`
	Entry    runlog.Entry          `json:"-"`
}

// LookupEntity summarizes one card or cashier over the whole dataset and
// writes its workbook. An identifier that matches nothing returns an error
// matching summary.ErrEntityNotFound.
func (s *Service) LookupEntity(ctx context.Context, ds *dataset.Dataset, role schema.Role, id string, opts LookupOptions) (*LookupResult, error) {
	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		defer s.limiter.Release()
	}

	runID := uuid.New().String()
	logger := logging.WithFields(ctx, "run_id", runID, "input", ds.Name, "role", role, "id", id)

	m := ds.Mapping()
	ent, err := summary.Lookup(ds.Records(m), m, role, id, opts.IncludeIntervals)
	if err != nil {
		logger.Warn("lookup failed", "error", err)
		return nil, err
	}

	dir := s.RunDir(runID)
	path, err := s.assembler.In(dir).WriteEntity(ds, m, ent)
	if err != nil {
		s.removeRunDir(dir, logger)
		return nil, fmt.Errorf("lookup %s %s: %w", role, id, err)
	}

	fin, err := s.pipeline.Finalize(path, opts.Encrypt, runlog.Entry{
		RunID: runID,
		Input: ds.Name,
		Options: []runlog.Option{
			{Key: "Lookup", Value: fmt.Sprintf("%s=%s", role, ent.Summary.ID)},
			{Key: "Intervals", Value: fmt.Sprint(opts.IncludeIntervals)},
			{Key: "Schema", Value: m.Variant()},
		},
	})
	if err != nil && fin == nil {
		s.removeRunDir(dir, logger)
		return nil, err
	}

	out := &LookupResult{
		RunID:   runID,
		Summary: ent.Summary,
		Artifact: Artifact{
			Label:    ent.Summary.Period,
			Path:     fin.Path,
			Rows:     ent.Summary.Count,
			Password: fin.Password,
			Backend:  fin.Backend,
		},
		Entry: fin.Entry,
	}
	logger.Info("entity report written", "path", fin.Path, "transactions", ent.Summary.Count)
	return out, err
}
