package core

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/JonMunkholm/vscan/internal/crypt"
	"github.com/JonMunkholm/vscan/internal/report"
	"github.com/JonMunkholm/vscan/internal/runlog"
	"github.com/JonMunkholm/vscan/internal/summary"
)

// Defaults for report runs.
const (
	DefaultTopN      = 20
	DefaultOutputDir = "TopTransactionsPerMonth"
)

// RunTimeout bounds a single report run started through the HTTP API.
var RunTimeout = 10 * time.Minute

// Options are the per-run switches.
type Options struct {
	// TopNCards and TopNCashiers bound each summary table. Zero or less
	// leaves the dimension out of the reports.
	TopNCards    int
	TopNCashiers int

	Encrypt          bool
	SeparateCards    bool
	IncludeIntervals bool

	Period summary.Mode
}

// DefaultOptions returns the options of an unconfigured run.
func DefaultOptions() Options {
	return Options{
		TopNCards:    DefaultTopN,
		TopNCashiers: DefaultTopN,
		Period:       summary.Monthly,
	}
}

// logOptions renders the options for a run log line.
func (o Options) logOptions(variant string) []runlog.Option {
	topN := func(n int) string {
		if n <= 0 {
			return "off"
		}
		return strconv.Itoa(n)
	}
	period := o.Period
	if period == "" {
		period = summary.Monthly
	}
	return []runlog.Option{
		{Key: "TopCards", Value: topN(o.TopNCards)},
		{Key: "TopCashiers", Value: topN(o.TopNCashiers)},
		{Key: "SeparateCards", Value: strconv.FormatBool(o.SeparateCards)},
		{Key: "Intervals", Value: strconv.FormatBool(o.IncludeIntervals)},
		{Key: "Period", Value: string(period)},
		{Key: "Schema", Value: variant},
	}
}

// Settings configure a Service.
type Settings struct {
	OutputDir   string
	SplitPrefix string

	// FlatOutput writes artifacts straight into OutputDir instead of one
	// subdirectory per run. Runs sharing a period label then overwrite each
	// other, so it is only for callers that never overlap runs.
	FlatOutput bool

	// Workers is the number of buckets processed in parallel.
	Workers int

	PasswordLength int
	Backends       []string
	ScryptN        int

	RunLogPath     string
	RecordPassword bool
}

// Service runs reports. It is safe for concurrent use.
type Service struct {
	assembler *report.Assembler
	pipeline  *crypt.Pipeline
	runlog    *runlog.Writer
	workers   int
	flat      bool
	limiter   *RunLimiter
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the report assembler, encryption pipeline and run log.
// limiter may be nil for single-run callers such as the CLI.
func NewService(s Settings, limiter *RunLimiter, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if s.OutputDir == "" {
		s.OutputDir = DefaultOutputDir
	}

	backends, err := crypt.NewBackends(s.Backends, s.ScryptN)
	if err != nil {
		return nil, fmt.Errorf("configure encryption: %w", err)
	}

	var log *runlog.Writer
	var appender crypt.Appender
	if s.RunLogPath != "" {
		log = runlog.NewWriter(s.RunLogPath, s.RecordPassword)
		appender = log
	}

	return &Service{
		assembler: report.NewAssembler(s.OutputDir, s.SplitPrefix, logger),
		pipeline:  crypt.NewPipeline(backends, s.PasswordLength, appender, logger),
		runlog:    log,
		workers:   max(s.Workers, 1),
		flat:      s.FlatOutput,
		limiter:   limiter,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// OutputDir returns the root directory artifacts are written under.
func (s *Service) OutputDir() string {
	return s.assembler.Dir
}

// RunDir returns the directory holding the artifacts of run runID.
func (s *Service) RunDir(runID string) string {
	if s.flat {
		return s.assembler.Dir
	}
	return filepath.Join(s.assembler.Dir, runID)
}

// removeRunDir drops a run directory left empty by a failed run.
func (s *Service) removeRunDir(dir string, logger *slog.Logger) {
	if s.flat {
		return
	}
	// os.Remove refuses non-empty directories, so finished artifacts stay.
	if err := os.Remove(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Debug("run directory kept", "dir", dir, "error", err)
	}
}

// RunLogPath returns the run log location, or "" when runs are not logged.
func (s *Service) RunLogPath() string {
	if s.runlog == nil {
		return ""
	}
	return s.runlog.Path()
}

// Limiter returns the run limiter, or nil.
func (s *Service) Limiter() *RunLimiter {
	return s.limiter
}
