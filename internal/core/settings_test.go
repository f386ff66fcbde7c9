package core

import (
	"testing"

	"github.com/JonMunkholm/vscan/internal/config"
	"github.com/JonMunkholm/vscan/internal/summary"
)

func TestSettingsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Report: config.ReportConfig{
			OutputDir:       "out",
			CardSplitPrefix: "4",
			Workers:         3,
			TopNCards:       5,
			TopNCashiers:    0,
			Encrypt:         true,
			Period:          "whole_range",
		},
		Crypto: config.CryptoConfig{PasswordLength: 20, Backends: []string{"zip"}, ScryptN: 1024},
		RunLog: config.RunLogConfig{Path: "run.txt", RecordPassword: false},
	}

	s := SettingsFromConfig(cfg)
	if s.OutputDir != "out" || s.SplitPrefix != "4" || s.Workers != 3 {
		t.Errorf("SettingsFromConfig() = %+v, want report fields copied", s)
	}
	if s.PasswordLength != 20 || len(s.Backends) != 1 || s.ScryptN != 1024 {
		t.Errorf("SettingsFromConfig() = %+v, want crypto fields copied", s)
	}
	if s.RunLogPath != "run.txt" || s.RecordPassword {
		t.Errorf("SettingsFromConfig() = %+v, want run log fields copied", s)
	}

	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("OptionsFromConfig() error = %v", err)
	}
	if opts.Period != summary.WholeRange {
		t.Errorf("Period = %q, want %q", opts.Period, summary.WholeRange)
	}
	if opts.TopNCards != 5 || opts.TopNCashiers != 0 || !opts.Encrypt {
		t.Errorf("OptionsFromConfig() = %+v", opts)
	}
}

func TestOptionsFromConfig_BadPeriod(t *testing.T) {
	cfg := &config.Config{Report: config.ReportConfig{Period: "weekly"}}
	if _, err := OptionsFromConfig(cfg); err == nil {
		t.Error("OptionsFromConfig() error = nil, want error")
	}
}
