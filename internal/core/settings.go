package core

import (
	"github.com/JonMunkholm/vscan/internal/config"
	"github.com/JonMunkholm/vscan/internal/summary"
)

// SettingsFromConfig maps the loaded configuration onto service settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		OutputDir:      cfg.Report.OutputDir,
		SplitPrefix:    cfg.Report.CardSplitPrefix,
		Workers:        cfg.Report.Workers,
		PasswordLength: cfg.Crypto.PasswordLength,
		Backends:       cfg.Crypto.Backends,
		ScryptN:        cfg.Crypto.ScryptN,
		RunLogPath:     cfg.RunLog.Path,
		RecordPassword: cfg.RunLog.RecordPassword,
	}
}

// OptionsFromConfig returns the configured default run options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	period, err := summary.ParseMode(cfg.Report.Period)
	if err != nil {
		return Options{}, err
	}
	return Options{
		TopNCards:        cfg.Report.TopNCards,
		TopNCashiers:     cfg.Report.TopNCashiers,
		Encrypt:          cfg.Report.Encrypt,
		SeparateCards:    cfg.Report.SeparateCards,
		IncludeIntervals: cfg.Report.IncludeIntervals,
		Period:           period,
	}, nil
}
