package preflight

import (
	"context"

	"hopper/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Watch directory (always checked)
	results = append(results, CheckDirectoryAccess("Watch directory", cfg.Paths.WatchDir))

	// Archive directory (only used in copy mode)
	if cfg.Processing.Mode == config.ProcessingModeCopy {
		results = append(results, CheckDirectoryAccess("Archive directory", cfg.Paths.ArchiveDir))
	}

	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	// Processing command
	if cfg.Processing.Mode == config.ProcessingModeCommand && len(cfg.Processing.Command) > 0 {
		results = append(results, CheckCommand("Processing command", cfg.Processing.Command[0]))
	}

	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
