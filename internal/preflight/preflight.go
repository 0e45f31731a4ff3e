package preflight

import (
	"context"
	"path/filepath"

	"plutoiptv/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Output.Dir),
	}
	if cacheDir := filepath.Dir(cfg.Cache.Path); cacheDir != filepath.Clean(cfg.Output.Dir) {
		results = append(results, CheckDirectoryAccess("Cache directory", cacheDir))
	}
	if cfg.Logging.Dir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Logging.Dir))
	}
	if cfg.Categories.TablePath != "" {
		results = append(results, CheckCategoryTable(cfg.Categories.TablePath))
	}
	results = append(results, CheckFeed(ctx, cfg))
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
