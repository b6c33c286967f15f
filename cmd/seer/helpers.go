package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/seerlab/seer/internal/cache"
	"github.com/seerlab/seer/internal/output"
	"github.com/seerlab/seer/internal/progress"
	"github.com/seerlab/seer/internal/scanner"
	"github.com/seerlab/seer/internal/service/analysis"
	"github.com/seerlab/seer/pkg/config"
	"github.com/seerlab/seer/pkg/models"
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(), nil
}

func outputFormat(c *cli.Context, cfg *config.Config) output.Format {
	if s := c.String("format"); s != "" {
		return output.ParseFormat(s)
	}
	return output.ParseFormat(cfg.Output.Format)
}

// collectFiles expands the given paths to supported source files, treating
// each path as a file first and a directory second.
func collectFiles(cfg *config.Config, paths []string) ([]string, error) {
	scn := scanner.New(cfg)

	var files []string
	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", path, err)
		}
		if ok, err := scn.ScanFile(absPath); err == nil && ok {
			files = append(files, absPath)
			continue
		}
		found, err := scn.ScanDir(absPath)
		if err != nil {
			return nil, fmt.Errorf("failed to scan directory %s: %w", path, err)
		}
		files = append(files, found...)
	}
	return files, nil
}

// runFlowAnalysis is the shared pipeline behind every analysis command:
// load config, scan paths, analyze with progress, return the report.
func runFlowAnalysis(c *cli.Context, label string, dataFlow, hotspots bool) (*models.FlowProjectReport, *config.Config, error) {
	paths := getPaths(c)

	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}

	files, err := collectFiles(cfg, paths)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, cfg, nil
	}

	opts := []analysis.Option{analysis.WithConfig(cfg)}
	if cfg.Cache.Enabled && !c.Bool("no-cache") {
		analysisCache, err := cache.Open(cfg.Cache.Dir, time.Duration(cfg.Cache.TTL)*time.Hour, true)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, analysis.WithCache(analysisCache))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracker := progress.NewTracker(label, len(files))
	svc := analysis.New(opts...)
	report, err := svc.AnalyzeProject(ctx, files, analysis.ProjectOptions{
		Root:            paths[0],
		Function:        c.String("function"),
		IncludeDataFlow: dataFlow,
		DetectHotspots:  hotspots,
		NoCache:         c.Bool("no-cache"),
		OnProgress:      tracker.Tick,
	})
	if err != nil {
		tracker.FinishError(err)
		return nil, nil, fmt.Errorf("analysis failed: %w", err)
	}
	tracker.FinishSuccess()

	return report, cfg, nil
}

func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	return output.NewFormatter(outputFormat(c, cfg), c.String("output"), cfg.Output.Color)
}

// fileErrors flattens per-file analysis errors for verbose output.
func fileErrors(report *models.FlowProjectReport) []string {
	var errs []string
	for _, f := range report.Files {
		for _, e := range f.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", f.Path, e))
		}
	}
	return errs
}
