// Package analysis orchestrates batch flow analysis: scan results in,
// project report out. One function's failure is recorded on its file
// report and never aborts the batch.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/seerlab/seer/internal/analyzer"
	"github.com/seerlab/seer/internal/cache"
	"github.com/seerlab/seer/internal/fileproc"
	"github.com/seerlab/seer/internal/flow"
	"github.com/seerlab/seer/internal/store"
	"github.com/seerlab/seer/internal/vcs"
	"github.com/seerlab/seer/pkg/config"
	"github.com/seerlab/seer/pkg/models"
	"github.com/seerlab/seer/pkg/parser"
)

// cacheVersion invalidates cached reports when the analysis shape changes.
const cacheVersion = "flow-v1"

// Service runs flow analysis over file batches.
type Service struct {
	config *config.Config
	cache  *cache.Cache
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithCache sets the analysis cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// New creates an analysis service. Without options it loads config from
// the standard locations and runs without a cache.
func New(opts ...Option) *Service {
	s := &Service{config: config.LoadOrDefault()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProjectOptions configures one batch run.
type ProjectOptions struct {
	// Root anchors churn lookups and defaults to ".".
	Root string
	// Function restricts analysis to symbols with this name.
	Function string
	// IncludeDataFlow and DetectHotspots enable the optional analyzers.
	IncludeDataFlow bool
	DetectHotspots  bool
	// NoCache bypasses the cache for this run.
	NoCache bool
	// OnProgress is called once per file.
	OnProgress func()
}

// AnalyzeProject analyzes every function in files and aggregates the
// results into a project report.
func (s *Service) AnalyzeProject(ctx context.Context, files []string, opts ProjectOptions) (*models.FlowProjectReport, error) {
	engine, closeEngine, err := s.buildEngine(opts)
	if err != nil {
		return nil, err
	}
	defer closeEngine()

	blocks := s.blockStore()
	flowOpts := s.flowOptions(opts)

	reports, failures := fileproc.Map(ctx, files, s.config.Workers, func(psr *parser.Parser, path string) (models.FileFlowReport, error) {
		return s.analyzeFile(ctx, psr, engine, blocks, path, flowOpts, opts)
	}, opts.OnProgress)

	// Files that failed to parse or read still show up in the report,
	// carrying the error instead of silently dropping out.
	if failures != nil {
		for _, fe := range failures.All() {
			reports = append(reports, models.FileFlowReport{
				Path:   fe.Path,
				Errors: []string{fe.Err.Error()},
			})
		}
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Path < reports[j].Path })

	report := &models.FlowProjectReport{
		GeneratedAt: time.Now(),
		Files:       reports,
	}
	report.CalculateSummary()
	return report, nil
}

// analyzeFile parses one file and runs the engine over each function.
func (s *Service) analyzeFile(ctx context.Context, psr *parser.Parser, engine *flow.Engine, blocks flow.BlockStore, path string, flowOpts flow.Options, opts ProjectOptions) (models.FileFlowReport, error) {
	report := models.FileFlowReport{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return report, err
	}

	lang := parser.DetectLanguage(path)
	report.Language = string(lang)

	contentHash := cache.HashBytes(data)
	cacheKey := cache.Key(cacheVersion, path, opts.Function, fmt.Sprint(opts.IncludeDataFlow, opts.DetectHotspots))
	if s.cache != nil && !opts.NoCache {
		if payload, ok := s.cache.Get(cacheKey, contentHash); ok {
			var cached models.FileFlowReport
			if err := json.Unmarshal(payload, &cached); err == nil {
				return cached, nil
			}
		}
	}

	result, err := psr.Parse(data, lang, path)
	if err != nil {
		return report, fmt.Errorf("parse %s: %w", path, err)
	}

	content := string(data)
	for _, fn := range parser.GetFunctions(result) {
		if opts.Function != "" && fn.Name != opts.Function {
			continue
		}

		sym := models.SymbolInfo{
			ID:       fmt.Sprintf("%s:%s:%d", path, fn.Name, fn.StartLine),
			Name:     fn.Name,
			Line:     fn.StartLine,
			EndLine:  fn.EndLine,
			Kind:     "function",
			Language: string(lang),
			File:     path,
			Content:  content,
		}

		analysis, err := engine.AnalyzeSymbolData(ctx, sym, fn.Body, content, flowOpts)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", fn.Name, err))
			continue
		}
		if blocks != nil {
			if err := blocks.ReplaceBlocks(ctx, sym.ID, analysis.Blocks); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: store: %v", fn.Name, err))
			}
		}
		report.Functions = append(report.Functions, *analysis)
	}

	if s.cache != nil && !opts.NoCache {
		if payload, err := json.Marshal(report); err == nil {
			_ = s.cache.Put(cacheKey, contentHash, payload)
		}
	}
	return report, nil
}

// buildEngine assembles the flow engine with the configured analyzers.
// The returned closer releases the metrics analyzer's parser.
func (s *Service) buildEngine(opts ProjectOptions) (*flow.Engine, func(), error) {
	metrics := analyzer.NewMetrics()
	engineOpts := []flow.EngineOption{
		flow.WithMetricsAnalyzer(metrics),
		flow.WithDataFlowAnalyzer(analyzer.NewDataFlows()),
	}

	if opts.DetectHotspots || s.config.Engine.DetectHotspots {
		root := opts.Root
		if root == "" {
			root = "."
		}
		churn := vcs.NewChurn(root, vcs.WithDays(s.config.Churn.Days))
		engineOpts = append(engineOpts, flow.WithHotspotAnalyzer(analyzer.NewHotspots(churn)))
	}

	if dir := s.config.Patterns.Dir; dir != "" {
		sets, err := flow.LoadLanguageDefinitions(dir)
		if err != nil {
			metrics.Close()
			return nil, nil, fmt.Errorf("load language definitions: %w", err)
		}
		if len(sets) > 0 {
			engineOpts = append(engineOpts, flow.WithPatternSets(sets))
		}
	}

	return flow.NewEngine(engineOpts...), metrics.Close, nil
}

func (s *Service) blockStore() flow.BlockStore {
	if s.config.Engine.StorePath == "" {
		return nil
	}
	return store.NewFile(s.config.Engine.StorePath)
}

func (s *Service) flowOptions(opts ProjectOptions) flow.Options {
	var timeoutMs *int64
	if timeout := s.config.Engine.TimeoutMs; timeout > 0 {
		timeoutMs = &timeout
	}
	return flow.Options{
		IncludeDataFlow:    opts.IncludeDataFlow || s.config.Engine.IncludeDataFlow,
		DetectHotspots:     opts.DetectHotspots || s.config.Engine.DetectHotspots,
		PerformanceMetrics: s.config.Engine.PerformanceMetrics,
		MaxDepth:           s.config.Engine.MaxDepth,
		CallGraphDepth:     s.config.Engine.CallGraphDepth,
		TimeoutMs:          timeoutMs,
	}
}
