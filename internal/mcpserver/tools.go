package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/seerlab/seer/internal/output"
	"github.com/seerlab/seer/internal/scanner"
	"github.com/seerlab/seer/internal/service/analysis"
	"github.com/seerlab/seer/pkg/config"
	"github.com/seerlab/seer/pkg/models"
)

// tokenBudget caps the size of one tool result. Larger results tell the
// caller to narrow the paths instead of flooding the context window.
const tokenBudget = 25000

// AnalyzeInput is the shared input for all analyze tools.
type AnalyzeInput struct {
	Paths    []string `json:"paths,omitempty" jsonschema:"Paths to analyze. Defaults to the current directory."`
	Format   string   `json:"format,omitempty" jsonschema:"Output format: toon (default) or json."`
	Function string   `json:"function,omitempty" jsonschema:"Restrict analysis to functions with this name."`
}

// FlowInput adds flow-specific options.
type FlowInput struct {
	AnalyzeInput
	IncludeDataFlow bool `json:"include_data_flow,omitempty" jsonschema:"Trace variable def-use movement between blocks."`
	DetectHotspots  bool `json:"detect_hotspots,omitempty" jsonschema:"Score blocks by git churn and complexity. Needs a git repository."`
}

func analyzeReport(ctx context.Context, input AnalyzeInput, dataFlow, hotspots bool) (*models.FlowProjectReport, error) {
	paths := input.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	cfg := config.LoadOrDefault()
	scn := scanner.New(cfg)

	var files []string
	for _, path := range paths {
		if ok, err := scn.ScanFile(path); err == nil && ok {
			files = append(files, path)
			continue
		}
		found, err := scn.ScanDir(path)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no source files found under %v", paths)
	}

	svc := analysis.New(analysis.WithConfig(cfg))
	return svc.AnalyzeProject(ctx, files, analysis.ProjectOptions{
		Root:            paths[0],
		Function:        input.Function,
		IncludeDataFlow: dataFlow,
		DetectHotspots:  hotspots,
	})
}

func renderResult(data any, format string) (*mcp.CallToolResult, any, error) {
	var text string
	switch format {
	case "json":
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, nil, err
		}
		text = string(out)
	default:
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return nil, nil, err
		}
		text = string(out)
	}

	if tokens := output.EstimateTokens(text); tokens > tokenBudget {
		return toolError(fmt.Sprintf(
			"result is ~%s tokens, over the %s budget; narrow the paths or set a function filter",
			output.FormatTokenCount(tokens), output.FormatTokenCount(tokenBudget),
		))
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func handleAnalyzeFlow(ctx context.Context, req *mcp.CallToolRequest, input FlowInput) (*mcp.CallToolResult, any, error) {
	report, err := analyzeReport(ctx, input.AnalyzeInput, input.IncludeDataFlow, input.DetectHotspots)
	if err != nil {
		return toolError(err.Error())
	}
	return renderResult(report, input.Format)
}

func handleAnalyzeDeadcode(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	report, err := analyzeReport(ctx, input, false, false)
	if err != nil {
		return toolError(err.Error())
	}
	return renderResult(output.DeadCodeReport(report).RenderData(), input.Format)
}

func handleAnalyzeHotpaths(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	report, err := analyzeReport(ctx, input, false, false)
	if err != nil {
		return toolError(err.Error())
	}
	return renderResult(output.HotPathsReport(report).RenderData(), input.Format)
}

func handleAnalyzeCalls(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	report, err := analyzeReport(ctx, input, false, false)
	if err != nil {
		return toolError(err.Error())
	}
	return renderResult(output.CallsReport(report).RenderData(), input.Format)
}
