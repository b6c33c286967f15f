package output

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/seerlab/seer/pkg/models"
)

// FlowReport renders a project flow report as summary plus per-file tables.
func FlowReport(report *models.FlowProjectReport, colored bool) *Report {
	summary := &Section{
		Title: "Summary",
		Content: fmt.Sprintf(
			"files: %d  functions: %d  blocks: %d  dead lines: %d  avg cyclomatic: %.1f  max cyclomatic: %d",
			report.Summary.TotalFiles,
			report.Summary.TotalFunctions,
			report.Summary.TotalBlocks,
			report.Summary.TotalDeadLines,
			report.Summary.AvgCyclomatic,
			report.Summary.MaxCyclomatic,
		),
		Data: report.Summary,
	}

	sections := []Renderable{summary}
	for i := range report.Files {
		sections = append(sections, fileTable(&report.Files[i], colored))
	}

	return &Report{
		Title:    "Control Flow Analysis",
		Sections: sections,
		Data:     report,
	}
}

func fileTable(file *models.FileFlowReport, colored bool) *Table {
	rows := make([][]string, 0, len(file.Functions))
	for _, fn := range file.Functions {
		cyclomatic := fn.Statistics.CyclomaticComplexity
		cycCell := strconv.Itoa(cyclomatic)
		if colored {
			cycCell = ComplexityColor(cyclomatic, cycCell)
		}

		status := ""
		if fn.TimedOut {
			status = "timed out"
		}
		rows = append(rows, []string{
			fn.Symbol.Name,
			fmt.Sprintf("%d-%d", fn.Symbol.Line, fn.Symbol.EndLine),
			strconv.Itoa(fn.Statistics.TotalBlocks),
			cycCell,
			strconv.Itoa(fn.Statistics.MaxNestingDepth),
			strconv.Itoa(len(fn.DeadCode)),
			status,
		})
	}

	return NewTable(
		file.Path,
		[]string{"Function", "Lines", "Blocks", "Cyclomatic", "Nesting", "Dead", "Status"},
		rows,
		nil,
		file,
	)
}

// DeadCodeEntry is one unreachable region for reporting.
type DeadCodeEntry struct {
	Path     string   `json:"path"`
	Function string   `json:"function"`
	Lines    []uint32 `json:"lines"`
}

// DeadCodeReport collects unreachable lines across a project report.
func DeadCodeReport(report *models.FlowProjectReport) *Table {
	var entries []DeadCodeEntry
	for _, file := range report.Files {
		for _, fn := range file.Functions {
			if len(fn.DeadCode) == 0 {
				continue
			}
			entries = append(entries, DeadCodeEntry{
				Path:     file.Path,
				Function: fn.Symbol.Name,
				Lines:    fn.DeadCode,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Path != entries[j].Path {
			return entries[i].Path < entries[j].Path
		}
		return entries[i].Function < entries[j].Function
	})

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Path, e.Function, joinLines(e.Lines)})
	}
	return NewTable(
		"Unreachable Code",
		[]string{"File", "Function", "Lines"},
		rows,
		nil,
		entries,
	)
}

// HotPathEntry is one ranked path for reporting.
type HotPathEntry struct {
	Path     string   `json:"path"`
	Function string   `json:"function"`
	Rank     int      `json:"rank"`
	Blocks   []string `json:"blocks"`
}

// HotPathsReport lists the ranked hot paths of every analyzed function.
func HotPathsReport(report *models.FlowProjectReport) *Table {
	var entries []HotPathEntry
	for _, file := range report.Files {
		for _, fn := range file.Functions {
			for rank, path := range fn.HotPaths {
				entries = append(entries, HotPathEntry{
					Path:     file.Path,
					Function: fn.Symbol.Name,
					Rank:     rank + 1,
					Blocks:   path,
				})
			}
		}
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Path,
			e.Function,
			strconv.Itoa(e.Rank),
			strings.Join(e.Blocks, " -> "),
		})
	}
	return NewTable(
		"Hot Paths",
		[]string{"File", "Function", "Rank", "Blocks"},
		rows,
		nil,
		entries,
	)
}

// CallsReport lists the function calls discovered across a project report.
func CallsReport(report *models.FlowProjectReport) *Table {
	var rows [][]string
	var data []models.FunctionCall
	for _, file := range report.Files {
		for _, fn := range file.Functions {
			for _, call := range fn.Calls {
				flags := callFlags(call)
				rows = append(rows, []string{
					file.Path,
					call.CallerName,
					call.TargetFunction,
					strconv.Itoa(int(call.LineNumber)),
					string(call.CallType),
					flags,
				})
				data = append(data, call)
			}
		}
	}
	return NewTable(
		"Function Calls",
		[]string{"File", "Caller", "Target", "Line", "Type", "Context"},
		rows,
		nil,
		data,
	)
}

func callFlags(call models.FunctionCall) string {
	var flags []string
	if call.IsConditional {
		flags = append(flags, "conditional")
	}
	if call.IsInLoop {
		flags = append(flags, "loop")
	}
	if call.IsInTryCatch {
		flags = append(flags, "try")
	}
	return strings.Join(flags, ",")
}

func joinLines(lines []uint32) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = strconv.FormatUint(uint64(l), 10)
	}
	return strings.Join(parts, ", ")
}
