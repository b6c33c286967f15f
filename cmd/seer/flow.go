package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/seerlab/seer/internal/output"
)

func flowCmd() *cli.Command {
	return &cli.Command{
		Name:      "flow",
		Aliases:   []string{"cfg"},
		Usage:     "Build control flow graphs and report per-function flow statistics",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "function",
				Usage: "Restrict analysis to functions with this name",
			},
			&cli.BoolFlag{
				Name:  "dataflow",
				Usage: "Trace variable definitions and uses between blocks",
			},
			&cli.BoolFlag{
				Name:  "hotspots",
				Usage: "Score blocks by git churn and complexity (requires a git repository)",
			},
		},
		Action: runFlowCmd,
	}
}

func runFlowCmd(c *cli.Context) error {
	report, cfg, err := runFlowAnalysis(c, "Analyzing control flow...", c.Bool("dataflow"), c.Bool("hotspots"))
	if err != nil {
		return err
	}
	if report == nil {
		color.Yellow("No source files found")
		return nil
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(output.FlowReport(report, formatter.Colored())); err != nil {
		return err
	}

	if c.Bool("verbose") && formatter.Format() == output.FormatText {
		if errs := fileErrors(report); len(errs) > 0 {
			fmt.Println()
			color.Yellow("Errors (%d):", len(errs))
			for _, e := range errs {
				fmt.Printf("  - %s\n", e)
			}
		}
	}

	return nil
}
