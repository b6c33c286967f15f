package main

import (
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/seerlab/seer/internal/output"
)

func callsCmd() *cli.Command {
	return &cli.Command{
		Name:      "calls",
		Usage:     "List function calls with their surrounding control flow context",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "function",
				Usage: "Restrict analysis to functions with this name",
			},
		},
		Action: runCallsCmd,
	}
}

func runCallsCmd(c *cli.Context) error {
	report, cfg, err := runFlowAnalysis(c, "Collecting calls...", false, false)
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

	return formatter.Output(output.CallsReport(report))
}
