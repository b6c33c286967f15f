package main

import (
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/seerlab/seer/internal/output"
)

func deadcodeCmd() *cli.Command {
	return &cli.Command{
		Name:      "deadcode",
		Aliases:   []string{"dc"},
		Usage:     "Find unreachable lines inside function bodies",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "function",
				Usage: "Restrict analysis to functions with this name",
			},
		},
		Action: runDeadcodeCmd,
	}
}

func runDeadcodeCmd(c *cli.Context) error {
	report, cfg, err := runFlowAnalysis(c, "Detecting dead code...", false, false)
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

	return formatter.Output(output.DeadCodeReport(report))
}
