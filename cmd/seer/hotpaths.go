package main

import (
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/seerlab/seer/internal/output"
)

func hotpathsCmd() *cli.Command {
	return &cli.Command{
		Name:      "hotpaths",
		Aliases:   []string{"hp"},
		Usage:     "Rank the most complex execution paths through each function",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "function",
				Usage: "Restrict analysis to functions with this name",
			},
		},
		Action: runHotpathsCmd,
	}
}

func runHotpathsCmd(c *cli.Context) error {
	report, cfg, err := runFlowAnalysis(c, "Ranking hot paths...", false, false)
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

	return formatter.Output(output.HotPathsReport(report))
}
