package main

import (
	"context"

	"github.com/Eyevinn/render-pipeline/internal/probe"
	"github.com/urfave/cli/v3"
)

func probeCmd() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     "Count the pictures of a rendered TS or MP4 file",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			file := cmd.Args().First()
			if file == "" {
				return cli.Exit("probe needs a file", 1)
			}
			rep, err := probe.Inspect(ctx, file)
			if err != nil {
				return err
			}
			return printJSON(rep)
		},
	}
}
