package main

import (
	"context"
	"os"

	"github.com/Eyevinn/render-pipeline/internal/worker"
	"github.com/urfave/cli/v3"
)

func renderCmd() *cli.Command {
	var (
		input        string
		output       string
		framesPerJob int
		index        int
	)

	return &cli.Command{
		Name:  "render",
		Usage: "Render the frame slice of one array job and encode it into a chunk",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "scene file, relative to the mount path",
				Destination: &input,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "s3 uri of the deliverable, its key names the job",
				Destination: &output,
			},
			&cli.IntFlag{
				Name:        "frames-per-job",
				Aliases:     []string{"f"},
				Usage:       "frames rendered by each array job (0 uses the configuration)",
				Destination: &framesPerJob,
			},
			&cli.IntFlag{
				Name:        "index",
				Usage:       "array index (-1 reads " + worker.EnvArrayIndex + ")",
				Value:       -1,
				Destination: &index,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if index < 0 {
				index, err = worker.ArrayIndex(os.LookupEnv)
				if err != nil {
					return err
				}
			}
			w := worker.New(cfg, worker.ExecRunner{}, nil)
			m, err := w.Render(ctx, worker.RenderRequest{Scene: input, FramesPerJob: framesPerJob, Index: index, Output: output})
			if err != nil {
				return err
			}
			return printJSON(m)
		},
	}
}
