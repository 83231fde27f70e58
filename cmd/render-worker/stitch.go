package main

import (
	"context"

	"github.com/Eyevinn/render-pipeline/internal/fetch"
	"github.com/Eyevinn/render-pipeline/internal/worker"
	"github.com/urfave/cli/v3"
)

func stitchCmd() *cli.Command {
	var (
		input        string
		output       string
		jobName      string
		framesPerJob int
	)

	return &cli.Command{
		Name:  "stitch",
		Usage: "Concatenate the rendered chunks and upload the result",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "s3 uri of the uploaded scene, accepted for symmetry with render",
				Destination: &input,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "s3 uri of the deliverable, the extension follows the container",
				Destination: &output,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "job-name",
				Usage:       "job name (derived from --output when empty)",
				Destination: &jobName,
			},
			&cli.IntFlag{
				Name:        "frames-per-job",
				Aliases:     []string{"f"},
				Usage:       "accepted for symmetry with render",
				Destination: &framesPerJob,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := fetch.NewS3StoreFromEnv(ctx, cfg.Region)
			if err != nil {
				return err
			}
			w := worker.New(cfg, worker.ExecRunner{}, fetch.NewClient(store, cfg.MountPath))
			res, err := w.Stitch(ctx, worker.StitchRequest{Output: output, JobName: jobName})
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
}
