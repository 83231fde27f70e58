package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Eyevinn/render-pipeline/internal"
	"github.com/Eyevinn/render-pipeline/internal/config"
	"github.com/Eyevinn/render-pipeline/internal/logging"
	"github.com/urfave/cli/v3"
)

var (
	configPath string
	indent     bool
)

func main() {
	logger := logging.New("render-worker")
	app := &cli.Command{
		Name:    "render-worker",
		Usage:   "Render, stitch and probe Blender scenes inside the batch container",
		Version: internal.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "TOML or YAML configuration file (environment only when empty)",
				Sources:     cli.EnvVars("RENDER_CONFIG"),
				Destination: &configPath,
			},
			&cli.BoolFlag{Name: "indent", Usage: "indent JSON output", Destination: &indent},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			renderCmd(),
			stitchCmd(),
			probeCmd(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := app.Run(logger.WithContext(ctx), os.Args); err != nil {
		logger.Error().Err(err).Msg("render-worker failed")
		stop()
		os.Exit(internal.ExitCode(err))
	}
}

func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.FromEnv()
	}
	return config.Load(configPath)
}

func printJSON(data any) error {
	jp := &internal.JsonPrinter{W: os.Stdout, Indent: indent}
	jp.Print(data, true)
	if err := jp.Error(); err != nil {
		return fmt.Errorf("print result: %w", err)
	}
	return nil
}
