package main

import (
	"context"

	"github.com/Eyevinn/render-pipeline/internal/config"
	"github.com/Eyevinn/render-pipeline/internal/fetch"
	"github.com/Eyevinn/render-pipeline/internal/handlers"
	"github.com/Eyevinn/render-pipeline/internal/logging"
	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	logger := logging.New("fetch")
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	store, err := fetch.NewS3StoreFromEnv(context.Background(), cfg.Region)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create object store")
	}
	h := handlers.New(cfg, fetch.NewClient(store, cfg.MountPath), logger)
	lambda.Start(h.Fetch)
}
