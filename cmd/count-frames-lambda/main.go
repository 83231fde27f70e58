package main

import (
	"github.com/Eyevinn/render-pipeline/internal/config"
	"github.com/Eyevinn/render-pipeline/internal/handlers"
	"github.com/Eyevinn/render-pipeline/internal/logging"
	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	logger := logging.New("count-frames")
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	h := handlers.New(cfg, nil, logger)
	lambda.Start(h.CountFrames)
}
