// Package handlers holds the functions invoked by the render workflow:
// Prepare turns an upload event into the pipeline input, Fetch copies the
// uploaded scene to the shared filesystem and CountFrames sizes the render job array.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Eyevinn/render-pipeline/internal/blend"
	"github.com/Eyevinn/render-pipeline/internal/config"
	"github.com/Eyevinn/render-pipeline/internal/fetch"
	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
)

const objectCreated = "Object Created"

// Fetcher copies an input object onto the shared filesystem and returns the scene file name.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (string, error)
}

type Handler struct {
	Config  config.Config
	Fetcher Fetcher
	Logger  zerolog.Logger
}

func New(cfg config.Config, fetcher Fetcher, logger zerolog.Logger) *Handler {
	return &Handler{Config: cfg, Fetcher: fetcher, Logger: logger}
}

func (h *Handler) logger(ctx context.Context, handler, jobName string) (context.Context, *zerolog.Logger) {
	l := h.Logger.With().Str("handler", handler).Str("jobName", jobName).Logger()
	return l.WithContext(ctx), &l
}

// Prepare builds the pipeline input from an "Object Created" event of the input bucket.
func (h *Handler) Prepare(ctx context.Context, evt events.CloudWatchEvent) (PipelineInput, error) {
	if evt.DetailType != "" && evt.DetailType != objectCreated {
		return PipelineInput{}, fmt.Errorf("unexpected event type %q", evt.DetailType)
	}
	var detail ObjectCreated
	if err := json.Unmarshal(evt.Detail, &detail); err != nil {
		return PipelineInput{}, fmt.Errorf("decode event detail: %w", err)
	}
	in, err := NewPipelineInput(detail, h.Config)
	if err != nil {
		return PipelineInput{}, err
	}
	_, log := h.logger(ctx, "prepare", in.JobName)
	log.Info().Str("inputUri", in.InputURI).Str("outputUri", in.OutputURI).Msg("pipeline input ready")
	return in, nil
}

// NewPipelineInput derives the job name and the input and output URIs from the uploaded object.
func NewPipelineInput(d ObjectCreated, cfg config.Config) (PipelineInput, error) {
	if d.Bucket.Name == "" || d.Object.Key == "" {
		return PipelineInput{}, errors.New("event detail needs bucket name and object key")
	}
	if cfg.InputBucket != "" && cfg.InputBucket != d.Bucket.Name {
		return PipelineInput{}, fmt.Errorf("object in bucket %q, expected %q", d.Bucket.Name, cfg.InputBucket)
	}
	if cfg.OutputBucket == "" {
		return PipelineInput{}, errors.New("output bucket not configured")
	}
	in := fetch.Location{Bucket: d.Bucket.Name, Key: d.Object.Key}
	out := fetch.Location{Bucket: cfg.OutputBucket, Key: d.Object.Key}
	return PipelineInput{
		JobName:          fetch.JobName(d.Object.Key),
		InputURI:         in.String(),
		OutputURI:        out.String(),
		JobDefinitionArn: cfg.JobDefinitionArn,
		JobQueueArn:      cfg.JobQueueArn,
		FramesPerJob:     FramesPerJob(cfg.FramesPerJob),
	}, nil
}

// Fetch downloads the input object to the shared filesystem.
// The body of the response is the scene file name relative to the mount.
func (h *Handler) Fetch(ctx context.Context, req FetchRequest) (Response, error) {
	ctx, log := h.logger(ctx, "fetch", req.JobName)
	if req.InputURI == "" {
		return Response{}, errors.New("inputUri is required")
	}
	name, err := h.Fetcher.Fetch(ctx, req.InputURI)
	if err != nil {
		log.Error().Err(err).Str("inputUri", req.InputURI).Msg("fetch failed")
		return Response{}, err
	}
	log.Info().Str("blendFile", name).Msg("scene file ready")
	return ok(name), nil
}

// CountFrames reads the frame range of the scene file and sizes the render job array.
func (h *Handler) CountFrames(ctx context.Context, req CountFramesRequest) (Response, error) {
	_, log := h.logger(ctx, "count-frames", req.JobName)
	name := req.BlendFile.BlendFile
	if name == "" {
		return Response{}, errors.New("blend_file.blend_file is required")
	}
	path, err := fetch.Resolve(h.Config.MountPath, name)
	if err != nil {
		return Response{}, err
	}
	framesPerJob := int(req.FramesPerJob)
	if framesPerJob == 0 {
		framesPerJob = h.Config.FramesPerJob
	}

	frames, size, err := blend.Calculate(path, framesPerJob)
	if err != nil {
		log.Error().Err(err).Str("blendFile", path).Msg("count frames failed")
		return Response{}, err
	}
	log.Info().Str("blendFile", path).Int("frames", frames).Int("framesPerJob", framesPerJob).
		Int("arrayJobSize", size).Msg("job array sized")
	return ok(CountFramesBody{ArrayJobSize: size, FrameCount: frames}), nil
}
