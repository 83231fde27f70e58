// Package worker implements the render and stitch actions of the batch container.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Eyevinn/render-pipeline/internal/blend"
	"github.com/Eyevinn/render-pipeline/internal/config"
	"github.com/Eyevinn/render-pipeline/internal/fetch"
	"github.com/Eyevinn/render-pipeline/internal/probe"
	"github.com/rs/zerolog"
)

// EnvArrayIndex holds the index of the array element a batch job runs as.
const EnvArrayIndex = "AWS_BATCH_JOB_ARRAY_INDEX"

var ErrFrameMismatch = errors.New("worker: stitched picture count differs from frame count")

// Publisher uploads a local file to an object URI.
type Publisher interface {
	Publish(ctx context.Context, file, uri string) error
}

type ProbeFunc func(ctx context.Context, path string) (*probe.Report, error)

type Worker struct {
	Config    config.Config
	Runner    Runner
	Publisher Publisher
	Probe     ProbeFunc
}

func New(cfg config.Config, runner Runner, publisher Publisher) *Worker {
	return &Worker{Config: cfg, Runner: runner, Publisher: publisher, Probe: probe.Inspect}
}

// ArrayIndex reads the array element index, 0 when the job is not an array job.
func ArrayIndex(lookup func(string) (string, bool)) (int, error) {
	v, ok := lookup(EnvArrayIndex)
	if !ok || strings.TrimSpace(v) == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", EnvArrayIndex, v)
	}
	return n, nil
}

// JobDir is the working directory of a job on the shared filesystem.
func (w *Worker) JobDir(jobName string) string {
	return filepath.Join(w.Config.MountPath, "renders", jobName)
}

func (w *Worker) chunkDir(jobName string) string {
	return filepath.Join(w.JobDir(jobName), "chunks")
}

type RenderRequest struct {
	// Scene is the scene file, relative to the mount unless absolute.
	Scene        string
	FramesPerJob int
	Index        int
	// Output is the object URI of the deliverable; its key names the job.
	// Without it the job is named after the scene file.
	Output  string
	JobName string
}

// Render renders the frame slice of one array element and encodes it into a chunk.
func (w *Worker) Render(ctx context.Context, req RenderRequest) (Manifest, error) {
	log := zerolog.Ctx(ctx)
	scene, err := w.scenePath(req.Scene)
	if err != nil {
		return Manifest{}, err
	}
	jobName, err := jobNameFor(req.JobName, req.Output, scene)
	if err != nil {
		return Manifest{}, err
	}
	framesPerJob := req.FramesPerJob
	if framesPerJob == 0 {
		framesPerJob = w.Config.FramesPerJob
	}

	scenes, err := blend.OpenScenes(scene)
	if err != nil {
		return Manifest{}, err
	}
	if len(scenes) == 0 {
		return Manifest{}, fmt.Errorf("%s: %w", scene, blend.ErrNoScenes)
	}
	sceneFrames := scenes[0].Frames()
	arraySize, err := blend.JobArraySize(sceneFrames, framesPerJob)
	if err != nil {
		return Manifest{}, err
	}
	slice, err := blend.SliceFor(scenes[0], framesPerJob, req.Index)
	if err != nil {
		return Manifest{}, err
	}
	log.Info().Str("jobName", jobName).Int("index", slice.Index).Int("start", slice.Start).
		Int("end", slice.End).Msg("rendering slice")

	framesDir := filepath.Join(w.JobDir(jobName), "frames", fmt.Sprintf("%05d", slice.Index))
	chunks := w.chunkDir(jobName)
	for _, dir := range []string{framesDir, chunks} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Manifest{}, err
		}
	}

	if err := w.Runner.Run(ctx, w.Config.Blender, w.blenderArgs(scene, framesDir, slice)...); err != nil {
		return Manifest{}, err
	}
	m := Manifest{
		Index:       slice.Index,
		Start:       slice.Start,
		End:         slice.End,
		Frames:      slice.Frames(),
		Chunk:       chunkName(slice.Index),
		ArraySize:   arraySize,
		SceneFrames: sceneFrames,
	}
	if err := w.Runner.Run(ctx, w.Config.FFmpeg, w.encodeArgs(framesDir, filepath.Join(chunks, m.Chunk), slice)...); err != nil {
		return Manifest{}, err
	}
	if err := writeManifest(chunks, m); err != nil {
		return Manifest{}, err
	}
	if err := os.RemoveAll(framesDir); err != nil {
		log.Warn().Err(err).Str("dir", framesDir).Msg("cannot remove frames")
	}
	log.Info().Str("chunk", m.Chunk).Int("frames", m.Frames).Msg("chunk ready")
	return m, nil
}

// jobNameFor names the job after the key of the output URI, which render and stitch share.
func jobNameFor(jobName, output, scene string) (string, error) {
	switch {
	case jobName != "":
		return jobName, nil
	case output != "":
		out, err := fetch.ParseURI(output)
		if err != nil {
			return "", err
		}
		return fetch.JobName(out.Key), nil
	case scene != "":
		return fetch.JobName(scene), nil
	}
	return "", errors.New("job name, output uri or scene file is required")
}

func (w *Worker) scenePath(name string) (string, error) {
	if name == "" {
		return "", errors.New("scene file is required")
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	return fetch.Resolve(w.Config.MountPath, name)
}

func (w *Worker) blenderArgs(scene, framesDir string, s blend.Slice) []string {
	return []string{
		"-b", scene,
		"-o", filepath.Join(framesDir, "frame_#####"),
		"-F", "PNG",
		"-s", strconv.Itoa(s.Start),
		"-e", strconv.Itoa(s.End),
		"-a",
	}
}

func (w *Worker) encodeArgs(framesDir, chunk string, s blend.Slice) []string {
	return []string{
		"-y",
		"-framerate", strconv.Itoa(w.Config.FrameRate),
		"-start_number", strconv.Itoa(s.Start),
		"-i", filepath.Join(framesDir, "frame_%05d.png"),
		"-frames:v", strconv.Itoa(s.Frames()),
		"-c:v", w.Config.Encoder,
		"-pix_fmt", "yuv420p",
		"-f", "mpegts",
		chunk,
	}
}

type StitchRequest struct {
	// Output is the object URI of the deliverable. Its key names the job
	// and its extension is replaced by the container.
	Output  string
	JobName string
}

type StitchResult struct {
	File   string        `json:"file"`
	URI    string        `json:"uri"`
	Frames int           `json:"frames"`
	Report *probe.Report `json:"report"`
}

// Stitch concatenates the chunks of a job, checks the picture count against the
// scene frame count and publishes the result.
func (w *Worker) Stitch(ctx context.Context, req StitchRequest) (*StitchResult, error) {
	log := zerolog.Ctx(ctx)
	jobName, err := jobNameFor(req.JobName, req.Output, "")
	if err != nil {
		return nil, err
	}
	out, err := fetch.ParseURI(req.Output)
	if err != nil {
		return nil, err
	}
	out = out.WithExt("." + w.Config.Container)

	chunks := w.chunkDir(jobName)
	manifests, err := ReadManifests(chunks)
	if err != nil {
		return nil, err
	}
	frames := manifests[0].SceneFrames

	list := filepath.Join(chunks, "concat.txt")
	if err := writeConcatList(list, manifests); err != nil {
		return nil, err
	}
	file := filepath.Join(w.JobDir(jobName), jobName+"."+w.Config.Container)
	if err := w.Runner.Run(ctx, w.Config.FFmpeg, w.concatArgs(list, file)...); err != nil {
		return nil, err
	}

	rep, err := w.Probe(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", file, err)
	}
	log.Info().Str("file", file).Str("probe", rep.Summary()).Int("frames", frames).Msg("stitched")
	if rep.Pictures != frames {
		return nil, fmt.Errorf("%w: %d pictures, %d frames", ErrFrameMismatch, rep.Pictures, frames)
	}

	if err := w.Publisher.Publish(ctx, file, out.String()); err != nil {
		return nil, err
	}
	return &StitchResult{File: file, URI: out.String(), Frames: frames, Report: rep}, nil
}

func (w *Worker) concatArgs(list, file string) []string {
	args := []string{"-y", "-f", "concat", "-safe", "0", "-i", list, "-c", "copy"}
	if w.Config.Container == "mp4" {
		args = append(args, "-movflags", "+faststart")
	}
	return append(args, file)
}
