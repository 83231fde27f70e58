package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	EnvMountPath        = "RENDER_MOUNT_PATH"
	EnvFramesPerJob     = "RENDER_FRAMES_PER_JOB"
	EnvInputBucket      = "RENDER_INPUT_BUCKET"
	EnvOutputBucket     = "RENDER_OUTPUT_BUCKET"
	EnvJobDefinitionArn = "RENDER_JOB_DEFINITION_ARN"
	EnvJobQueueArn      = "RENDER_JOB_QUEUE_ARN"
	EnvRegion           = "AWS_REGION"
	EnvBlender          = "RENDER_BLENDER"
	EnvFFmpeg           = "RENDER_FFMPEG"
	EnvContainer        = "RENDER_CONTAINER"
	EnvEncoder          = "RENDER_ENCODER"
	EnvFrameRate        = "RENDER_FRAME_RATE"
)

// Config is shared by the handlers and the render worker.
type Config struct {
	// MountPath is where the shared filesystem is mounted.
	MountPath    string `toml:"mount_path" yaml:"mount_path"`
	FramesPerJob int    `toml:"frames_per_job" yaml:"frames_per_job"`

	InputBucket      string `toml:"input_bucket" yaml:"input_bucket"`
	OutputBucket     string `toml:"output_bucket" yaml:"output_bucket"`
	JobDefinitionArn string `toml:"job_definition_arn" yaml:"job_definition_arn"`
	JobQueueArn      string `toml:"job_queue_arn" yaml:"job_queue_arn"`
	Region           string `toml:"region" yaml:"region"`

	Blender   string `toml:"blender" yaml:"blender"`
	FFmpeg    string `toml:"ffmpeg" yaml:"ffmpeg"`
	Container string `toml:"container" yaml:"container"`
	Encoder   string `toml:"encoder" yaml:"encoder"`
	FrameRate int    `toml:"frame_rate" yaml:"frame_rate"`
}

func Default() Config {
	return Config{
		MountPath:    "/mnt/data",
		FramesPerJob: 1,
		Blender:      "blender",
		FFmpeg:       "ffmpeg",
		Container:    "mp4",
		Encoder:      "libx264",
		FrameRate:    24,
	}
}

// Load reads a TOML or YAML file on top of the defaults and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := decodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv returns the defaults with environment overrides applied.
func FromEnv() (Config, error) {
	cfg := Default()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, out *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, out); err != nil {
			return fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("config load failed (%s): %w", path, err)
		}
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	default:
		return fmt.Errorf("config format %q not supported (%s)", ext, path)
	}
	return nil
}

// ApplyEnv overrides fields with the RENDER_* variables returned by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		env string
		dst *string
	}{
		{EnvMountPath, &c.MountPath},
		{EnvInputBucket, &c.InputBucket},
		{EnvOutputBucket, &c.OutputBucket},
		{EnvJobDefinitionArn, &c.JobDefinitionArn},
		{EnvJobQueueArn, &c.JobQueueArn},
		{EnvRegion, &c.Region},
		{EnvBlender, &c.Blender},
		{EnvFFmpeg, &c.FFmpeg},
		{EnvContainer, &c.Container},
		{EnvEncoder, &c.Encoder},
	}
	for _, s := range strs {
		if v, ok := lookup(s.env); ok && strings.TrimSpace(v) != "" {
			*s.dst = strings.TrimSpace(v)
		}
	}

	ints := []struct {
		env string
		dst *int
	}{
		{EnvFramesPerJob, &c.FramesPerJob},
		{EnvFrameRate, &c.FrameRate},
	}
	for _, i := range ints {
		v, ok := lookup(i.env)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %s: %w", i.env, err)
		}
		*i.dst = n
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.MountPath) == "" {
		return fmt.Errorf("config missing mount_path")
	}
	if c.FramesPerJob < 1 {
		return fmt.Errorf("frames_per_job must be at least 1, got %d", c.FramesPerJob)
	}
	if c.FrameRate < 1 {
		return fmt.Errorf("frame_rate must be at least 1, got %d", c.FrameRate)
	}
	switch c.Container {
	case "mp4", "ts":
	default:
		return fmt.Errorf("container must be mp4 or ts, got %q", c.Container)
	}
	return nil
}
