package worker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/exp/slices"
)

var ErrMissingChunk = errors.New("worker: missing chunk")

// Manifest describes the chunk rendered by one array element.
type Manifest struct {
	Index  int    `json:"index"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Frames int    `json:"frames"`
	Chunk  string `json:"chunk"`
	// ArraySize and SceneFrames describe the whole job.
	ArraySize   int `json:"arraySize"`
	SceneFrames int `json:"sceneFrames"`
}

func chunkName(index int) string {
	return fmt.Sprintf("chunk_%05d.ts", index)
}

func manifestName(index int) string {
	return fmt.Sprintf("chunk_%05d.json", index)
}

func writeManifest(dir string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, manifestName(m.Index)), data, 0644)
}

// ReadManifests returns the chunk manifests in dir sorted by index.
// Every chunk of the job array must be present and the chunks must cover the scene frames.
func ReadManifests(dir string) ([]Manifest, error) {
	names, err := filepath.Glob(filepath.Join(dir, "chunk_*.json"))
	if err != nil {
		return nil, err
	}
	manifests := make([]Manifest, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("read manifest %s: %w", filepath.Base(name), err)
		}
		manifests = append(manifests, m)
	}
	if len(manifests) == 0 {
		return nil, fmt.Errorf("%w: no chunks in %s", ErrMissingChunk, dir)
	}
	slices.SortFunc(manifests, func(a, b Manifest) int { return a.Index - b.Index })
	first := manifests[0]
	if first.ArraySize < 1 || first.SceneFrames < 1 {
		return nil, fmt.Errorf("read manifest %s: no job size", manifestName(first.Index))
	}
	frames := 0
	for i, m := range manifests {
		if m.Index != i {
			return nil, fmt.Errorf("%w: index %d", ErrMissingChunk, i)
		}
		if m.ArraySize != first.ArraySize || m.SceneFrames != first.SceneFrames {
			return nil, fmt.Errorf("read manifest %s: job size differs from %s", manifestName(m.Index), manifestName(first.Index))
		}
		frames += m.Frames
		if _, err := os.Stat(filepath.Join(dir, m.Chunk)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingChunk, err)
		}
	}
	if len(manifests) != first.ArraySize {
		return nil, fmt.Errorf("%w: %d of %d chunks", ErrMissingChunk, len(manifests), first.ArraySize)
	}
	if frames != first.SceneFrames {
		return nil, fmt.Errorf("%w: chunks hold %d of %d frames", ErrMissingChunk, frames, first.SceneFrames)
	}
	return manifests, nil
}

// writeConcatList writes the ffmpeg concat demuxer input listing the chunks in order.
func writeConcatList(path string, manifests []Manifest) error {
	var b strings.Builder
	for _, m := range manifests {
		fmt.Fprintf(&b, "file '%s'\n", m.Chunk)
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}
