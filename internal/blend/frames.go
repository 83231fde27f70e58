package blend

import (
	"errors"
	"fmt"
)

var (
	ErrNoScenes     = errors.New("blend: no render info in scene file")
	ErrEmptyRange   = errors.New("blend: end frame before start frame")
	ErrFramesPerJob = errors.New("blend: frames per job must be at least 1")
	ErrArrayIndex   = errors.New("blend: array index out of range")
)

// FrameCount is the number of frames of the first scene.
func FrameCount(scenes []Scene) (int, error) {
	if len(scenes) == 0 {
		return 0, ErrNoScenes
	}
	s := scenes[0]
	n := s.Frames()
	if n < 1 {
		return 0, fmt.Errorf("%w: scene %q %d..%d", ErrEmptyRange, s.Name, s.Start, s.End)
	}
	return n, nil
}

// JobArraySize is the number of array jobs needed to render frameCount frames
// with framesPerJob frames each. framesPerJob is clamped to frameCount.
func JobArraySize(frameCount, framesPerJob int) (int, error) {
	if framesPerJob < 1 {
		return 0, fmt.Errorf("%w: got %d", ErrFramesPerJob, framesPerJob)
	}
	if frameCount < 1 {
		return 0, fmt.Errorf("%w: %d frames", ErrEmptyRange, frameCount)
	}
	if framesPerJob > frameCount {
		framesPerJob = frameCount
	}
	return (frameCount + framesPerJob - 1) / framesPerJob, nil
}

// Calculate returns the frame count of the scene file at path and the job array size for it.
func Calculate(path string, framesPerJob int) (frames, arraySize int, err error) {
	scenes, err := OpenScenes(path)
	if err != nil {
		return 0, 0, err
	}
	frames, err = FrameCount(scenes)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", path, err)
	}
	arraySize, err = JobArraySize(frames, framesPerJob)
	if err != nil {
		return 0, 0, err
	}
	return frames, arraySize, nil
}

// Slice is the inclusive frame range rendered by one job array element.
type Slice struct {
	Index int `json:"index"`
	Start int `json:"start"`
	End   int `json:"end"`
}

func (s Slice) Frames() int {
	return s.End - s.Start + 1
}

// SliceFor returns the frames rendered by array element index.
// Element i renders [start + i*n, min(start + (i+1)*n - 1, end)] with n the clamped frames per job.
func SliceFor(scene Scene, framesPerJob, index int) (Slice, error) {
	frames := scene.Frames()
	size, err := JobArraySize(frames, framesPerJob)
	if err != nil {
		return Slice{}, err
	}
	if index < 0 || index >= size {
		return Slice{}, fmt.Errorf("%w: %d not in [0, %d)", ErrArrayIndex, index, size)
	}
	if framesPerJob > frames {
		framesPerJob = frames
	}
	start := int(scene.Start) + index*framesPerJob
	end := start + framesPerJob - 1
	if end > int(scene.End) {
		end = int(scene.End)
	}
	return Slice{Index: index, Start: start, End: end}, nil
}

// Slices returns the slices of all array elements in index order.
func Slices(scene Scene, framesPerJob int) ([]Slice, error) {
	size, err := JobArraySize(scene.Frames(), framesPerJob)
	if err != nil {
		return nil, err
	}
	out := make([]Slice, 0, size)
	for i := 0; i < size; i++ {
		s, err := SliceFor(scene, framesPerJob, i)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
