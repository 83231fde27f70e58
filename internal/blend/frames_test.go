package blend

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/Eyevinn/render-pipeline/internal/blend/blendtest"
	"github.com/stretchr/testify/require"
)

func TestFrameCount(t *testing.T) {
	n, err := FrameCount([]Scene{{Start: 1, End: 250}, {Start: 1, End: 10}})
	require.NoError(t, err)
	require.Equal(t, 250, n)

	n, err = FrameCount([]Scene{{Start: 7, End: 7}})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = FrameCount(nil)
	require.ErrorIs(t, err, ErrNoScenes)

	_, err = FrameCount([]Scene{{Start: 10, End: 9}})
	require.ErrorIs(t, err, ErrEmptyRange)
}

func TestJobArraySize(t *testing.T) {
	cases := []struct {
		frames       int
		framesPerJob int
		want         int
	}{
		{250, 10, 25},
		{5, 10, 1},
		{250, 1, 250},
		{251, 10, 26},
		{1, 1, 1},
		{10, 3, 4},
	}
	for _, c := range cases {
		got, err := JobArraySize(c.frames, c.framesPerJob)
		require.NoError(t, err)
		require.Equal(t, c.want, got, "frames=%d framesPerJob=%d", c.frames, c.framesPerJob)
	}

	_, err := JobArraySize(10, 0)
	require.ErrorIs(t, err, ErrFramesPerJob)
	_, err = JobArraySize(0, 1)
	require.ErrorIs(t, err, ErrEmptyRange)
}

func TestCalculate(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "scene.blend")
	require.NoError(t, os.WriteFile(name, blendtest.Scene(1, 250, "Scene"), 0644))

	frames, size, err := Calculate(name, 10)
	require.NoError(t, err)
	require.Equal(t, 250, frames)
	require.Equal(t, 25, size)

	_, _, err = Calculate(filepath.Join(dir, "missing.blend"), 10)
	require.ErrorIs(t, err, fs.ErrNotExist)

	empty := filepath.Join(dir, "empty.blend")
	require.NoError(t, os.WriteFile(empty, blendtest.Build(true, false, nil), 0644))
	_, _, err = Calculate(empty, 10)
	require.ErrorIs(t, err, ErrNoScenes)

	other := filepath.Join(dir, "other.blend")
	require.NoError(t, os.WriteFile(other, bytes.Repeat([]byte{1}, 100), 0644))
	_, _, err = Calculate(other, 10)
	require.ErrorIs(t, err, ErrNoScenes)
}

func TestSliceFor(t *testing.T) {
	scene := Scene{Start: 1, End: 25, Name: "Scene"}
	s, err := SliceFor(scene, 10, 0)
	require.NoError(t, err)
	require.Equal(t, Slice{Index: 0, Start: 1, End: 10}, s)

	s, err = SliceFor(scene, 10, 2)
	require.NoError(t, err)
	require.Equal(t, Slice{Index: 2, Start: 21, End: 25}, s)
	require.Equal(t, 5, s.Frames())

	s, err = SliceFor(Scene{Start: 100, End: 104}, 10, 0)
	require.NoError(t, err)
	require.Equal(t, Slice{Index: 0, Start: 100, End: 104}, s)

	_, err = SliceFor(scene, 10, 3)
	require.ErrorIs(t, err, ErrArrayIndex)
	_, err = SliceFor(scene, 10, -1)
	require.ErrorIs(t, err, ErrArrayIndex)
}

func TestSlicesCoverRange(t *testing.T) {
	scenes := []Scene{{Start: 1, End: 250}, {Start: 0, End: 0}, {Start: -3, End: 17}, {Start: 5, End: 9}}
	for _, scene := range scenes {
		for _, fpj := range []int{1, 2, 3, 7, 10, 1000} {
			slices, err := Slices(scene, fpj)
			require.NoError(t, err)
			size, err := JobArraySize(scene.Frames(), fpj)
			require.NoError(t, err)
			require.Len(t, slices, size)

			next := int(scene.Start)
			for i, s := range slices {
				require.Equal(t, i, s.Index)
				require.Equal(t, next, s.Start, "slices must be contiguous")
				require.GreaterOrEqual(t, s.End, s.Start)
				next = s.End + 1
			}
			require.Equal(t, int(scene.End)+1, next, "slices must end at the last frame")
		}
	}
}
