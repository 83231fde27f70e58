package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/Eyevinn/render-pipeline/internal"
	"github.com/Eyevinn/render-pipeline/internal/blend"
	"github.com/Eyevinn/render-pipeline/internal/blend/blendtest"
	"github.com/stretchr/testify/require"
)

func TestBlendInfo(t *testing.T) {
	cases := []struct {
		name     string
		data     []byte
		options  internal.Options
		expected string
	}{
		{
			name:     "scene",
			data:     blendtest.Scene(1, 250, "Scene"),
			options:  internal.Options{FramesPerJob: 10, ShowScenes: true},
			expected: "{\"start\":1,\"end\":250,\"name\":\"Scene\"}\n{\"frameCount\":250,\"arrayJobSize\":25}\n",
		},
		{
			name:     "gzip with scenes hidden",
			data:     blendtest.Gzip(blendtest.Scene(1, 5, "Shot")),
			options:  internal.Options{FramesPerJob: 10},
			expected: "{\"frameCount\":5,\"arrayJobSize\":1}\n",
		},
		{
			name:     "indented",
			data:     blendtest.Scene(3, 4, "S"),
			options:  internal.Options{FramesPerJob: 1, Indent: true},
			expected: "{\n  \"frameCount\": 2,\n  \"arrayJobSize\": 2\n}\n",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := blendInfo(context.TODO(), &buf, bytes.NewReader(c.data), c.options)
			require.NoError(t, err)
			require.Equal(t, c.expected, buf.String())
		})
	}
}

func TestBlendInfoErrors(t *testing.T) {
	var buf bytes.Buffer
	err := blendInfo(context.TODO(), &buf, bytes.NewReader([]byte("not a scene file")), internal.Options{FramesPerJob: 1})
	require.ErrorIs(t, err, blend.ErrNoScenes)

	err = blendInfo(context.TODO(), &buf, bytes.NewReader(blendtest.Scene(1, 5, "S")), internal.Options{FramesPerJob: 0})
	require.ErrorIs(t, err, blend.ErrFramesPerJob)
}
