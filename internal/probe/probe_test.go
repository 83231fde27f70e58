package probe

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Eyevinn/render-pipeline/internal"
	"github.com/Eyevinn/render-pipeline/internal/probe/probetest"
	"github.com/stretchr/testify/require"
)

const videoPID = probetest.VideoPID

func muxTS(t *testing.T, nrPics, gop int) []byte {
	t.Helper()
	data, err := probetest.TS(nrPics, gop)
	require.NoError(t, err)
	return data
}

func TestInspectTS(t *testing.T) {
	data := muxTS(t, 50, 25)

	var out bytes.Buffer
	rep, err := InspectTS(context.Background(), &out, bytes.NewReader(data), internal.Options{ShowPictures: true})
	require.NoError(t, err)
	require.Equal(t, FormatTS, rep.Format)
	require.Equal(t, []ElementaryStreamInfo{{PID: videoPID, Codec: "AVC", Type: "video"}}, rep.Streams)
	require.Equal(t, 50, rep.Pictures)
	require.Equal(t, 2, rep.IDRs)
	require.Len(t, rep.Statistics, 1)
	require.InDelta(t, 25.0, rep.Statistics[0].FrameRate, 0.001)
	require.Equal(t, 50, strings.Count(out.String(), "\n"), "one line per picture")

	rep, err = InspectTS(context.Background(), io.Discard, bytes.NewReader(data), internal.Options{MaxNrPictures: 10})
	require.NoError(t, err)
	require.Equal(t, 10, rep.Pictures)
}

func TestListStreams(t *testing.T) {
	streams, err := ListStreams(bytes.NewReader(muxTS(t, 3, 25)))
	require.NoError(t, err)
	require.Equal(t, []ElementaryStreamInfo{{PID: videoPID, Codec: "AVC", Type: "video"}}, streams)

	_, err = ListStreams(bytes.NewReader([]byte("not a transport stream")))
	require.Error(t, err)
}

func fragmentedMP4(t *testing.T, nrSamples int) []byte {
	t.Helper()
	data, err := probetest.FragmentedMP4(nrSamples)
	require.NoError(t, err)
	return data
}

func TestInspectMP4(t *testing.T) {
	rep, err := InspectMP4(bytes.NewReader(fragmentedMP4(t, 5)))
	require.NoError(t, err)
	require.Equal(t, FormatMP4, rep.Format)
	require.Len(t, rep.Streams, 1)
	require.Equal(t, "video", rep.Streams[0].Type)
	require.Equal(t, 5, rep.Pictures)
}

func TestDetectFormat(t *testing.T) {
	f, err := DetectFormat([]byte{0x47, 0x40, 0x00, 0x10})
	require.NoError(t, err)
	require.Equal(t, FormatTS, f)

	f, err = DetectFormat([]byte("\x00\x00\x00\x20ftypisom"))
	require.NoError(t, err)
	require.Equal(t, FormatMP4, f)

	_, err = DetectFormat([]byte("BLENDER-v300"))
	require.ErrorIs(t, err, ErrUnknownFormat)
	_, err = DetectFormat(nil)
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatFromName(t *testing.T) {
	f, ok := FormatFromName("out/shot.TS")
	require.True(t, ok)
	require.Equal(t, FormatTS, f)
	f, ok = FormatFromName("shot.mp4")
	require.True(t, ok)
	require.Equal(t, FormatMP4, f)
	_, ok = FormatFromName("shot.blend")
	require.False(t, ok)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	ts := filepath.Join(dir, "chunk")
	require.NoError(t, os.WriteFile(ts, muxTS(t, 12, 12), 0644))
	rep, err := Inspect(context.Background(), ts)
	require.NoError(t, err)
	require.Equal(t, 12, rep.Pictures)
	require.Equal(t, "ts pictures=12 idrs=1", rep.Summary())

	mp := filepath.Join(dir, "shot.mp4")
	require.NoError(t, os.WriteFile(mp, fragmentedMP4(t, 3), 0644))
	rep, err = Inspect(context.Background(), mp)
	require.NoError(t, err)
	require.Equal(t, 3, rep.Pictures)

	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("hello world"), 0644))
	_, err = Inspect(context.Background(), other)
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Inspect(context.Background(), filepath.Join(dir, "missing.ts"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
