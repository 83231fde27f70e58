package blend

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Eyevinn/render-pipeline/internal/blend/blendtest"
	"github.com/stretchr/testify/require"
)

func TestReadScenes(t *testing.T) {
	cases := []struct {
		name      string
		is64Bit   bool
		bigEndian bool
		blocks    []blendtest.Block
		want      []Scene
	}{
		{
			name:    "64 bit little endian",
			is64Bit: true,
			blocks:  []blendtest.Block{{Start: 1, End: 250, Name: []byte("Scene")}},
			want:    []Scene{{Start: 1, End: 250, Name: "Scene"}},
		},
		{
			name:      "32 bit big endian",
			bigEndian: true,
			blocks:    []blendtest.Block{{Start: 10, End: 19, Name: []byte("PPC")}},
			want:      []Scene{{Start: 10, End: 19, Name: "PPC"}},
		},
		{
			name:      "64 bit big endian negative start",
			is64Bit:   true,
			bigEndian: true,
			blocks:    []blendtest.Block{{Start: -5, End: 5, Name: []byte("Neg")}},
			want:      []Scene{{Start: -5, End: 5, Name: "Neg"}},
		},
		{
			name:    "several scenes",
			is64Bit: true,
			blocks: []blendtest.Block{
				{Start: 1, End: 100, Name: []byte("Main")},
				{Start: 20, End: 40, Name: []byte("Insert")},
			},
			want: []Scene{{Start: 1, End: 100, Name: "Main"}, {Start: 20, End: 40, Name: "Insert"}},
		},
		{
			name:    "block longer than render info",
			is64Bit: true,
			blocks: []blendtest.Block{
				{Start: 1, End: 2, Name: []byte("A"), Extra: 16},
				{Start: 3, End: 4, Name: []byte("B")},
			},
			want: []Scene{{Start: 1, End: 2, Name: "A"}, {Start: 3, End: 4, Name: "B"}},
		},
		{
			name:    "utf8 name",
			is64Bit: true,
			blocks:  []blendtest.Block{{Start: 1, End: 1, Name: []byte("Szene_ä")}},
			want:    []Scene{{Start: 1, End: 1, Name: "Szene_ä"}},
		},
		{
			name:    "name without terminator",
			is64Bit: true,
			blocks:  []blendtest.Block{{Start: 1, End: 1, Name: bytes.Repeat([]byte("x"), nameSize)}},
			want:    []Scene{{Start: 1, End: 1, Name: strings.Repeat("x", nameSize)}},
		},
		{
			name:    "bytes after terminator ignored",
			is64Bit: true,
			blocks:  []blendtest.Block{{Start: 1, End: 1, Name: []byte("abc\x00junk")}},
			want:    []Scene{{Start: 1, End: 1, Name: "abc"}},
		},
		{
			name:    "invalid utf8 replaced",
			is64Bit: true,
			blocks:  []blendtest.Block{{Start: 1, End: 1, Name: []byte{'a', 0xff, 'b'}}},
			want:    []Scene{{Start: 1, End: 1, Name: "a�b"}},
		},
		{
			name:    "no render blocks",
			is64Bit: true,
			want:    []Scene{},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data := blendtest.Build(c.is64Bit, c.bigEndian, c.blocks)
			got, err := ReadScenes(bytes.NewReader(data))
			require.NoError(t, err)
			require.Equal(t, c.want, got)

			gz, err := ReadScenes(bytes.NewReader(blendtest.Gzip(data)))
			require.NoError(t, err)
			require.Equal(t, got, gz, "gzip input should give the same scenes")
		})
	}
}

func TestDecodeHeader(t *testing.T) {
	data := blendtest.Build(true, false, []blendtest.Block{{Start: 1, End: 2, Name: []byte("S")}})
	f, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, Header{Is64Bit: true, BigEndian: false, Version: "300"}, f.Header)
	require.False(t, f.Compressed)
	require.Equal(t, 24, f.Header.BlockHeaderSize())

	f, err = Decode(bytes.NewReader(blendtest.Gzip(blendtest.Build(false, true, nil))))
	require.NoError(t, err)
	require.True(t, f.Compressed)
	require.Equal(t, Header{Is64Bit: false, BigEndian: true, Version: "300"}, f.Header)
	require.Equal(t, 20, f.Header.BlockHeaderSize())
	require.Equal(t, binary.BigEndian, f.Header.ByteOrder())
}

func TestNotBlendFile(t *testing.T) {
	inputs := map[string][]byte{
		"empty":      {},
		"one byte":   {0x1f},
		"short":      []byte("BLEND"),
		"other data": []byte("PK\x03\x04 this is a zip file"),
		"gzip other": blendtest.Gzip([]byte("not a scene file at all")),
	}
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			scenes, err := ReadScenes(bytes.NewReader(data))
			require.NoError(t, err)
			require.Empty(t, scenes)

			_, err = Decode(bytes.NewReader(data))
			require.ErrorIs(t, err, ErrNotBlendFile)
		})
	}
}

func TestTruncated(t *testing.T) {
	data := blendtest.Build(true, false, []blendtest.Block{{Start: 1, End: 250, Name: []byte("Scene")}})
	cases := map[string][]byte{
		"header":     data[:10],
		"bhead":      data[:headerSize+10],
		"render":     data[:headerSize+24+30],
		"gzip bhead": blendtest.Gzip(data[:headerSize+10]),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadScenes(bytes.NewReader(in))
			require.ErrorIs(t, err, ErrTruncated)
			require.ErrorIs(t, err, io.ErrUnexpectedEOF)
		})
	}

	// a partial block code ends the scan like any other code
	partial := append([]byte{}, data[:headerSize+24+renderInfoSize]...)
	scenes, err := ReadScenes(bytes.NewReader(append(partial, 'R', 'E')))
	require.NoError(t, err)
	require.Len(t, scenes, 1)
}

func TestBadGzip(t *testing.T) {
	_, err := ReadScenes(bytes.NewReader([]byte{0x1f, 0x8b, 0x00, 0x01}))
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotBlendFile))
}

func TestOpenScenes(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "scene.blend")
	require.NoError(t, os.WriteFile(name, blendtest.Build(true, false, []blendtest.Block{{Start: 1, End: 250, Name: []byte("Scene")}}), 0644))

	scenes, err := OpenScenes(name)
	require.NoError(t, err)
	require.Equal(t, []Scene{{Start: 1, End: 250, Name: "Scene"}}, scenes)

	_, err = OpenScenes(filepath.Join(dir, "missing.blend"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}
