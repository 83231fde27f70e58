// Package probe inspects rendered media files and counts their pictures.
package probe

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Eyevinn/render-pipeline/internal"
)

type Format string

const (
	FormatTS  Format = "ts"
	FormatMP4 Format = "mp4"
)

var ErrUnknownFormat = errors.New("probe: unknown media format")

// Report summarizes the video streams of a media file.
type Report struct {
	Format     Format                 `json:"format"`
	Streams    []ElementaryStreamInfo `json:"streams,omitempty"`
	Pictures   int                    `json:"pictures"`
	IDRs       int                    `json:"idrs"`
	Width      int                    `json:"width,omitempty"`
	Height     int                    `json:"height,omitempty"`
	Statistics []StreamStatistics     `json:"statistics,omitempty"`
}

func (r *Report) addVideo(s StreamStatistics) {
	r.Pictures += s.Pictures
	r.IDRs += s.IDRs
	r.Statistics = append(r.Statistics, s)
}

// FormatFromName maps a file extension to a media format.
func FormatFromName(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ts", ".m2ts", ".mts":
		return FormatTS, true
	case ".mp4", ".m4v", ".mov", ".cmfv":
		return FormatMP4, true
	}
	return "", false
}

// DetectFormat recognizes a transport stream by its sync byte and an MP4 file by its first box type.
func DetectFormat(head []byte) (Format, error) {
	if len(head) > 0 && head[0] == 0x47 {
		return FormatTS, nil
	}
	if len(head) >= 8 {
		switch string(head[4:8]) {
		case "ftyp", "styp", "moov", "moof", "free":
			return FormatMP4, nil
		}
	}
	return "", ErrUnknownFormat
}

// InspectReader sniffs the format of f and inspects it.
func InspectReader(ctx context.Context, w io.Writer, f io.Reader, o internal.Options) (*Report, error) {
	rd := bufio.NewReaderSize(f, 1000*PacketSize)
	head, err := rd.Peek(8)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	format, err := DetectFormat(head)
	if err != nil {
		return nil, err
	}
	return inspect(ctx, w, rd, format, o)
}

// Inspect opens the media file at path and counts its pictures.
// The format follows the extension and is sniffed for unknown extensions.
func Inspect(ctx context.Context, path string) (*Report, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	format, ok := FormatFromName(path)
	if !ok {
		return InspectReader(ctx, io.Discard, fh, internal.Options{})
	}
	return inspect(ctx, io.Discard, fh, format, internal.Options{})
}

func inspect(ctx context.Context, w io.Writer, r io.Reader, format Format, o internal.Options) (*Report, error) {
	switch format {
	case FormatTS:
		return InspectTS(ctx, w, r, o)
	case FormatMP4:
		return InspectMP4(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Summary is the one line description used in logs.
func (r *Report) Summary() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s pictures=%d idrs=%d", r.Format, r.Pictures, r.IDRs)
	if r.Width > 0 {
		fmt.Fprintf(&b, " size=%dx%d", r.Width, r.Height)
	}
	return b.String()
}
