// Package blend reads the render information stored at the start of Blender scene files.
//
// A scene file begins with a 12 byte header ("BLENDER", pointer width, endianness and
// a 3 digit version) followed by file blocks. The first blocks of a saved file are
// REND blocks, one per scene, each holding the scene frame range and name. The file
// may be gzip compressed as a whole.
package blend

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
)

const (
	Magic      = "BLENDER"
	RenderCode = "REND"

	headerSize     = 12
	nameSize       = 64
	renderInfoSize = 8 + nameSize
)

var gzipMagic = []byte{0x1f, 0x8b}

var (
	ErrNotBlendFile = errors.New("blend: not a blend file")
	ErrTruncated    = fmt.Errorf("blend: truncated file: %w", io.ErrUnexpectedEOF)
)

// Header is the fixed file header following the magic.
type Header struct {
	Is64Bit   bool   `json:"is64Bit"`
	BigEndian bool   `json:"bigEndian"`
	Version   string `json:"version"`
}

// ByteOrder returns the byte order of all integers in the file.
func (h Header) ByteOrder() binary.ByteOrder {
	if h.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// BlockHeaderSize is the size of a file block header: code, length, old pointer, SDNA index and count.
func (h Header) BlockHeaderSize() int {
	if h.Is64Bit {
		return 24
	}
	return 20
}

// Scene is the render information of one scene.
type Scene struct {
	Start int32  `json:"start"`
	End   int32  `json:"end"`
	Name  string `json:"name"`
}

// Frames is the number of frames in the inclusive range [Start, End].
func (s Scene) Frames() int {
	return int(s.End) - int(s.Start) + 1
}

// File is the decoded render information of a scene file.
type File struct {
	Compressed bool    `json:"compressed"`
	Header     Header  `json:"header"`
	Scenes     []Scene `json:"scenes"`
}

// Decode reads the header and the REND blocks of a scene file.
// ErrNotBlendFile is returned when the signature does not match.
func Decode(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)
	f := &File{}
	var src io.Reader = br
	if head, err := br.Peek(len(gzipMagic)); err == nil && bytes.Equal(head, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("blend: gzip: %w", err)
		}
		defer zr.Close()
		src = bufio.NewReader(zr)
		f.Compressed = true
	}

	h, err := readHeader(src)
	if err != nil {
		return nil, err
	}
	f.Header = h

	f.Scenes, err = readScenes(src, h)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ReadScenes returns the scenes of a scene file in file order.
// An input that is not a scene file gives an empty slice and no error.
func ReadScenes(r io.Reader) ([]Scene, error) {
	f, err := Decode(r)
	if errors.Is(err, ErrNotBlendFile) {
		return []Scene{}, nil
	}
	if err != nil {
		return nil, err
	}
	return f.Scenes, nil
}

// OpenScenes reads the scenes of the scene file at path.
// The error of a missing file wraps fs.ErrNotExist.
func OpenScenes(path string) ([]Scene, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	scenes, err := ReadScenes(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenes, nil
}

func readHeader(r io.Reader) (Header, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:len(Magic)]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, ErrNotBlendFile
		}
		return Header{}, err
	}
	if string(buf[:len(Magic)]) != Magic {
		return Header{}, ErrNotBlendFile
	}
	if _, err := io.ReadFull(r, buf[len(Magic):]); err != nil {
		return Header{}, truncated(err)
	}
	return Header{
		Is64Bit:   buf[7] == '-',
		BigEndian: buf[8] == 'V',
		Version:   string(buf[9:12]),
	}, nil
}

// readScenes reads consecutive REND blocks. Scanning stops at the first block
// with another code or at the end of the input.
func readScenes(r io.Reader, h Header) ([]Scene, error) {
	order := h.ByteOrder()
	rest := make([]byte, h.BlockHeaderSize()-8)
	var code, length [4]byte
	var info [renderInfoSize]byte
	scenes := []Scene{}
	for {
		if _, err := io.ReadFull(r, code[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, err
		}
		if string(code[:]) != RenderCode {
			break
		}
		if _, err := io.ReadFull(r, length[:]); err != nil {
			return nil, truncated(err)
		}
		if _, err := io.ReadFull(r, rest); err != nil {
			return nil, truncated(err)
		}
		if _, err := io.ReadFull(r, info[:]); err != nil {
			return nil, truncated(err)
		}
		scenes = append(scenes, Scene{
			Start: int32(order.Uint32(info[0:4])),
			End:   int32(order.Uint32(info[4:8])),
			Name:  decodeName(info[8:]),
		})

		if extra := int64(int32(order.Uint32(length[:]))) - renderInfoSize; extra > 0 {
			n, err := io.CopyN(io.Discard, r, extra)
			if err != nil && n < extra {
				return nil, truncated(err)
			}
		}
	}
	return scenes, nil
}

// decodeName cuts the name field at the first NUL. Invalid UTF-8 is replaced.
func decodeName(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	if utf8.Valid(field) {
		return string(field)
	}
	return strings.ToValidUTF8(string(field), string(utf8.RuneError))
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
