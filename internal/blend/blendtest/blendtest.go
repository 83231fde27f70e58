// Package blendtest writes minimal scene files for tests.
package blendtest

import (
	"bytes"
	"encoding/binary"

	"github.com/klauspost/compress/gzip"
)

const nameSize = 64

// Block is one REND block. Extra pads the block payload beyond the render info.
type Block struct {
	Start int32
	End   int32
	Name  []byte
	Extra int
}

// Build writes a scene file header followed by the REND blocks and an ENDB block.
func Build(is64Bit, bigEndian bool, blocks []Block) []byte {
	var order binary.ByteOrder = binary.LittleEndian
	buf := bytes.Buffer{}
	buf.WriteString("BLENDER")
	if is64Bit {
		buf.WriteByte('-')
	} else {
		buf.WriteByte('_')
	}
	if bigEndian {
		buf.WriteByte('V')
		order = binary.BigEndian
	} else {
		buf.WriteByte('v')
	}
	buf.WriteString("300")

	ptrSize := 4
	if is64Bit {
		ptrSize = 8
	}
	for _, b := range blocks {
		buf.WriteString("REND")
		_ = binary.Write(&buf, order, int32(8+nameSize+b.Extra))
		buf.Write(make([]byte, ptrSize+8))
		_ = binary.Write(&buf, order, b.Start)
		_ = binary.Write(&buf, order, b.End)
		name := make([]byte, nameSize)
		copy(name, b.Name)
		buf.Write(name)
		buf.Write(bytes.Repeat([]byte{0xaa}, b.Extra))
	}
	buf.WriteString("ENDB")
	buf.Write(make([]byte, ptrSize+12))
	return buf.Bytes()
}

// Scene is a 64-bit little endian file with one scene.
func Scene(start, end int32, name string) []byte {
	return Build(true, false, []Block{{Start: start, End: end, Name: []byte(name)}})
}

// Gzip compresses data.
func Gzip(data []byte) []byte {
	buf := bytes.Buffer{}
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return buf.Bytes()
}
