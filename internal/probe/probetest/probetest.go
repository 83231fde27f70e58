// Package probetest writes small media files for tests.
package probetest

import (
	"bytes"
	"context"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/asticode/go-astits"
)

const VideoPID = 256

func annexB(nalus ...[]byte) []byte {
	var out []byte
	for _, n := range nalus {
		out = append(out, 0, 0, 0, 1)
		out = append(out, n...)
	}
	return out
}

// TS muxes nrPics AVC pictures at 25 fps with an IDR picture every gop pictures.
func TS(nrPics, gop int) ([]byte, error) {
	var buf bytes.Buffer
	mx := astits.NewMuxer(context.Background(), &buf)
	if err := mx.AddElementaryStream(astits.PMTElementaryStream{
		ElementaryPID: VideoPID,
		StreamType:    astits.StreamTypeH264Video,
	}); err != nil {
		return nil, err
	}
	mx.SetPCRPID(VideoPID)

	idr := []byte{0x65, 0x88, 0x84, 0x00, 0x33}
	nonIDR := []byte{0x41, 0x9a, 0x02, 0x04, 0x10}
	for i := 0; i < nrPics; i++ {
		key := i%gop == 0
		data := annexB(nonIDR)
		if key {
			data = annexB(idr)
		}
		_, err := mx.WriteData(&astits.MuxerData{
			PID:             VideoPID,
			AdaptationField: &astits.PacketAdaptationField{RandomAccessIndicator: key},
			PES: &astits.PESData{
				Header: &astits.PESHeader{
					StreamID: 0xe0,
					OptionalHeader: &astits.PESOptionalHeader{
						MarkerBits:      2,
						PTSDTSIndicator: astits.PTSDTSIndicatorOnlyPTS,
						PTS:             &astits.ClockReference{Base: int64(90000 + i*3600)},
					},
				},
				Data: data,
			},
		})
		if err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// FragmentedMP4 writes an init segment and one media segment with nrSamples video samples.
func FragmentedMP4(nrSamples int) ([]byte, error) {
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(90000, "video", "und")
	trackID := init.Moov.Trak.Tkhd.TrackID

	seg := mp4.NewMediaSegment()
	frag, err := mp4.CreateFragment(1, trackID)
	if err != nil {
		return nil, err
	}
	for i := 0; i < nrSamples; i++ {
		frag.AddFullSample(mp4.FullSample{
			Sample:     mp4.Sample{Flags: mp4.SyncSampleFlags, Dur: 3600, Size: 4},
			DecodeTime: uint64(i * 3600),
			Data:       []byte{0, 0, 0, 0},
		})
	}
	seg.AddFragment(frag)

	var buf bytes.Buffer
	if err := init.Encode(&buf); err != nil {
		return nil, err
	}
	if err := seg.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
