package probe

import (
	"fmt"
	"io"

	"github.com/Eyevinn/mp4ff/mp4"
)

// InspectMP4 counts the samples of the video tracks of a progressive or fragmented MP4 file.
func InspectMP4(r io.Reader) (*Report, error) {
	f, err := mp4.DecodeFile(r)
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}
	moov := f.Moov
	if moov == nil && f.Init != nil {
		moov = f.Init.Moov
	}
	if moov == nil {
		return nil, fmt.Errorf("%w: mp4 without moov", ErrUnknownFormat)
	}

	rep := &Report{Format: FormatMP4}
	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		trackID := trak.Tkhd.TrackID
		info, stats := trackInfo(trak)
		rep.Streams = append(rep.Streams, info)

		stbl := trak.Mdia.Minf.Stbl
		if stbl.Stsz != nil {
			stats.Pictures = int(stbl.Stsz.SampleNumber)
		}
		if stbl.Stss != nil {
			stats.IDRs = len(stbl.Stss.SampleNumber)
		} else {
			stats.IDRs = stats.Pictures
		}
		if f.IsFragmented() {
			stats.Pictures += fragmentSamples(f, trackID)
		}
		if dur := trak.Mdia.Mdhd.Duration; dur > 0 && stats.Pictures > 0 {
			stats.FrameRate = float64(stats.Pictures) * float64(trak.Mdia.Mdhd.Timescale) / float64(dur)
		}
		rep.addVideo(stats)
		if rep.Width == 0 {
			rep.Width, rep.Height = sampleEntrySize(trak)
		}
	}
	return rep, nil
}

func trackInfo(trak *mp4.TrakBox) (ElementaryStreamInfo, StreamStatistics) {
	codec := "video"
	stsd := trak.Mdia.Minf.Stbl.Stsd
	switch {
	case stsd != nil && stsd.AvcX != nil:
		codec = "AVC"
	case stsd != nil && stsd.HvcX != nil:
		codec = "HEVC"
	}
	pid := uint16(trak.Tkhd.TrackID)
	return ElementaryStreamInfo{PID: pid, Codec: codec, Type: "video"}, StreamStatistics{Type: codec, Pid: pid}
}

func sampleEntrySize(trak *mp4.TrakBox) (width, height int) {
	stsd := trak.Mdia.Minf.Stbl.Stsd
	switch {
	case stsd == nil:
	case stsd.AvcX != nil:
		return int(stsd.AvcX.Width), int(stsd.AvcX.Height)
	case stsd.HvcX != nil:
		return int(stsd.HvcX.Width), int(stsd.HvcX.Height)
	}
	return 0, 0
}

func fragmentSamples(f *mp4.File, trackID uint32) int {
	n := 0
	for _, seg := range f.Segments {
		for _, frag := range seg.Fragments {
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID != trackID {
					continue
				}
				for _, trun := range traf.Truns {
					n += int(trun.SampleCount())
				}
			}
		}
	}
	return n
}
