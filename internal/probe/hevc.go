package probe

import (
	"fmt"

	"github.com/Eyevinn/mp4ff/avc"
	"github.com/Eyevinn/mp4ff/hevc"
	"github.com/asticode/go-astits"
)

type hevcStream struct {
	sps   *hevc.SPS
	stats StreamStatistics
}

func newHevcStream(pid uint16) *hevcStream {
	return &hevcStream{stats: StreamStatistics{Type: "HEVC", Pid: pid}}
}

func (s *hevcStream) statistics() *StreamStatistics {
	return &s.stats
}

func (s *hevcStream) size() (width, height int) {
	if s.sps == nil {
		return 0, 0
	}
	w, h := s.sps.ImageSize()
	return int(w), int(h)
}

func (s *hevcStream) parsePES(d *astits.DemuxerData) (PictureData, error) {
	pic, ok := newPicture(d)
	if !ok {
		return pic, fmt.Errorf("no PTS in PES on PID %d", d.PID)
	}
	for _, nalu := range avc.ExtractNalusFromByteStream(d.PES.Data) {
		if len(nalu) == 0 {
			continue
		}
		naluType := hevc.GetNaluType(nalu[0])
		switch naluType {
		case hevc.NALU_SPS:
			if s.sps == nil {
				sps, err := hevc.ParseSPSNALUnit(nalu)
				if err != nil {
					return pic, fmt.Errorf("cannot parse SPS: %w", err)
				}
				s.sps = sps
			}
		case hevc.NALU_IDR_W_RADL, hevc.NALU_IDR_N_LP:
			pic.IDR = true
		}
		pic.NALUS = append(pic.NALUS, NaluData{Type: naluType.String(), Len: len(nalu)})
	}
	s.stats.addPicture(pic)
	return pic, nil
}
