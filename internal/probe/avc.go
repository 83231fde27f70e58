package probe

import (
	"fmt"

	"github.com/Eyevinn/mp4ff/avc"
	"github.com/asticode/go-astits"
)

type avcStream struct {
	sps   *avc.SPS
	stats StreamStatistics
}

func newAvcStream(pid uint16) *avcStream {
	return &avcStream{stats: StreamStatistics{Type: "AVC", Pid: pid}}
}

func (s *avcStream) statistics() *StreamStatistics {
	return &s.stats
}

func (s *avcStream) size() (width, height int) {
	if s.sps == nil {
		return 0, 0
	}
	return int(s.sps.Width), int(s.sps.Height)
}

func (s *avcStream) parsePES(d *astits.DemuxerData) (PictureData, error) {
	pic, ok := newPicture(d)
	if !ok {
		return pic, fmt.Errorf("no PTS in PES on PID %d", d.PID)
	}
	for _, nalu := range avc.ExtractNalusFromByteStream(d.PES.Data) {
		if len(nalu) == 0 {
			continue
		}
		naluType := avc.GetNaluType(nalu[0])
		switch naluType {
		case avc.NALU_SPS:
			if s.sps == nil {
				sps, err := avc.ParseSPSNALUnit(nalu, false)
				if err != nil {
					return pic, fmt.Errorf("cannot parse SPS: %w", err)
				}
				s.sps = sps
			}
		case avc.NALU_IDR, avc.NALU_NON_IDR:
			if naluType == avc.NALU_IDR {
				pic.IDR = true
			}
			if sliceType, err := avc.GetSliceTypeFromNALU(nalu); err == nil {
				pic.ImgType = fmt.Sprintf("[%s]", sliceType)
			}
		}
		pic.NALUS = append(pic.NALUS, NaluData{Type: naluType.String(), Len: len(nalu)})
	}
	s.stats.addPicture(pic)
	return pic, nil
}
