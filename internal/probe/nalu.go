package probe

import "github.com/asticode/go-astits"

// PictureData describes one picture (one video PES packet).
type PictureData struct {
	PID     uint16     `json:"pid"`
	RAI     bool       `json:"rai"`
	IDR     bool       `json:"idr,omitempty"`
	PTS     int64      `json:"pts"`
	DTS     int64      `json:"dts,omitempty"`
	ImgType string     `json:"imgType,omitempty"`
	NALUS   []NaluData `json:"nalus,omitempty"`
}

type NaluData struct {
	Type string `json:"type"`
	Len  int    `json:"len"`
}

func newPicture(d *astits.DemuxerData) (PictureData, bool) {
	oh := d.PES.Header.OptionalHeader
	if oh == nil || oh.PTS == nil {
		return PictureData{}, false
	}
	pic := PictureData{PID: d.PID, PTS: oh.PTS.Base}
	if fp := d.FirstPacket; fp != nil && fp.AdaptationField != nil {
		pic.RAI = fp.AdaptationField.RandomAccessIndicator
	}
	if oh.DTS != nil {
		pic.DTS = oh.DTS.Base
	}
	return pic, true
}

// decodeTime is the DTS, or the PTS when no DTS is present.
func (p PictureData) decodeTime() int64 {
	if p.DTS != 0 {
		return p.DTS
	}
	return p.PTS
}
