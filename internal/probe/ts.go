package probe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Comcast/gots/v2/packet"
	"github.com/Comcast/gots/v2/psi"
	"github.com/Eyevinn/render-pipeline/internal"
	"github.com/asticode/go-astits"
)

type ElementaryStreamInfo struct {
	PID   uint16 `json:"pid"`
	Codec string `json:"codec"`
	Type  string `json:"type"`
}

type videoStream interface {
	parsePES(d *astits.DemuxerData) (PictureData, error)
	statistics() *StreamStatistics
	size() (width, height int)
}

func astitsStreamInfo(es *astits.PMTElementaryStream) *ElementaryStreamInfo {
	var streamInfo *ElementaryStreamInfo
	switch es.StreamType {
	case astits.StreamTypeH264Video:
		streamInfo = &ElementaryStreamInfo{PID: es.ElementaryPID, Codec: "AVC", Type: "video"}
	case astits.StreamTypeAACAudio:
		streamInfo = &ElementaryStreamInfo{PID: es.ElementaryPID, Codec: "AAC", Type: "audio"}
	case astits.StreamTypeH265Video:
		streamInfo = &ElementaryStreamInfo{PID: es.ElementaryPID, Codec: "HEVC", Type: "video"}
	}
	return streamInfo
}

func gotsStreamInfo(es psi.PmtElementaryStream) *ElementaryStreamInfo {
	pid := uint16(es.ElementaryPid())
	var streamInfo *ElementaryStreamInfo
	switch es.StreamType() {
	case psi.PmtStreamTypeMpeg4VideoH264:
		streamInfo = &ElementaryStreamInfo{PID: pid, Codec: "AVC", Type: "video"}
	case psi.PmtStreamTypeAac:
		streamInfo = &ElementaryStreamInfo{PID: pid, Codec: "AAC", Type: "audio"}
	case psi.PmtStreamTypeMpeg4VideoH265:
		streamInfo = &ElementaryStreamInfo{PID: pid, Codec: "HEVC", Type: "video"}
	}
	return streamInfo
}

// ListStreams reads the PAT and PMTs at the start of a transport stream
// and returns the elementary streams with a known codec.
func ListStreams(r io.Reader) ([]ElementaryStreamInfo, error) {
	reader := bufio.NewReader(r)
	_, err := packet.Sync(reader)
	if err != nil {
		return nil, fmt.Errorf("syncing with reader %w", err)
	}
	pat, err := psi.ReadPAT(reader)
	if err != nil {
		return nil, fmt.Errorf("reading PAT %w", err)
	}

	var streams []ElementaryStreamInfo
	for _, pid := range pat.ProgramMap() {
		pmt, err := psi.ReadPMT(reader, pid)
		if err != nil {
			return nil, fmt.Errorf("reading PMT %w", err)
		}
		for _, es := range pmt.ElementaryStreams() {
			if info := gotsStreamInfo(es); info != nil {
				streams = append(streams, *info)
			}
		}
	}
	return streams, nil
}

// InspectTS demuxes a transport stream and counts the pictures of its video streams.
// Each picture is printed to w when o.ShowPictures is set.
// Parsing stops after o.MaxNrPictures pictures if it is positive.
func InspectTS(ctx context.Context, w io.Writer, f io.Reader, o internal.Options) (*Report, error) {
	rd := bufio.NewReaderSize(f, 1000*PacketSize)
	dmx := astits.NewDemuxer(ctx, rd)
	jp := &internal.JsonPrinter{W: w, Indent: o.Indent}
	rep := &Report{Format: FormatTS}
	pmtPID := -1
	nrPics := 0
	streams := make(map[uint16]videoStream)
	var order []uint16
dataLoop:
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		d, err := dmx.NextData()
		if err != nil {
			if errors.Is(err, astits.ErrNoMorePackets) {
				break dataLoop
			}
			return nil, fmt.Errorf("reading next data %w", err)
		}

		if pmtPID < 0 && d.PMT != nil {
			for _, es := range d.PMT.ElementaryStreams {
				info := astitsStreamInfo(es)
				if info == nil {
					continue
				}
				rep.Streams = append(rep.Streams, *info)
				switch info.Codec {
				case "AVC":
					streams[info.PID] = newAvcStream(info.PID)
				case "HEVC":
					streams[info.PID] = newHevcStream(info.PID)
				default:
					continue
				}
				order = append(order, info.PID)
			}
			pmtPID = int(d.PID)
		}
		if pmtPID == -1 || d.PES == nil {
			continue
		}
		vs, ok := streams[d.PID]
		if !ok {
			continue
		}
		pic, err := vs.parsePES(d)
		if err != nil {
			return nil, err
		}
		jp.Print(pic, o.ShowPictures)
		nrPics++
		if o.MaxNrPictures > 0 && nrPics >= o.MaxNrPictures {
			break dataLoop
		}
	}
	if pmtPID == -1 {
		return nil, fmt.Errorf("%w: no PMT found", ErrUnknownFormat)
	}

	for _, pid := range order {
		vs := streams[pid]
		s := vs.statistics()
		s.Finish(TimeScale)
		rep.addVideo(*s)
		if rep.Width == 0 {
			rep.Width, rep.Height = vs.size()
		}
	}
	return rep, jp.Error()
}
