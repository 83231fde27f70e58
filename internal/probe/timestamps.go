package probe

const (
	PacketSize = 188
	PtsWrap    = 1 << 33
	TimeScale  = 90000
)

// SignedPTSDiff is p2 - p1 for 33-bit timestamps that may have wrapped.
func SignedPTSDiff(p2, p1 int64) int64 {
	return (p2-p1+3*PtsWrap/2)%PtsWrap - PtsWrap/2
}
