package comm

import "sync/atomic"

// Statistics tracks link-level counters.
type Statistics struct {
	framesTx      atomic.Uint64
	framesRx      atomic.Uint64
	bytesTx       atomic.Uint64
	bytesRx       atomic.Uint64
	corrupted     atomic.Uint64
	discarded     atomic.Uint64
	unhandled     atomic.Uint64
	dropped       atomic.Uint64
	writeFailures atomic.Uint64
	connects      atomic.Uint64
	disconnects   atomic.Uint64
}

// StatsSnapshot is a copy of Statistics at some point.
type StatsSnapshot struct {
	FramesTx      uint64 `json:"frames_tx"`
	FramesRx      uint64 `json:"frames_rx"`
	BytesTx       uint64 `json:"bytes_tx"`
	BytesRx       uint64 `json:"bytes_rx"`
	Corrupted     uint64 `json:"corrupted"`
	Discarded     uint64 `json:"discarded"`
	Unhandled     uint64 `json:"unhandled"`
	Dropped       uint64 `json:"dropped"`
	WriteFailures uint64 `json:"write_failures"`
	Connects      uint64 `json:"connects"`
	Disconnects   uint64 `json:"disconnects"`
}

// Snapshot copies the counters.
func (s *Statistics) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		FramesTx:      s.framesTx.Load(),
		FramesRx:      s.framesRx.Load(),
		BytesTx:       s.bytesTx.Load(),
		BytesRx:       s.bytesRx.Load(),
		Corrupted:     s.corrupted.Load(),
		Discarded:     s.discarded.Load(),
		Unhandled:     s.unhandled.Load(),
		Dropped:       s.dropped.Load(),
		WriteFailures: s.writeFailures.Load(),
		Connects:      s.connects.Load(),
		Disconnects:   s.disconnects.Load(),
	}
}

func (s *Statistics) frameTx(size int) {
	s.framesTx.Add(1)
	s.bytesTx.Add(uint64(size))
}

func (s *Statistics) parsed(pr ParseResult) {
	s.framesRx.Add(uint64(len(pr.Frames)))
	s.corrupted.Add(uint64(len(pr.Errors)))
	s.discarded.Add(uint64(pr.Discarded))
}
