package comm

import (
	"context"
	"sync"
	"time"
)

// DefaultWriteTimeout bounds the time a frame write may hold the gate.
// Time spent waiting for the gate is not counted.
const DefaultWriteTimeout = time.Second

// SendGate serializes frames onto one Transport so bytes of different
// frames are never interleaved.
type SendGate struct {
	Role         Role
	Codec        Codec
	Transport    Transport
	WriteTimeout time.Duration

	stats *Statistics
	lock  sync.Mutex
}

// Send encodes and writes one frame.
// Encoding happens before the gate is taken, so an oversized payload fails
// with ErrPacketSendTooLong without touching the transport.
func (g *SendGate) Send(ctx context.Context, id Identifier, payload []byte) error {
	b, err := g.Codec.Encode(g.Role, id, payload)
	if err != nil {
		return &Error{Code: ErrPacketSendTooLong, Role: g.Role, Identifier: id}
	}
	return g.write(ctx, id, b)
}

func (g *SendGate) write(ctx context.Context, id Identifier, b []byte) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	// the timeout bounds the write only, not the wait for the gate.
	timeout := g.WriteTimeout
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if !g.Transport.Connected() {
		g.failed()
		return &Error{Code: ErrWriteFailed, Role: g.Role, Identifier: id, Err: ErrCarrierLost}
	}
	if err := g.Transport.Write(ctx, b); err != nil {
		g.failed()
		return &Error{Code: ErrWriteFailed, Role: g.Role, Identifier: id, Err: err}
	}
	if g.stats != nil {
		g.stats.frameTx(len(b))
	}
	return nil
}

func (g *SendGate) failed() {
	if g.stats != nil {
		g.stats.writeFailures.Add(1)
	}
}
