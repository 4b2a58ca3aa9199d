package comm

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// byteTransport accepts one byte at a time, yielding between bytes so
// unserialized writers would interleave.
type byteTransport struct {
	data      []byte
	connected bool
	err       error
	lock      sync.Mutex
}

func (t *byteTransport) Write(ctx context.Context, p []byte) error {
	if t.err != nil {
		return t.err
	}
	for _, b := range p {
		t.lock.Lock()
		t.data = append(t.data, b)
		t.lock.Unlock()
		runtime.Gosched()
	}
	return nil
}

func (t *byteTransport) ReadAvailable(p []byte) int { return 0 }
func (t *byteTransport) Connected() bool            { return t.connected }
func (t *byteTransport) Ready() <-chan struct{}     { return nil }
func (t *byteTransport) Close() error               { return nil }

func TestSendGateConcurrent(t *testing.T) {
	tr := &byteTransport{connected: true}
	var stats Statistics
	gate := &SendGate{Role: RoleMiddle, Transport: tr, stats: &stats}

	const senders, frames = 8, 50
	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			for n := 0; n < frames; n++ {
				payload := make([]byte, 1+n%20)
				for i := range payload {
					payload[i] = byte(n)
				}
				require.NoError(t, gate.Send(context.Background(), Identifier(s), payload))
			}
		}(s)
	}
	wg.Wait()

	p := &Parser{}
	pr := p.Parse(tr.data)
	require.False(t, pr.Corrupted())
	require.Zero(t, p.Buffered())
	require.Len(t, pr.Frames, senders*frames)
	next := make(map[Identifier]int)
	for _, f := range pr.Frames {
		n := next[f.Identifier]
		require.Len(t, f.Payload, 1+n%20)
		for _, b := range f.Payload {
			require.Equal(t, byte(n), b)
		}
		next[f.Identifier] = n + 1
	}
	require.Equal(t, uint64(senders*frames), stats.Snapshot().FramesTx)
	require.Equal(t, uint64(len(tr.data)), stats.Snapshot().BytesTx)
}

func TestSendGateFailures(t *testing.T) {
	tr := &byteTransport{}
	var stats Statistics
	gate := &SendGate{Role: RoleTop, Transport: tr, stats: &stats}

	err := gate.Send(context.Background(), 1, []byte{1})
	require.ErrorIs(t, err, ErrWriteFailed)
	require.ErrorIs(t, err, ErrCarrierLost)

	tr.connected = true
	tr.err = errors.New("broken")
	err = gate.Send(context.Background(), 1, []byte{1})
	require.ErrorIs(t, err, ErrWriteFailed)
	require.ErrorIs(t, err, tr.err)

	err = gate.Send(context.Background(), 1, make([]byte, DefaultMaxPayload+1))
	require.ErrorIs(t, err, ErrPacketSendTooLong)
	require.Empty(t, tr.data)

	snapshot := stats.Snapshot()
	require.Equal(t, uint64(2), snapshot.WriteFailures)
	require.Zero(t, snapshot.FramesTx)
}

// stuckTransport never completes a write until the context is done.
type stuckTransport struct {
	byteTransport
}

func (t *stuckTransport) Write(ctx context.Context, p []byte) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestSendGateWriteTimeout(t *testing.T) {
	tr := &stuckTransport{byteTransport{connected: true}}
	gate := &SendGate{Role: RoleTop, Transport: tr, WriteTimeout: 20 * time.Millisecond}
	start := time.Now()
	err := gate.Send(context.Background(), 1, []byte{1})
	require.ErrorIs(t, err, ErrWriteFailed)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), time.Second)
}

// slowTransport takes a fixed time for every write.
type slowTransport struct {
	byteTransport
	delay time.Duration
}

func (t *slowTransport) Write(ctx context.Context, p []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(t.delay):
	}
	return t.byteTransport.Write(ctx, p)
}

func TestSendGateQueuedWriteTimeout(t *testing.T) {
	tr := &slowTransport{byteTransport: byteTransport{connected: true}, delay: 30 * time.Millisecond}
	var stats Statistics
	gate := &SendGate{Role: RoleTop, Transport: tr, WriteTimeout: 60 * time.Millisecond, stats: &stats}

	// queued senders wait longer than WriteTimeout in total.
	const senders = 4
	errs := make(chan error, senders)
	for s := 0; s < senders; s++ {
		go func(s int) {
			errs <- gate.Send(context.Background(), Identifier(s), []byte{byte(s)})
		}(s)
	}
	for s := 0; s < senders; s++ {
		require.NoError(t, <-errs)
	}
	require.Equal(t, uint64(senders), stats.Snapshot().FramesTx)
	require.Zero(t, stats.Snapshot().WriteFailures)
}
