package comm

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/boardlink/pkg/framework"
)

// Transport moves raw bytes over one link.
type Transport interface {
	// Write blocks until all bytes are accepted by the stream.
	Write(ctx context.Context, p []byte) error
	// ReadAvailable drains up to len(p) received bytes without blocking.
	ReadAvailable(p []byte) int
	// Connected reports the low-level carrier state.
	Connected() bool
	// Ready is signaled when bytes arrive or the carrier changes.
	Ready() <-chan struct{}
	// Close drops the stream permanently.
	Close() error
}

// Flusher is implemented by streams buffering written bytes.
type Flusher interface {
	Flush() error
}

// WriteAvailabler is implemented by streams reporting free space in
// their transmit buffer.
type WriteAvailabler interface {
	WriteAvailable() int
}

// CarrierDetector is implemented by streams reporting a carrier signal
// in addition to being open (e.g. DTR asserted by the host terminal).
type CarrierDetector interface {
	Carrier() bool
}

// OverflowCounter is implemented by transports dropping bytes when
// the receive buffer is full.
type OverflowCounter interface {
	Overflows() uint64
}

// Opener opens the underlying byte stream.
type Opener func(ctx context.Context) (io.ReadWriteCloser, error)

// Transport defaults.
const (
	// DefaultChunkSize matches a USB full-speed CDC bulk packet.
	DefaultChunkSize      = 64
	DefaultReadBufferSize = 4096
	DefaultReconnectDelay = 500 * time.Millisecond

	writeRetryDelay = time.Millisecond
)

// StreamTransport implements Transport over a stream from an Opener.
// Run must be running for the transport to be connected. After carrier
// loss, the stream is opened again after ReconnectDelay.
type StreamTransport struct {
	Open           Opener
	ChunkSize      int
	ReadBufferSize int
	ReconnectDelay time.Duration

	stream    io.ReadWriteCloser
	rbuf      []byte
	closed    bool
	lock      sync.Mutex
	overflows atomic.Uint64
	readyCh   chan struct{}
	readyOnce sync.Once
}

// NewStreamTransport creates a StreamTransport.
func NewStreamTransport(open Opener) *StreamTransport {
	return &StreamTransport{
		Open:           open,
		ChunkSize:      DefaultChunkSize,
		ReadBufferSize: DefaultReadBufferSize,
		ReconnectDelay: DefaultReconnectDelay,
	}
}

// Run implements Runnable.
func (t *StreamTransport) Run(ctx context.Context) error {
	for {
		if t.isClosed() {
			return nil
		}
		s, err := t.Open(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			glog.V(2).Infof("open stream error: %v", err)
		} else {
			t.attach(s)
			err = fx.RunWithContextCloser(ctx, s, func() error {
				return t.readLoop(s)
			})
			t.detach(s)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			glog.V(2).Infof("stream lost: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.reconnectDelay()):
		}
	}
}

func (t *StreamTransport) readLoop(s io.Reader) error {
	buf := make([]byte, t.chunkSize())
	for {
		n, err := s.Read(buf)
		if n > 0 {
			t.push(buf[:n])
		}
		if err != nil {
			return err
		}
	}
}

func (t *StreamTransport) push(p []byte) {
	t.lock.Lock()
	limit := t.ReadBufferSize
	if limit <= 0 {
		limit = DefaultReadBufferSize
	}
	if room := limit - len(t.rbuf); len(p) > room {
		t.overflows.Add(uint64(len(p) - room))
		p = p[:room]
	}
	t.rbuf = append(t.rbuf, p...)
	t.lock.Unlock()
	t.notify()
}

func (t *StreamTransport) attach(s io.ReadWriteCloser) {
	t.lock.Lock()
	if t.closed {
		t.lock.Unlock()
		s.Close()
		return
	}
	t.stream = s
	// bytes of the previous session are stale.
	t.rbuf = t.rbuf[:0]
	t.lock.Unlock()
	t.notify()
}

func (t *StreamTransport) detach(s io.ReadWriteCloser) {
	t.lock.Lock()
	if t.stream == s {
		t.stream = nil
	}
	t.lock.Unlock()
	t.notify()
}

func (t *StreamTransport) current() io.ReadWriteCloser {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.stream
}

func (t *StreamTransport) isClosed() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.closed
}

// Write implements Transport.
func (t *StreamTransport) Write(ctx context.Context, p []byte) error {
	for len(p) > 0 {
		s := t.current()
		if s == nil {
			return ErrCarrierLost
		}
		n := t.chunkSize()
		if wa, ok := s.(WriteAvailabler); ok {
			n = wa.WriteAvailable()
		}
		if n > len(p) {
			n = len(p)
		}
		if n <= 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(writeRetryDelay):
			}
			continue
		}
		if err := writeChunk(ctx, s, p[:n]); err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

type writeDeadliner interface {
	SetWriteDeadline(time.Time) error
}

func writeChunk(ctx context.Context, w io.Writer, chunk []byte) error {
	if d, ok := w.(writeDeadliner); ok {
		deadline, _ := ctx.Deadline()
		d.SetWriteDeadline(deadline)
	}
	for len(chunk) > 0 {
		n, err := w.Write(chunk)
		if err != nil {
			return err
		}
		chunk = chunk[n:]
	}
	if f, ok := w.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// ReadAvailable implements Transport.
func (t *StreamTransport) ReadAvailable(p []byte) int {
	t.lock.Lock()
	defer t.lock.Unlock()
	n := copy(p, t.rbuf)
	t.rbuf = append(t.rbuf[:0], t.rbuf[n:]...)
	return n
}

// Connected implements Transport.
func (t *StreamTransport) Connected() bool {
	s := t.current()
	if s == nil {
		return false
	}
	if cd, ok := s.(CarrierDetector); ok {
		return cd.Carrier()
	}
	return true
}

// Ready implements Transport.
func (t *StreamTransport) Ready() <-chan struct{} {
	t.readyOnce.Do(t.initReady)
	return t.readyCh
}

// Overflows implements OverflowCounter.
func (t *StreamTransport) Overflows() uint64 {
	return t.overflows.Load()
}

// Close implements Transport.
func (t *StreamTransport) Close() error {
	t.lock.Lock()
	s := t.stream
	t.closed, t.stream = true, nil
	t.lock.Unlock()
	t.notify()
	if s != nil {
		return s.Close()
	}
	return nil
}

func (t *StreamTransport) initReady() {
	t.readyCh = make(chan struct{}, 1)
}

func (t *StreamTransport) notify() {
	t.readyOnce.Do(t.initReady)
	select {
	case t.readyCh <- struct{}{}:
	default:
	}
}

func (t *StreamTransport) chunkSize() int {
	if t.ChunkSize > 0 {
		return t.ChunkSize
	}
	return DefaultChunkSize
}

func (t *StreamTransport) reconnectDelay() time.Duration {
	if t.ReconnectDelay > 0 {
		return t.ReconnectDelay
	}
	return DefaultReconnectDelay
}

// OpenOnce returns an Opener which provides the stream only once.
// Subsequent opens block until the context is done.
func OpenOnce(s io.ReadWriteCloser) Opener {
	ch := make(chan io.ReadWriteCloser, 1)
	ch <- s
	return OpenFrom(ch)
}

// OpenFrom returns an Opener which takes streams from a chan.
func OpenFrom(ch <-chan io.ReadWriteCloser) Opener {
	return func(ctx context.Context) (io.ReadWriteCloser, error) {
		select {
		case s, ok := <-ch:
			if !ok {
				return nil, io.EOF
			}
			return s, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
