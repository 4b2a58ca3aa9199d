package comm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/boardlink/pkg/framework"
)

// LinkState is the connection state of a Link.
type LinkState int

// Link states.
const (
	LinkDisconnected LinkState = iota
	LinkConnecting
	LinkConnected
)

// String implements fmt.Stringer.
func (s LinkState) String() string {
	switch s {
	case LinkDisconnected:
		return "disconnected"
	case LinkConnecting:
		return "connecting"
	case LinkConnected:
		return "connected"
	}
	return "unknown"
}

// InfiniteTimeout makes WaitForConnection wait until connected or torn down.
const InfiniteTimeout time.Duration = -1

// Link defaults.
const (
	DefaultPollInterval    = 10 * time.Millisecond
	DefaultFrameTimeout    = 100 * time.Millisecond
	DefaultHandshakeRetry  = 250 * time.Millisecond
	DefaultIdentifyTimeout = 500 * time.Millisecond
)

// IDENTIFY payload: version, kind, sender role.
const (
	identifyVersion byte = 1
	identifyRequest byte = 0
	identifyReply   byte = 1
	identifySize         = 3
)

// StateNotifier is called when the link state changed.
type StateNotifier interface {
	StateChanged(context.Context, Role, LinkState)
}

// StateChangedFunc is func type of StateNotifier.
type StateChangedFunc func(context.Context, Role, LinkState)

// StateChanged implements StateNotifier.
func (f StateChangedFunc) StateChanged(ctx context.Context, role Role, state LinkState) {
	f(ctx, role, state)
}

// LinkConfig configures a Link.
type LinkConfig struct {
	// Role is the role of the peer board.
	Role Role
	// LocalRole is the role of this side.
	LocalRole Role
	Codec     Codec
	Events    EventSink
	Notifier  StateNotifier

	PollInterval    time.Duration
	FrameTimeout    time.Duration
	HandshakeRetry  time.Duration
	IdentifyTimeout time.Duration
	WriteTimeout    time.Duration
}

func (c *LinkConfig) setDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.FrameTimeout <= 0 {
		c.FrameTimeout = DefaultFrameTimeout
	}
	if c.HandshakeRetry <= 0 {
		c.HandshakeRetry = DefaultHandshakeRetry
	}
	if c.IdentifyTimeout <= 0 {
		c.IdentifyTimeout = DefaultIdentifyTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
}

// Link owns the Transport and the Dispatcher of one peer board.
type Link struct {
	conf       LinkConfig
	transport  Transport
	dispatcher *Dispatcher
	gate       SendGate
	parser     Parser
	stats      Statistics

	state       LinkState
	begun       bool
	closed      bool
	peerRole    Role
	connectedCh chan struct{} // closed while connected
	closedCh    chan struct{}
	identCh     chan struct{} // closed on every identification
	lock        sync.Mutex

	replyCh       chan struct{}
	probeCh       chan struct{}
	lastOverflows uint64
}

// NewLink creates a Link over the transport.
func NewLink(conf LinkConfig, tr Transport) *Link {
	conf.setDefaults()
	l := &Link{
		conf:        conf,
		transport:   tr,
		dispatcher:  NewDispatcher(conf.Role, conf.Events),
		parser:      Parser{Codec: conf.Codec},
		connectedCh: make(chan struct{}),
		closedCh:    make(chan struct{}),
		identCh:     make(chan struct{}),
		replyCh:     make(chan struct{}, 1),
		probeCh:     make(chan struct{}, 1),
	}
	l.gate = SendGate{
		Role:         conf.Role,
		Codec:        conf.Codec,
		Transport:    tr,
		WriteTimeout: conf.WriteTimeout,
		stats:        &l.stats,
	}
	return l
}

// Role gets the role of the peer.
func (l *Link) Role() Role {
	return l.conf.Role
}

// Name implements Named.
func (l *Link) Name() string {
	return "link/" + l.conf.Role.String()
}

// Transport gets the owned transport.
func (l *Link) Transport() Transport {
	return l.transport
}

// Dispatcher gets the owned dispatcher.
func (l *Link) Dispatcher() *Dispatcher {
	return l.dispatcher
}

// Stats gets a snapshot of the counters.
func (l *Link) Stats() StatsSnapshot {
	return l.stats.Snapshot()
}

// State gets the state.
func (l *Link) State() LinkState {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.state
}

// Register installs a handler for inbound frames.
func (l *Link) Register(id Identifier, h Handler) bool {
	return l.dispatcher.Register(id, h)
}

// Begin starts connecting. Application frames are dispatched once the
// peer identifies with the expected role.
func (l *Link) Begin() error {
	l.lock.Lock()
	if l.closed {
		l.lock.Unlock()
		return ErrClosed
	}
	l.begun = true
	changed := l.state == LinkDisconnected && l.setStateLocked(LinkConnecting)
	l.lock.Unlock()
	if changed {
		l.notify(context.Background(), LinkConnecting)
		wake(l.probeCh)
	}
	return nil
}

// Disconnect deactivates the link. It can be begun again.
func (l *Link) Disconnect() {
	l.lock.Lock()
	l.begun = false
	changed := l.setStateLocked(LinkDisconnected)
	l.lock.Unlock()
	if changed {
		l.notify(context.Background(), LinkDisconnected)
	}
}

// Close tears down the link: waiters return false and Run exits.
func (l *Link) Close() error {
	l.lock.Lock()
	if l.closed {
		l.lock.Unlock()
		return nil
	}
	l.closed, l.begun = true, false
	changed := l.setStateLocked(LinkDisconnected)
	close(l.closedCh)
	l.lock.Unlock()
	if changed {
		l.notify(context.Background(), LinkDisconnected)
	}
	return l.transport.Close()
}

// WaitForConnection waits until the link is connected.
// A zero timeout only checks the current state, InfiniteTimeout (or any
// negative value) waits until connected or torn down.
func (l *Link) WaitForConnection(timeout time.Duration) bool {
	l.lock.Lock()
	ch, state, closed := l.connectedCh, l.state, l.closed
	l.lock.Unlock()
	if state == LinkConnected {
		return true
	}
	if closed || timeout == 0 {
		return false
	}
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}
	select {
	case <-ch:
		return true
	case <-l.closedCh:
		return false
	case <-timeoutCh:
		return false
	}
}

// WaitConnected waits until the link is connected or ctx is done.
func (l *Link) WaitConnected(ctx context.Context) error {
	l.lock.Lock()
	ch := l.connectedCh
	l.lock.Unlock()
	select {
	case <-ch:
		return nil
	case <-l.closedCh:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send sends an application frame through the send gate.
func (l *Link) Send(ctx context.Context, id Identifier, payload []byte) error {
	if len(payload) > l.conf.Codec.PayloadLimit() {
		return &Error{Code: ErrPacketSendTooLong, Role: l.conf.Role, Identifier: id}
	}
	if l.State() != LinkConnected {
		l.stats.writeFailures.Add(1)
		return &Error{Code: ErrWriteFailed, Role: l.conf.Role, Identifier: id, Err: ErrNotReady}
	}
	return l.gate.Send(ctx, id, payload)
}

// Identify asks the peer for its role without changing the link state.
// Run must be running to receive the reply.
func (l *Link) Identify(ctx context.Context) (Role, error) {
	l.lock.Lock()
	ch := l.identCh
	l.lock.Unlock()
	if err := l.sendIdentify(ctx, identifyRequest); err != nil {
		return 0, err
	}
	timer := time.NewTimer(l.conf.IdentifyTimeout)
	defer timer.Stop()
	select {
	case <-ch:
		l.lock.Lock()
		defer l.lock.Unlock()
		return l.peerRole, nil
	case <-timer.C:
		return 0, &Error{Code: ErrDeviceNotFound, Role: l.conf.Role, Err: fmt.Errorf("no identification within %v", l.conf.IdentifyTimeout)}
	case <-l.closedCh:
		return 0, ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Run implements Runnable. It runs the transport (if it's Runnable),
// the receive loop and the handshake loop until ctx is done or Close.
func (l *Link) Run(ctx context.Context) error {
	runner := fx.NewRunnerWith(ctx)
	if r, ok := l.transport.(fx.Runnable); ok {
		runner.Go(fx.NamedRun(l.Name()+"/transport", r))
	}
	runner.Go(
		fx.NamedRun(l.Name()+"/recv", fx.RunFunc(l.receiveLoop)),
		fx.NamedRun(l.Name()+"/handshake", fx.RunFunc(l.handshakeLoop)),
	)
	return runner.Wait()
}

func (l *Link) receiveLoop(ctx context.Context) error {
	buf := make([]byte, l.conf.Codec.MaxFrameSize())
	ticker := time.NewTicker(l.conf.PollInterval)
	defer ticker.Stop()
	lastRx := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.closedCh:
			return nil
		case <-l.transport.Ready():
		case <-ticker.C:
		}
		l.checkCarrier(ctx)
		for {
			n := l.transport.ReadAvailable(buf)
			if n == 0 {
				break
			}
			l.stats.bytesRx.Add(uint64(n))
			lastRx = time.Now()
			l.applyParseResult(ctx, l.parser.Parse(buf[:n]))
		}
		if l.parser.Buffered() > 0 && time.Since(lastRx) >= l.conf.FrameTimeout {
			l.applyParseResult(ctx, l.parser.Timeout())
		}
		l.checkOverflow()
	}
}

func (l *Link) handshakeLoop(ctx context.Context) error {
	ticker := time.NewTicker(l.conf.HandshakeRetry)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.closedCh:
			return nil
		case <-l.replyCh:
			l.sendIdentify(ctx, identifyReply)
			continue
		case <-l.probeCh:
		case <-ticker.C:
		}
		if l.State() == LinkConnecting && l.transport.Connected() {
			l.sendIdentify(ctx, identifyRequest)
		}
	}
}

func (l *Link) sendIdentify(ctx context.Context, kind byte) error {
	err := l.gate.Send(ctx, IdentifierIdentify, []byte{identifyVersion, kind, byte(l.conf.LocalRole)})
	if err != nil {
		glog.V(2).Infof("%s: identify: %v", l.Name(), err)
	}
	return err
}

func (l *Link) checkCarrier(ctx context.Context) {
	carrier := l.transport.Connected()
	var state LinkState
	var changed, lost bool
	l.lock.Lock()
	switch {
	case !carrier && l.state == LinkConnected:
		changed, lost = l.setStateLocked(LinkDisconnected), true
		state = LinkDisconnected
	case carrier && l.state == LinkDisconnected && l.begun:
		changed = l.setStateLocked(LinkConnecting)
		state = LinkConnecting
	}
	l.lock.Unlock()
	if lost {
		l.parser.Reset()
		report(l.conf.Events, &Error{Code: ErrCarrierLost, Role: l.conf.Role})
	}
	if changed {
		l.notify(ctx, state)
		if state == LinkConnecting {
			wake(l.probeCh)
		}
	}
}

func (l *Link) checkOverflow() {
	oc, ok := l.transport.(OverflowCounter)
	if !ok {
		return
	}
	if n := oc.Overflows(); n > l.lastOverflows {
		dropped := n - l.lastOverflows
		l.lastOverflows = n
		l.stats.discarded.Add(dropped)
		l.stats.corrupted.Add(1)
		report(l.conf.Events, &Error{Code: ErrReceiveOverflow, Role: l.conf.Role, Err: fmt.Errorf("%d bytes dropped", dropped)})
	}
}

func (l *Link) applyParseResult(ctx context.Context, pr ParseResult) {
	l.stats.parsed(pr)
	for _, err := range pr.Errors {
		report(l.conf.Events, &Error{Code: CodeOf(err), Role: l.conf.Role})
	}
	for _, f := range pr.Frames {
		l.handleFrame(ctx, f)
	}
}

func (l *Link) handleFrame(ctx context.Context, f *Frame) {
	if l.conf.Codec.WithRole && f.Role != l.conf.LocalRole {
		l.stats.dropped.Add(1)
		report(l.conf.Events, &Error{Code: ErrMisrouted, Role: l.conf.Role, Identifier: f.Identifier, Err: fmt.Errorf("addressed to %s", f.Role)})
		return
	}
	if f.Identifier == IdentifierIdentify && len(f.Payload) == identifySize && f.Payload[0] == identifyVersion {
		l.handleIdentify(ctx, f.Payload[1], Role(f.Payload[2]))
		return
	}
	if l.State() != LinkConnected {
		l.stats.dropped.Add(1)
		return
	}
	if !l.dispatcher.Dispatch(ctx, f.Identifier, f.Payload) {
		l.stats.unhandled.Add(1)
	}
}

func (l *Link) handleIdentify(ctx context.Context, kind byte, role Role) {
	if kind == identifyRequest {
		wake(l.replyCh)
	}
	var changed, mismatch bool
	l.lock.Lock()
	l.peerRole = role
	close(l.identCh)
	l.identCh = make(chan struct{})
	if l.state == LinkConnecting {
		if role == l.conf.Role {
			changed = l.setStateLocked(LinkConnected)
		} else {
			mismatch = true
		}
	}
	l.lock.Unlock()
	if mismatch {
		report(l.conf.Events, &Error{Code: ErrDeviceNotFound, Role: l.conf.Role, Err: fmt.Errorf("peer identified as %s", role)})
	}
	if changed {
		l.notify(ctx, LinkConnected)
	}
}

func (l *Link) setStateLocked(state LinkState) bool {
	if l.state == state {
		return false
	}
	if state == LinkConnected {
		close(l.connectedCh)
		l.stats.connects.Add(1)
	} else if l.state == LinkConnected {
		l.connectedCh = make(chan struct{})
		l.stats.disconnects.Add(1)
	}
	l.state = state
	return true
}

func (l *Link) notify(ctx context.Context, state LinkState) {
	glog.Infof("%s: %s", l.Name(), state)
	if n := l.conf.Notifier; n != nil {
		n.StateChanged(ctx, l.conf.Role, state)
	}
}

func wake(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
