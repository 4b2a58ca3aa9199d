package comm

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type managerTestEnv struct {
	t       *testing.T
	manager *Manager
	events  *EventRecorder
	boards  map[Role]*testBoard
	ctx     context.Context
}

// newManagerTestEnv attaches boards for TOP and MIDDLE, BOTTOM has no board.
func newManagerTestEnv(t *testing.T) *managerTestEnv {
	env := &managerTestEnv{
		t:      t,
		events: &EventRecorder{},
		boards: make(map[Role]*testBoard),
	}
	env.manager = NewManager(RoleHost, env.events)
	for _, role := range []Role{RoleTop, RoleMiddle} {
		a, b := net.Pipe()
		t.Cleanup(func() { b.Close() })
		_, err := env.manager.NewLink(testLinkConfig(role, 0, Codec{}, nil), NewStreamTransport(OpenOnce(a)))
		require.NoError(t, err)
		env.boards[role] = newTestBoard(t, b, Codec{}, role)
	}
	_, err := env.manager.NewLink(testLinkConfig(RoleBottom, 0, Codec{}, nil), NewStreamTransport(OpenFrom(make(chan io.ReadWriteCloser))))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	env.ctx = ctx
	done := make(chan error, 1)
	go func() { done <- env.manager.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(testWait):
			t.Error("manager not stopped")
		}
	})
	for _, role := range []Role{RoleTop, RoleMiddle} {
		l, err := env.manager.Link(role)
		require.NoError(t, err)
		require.Eventually(t, l.Transport().Connected, testWait, testTick)
	}
	return env
}

func TestManagerRegistry(t *testing.T) {
	env := newManagerTestEnv(t)
	require.Equal(t, []Role{RoleTop, RoleMiddle, RoleBottom}, env.manager.Roles())

	_, err := env.manager.Link(Role(9))
	require.ErrorIs(t, err, ErrDeviceNotFound)
	require.ErrorIs(t, env.manager.Register(Role(9), 1, HandlerFunc(func(context.Context, []byte) {})), ErrDeviceNotFound)
	require.ErrorIs(t, env.manager.Send(env.ctx, Role(9), 1, nil), ErrDeviceNotFound)
	require.ErrorIs(t, env.manager.Disconnect(Role(9)), ErrDeviceNotFound)
	require.False(t, env.manager.WaitForConnection(Role(9), 0))

	require.Error(t, env.manager.Add(NewLink(LinkConfig{Role: RoleTop}, &byteTransport{})))
	stats := env.manager.Stats()
	require.Len(t, stats, 3)
}

func TestManagerAddDuplicate(t *testing.T) {
	m := NewManager(RoleHost, &EventRecorder{})
	require.NoError(t, m.Add(NewLink(LinkConfig{Role: RoleTop}, &byteTransport{})))
	require.Error(t, m.Add(NewLink(LinkConfig{Role: RoleTop}, &byteTransport{})))
	_, err := m.NewLink(LinkConfig{Role: RoleBottom}, &byteTransport{})
	require.NoError(t, err)
	l, err := m.Link(RoleBottom)
	require.NoError(t, err)
	require.Equal(t, RoleHost, l.conf.LocalRole)
}

func TestManagerScanDevices(t *testing.T) {
	env := newManagerTestEnv(t)
	roles, err := env.manager.ScanDevices(env.ctx)
	require.NoError(t, err)
	require.Equal(t, []Role{RoleTop, RoleMiddle}, roles)
	for _, role := range env.manager.Roles() {
		require.False(t, env.manager.WaitForConnection(role, 0))
	}

	// a board answering with a different role is not reported.
	env.boards[RoleMiddle].setRole(RoleBottom)
	roles, err = env.manager.ScanDevices(env.ctx)
	require.NoError(t, err)
	require.Equal(t, []Role{RoleTop}, roles)
	require.NotZero(t, env.events.Count(ErrDeviceNotFound))
}

func TestManagerConnect(t *testing.T) {
	env := newManagerTestEnv(t)
	ch := make(chan []byte, 1)
	require.NoError(t, env.manager.Register(RoleTop, 5, HandlerFunc(func(_ context.Context, payload []byte) {
		ch <- payload
	})))

	require.NoError(t, env.manager.Connect(env.ctx, RoleTop))
	require.True(t, env.manager.WaitForConnection(RoleTop, 0))
	require.False(t, env.manager.WaitForConnection(RoleMiddle, 0))
	require.ErrorIs(t, env.manager.Connect(env.ctx, RoleTop), ErrDeviceAlreadyConnected)

	roles, err := env.manager.ScanDevices(env.ctx)
	require.NoError(t, err)
	require.Equal(t, []Role{RoleTop, RoleMiddle}, roles)

	require.NoError(t, env.manager.Send(env.ctx, RoleTop, 4, []byte{1}))
	env.boards[RoleTop].expectFrame(4, []byte{1})
	env.boards[RoleTop].send(5, []byte{2})
	expectPayload(t, ch, []byte{2})

	err = env.manager.Send(env.ctx, RoleMiddle, 4, []byte{1})
	require.ErrorIs(t, err, ErrWriteFailed)

	ctx, cancel := context.WithTimeout(env.ctx, 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, env.manager.Connect(ctx, RoleBottom), context.DeadlineExceeded)
	l, err := env.manager.Link(RoleBottom)
	require.NoError(t, err)
	require.Equal(t, LinkConnecting, l.State())

	require.NoError(t, env.manager.Disconnect(RoleTop))
	require.False(t, env.manager.WaitForConnection(RoleTop, 0))
	require.Equal(t, uint64(1), env.manager.Stats()[RoleTop].Disconnects)
}

func TestManagerClose(t *testing.T) {
	env := newManagerTestEnv(t)
	require.NoError(t, env.manager.Connect(env.ctx, RoleTop))
	require.NoError(t, env.manager.Close())
	require.False(t, env.manager.WaitForConnection(RoleTop, 0))
	require.False(t, env.manager.WaitForConnection(RoleBottom, InfiniteTimeout))
}

func TestManagerForwardsLinkEvents(t *testing.T) {
	m := NewManager(RoleHost, nil)
	a, b := net.Pipe()
	defer b.Close()
	_, err := m.NewLink(testLinkConfig(RoleTop, 0, Codec{}, nil), NewStreamTransport(OpenOnce(a)))
	require.NoError(t, err)
	board := newTestBoard(t, b, Codec{}, RoleTop)

	// sinks attached after the link is created still receive its events.
	events := &EventRecorder{}
	states := make(chan LinkState, 8)
	m.Events = events
	m.Notifier = StateChangedFunc(func(_ context.Context, role Role, state LinkState) {
		require.Equal(t, RoleTop, role)
		states <- state
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	require.NoError(t, m.Connect(ctx, RoleTop))
	require.Equal(t, LinkConnecting, <-states)
	require.Equal(t, LinkConnected, <-states)

	board.send(42, nil)
	require.Eventually(t, func() bool {
		return events.Count(ErrMissingCallback) == 1
	}, testWait, testTick)
}
