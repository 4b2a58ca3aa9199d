package comm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	fx "github.com/robotalks/boardlink/pkg/framework"
)

// Manager is the registry of links by peer role.
// Links are added at startup; the registry is read-only once Run starts.
type Manager struct {
	LocalRole Role
	// Events receives events of links created by NewLink, GlogSink if nil.
	Events EventSink
	// Notifier receives state changes of links created by NewLink.
	Notifier StateNotifier

	links   map[Role]*Link
	roles   []Role
	running bool
	lock    sync.RWMutex
}

// NewManager creates a Manager.
func NewManager(localRole Role, events EventSink) *Manager {
	return &Manager{
		LocalRole: localRole,
		Events:    events,
		links:     make(map[Role]*Link),
	}
}

// NewLink creates a Link to the role over the transport and adds it.
// Events and state changes of the link are forwarded to the Manager's
// Events and Notifier, which may be set any time before Run.
func (m *Manager) NewLink(conf LinkConfig, tr Transport) (*Link, error) {
	conf.LocalRole = m.LocalRole
	if conf.Events == nil {
		conf.Events = ReportFunc(m.report)
	}
	if conf.Notifier == nil {
		conf.Notifier = StateChangedFunc(m.stateChanged)
	}
	l := NewLink(conf, tr)
	if err := m.Add(l); err != nil {
		return nil, err
	}
	return l, nil
}

// Add adds a Link.
func (m *Manager) Add(l *Link) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.running {
		return errors.New("links can't be added once running")
	}
	if _, exists := m.links[l.Role()]; exists {
		return fmt.Errorf("link for %s already exists", l.Role())
	}
	m.links[l.Role()] = l
	m.roles = append(m.roles, l.Role())
	sort.Slice(m.roles, func(i, j int) bool { return m.roles[i] < m.roles[j] })
	return nil
}

func (m *Manager) report(ev Event) {
	if m.Events != nil {
		m.Events.Report(ev)
		return
	}
	GlogSink{}.Report(ev)
}

func (m *Manager) stateChanged(ctx context.Context, role Role, state LinkState) {
	if n := m.Notifier; n != nil {
		n.StateChanged(ctx, role, state)
	}
}

// Link gets the Link for the role.
func (m *Manager) Link(role Role) (*Link, error) {
	m.lock.RLock()
	l := m.links[role]
	m.lock.RUnlock()
	if l == nil {
		return nil, &Error{Code: ErrDeviceNotFound, Role: role}
	}
	return l, nil
}

// Roles lists roles of all links.
func (m *Manager) Roles() []Role {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return append([]Role(nil), m.roles...)
}

// Run implements Runnable. It runs all links until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	m.lock.Lock()
	m.running = true
	links := make([]fx.Runnable, 0, len(m.roles))
	for _, role := range m.roles {
		links = append(links, m.links[role])
	}
	m.lock.Unlock()
	if len(links) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	return fx.NewRunnerWith(ctx).Go(links...).Wait()
}

// Register installs the handler for frames from the role.
func (m *Manager) Register(role Role, id Identifier, h Handler) error {
	l, err := m.Link(role)
	if err != nil {
		return err
	}
	l.Register(id, h)
	return nil
}

// Send sends a frame to the role.
func (m *Manager) Send(ctx context.Context, role Role, id Identifier, payload []byte) error {
	l, err := m.Link(role)
	if err != nil {
		return err
	}
	return l.Send(ctx, id, payload)
}

// ScanDevices probes every link and returns the roles whose peer
// identified as expected. Link states are not changed.
func (m *Manager) ScanDevices(ctx context.Context) ([]Role, error) {
	roles := m.Roles()
	found := make([]bool, len(roles))
	g, gctx := errgroup.WithContext(ctx)
	for n, role := range roles {
		n, l := n, m.links[role]
		if l.State() == LinkConnected {
			found[n] = true
			continue
		}
		if !l.Transport().Connected() {
			continue
		}
		g.Go(func() error {
			peer, err := l.Identify(gctx)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				return nil
			}
			if peer != l.Role() {
				report(m.Events, &Error{Code: ErrDeviceNotFound, Role: l.Role(), Err: fmt.Errorf("peer identified as %s", peer)})
				return nil
			}
			found[n] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var res []Role
	for n, ok := range found {
		if ok {
			res = append(res, roles[n])
		}
	}
	return res, nil
}

// Connect activates the link to the role and waits until connected.
// If ctx is done first, the link keeps connecting in the background.
func (m *Manager) Connect(ctx context.Context, role Role) error {
	l, err := m.Link(role)
	if err != nil {
		return err
	}
	if l.State() == LinkConnected {
		return &Error{Code: ErrDeviceAlreadyConnected, Role: role}
	}
	if err = l.Begin(); err != nil {
		return err
	}
	return l.WaitConnected(ctx)
}

// Disconnect deactivates the link to the role.
func (m *Manager) Disconnect(role Role) error {
	l, err := m.Link(role)
	if err != nil {
		return err
	}
	l.Disconnect()
	return nil
}

// WaitForConnection waits for the link to the role, see Link.WaitForConnection.
func (m *Manager) WaitForConnection(role Role, timeout time.Duration) bool {
	l, err := m.Link(role)
	if err != nil {
		return false
	}
	return l.WaitForConnection(timeout)
}

// Stats gets counters of all links.
func (m *Manager) Stats() map[Role]StatsSnapshot {
	m.lock.RLock()
	defer m.lock.RUnlock()
	res := make(map[Role]StatsSnapshot, len(m.links))
	for role, l := range m.links {
		res[role] = l.Stats()
	}
	return res
}

// Close tears down all links.
func (m *Manager) Close() error {
	var errs fx.AggregatedError
	for _, role := range m.Roles() {
		l, _ := m.Link(role)
		errs.Add(l.Close())
	}
	return errs.Aggregate()
}
