// Package bridge forwards frames between links and an MQTT broker.
//
// Topics, relative to the queue prefix:
//
//	HOST/ROLE/rx/ID    FrameReceived for forwarded identifiers
//	HOST/ROLE/tx       FrameSend consumed and sent to the board
//	HOST/ROLE/status   LinkStatus, retained
//	HOST/events        LinkEvent
package bridge

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/boardlink/pkg/l0/comm"
	"github.com/robotalks/boardlink/pkg/l1/msgs"
)

// DefaultStatusInterval is the interval link status is republished.
const DefaultStatusInterval = 5 * time.Second

// Bridge connects a comm.Manager to a PubSub.
type Bridge struct {
	Manager        *comm.Manager
	Queue          PubSub
	HostID         string
	StatusInterval time.Duration
	// Next receives events after they are published, GlogSink if nil.
	Next comm.EventSink
}

// New creates a Bridge.
func New(m *comm.Manager, q PubSub, hostID string) *Bridge {
	return &Bridge{
		Manager:        m,
		Queue:          q,
		HostID:         hostID,
		StatusInterval: DefaultStatusInterval,
	}
}

// LinkTopic gets the topic of a link.
func (b *Bridge) LinkTopic(role comm.Role, name string) string {
	return b.HostID + "/" + strings.ToLower(role.String()) + "/" + name
}

// RxTopic gets the topic of frames received with the identifier.
func (b *Bridge) RxTopic(role comm.Role, id comm.Identifier) string {
	return b.LinkTopic(role, "rx/"+strconv.Itoa(int(id)))
}

// EventsTopic gets the topic of events.
func (b *Bridge) EventsTopic() string {
	return b.HostID + "/events"
}

// Forward registers handlers publishing frames with the identifiers
// received from the role.
func (b *Bridge) Forward(role comm.Role, ids ...comm.Identifier) error {
	for _, id := range ids {
		topic := b.RxTopic(role, id)
		if err := b.Manager.Register(role, id, comm.HandlerFunc(func(ctx context.Context, payload []byte) {
			b.publish(topic, msgs.NewFrameReceived(role, id, payload), false)
		})); err != nil {
			return err
		}
	}
	return nil
}

// StateChanged implements comm.StateNotifier.
func (b *Bridge) StateChanged(ctx context.Context, role comm.Role, state comm.LinkState) {
	b.publishStatus(role, state)
}

// Report implements comm.EventSink.
func (b *Bridge) Report(ev comm.Event) {
	b.publish(b.EventsTopic(), msgs.NewLinkEvent(ev), false)
	next := b.Next
	if next == nil {
		next = comm.GlogSink{}
	}
	next.Report(ev)
}

// Run implements Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	var subs []Subscription
	for _, role := range b.Manager.Roles() {
		role := role
		subs = append(subs, b.Queue.Sub(b.LinkTopic(role, "tx"), func(topic string, payload []byte) {
			b.handleSend(ctx, role, payload)
		}))
	}
	defer func() {
		for _, sub := range subs {
			sub.Close()
		}
	}()

	interval := b.StatusInterval
	if interval <= 0 {
		interval = DefaultStatusInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		b.publishAllStatus()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (b *Bridge) handleSend(ctx context.Context, role comm.Role, payload []byte) {
	msg, err := msgs.DecodeMessage(payload)
	if err != nil {
		glog.Warningf("bridge %s: bad message: %v", role, err)
		return
	}
	send, ok := msg.(*msgs.FrameSend)
	if !ok || send.Role != uint32(role) || send.Identifier > 0xff {
		glog.Warningf("bridge %s: %v: %T", role, msgs.ErrUnexpectedType, msg)
		return
	}
	if err := b.Manager.Send(ctx, role, comm.Identifier(send.Identifier), send.Payload); err != nil {
		glog.Warningf("bridge %s: send %d: %v", role, send.Identifier, err)
	}
}

func (b *Bridge) publishAllStatus() {
	for _, role := range b.Manager.Roles() {
		l, err := b.Manager.Link(role)
		if err == nil {
			b.publishStatus(role, l.State())
		}
	}
}

func (b *Bridge) publishStatus(role comm.Role, state comm.LinkState) {
	var stats comm.StatsSnapshot
	if l, err := b.Manager.Link(role); err == nil {
		stats = l.Stats()
	}
	status := msgs.NewLinkStatus(role, state, stats)
	status.HostId = b.HostID
	b.publish(b.LinkTopic(role, "status"), status, true)
}

func (b *Bridge) publish(topic string, msg msgs.Message, retain bool) {
	data, err := msgs.Encode(msg)
	if err == nil {
		err = b.Queue.Pub(topic, data, retain)
	}
	if err != nil {
		glog.Warningf("bridge publish %s: %v", topic, err)
	}
}
