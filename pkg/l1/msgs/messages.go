package msgs

import (
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/boardlink/pkg/l0/comm"
	pb "github.com/robotalks/boardlink/pkg/proto/boardlink/v1"
)

// FrameSend requests a frame to be sent to a board.
type FrameSend struct {
	pb.Frame
}

// NewFrameSend creates a FrameSend.
func NewFrameSend(role comm.Role, id comm.Identifier, payload []byte) *FrameSend {
	return &FrameSend{Frame: pb.Frame{Role: uint32(role), Identifier: uint32(id), Payload: payload}}
}

// NewMessage implements Message.
func (m *FrameSend) NewMessage() Message { return &FrameSend{} }

// TypeID implements Message.
func (m *FrameSend) TypeID() uint32 { return FrameSendTypeID }

// Serializable implements Message.
func (m *FrameSend) Serializable() proto.Message { return &m.Frame }

// FrameReceived is a frame received from a board.
type FrameReceived struct {
	pb.Frame
}

// NewFrameReceived creates a FrameReceived stamped with the current time.
func NewFrameReceived(role comm.Role, id comm.Identifier, payload []byte) *FrameReceived {
	return &FrameReceived{Frame: pb.Frame{
		Role:       uint32(role),
		Identifier: uint32(id),
		Payload:    payload,
		Timestamp:  time.Now().UnixNano(),
	}}
}

// NewMessage implements Message.
func (m *FrameReceived) NewMessage() Message { return &FrameReceived{} }

// TypeID implements Message.
func (m *FrameReceived) TypeID() uint32 { return FrameReceivedTypeID }

// Serializable implements Message.
func (m *FrameReceived) Serializable() proto.Message { return &m.Frame }

// LinkStatus reports the state of a link.
type LinkStatus struct {
	pb.LinkStatus
}

// NewLinkStatus creates a LinkStatus from the link state and counters.
func NewLinkStatus(role comm.Role, state comm.LinkState, stats comm.StatsSnapshot) *LinkStatus {
	return &LinkStatus{LinkStatus: pb.LinkStatus{
		Role:          uint32(role),
		State:         state.String(),
		FramesTx:      stats.FramesTx,
		FramesRx:      stats.FramesRx,
		Corrupted:     stats.Corrupted,
		Dropped:       stats.Dropped,
		WriteFailures: stats.WriteFailures,
		Connects:      stats.Connects,
		Disconnects:   stats.Disconnects,
	}}
}

// NewMessage implements Message.
func (m *LinkStatus) NewMessage() Message { return &LinkStatus{} }

// TypeID implements Message.
func (m *LinkStatus) TypeID() uint32 { return LinkStatusTypeID }

// Serializable implements Message.
func (m *LinkStatus) Serializable() proto.Message { return &m.LinkStatus }

// LinkEvent forwards an event reported by a link.
type LinkEvent struct {
	pb.Event
}

// NewLinkEvent creates a LinkEvent.
func NewLinkEvent(ev comm.Event) *LinkEvent {
	msg := &LinkEvent{Event: pb.Event{
		Role:       uint32(ev.Err.Role),
		Code:       ev.Err.Code.Error(),
		Severity:   ev.Severity.String(),
		Identifier: uint32(ev.Err.Identifier),
	}}
	if ev.Err.Err != nil {
		msg.Message = ev.Err.Err.Error()
	}
	return msg
}

// NewMessage implements Message.
func (m *LinkEvent) NewMessage() Message { return &LinkEvent{} }

// TypeID implements Message.
func (m *LinkEvent) TypeID() uint32 { return LinkEventTypeID }

// Serializable implements Message.
func (m *LinkEvent) Serializable() proto.Message { return &m.Event }

// TypeID Groups
const (
	GroupLink   uint32 = 0x00010000
	GroupCustom uint32 = 0x7f000000 // base group id for custom messages.
)

// TypeIDs
const (
	FrameSendTypeID     uint32 = TypeIDKindCommand | GroupLink | 0x0001
	FrameReceivedTypeID uint32 = TypeIDKindEvent | GroupLink | 0x0001
	LinkStatusTypeID    uint32 = TypeIDKindEvent | GroupLink | 0x0002
	LinkEventTypeID     uint32 = TypeIDKindEvent | GroupLink | 0x0003
)
