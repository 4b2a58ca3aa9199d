package comm

import (
	"encoding/binary"
	"io"
)

// Frame sizes.
const (
	// LengthSize is the size of the length prefix.
	LengthSize = 2
	// DefaultMaxPayload is the largest payload accepted in either direction.
	DefaultMaxPayload = 256
)

// Frame contains the information of one complete protocol message.
type Frame struct {
	Role       Role
	Identifier Identifier
	Payload    []byte
}

// Codec encodes/decodes frames.
// The zero value omits the role byte and uses DefaultMaxPayload.
type Codec struct {
	// WithRole puts the recipient role byte after the length.
	WithRole bool
	// MaxPayload limits payload size, DefaultMaxPayload if 0.
	MaxPayload int
}

// HeaderSize is the number of bytes counted by length before the payload.
func (c Codec) HeaderSize() int {
	if c.WithRole {
		return 2
	}
	return 1
}

// PayloadLimit returns the effective maximum payload size.
func (c Codec) PayloadLimit() int {
	if c.MaxPayload > 0 {
		return c.MaxPayload
	}
	return DefaultMaxPayload
}

// MaxFrameSize is the size of the largest acceptable encoded frame.
func (c Codec) MaxFrameSize() int {
	return LengthSize + c.HeaderSize() + c.PayloadLimit()
}

// EncodedSize returns the encoded size of a payload.
func (c Codec) EncodedSize(payloadLen int) int {
	return LengthSize + c.HeaderSize() + payloadLen
}

// Encode returns encoded bytes for sending.
func (c Codec) Encode(role Role, id Identifier, payload []byte) ([]byte, error) {
	return c.Append(nil, role, id, payload)
}

// Append appends the encoded frame to b.
// Nothing is appended if the payload is too long.
func (c Codec) Append(b []byte, role Role, id Identifier, payload []byte) ([]byte, error) {
	if len(payload) > c.PayloadLimit() {
		return b, ErrPacketSendTooLong
	}
	var head [LengthSize + 2]byte
	n := LengthSize
	if c.WithRole {
		head[n] = byte(role)
		n++
	}
	head[n] = byte(id)
	n++
	binary.LittleEndian.PutUint16(head[:], uint16(n-LengthSize+len(payload)))
	b = append(b, head[:n]...)
	return append(b, payload...), nil
}

// WriteTo writes encoded bytes.
func (c Codec) WriteTo(w io.Writer, f *Frame) (int64, error) {
	b, err := c.Encode(f.Role, f.Identifier, f.Payload)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// Decode decodes the first frame in buf and returns the number of bytes consumed.
//
// ErrNeedMore is returned if buf holds only part of a frame, unless the
// accumulated bytes already exceed the largest acceptable frame, which fails
// with ErrReceivedMoreThanExpected. A length smaller than the header fails with
// ErrMalformedLength and a complete frame with an oversized payload fails
// with ErrPacketRecvTooLong. Nothing is consumed on failure.
func (c Codec) Decode(buf []byte) (f Frame, n int, err error) {
	if len(buf) < LengthSize {
		return f, 0, ErrNeedMore
	}
	length := int(binary.LittleEndian.Uint16(buf))
	hdr := c.HeaderSize()
	if length < hdr {
		return f, 0, ErrMalformedLength
	}
	total := LengthSize + length
	if len(buf) < total {
		if len(buf) > c.MaxFrameSize() {
			return f, 0, ErrReceivedMoreThanExpected
		}
		return f, 0, ErrNeedMore
	}
	if length-hdr > c.PayloadLimit() {
		return f, 0, ErrPacketRecvTooLong
	}
	body := buf[LengthSize:total]
	if c.WithRole {
		f.Role, body = Role(body[0]), body[1:]
	}
	f.Identifier = Identifier(body[0])
	f.Payload = append([]byte{}, body[1:]...)
	return f, total, nil
}
