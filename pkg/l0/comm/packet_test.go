package comm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodecEncode(t *testing.T) {
	testCases := []struct {
		name    string
		codec   Codec
		role    Role
		id      Identifier
		payload []byte
		expect  []byte
	}{
		{"no payload", Codec{}, RoleTop, 7, nil, []byte{1, 0, 7}},
		{"payload", Codec{}, RoleTop, 7, []byte{10, 20}, []byte{3, 0, 7, 10, 20}},
		{"with role", Codec{WithRole: true}, RoleMiddle, 7, []byte{10, 20}, []byte{4, 0, 2, 7, 10, 20}},
		{"reserved id", Codec{}, RoleHost, IdentifierIdentify, []byte{1, 0, 0}, []byte{4, 0, 253, 1, 0, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := tc.codec.Encode(tc.role, tc.id, tc.payload)
			require.NoError(t, err)
			require.Equal(t, tc.expect, b)
			require.Equal(t, len(tc.expect), tc.codec.EncodedSize(len(tc.payload)))

			var buf bytes.Buffer
			n, err := tc.codec.WriteTo(&buf, &Frame{Role: tc.role, Identifier: tc.id, Payload: tc.payload})
			require.NoError(t, err)
			require.Equal(t, tc.expect, buf.Bytes())
			require.Equal(t, int64(len(tc.expect)), n)
		})
	}
}

func TestCodecEncodeTooLong(t *testing.T) {
	c := Codec{MaxPayload: 4}
	b, err := c.Append([]byte{9}, RoleTop, 1, make([]byte, 5))
	require.ErrorIs(t, err, ErrPacketSendTooLong)
	require.Equal(t, []byte{9}, b)

	b, err = c.Encode(RoleTop, 1, make([]byte, 4))
	require.NoError(t, err)
	require.Len(t, b, 7)

	_, err = Codec{}.Encode(RoleTop, 1, make([]byte, DefaultMaxPayload+1))
	require.ErrorIs(t, err, ErrPacketSendTooLong)
}

func TestCodecDecode(t *testing.T) {
	c := Codec{}
	f, n, err := c.Decode([]byte{3, 0, 7, 10, 20, 0xff})
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, Identifier(7), f.Identifier)
	require.Equal(t, []byte{10, 20}, f.Payload)

	f, n, err = Codec{WithRole: true}.Decode([]byte{4, 0, 2, 7, 10, 20})
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Equal(t, RoleMiddle, f.Role)
	require.Equal(t, Identifier(7), f.Identifier)
	require.Equal(t, []byte{10, 20}, f.Payload)

	f, n, err = c.Decode([]byte{1, 0, 9})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Empty(t, f.Payload)
}

func TestCodecDecodeErrors(t *testing.T) {
	c := Codec{MaxPayload: 4}
	testCases := []struct {
		name   string
		codec  Codec
		in     []byte
		expect error
	}{
		{"empty", c, nil, ErrNeedMore},
		{"half length", c, []byte{3}, ErrNeedMore},
		{"partial", c, []byte{3, 0, 7}, ErrNeedMore},
		{"zero length", c, []byte{0, 0, 7}, ErrMalformedLength},
		{"length below header", Codec{WithRole: true}, []byte{1, 0, 7}, ErrMalformedLength},
		{"oversized payload", c, []byte{6, 0, 7, 1, 2, 3, 4, 5}, ErrPacketRecvTooLong},
		{"overrun", c, []byte{0xff, 0, 7, 1, 2, 3, 4, 5}, ErrReceivedMoreThanExpected},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, n, err := tc.codec.Decode(tc.in)
			require.ErrorIs(t, err, tc.expect)
			require.Zero(t, n)
		})
	}
}

func TestCodecRoundTrip(t *testing.T) {
	for _, c := range []Codec{{}, {WithRole: true}} {
		for size := 0; size <= c.PayloadLimit(); size += 17 {
			payload := make([]byte, size)
			for n := range payload {
				payload[n] = byte(n * 3)
			}
			b, err := c.Encode(RoleBottom, Identifier(size), payload)
			require.NoError(t, err)
			require.Len(t, b, c.EncodedSize(size))
			f, n, err := c.Decode(b)
			require.NoError(t, err)
			require.Equal(t, len(b), n)
			require.Equal(t, Identifier(size), f.Identifier)
			require.Equal(t, payload, f.Payload)
			if c.WithRole {
				require.Equal(t, RoleBottom, f.Role)
			}
		}
	}
}

func TestRole(t *testing.T) {
	for _, role := range []Role{RoleHost, RoleTop, RoleMiddle, RoleBottom} {
		parsed, err := ParseRole(role.String())
		require.NoError(t, err)
		require.Equal(t, role, parsed)
	}
	role, err := ParseRole("middle")
	require.NoError(t, err)
	require.Equal(t, RoleMiddle, role)
	role, err = ParseRole("3")
	require.NoError(t, err)
	require.Equal(t, RoleBottom, role)
	_, err = ParseRole("side")
	require.Error(t, err)
	require.Equal(t, "ROLE9", Role(9).String())
}
