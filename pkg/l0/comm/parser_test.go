package comm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func encodeFrames(t *testing.T, c Codec, frames ...Frame) []byte {
	var b []byte
	for _, f := range frames {
		var err error
		b, err = c.Append(b, f.Role, f.Identifier, f.Payload)
		require.NoError(t, err)
	}
	return b
}

func requireFrames(t *testing.T, expect []Frame, actual []*Frame) {
	require.Len(t, actual, len(expect))
	for n, f := range expect {
		require.Equal(t, f.Role, actual[n].Role, "frame %d", n)
		require.Equal(t, f.Identifier, actual[n].Identifier, "frame %d", n)
		if len(f.Payload) == 0 {
			require.Empty(t, actual[n].Payload, "frame %d", n)
		} else {
			require.Equal(t, f.Payload, actual[n].Payload, "frame %d", n)
		}
	}
}

var parserTestFrames = []Frame{
	{Identifier: 7, Payload: []byte{10, 20}},
	{Identifier: 1},
	{Identifier: 200, Payload: []byte{0, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
	{Identifier: IdentifierIdentify, Payload: []byte{1, 0, 0}},
}

func TestParserWhole(t *testing.T) {
	p := &Parser{}
	pr := p.Parse(encodeFrames(t, p.Codec, parserTestFrames...))
	require.False(t, pr.Corrupted())
	require.Zero(t, pr.Discarded)
	requireFrames(t, parserTestFrames, pr.Frames)
	require.Zero(t, p.Buffered())
}

func TestParserChunked(t *testing.T) {
	data := encodeFrames(t, Codec{}, parserTestFrames...)
	for chunk := 1; chunk <= len(data); chunk++ {
		p := &Parser{}
		var pr ParseResult
		for start := 0; start < len(data); start += chunk {
			end := start + chunk
			if end > len(data) {
				end = len(data)
			}
			pr.merge(p.Parse(data[start:end]))
		}
		require.False(t, pr.Corrupted(), "chunk %d", chunk)
		requireFrames(t, parserTestFrames, pr.Frames)
		require.Zero(t, p.Buffered())
	}
}

func TestParserWithRole(t *testing.T) {
	p := &Parser{Codec: Codec{WithRole: true}}
	frames := []Frame{
		{Role: RoleHost, Identifier: 3, Payload: []byte{1}},
		{Role: RoleBottom, Identifier: 4},
	}
	pr := p.Parse(encodeFrames(t, p.Codec, frames...))
	require.False(t, pr.Corrupted())
	requireFrames(t, frames, pr.Frames)
}

func TestParserPartialIsBuffered(t *testing.T) {
	p := &Parser{}
	data := encodeFrames(t, p.Codec, Frame{Identifier: 7, Payload: []byte{10, 20}})
	pr := p.Parse(data[:3])
	require.Empty(t, pr.Frames)
	require.False(t, pr.Corrupted())
	require.Equal(t, 3, p.Buffered())
	pr = p.Parse(data[3:])
	requireFrames(t, []Frame{{Identifier: 7, Payload: []byte{10, 20}}}, pr.Frames)
}

func TestParserMalformedResync(t *testing.T) {
	p := &Parser{}
	good := Frame{Identifier: 7, Payload: []byte{10, 20}}
	data := append([]byte{0, 0}, encodeFrames(t, p.Codec, good)...)
	pr := p.Parse(data)
	require.True(t, pr.Corrupted())
	require.ErrorIs(t, pr.Errors[0], ErrMalformedLength)
	require.Equal(t, 1, pr.Discarded)
	// the slid window reads a huge length until the frame window expires.
	require.Empty(t, pr.Frames)
	pr = p.Timeout()
	require.Equal(t, 1, pr.Discarded)
	requireFrames(t, []Frame{good}, pr.Frames)
	require.Zero(t, p.Buffered())

	// garbage beyond the largest frame resyncs without waiting.
	p.Parse([]byte{0, 0})
	pr = p.Parse(encodeFrames(t, p.Codec, good, Frame{Identifier: 1, Payload: make([]byte, DefaultMaxPayload)}))
	requireFrames(t, []Frame{good}, pr.Frames[:1])
	require.NotEmpty(t, pr.Errors)
}

func TestParserRecvTooLong(t *testing.T) {
	p := &Parser{Codec: Codec{MaxPayload: 2}}
	good := Frame{Identifier: 7, Payload: []byte{10, 20}}
	data := append([]byte{4, 0, 1, 2, 3, 4}, encodeFrames(t, p.Codec, good)...)
	pr := p.Parse(data)
	require.True(t, pr.Corrupted())
	require.ErrorIs(t, pr.Errors[0], ErrPacketRecvTooLong)
	requireFrames(t, []Frame{good}, pr.Frames)
}

func TestParserOverrun(t *testing.T) {
	p := &Parser{Codec: Codec{MaxPayload: 4}}
	// claims a frame far larger than any acceptable one.
	pr := p.Parse([]byte{0xf0, 0xf0, 1, 1, 1, 1, 1, 1})
	require.True(t, pr.Corrupted())
	require.ErrorIs(t, pr.Errors[0], ErrReceivedMoreThanExpected)
	require.Less(t, p.Buffered(), p.Codec.MaxFrameSize()+1)
}

func TestParserTimeout(t *testing.T) {
	p := &Parser{}
	pr := p.Timeout()
	require.False(t, pr.Corrupted())

	good := Frame{Identifier: 7, Payload: []byte{10, 20}}
	// a stale length field hides the complete frame behind it.
	data := append([]byte{0x20, 0}, encodeFrames(t, p.Codec, good)...)
	pr = p.Parse(data)
	require.Empty(t, pr.Frames)
	require.False(t, pr.Corrupted())
	require.Equal(t, len(data), p.Buffered())

	pr = p.Timeout()
	require.True(t, pr.Corrupted())
	require.ErrorIs(t, pr.Errors[0], ErrFrameTimeout)
	requireFrames(t, []Frame{good}, pr.Frames)
	require.Zero(t, p.Buffered())
}

func TestParserReset(t *testing.T) {
	p := &Parser{}
	p.Parse([]byte{3, 0, 7})
	require.Equal(t, 3, p.Buffered())
	p.Reset()
	require.Zero(t, p.Buffered())
	pr := p.Parse(encodeFrames(t, p.Codec, Frame{Identifier: 1, Payload: []byte{2}}))
	requireFrames(t, []Frame{{Identifier: 1, Payload: []byte{2}}}, pr.Frames)
}

func TestParserNoiseBurstIsOneError(t *testing.T) {
	p := &Parser{}
	good := Frame{Identifier: 7, Payload: []byte{10, 20}}
	data := append(make([]byte, 120), encodeFrames(t, p.Codec, good)...)
	pr := p.Parse(data)
	require.Len(t, pr.Errors, 1)
	require.ErrorIs(t, pr.Errors[0], ErrMalformedLength)
	require.Equal(t, 119, pr.Discarded)
	// the last zero and the length field read as a large pending frame.
	require.Empty(t, pr.Frames)

	pr = p.Timeout()
	require.Len(t, pr.Errors, 1)
	require.ErrorIs(t, pr.Errors[0], ErrFrameTimeout)
	require.Equal(t, 1, pr.Discarded)
	requireFrames(t, []Frame{good}, pr.Frames)
}

func TestParserErrorPerResyncRun(t *testing.T) {
	p := &Parser{Codec: Codec{MaxPayload: 4}}
	good := Frame{Identifier: 7, Payload: []byte{10, 20}}
	var data []byte
	data = append(data, 0, 0, 0, 0)
	data = append(data, encodeFrames(t, p.Codec, good)...)
	data = append(data, 0, 0, 0, 0)
	pr := p.Parse(data)
	require.Len(t, pr.Errors, 2)
	require.ErrorIs(t, pr.Errors[0], ErrMalformedLength)
	require.ErrorIs(t, pr.Errors[1], ErrMalformedLength)
	require.Equal(t, 7, pr.Discarded)
	requireFrames(t, []Frame{good}, pr.Frames)
	require.Equal(t, 1, p.Buffered())

	// a new chunk starts a new run.
	pr = p.Parse([]byte{0, 0})
	require.Len(t, pr.Errors, 1)
	require.Equal(t, 2, pr.Discarded)
}
