package comm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcher(t *testing.T) {
	var events EventRecorder
	d := NewDispatcher(RoleTop, &events)
	ctx := context.Background()

	require.False(t, d.Dispatch(ctx, 7, []byte{1}))
	require.Equal(t, 1, events.Count(ErrMissingCallback))
	ev := events.Events()[0]
	require.Equal(t, SeverityWarning, ev.Severity)
	require.Equal(t, RoleTop, ev.Err.Role)
	require.Equal(t, Identifier(7), ev.Err.Identifier)

	var first, second [][]byte
	require.False(t, d.Register(7, HandlerFunc(func(_ context.Context, payload []byte) {
		first = append(first, payload)
	})))
	require.True(t, d.Dispatch(ctx, 7, []byte{1}))
	require.Equal(t, [][]byte{{1}}, first)
	require.Zero(t, events.Count(ErrOverrideCommandListener))

	require.True(t, d.Register(7, HandlerFunc(func(_ context.Context, payload []byte) {
		second = append(second, payload)
	})))
	require.Equal(t, 1, events.Count(ErrOverrideCommandListener))
	require.True(t, d.Dispatch(ctx, 7, []byte{2}))
	require.Len(t, first, 1)
	require.Equal(t, [][]byte{{2}}, second)

	// identifiers are independent.
	require.False(t, d.Dispatch(ctx, 8, nil))
	require.Equal(t, 2, events.Count(ErrMissingCallback))

	d.Unregister(7)
	require.Nil(t, d.Handler(7))
	require.False(t, d.Dispatch(ctx, 7, nil))
	require.Equal(t, 3, events.Count(ErrMissingCallback))
}

func TestDispatcherAllIdentifiers(t *testing.T) {
	d := NewDispatcher(RoleBottom, &EventRecorder{})
	var got []Identifier
	for n := 0; n < 256; n++ {
		d.Register(Identifier(n), HandlerFunc(func(_ context.Context, payload []byte) {
			got = append(got, Identifier(payload[0]))
		}))
	}
	for n := 0; n < 256; n++ {
		require.True(t, d.Dispatch(context.Background(), Identifier(n), []byte{byte(n)}))
	}
	require.Len(t, got, 256)
	require.Equal(t, Identifier(255), got[255])
}

func TestErrorMatching(t *testing.T) {
	err := error(&Error{Code: ErrWriteFailed, Role: RoleMiddle, Identifier: 3, Err: ErrCarrierLost})
	require.ErrorIs(t, err, ErrWriteFailed)
	require.ErrorIs(t, err, ErrCarrierLost)
	require.NotErrorIs(t, err, ErrPacketSendTooLong)
	require.Equal(t, ErrWriteFailed, CodeOf(err))
	require.Equal(t, ErrMalformedLength, CodeOf(ErrMalformedLength))
	require.Equal(t, ErrorCode(0), CodeOf(ErrNeedMore))
	require.Equal(t, "WRITE_FAILED [MIDDLE]: CARRIER_LOST", err.Error())
	require.Equal(t, "MISSING_CALLBACK [TOP/7]", (&Error{Code: ErrMissingCallback, Role: RoleTop, Identifier: 7}).Error())

	require.True(t, ErrFrameTimeout.IsFraming())
	require.False(t, ErrWriteFailed.IsFraming())
	require.Equal(t, SeverityFatal, ErrFatal.Severity())
	require.Equal(t, SeverityWarning, ErrMisrouted.Severity())
	require.Equal(t, SeverityError, ErrDeviceNotFound.Severity())
}
