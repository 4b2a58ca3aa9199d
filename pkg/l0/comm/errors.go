package comm

import (
	"errors"
	"fmt"
)

// ErrorCode is the error taxonomy of the protocol core.
// An ErrorCode is itself an error, so it can be matched with errors.Is.
type ErrorCode int

// Error codes.
const (
	// framing errors, recovered locally by resync.
	ErrPacketRecvTooLong ErrorCode = iota + 1
	ErrReceivedMoreThanExpected
	ErrMalformedLength
	ErrFrameTimeout
	ErrReceiveOverflow

	// transport errors.
	ErrWriteFailed
	ErrCarrierLost

	// dispatch errors, warnings only.
	ErrMissingCallback
	ErrOverrideCommandListener
	ErrMisrouted

	// configuration/identity errors.
	ErrPacketSendTooLong
	ErrDeviceNotFound
	ErrDeviceAlreadyConnected

	// ErrFatal is only reported by caller policy.
	ErrFatal
)

var errorCodeNames = map[ErrorCode]string{
	ErrPacketRecvTooLong:        "PACKET_RECV_TOO_LONG",
	ErrReceivedMoreThanExpected: "RECEIVED_MORE_THAN_EXPECTED",
	ErrMalformedLength:          "MALFORMED_LENGTH",
	ErrFrameTimeout:             "FRAME_TIMEOUT",
	ErrReceiveOverflow:          "RECEIVE_OVERFLOW",
	ErrWriteFailed:              "WRITE_FAILED",
	ErrCarrierLost:              "CARRIER_LOST",
	ErrMissingCallback:          "MISSING_CALLBACK",
	ErrOverrideCommandListener:  "OVERRIDE_COMMAND_LISTENER",
	ErrMisrouted:                "MISROUTED",
	ErrPacketSendTooLong:        "PACKET_SEND_TOO_LONG",
	ErrDeviceNotFound:           "DEVICE_NOT_FOUND",
	ErrDeviceAlreadyConnected:   "DEVICE_ALREADY_CONNECTED",
	ErrFatal:                    "FATAL",
}

// Error implements error.
func (c ErrorCode) Error() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ERROR_%d", int(c))
}

// IsFraming indicates the error is a recoverable framing error.
func (c ErrorCode) IsFraming() bool {
	return c >= ErrPacketRecvTooLong && c <= ErrReceiveOverflow
}

// Severity gets the default severity to report the code with.
func (c ErrorCode) Severity() Severity {
	switch {
	case c == ErrFatal:
		return SeverityFatal
	case c.IsFraming(), c >= ErrMissingCallback && c <= ErrMisrouted:
		return SeverityWarning
	default:
		return SeverityError
	}
}

var (
	// ErrNeedMore indicates more bytes are required to complete a frame.
	// It is not a failure.
	ErrNeedMore = errors.New("need more data")
	// ErrNotReady indicates the link is not connected for application traffic.
	ErrNotReady = errors.New("not ready")
	// ErrClosed indicates the link has been torn down.
	ErrClosed = errors.New("link closed")
)

// Error wraps a cause with an ErrorCode and where it happened.
type Error struct {
	Code       ErrorCode
	Role       Role
	Identifier Identifier
	Err        error
}

// Error implements error.
func (e *Error) Error() string {
	msg := e.Code.Error() + " [" + e.Role.String()
	if e.Code == ErrMissingCallback || e.Code == ErrOverrideCommandListener {
		msg += "/" + e.Identifier.String()
	}
	msg += "]"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the ErrorCode.
func (e *Error) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == e.Code
}

// CodeOf extracts the ErrorCode from err, or 0 if none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}
	return 0
}
