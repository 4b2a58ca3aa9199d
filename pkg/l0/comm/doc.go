// Package comm provides L0 protocol support.
package comm

// L0 protocol is communicated between L0 firmware boards and the host
// over point-to-point serial links (USB CDC), one link per board role.
//
// Each frame is prefixed by a little-endian 16-bit length counting every
// byte after the length itself: an optional role byte (when a transport
// multiplexes roles), the identifier byte and the payload.
// There is no checksum. Framing errors are recovered by sliding one byte
// and re-scanning for the next plausible length field.
//
// A link is activated by an IDENTIFY exchange (identifier 253) in which
// both sides announce their role. Application frames are dispatched only
// after the peer has identified with the expected role.
//
// Producer: L0 firmware
// Consumer: L1 host
