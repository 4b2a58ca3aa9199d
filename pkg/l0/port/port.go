// Package port opens the byte streams links run over.
//
// A port is addressed by URL:
//
//	serial:///dev/ttyACM0?baud=115200
//	/dev/ttyACM0                   (same as serial://)
//	tcp://localhost:7001
//	ws://localhost:7001/board
package port

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/websocket"

	"github.com/robotalks/boardlink/pkg/l0/comm"
)

// Defaults.
const (
	DefaultBaudRate    = 115200
	DefaultDialTimeout = 3 * time.Second
	DefaultWSOrigin    = "http://localhost/"
)

// Schemes.
const (
	SchemeSerial = "serial"
	SchemeTCP    = "tcp"
	SchemeWS     = "ws"
	SchemeWSS    = "wss"
)

// Address is a parsed port URL.
type Address struct {
	Scheme string
	// Path is the device path for serial, host:port for tcp.
	Path     string
	BaudRate int
	URL      *url.URL
}

// String implements fmt.Stringer.
func (a *Address) String() string {
	switch a.Scheme {
	case SchemeSerial:
		return fmt.Sprintf("serial://%s?baud=%d", a.Path, a.BaudRate)
	case SchemeTCP:
		return "tcp://" + a.Path
	}
	return a.URL.String()
}

// Parse parses a port URL.
func Parse(rawURL string) (*Address, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("empty port")
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = SchemeSerial + "://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", rawURL, err)
	}
	addr := &Address{Scheme: u.Scheme, URL: u}
	switch u.Scheme {
	case SchemeSerial:
		addr.Path = u.Host + u.Path
		if addr.Path == "" {
			return nil, fmt.Errorf("invalid port %q: missing device", rawURL)
		}
		addr.BaudRate = DefaultBaudRate
		if baud := u.Query().Get("baud"); baud != "" {
			if addr.BaudRate, err = strconv.Atoi(baud); err != nil || addr.BaudRate <= 0 {
				return nil, fmt.Errorf("invalid baud rate %q", baud)
			}
		}
	case SchemeTCP:
		if u.Host == "" {
			return nil, fmt.Errorf("invalid port %q: missing host", rawURL)
		}
		addr.Path = u.Host
	case SchemeWS, SchemeWSS:
		if u.Host == "" {
			return nil, fmt.Errorf("invalid port %q: missing host", rawURL)
		}
	default:
		return nil, fmt.Errorf("unknown port scheme: %q", u.Scheme)
	}
	return addr, nil
}

// Open opens the stream once.
func (a *Address) Open(ctx context.Context) (io.ReadWriteCloser, error) {
	switch a.Scheme {
	case SchemeSerial:
		return OpenSerial(a.Path, a.BaudRate)
	case SchemeTCP:
		return dial(ctx, a.Path)
	default:
		return a.openWebSocket(ctx)
	}
}

// Opener returns the comm.Opener of the port.
func (a *Address) Opener() comm.Opener {
	return a.Open
}

// NewOpener parses the port URL and creates the comm.Opener.
func NewOpener(rawURL string) (comm.Opener, error) {
	addr, err := Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return addr.Opener(), nil
}

// NewTransport creates a comm.StreamTransport on the port.
func NewTransport(rawURL string) (*comm.StreamTransport, error) {
	open, err := NewOpener(rawURL)
	if err != nil {
		return nil, err
	}
	return comm.NewStreamTransport(open), nil
}

func dial(ctx context.Context, hostport string) (net.Conn, error) {
	d := net.Dialer{Timeout: DefaultDialTimeout}
	return d.DialContext(ctx, "tcp", hostport)
}

func (a *Address) openWebSocket(ctx context.Context) (io.ReadWriteCloser, error) {
	conf, err := websocket.NewConfig(a.URL.String(), DefaultWSOrigin)
	if err != nil {
		return nil, err
	}
	host := a.URL.Host
	if a.URL.Port() == "" {
		if a.Scheme == SchemeWSS {
			host += ":443"
		} else {
			host += ":80"
		}
	}
	conn, err := dial(ctx, host)
	if err != nil {
		return nil, err
	}
	if a.Scheme == SchemeWSS {
		conn, err = tlsClient(conn, a.URL.Hostname())
		if err != nil {
			return nil, err
		}
	}
	ws, err := websocket.NewClient(conf, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	ws.PayloadType = websocket.BinaryFrame
	return ws, nil
}

func tlsClient(conn net.Conn, serverName string) (net.Conn, error) {
	c := tls.Client(conn, &tls.Config{ServerName: serverName})
	if err := c.Handshake(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}
