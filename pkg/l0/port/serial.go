package port

import (
	"errors"
	"io"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/goburrow/serial"
)

// serialPollTimeout bounds a blocking read so Close is noticed.
const serialPollTimeout = 100 * time.Millisecond

// serialStream adapts serial.Port to a blocking stream.
// Read timeouts are retried until data arrives or the port is closed, and
// a zero-length read (device unplugged) is reported as io.EOF.
type serialStream struct {
	port     serial.Port
	deadline time.Time
	closed   bool
	lock     sync.Mutex
}

// OpenSerial opens a serial device in raw 8N1 mode.
func OpenSerial(device string, baudRate int) (io.ReadWriteCloser, error) {
	p, err := serial.Open(&serial.Config{
		Address:  device,
		BaudRate: baudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  serialPollTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &serialStream{port: p}, nil
}

func (s *serialStream) isClosed() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.closed
}

func (s *serialStream) Read(p []byte) (int, error) {
	for {
		if s.isClosed() {
			return 0, io.EOF
		}
		n, err := s.port.Read(p)
		if err == serial.ErrTimeout {
			continue
		}
		if n == 0 && err == nil {
			return 0, io.EOF
		}
		return n, err
	}
}

func (s *serialStream) Write(p []byte) (int, error) {
	s.lock.Lock()
	deadline := s.deadline
	s.lock.Unlock()
	var written int
	for written < len(p) {
		n, err := s.port.Write(p[written:])
		if n > 0 {
			written += n
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, syscall.EAGAIN) {
			return written, err
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return written, serial.ErrTimeout
		}
		time.Sleep(time.Millisecond)
	}
	return written, nil
}

// SetWriteDeadline bounds retries of a write the device can't accept.
func (s *serialStream) SetWriteDeadline(t time.Time) error {
	s.lock.Lock()
	s.deadline = t
	s.lock.Unlock()
	return nil
}

func (s *serialStream) Close() error {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return nil
	}
	s.closed = true
	s.lock.Unlock()
	return s.port.Close()
}

var serialPatterns = map[string][]string{
	"linux":  {"/dev/ttyACM*", "/dev/ttyUSB*"},
	"darwin": {"/dev/cu.usbmodem*", "/dev/cu.usbserial*"},
}

// Enumerate lists candidate serial devices boards may be attached to.
func Enumerate() ([]string, error) {
	var ports []string
	for _, pattern := range serialPatterns[runtime.GOOS] {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		ports = append(ports, matches...)
	}
	sort.Strings(ports)
	return ports, nil
}
