package comm

import (
	"sync"

	"github.com/golang/glog"
)

// Severity is the level an Event is reported with.
type Severity int

// Severities.
const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityFatal
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityFatal:
		return "FATAL"
	}
	return "UNKNOWN"
}

// Event is reported to an EventSink for operator visibility.
type Event struct {
	Severity Severity
	Err      *Error
}

// EventSink receives events emitted by the core.
// Report is called inline on the reporting goroutine and must not block.
type EventSink interface {
	Report(Event)
}

// ReportFunc is func type of EventSink.
type ReportFunc func(Event)

// Report implements EventSink.
func (f ReportFunc) Report(ev Event) {
	f(ev)
}

// GlogSink reports events with glog.
// FATAL events are logged as errors, the process keeps running.
type GlogSink struct{}

// Report implements EventSink.
func (GlogSink) Report(ev Event) {
	switch ev.Severity {
	case SeverityWarning:
		glog.Warning(ev.Err)
	case SeverityFatal:
		glog.Errorf("FATAL %v", ev.Err)
	default:
		glog.Error(ev.Err)
	}
}

// EventRecorder keeps reported events in memory.
type EventRecorder struct {
	events []Event
	lock   sync.Mutex
}

// Report implements EventSink.
func (r *EventRecorder) Report(ev Event) {
	r.lock.Lock()
	r.events = append(r.events, ev)
	r.lock.Unlock()
}

// Events returns a copy of recorded events.
func (r *EventRecorder) Events() []Event {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]Event(nil), r.events...)
}

// Count counts recorded events with the code.
func (r *EventRecorder) Count(code ErrorCode) (n int) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, ev := range r.events {
		if ev.Err.Code == code {
			n++
		}
	}
	return
}

// Reset drops recorded events.
func (r *EventRecorder) Reset() {
	r.lock.Lock()
	r.events = nil
	r.lock.Unlock()
}

func report(sink EventSink, err *Error) {
	if sink == nil {
		sink = GlogSink{}
	}
	sink.Report(Event{Severity: err.Code.Severity(), Err: err})
}
