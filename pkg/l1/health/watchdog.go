// Package health escalates unhealthy links to FATAL events.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/robotalks/boardlink/pkg/l0/comm"
)

// Defaults of Watchdog.
const (
	DefaultWindow   = time.Minute
	DefaultInterval = time.Second
)

// Watchdog reports a FATAL event when the corrupted frames counted on a
// link within Window reach Limit. It only reports, links keep running.
type Watchdog struct {
	Stats  func() map[comm.Role]comm.StatsSnapshot
	Events comm.EventSink
	// Limit is the number of corrupted frames per Window, 0 disables.
	Limit    int
	Window   time.Duration
	Interval time.Duration

	windows map[comm.Role]*window
}

type window struct {
	start     time.Time
	base      uint64
	escalated bool
}

// New creates a Watchdog over the links of the manager.
func New(m *comm.Manager, limit int, events comm.EventSink) *Watchdog {
	return &Watchdog{
		Stats:    m.Stats,
		Events:   events,
		Limit:    limit,
		Window:   DefaultWindow,
		Interval: DefaultInterval,
	}
}

// Run implements Runnable.
func (w *Watchdog) Run(ctx context.Context) error {
	if w.Limit <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			w.Check(now)
		}
	}
}

// Check compares the counters with the start of the current window and
// returns the roles escalated by this call.
func (w *Watchdog) Check(now time.Time) (escalated []comm.Role) {
	if w.Limit <= 0 {
		return nil
	}
	if w.windows == nil {
		w.windows = make(map[comm.Role]*window)
	}
	length := w.Window
	if length <= 0 {
		length = DefaultWindow
	}
	for role, st := range w.Stats() {
		win := w.windows[role]
		if win == nil || now.Sub(win.start) >= length || st.Corrupted < win.base {
			w.windows[role] = &window{start: now, base: st.Corrupted}
			continue
		}
		n := st.Corrupted - win.base
		if win.escalated || n < uint64(w.Limit) {
			continue
		}
		win.escalated = true
		escalated = append(escalated, role)
		w.report(&comm.Error{
			Code: comm.ErrFatal,
			Role: role,
			Err:  fmt.Errorf("%d corrupted frames within %v", n, length),
		})
	}
	return
}

func (w *Watchdog) report(err *comm.Error) {
	sink := w.Events
	if sink == nil {
		sink = comm.GlogSink{}
	}
	sink.Report(comm.Event{Severity: comm.SeverityFatal, Err: err})
}
