package bridge

import (
	"context"
	"strings"
	"time"

	"github.com/robotalks/boardlink/pkg/l1/msgs"
)

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Discover collects the retained status of links bridged by all hosts.
// It returns when timeout elapses or ctx is done.
func Discover(ctx context.Context, q PubSub, timeout time.Duration) (res []*msgs.LinkStatus, err error) {
	resCh := make(chan *msgs.LinkStatus, 16)
	sub := q.Sub("+/+/status", func(topic string, payload []byte) {
		if len(strings.Split(topic, "/")) != 3 {
			return
		}
		msg, err := msgs.DecodeMessage(payload)
		if err != nil {
			return
		}
		if status, ok := msg.(*msgs.LinkStatus); ok {
			select {
			case resCh <- status:
			case <-time.After(time.Second):
			}
		}
	})
	defer sub.Close()

	if timeout <= 0 {
		timeout = DefaultDiscoverTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case status := <-resCh:
			res = append(res, status)
		case <-timer.C:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}
