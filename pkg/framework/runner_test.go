package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestRunnerStopsOthersWhenOneStops(t *testing.T) {
	errFailed := errors.New("failed")
	r := NewRunner()
	r.Go(
		NamedRun("blocking", RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})),
		RunFunc(func(ctx context.Context) error {
			return errFailed
		}),
	)
	err := r.Wait()
	require.Error(t, err)
	agg, ok := err.(*AggregatedError)
	require.True(t, ok)
	require.Equal(t, []error{errFailed}, agg.Errors)
}

func TestRunnerCancel(t *testing.T) {
	r := NewRunner()
	r.Go(RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	r.Cancel()
	require.NoError(t, r.Wait())
}

func TestRunWithContextCloser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	closedCh := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := RunWithContextCloser(ctx, closerFunc(func() error {
		close(closedCh)
		return nil
	}), func() error {
		<-closedCh
		return errors.New("closed")
	})
	require.Equal(t, context.Canceled, err)
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	errA := errors.New("a")
	errs.Add(errA)
	require.Equal(t, "a", errs.Aggregate().Error())
	errs.Add(nil, errors.New("b"))
	require.Len(t, errs.Errors, 2)
	require.Equal(t, "Multiple errors:\na\nb", errs.Aggregate().Error())
	require.ErrorIs(t, errs.Aggregate(), errA)
	require.NotErrorIs(t, errs.Aggregate(), context.Canceled)
}
