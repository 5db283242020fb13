package polling

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepRecorder struct {
	delays []time.Duration
	err    error
}

func (s *sleepRecorder) wait(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return s.err
}

func newTestDriver(rec *sleepRecorder) *Driver {
	return New(Options{Sleep: rec.wait})
}

func TestRunRecoversFromTransientConflicts(t *testing.T) {
	rec := &sleepRecorder{}
	d := newTestDriver(rec)

	calls := 0
	conflicts := 0
	err := d.Run(context.Background(), func(context.Context) error {
		calls++
		if calls <= 3 {
			return fmt.Errorf("getUpdates failed: %w", ErrConflict)
		}
		return nil
	}, func() { conflicts++ })

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 3, conflicts)
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second}, rec.delays)
}

func TestRunGivesUpAfterAllRetries(t *testing.T) {
	rec := &sleepRecorder{}
	d := newTestDriver(rec)

	calls := 0
	err := d.Run(context.Background(), func(context.Context) error {
		calls++
		return ErrConflict
	}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "after 6 attempts")
	assert.Equal(t, 6, calls)
	assert.Equal(t, []time.Duration{
		5 * time.Second,
		10 * time.Second,
		20 * time.Second,
		40 * time.Second,
		80 * time.Second,
	}, rec.delays)
}

func TestRunPropagatesOtherErrorsImmediately(t *testing.T) {
	rec := &sleepRecorder{}
	d := newTestDriver(rec)

	fatal := errors.New("401 unauthorized")
	calls := 0
	err := d.Run(context.Background(), func(context.Context) error {
		calls++
		return fatal
	}, nil)

	assert.Equal(t, fatal, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
}

func TestRunStopsOnCleanReturn(t *testing.T) {
	rec := &sleepRecorder{}
	d := newTestDriver(rec)

	calls := 0
	err := d.Run(context.Background(), func(context.Context) error {
		calls++
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
}

func TestRunStopsWhenBackoffWaitIsCancelled(t *testing.T) {
	rec := &sleepRecorder{err: context.Canceled}
	d := newTestDriver(rec)

	calls := 0
	err := d.Run(context.Background(), func(context.Context) error {
		calls++
		return ErrConflict
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Len(t, rec.delays, 1)
}

func TestRunCapsDelayAtMaxDelay(t *testing.T) {
	rec := &sleepRecorder{}
	d := New(Options{
		MaxRetries:   4,
		InitialDelay: 5 * time.Second,
		MaxDelay:     12 * time.Second,
		Sleep:        rec.wait,
	})

	err := d.Run(context.Background(), func(context.Context) error {
		return ErrConflict
	}, nil)

	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Contains(t, err.Error(), "after 5 attempts")
	assert.Equal(t, []time.Duration{
		5 * time.Second,
		10 * time.Second,
		12 * time.Second,
		12 * time.Second,
	}, rec.delays)
}

func TestWaitContextReturnsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := WaitContext(ctx, time.Minute)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestWaitContextElapses(t *testing.T) {
	err := WaitContext(context.Background(), time.Millisecond)
	assert.NoError(t, err)
}
