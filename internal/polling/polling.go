// Package polling restarts the bot update loop when another instance
// still holds the Telegram getUpdates slot, backing off between tries.
package polling

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
)

var (
	// ErrConflict marks an update-loop failure caused by a second
	// consumer polling the same bot token.
	ErrConflict = errors.New("another consumer is polling this bot")

	// ErrRetriesExhausted is returned once every allowed retry failed
	// with ErrConflict.
	ErrRetriesExhausted = errors.New("polling retries exhausted")
)

const (
	DefaultMaxRetries    = 5
	DefaultInitialDelay  = 5 * time.Second
	DefaultMaxDelay      = 5 * time.Minute
	DefaultBackoffFactor = 2.0
)

// Operation runs the update loop until it stops. A nil return is a
// graceful stop. An error wrapping ErrConflict asks the driver to wait
// and start the loop again; anything else is passed through untouched.
type Operation func(ctx context.Context) error

// Options configure a Driver. Zero fields fall back to the defaults
// above. Sleep is the wait between attempts; tests inject a recorder.
type Options struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	Sleep         func(ctx context.Context, d time.Duration) error
}

// Driver reruns an Operation after conflicts with exponential backoff.
type Driver struct {
	maxRetries    int
	initialDelay  time.Duration
	maxDelay      time.Duration
	backoffFactor float64
	sleep         func(ctx context.Context, d time.Duration) error
}

func New(opts Options) *Driver {
	d := &Driver{
		maxRetries:    opts.MaxRetries,
		initialDelay:  opts.InitialDelay,
		maxDelay:      opts.MaxDelay,
		backoffFactor: opts.BackoffFactor,
		sleep:         opts.Sleep,
	}
	if d.maxRetries <= 0 {
		d.maxRetries = DefaultMaxRetries
	}
	if d.initialDelay <= 0 {
		d.initialDelay = DefaultInitialDelay
	}
	if d.maxDelay <= 0 {
		d.maxDelay = DefaultMaxDelay
	}
	if d.backoffFactor <= 1 {
		d.backoffFactor = DefaultBackoffFactor
	}
	if d.sleep == nil {
		d.sleep = WaitContext
	}
	return d
}

// Run calls op until it stops cleanly, fails with a non-conflict error,
// runs out of retries, or ctx ends during a backoff wait. onConflict,
// when non-nil, fires after each conflict before the wait starts.
func (d *Driver) Run(ctx context.Context, op Operation, onConflict func()) error {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = d.initialDelay
	expo.RandomizationFactor = 0
	expo.Multiplier = d.backoffFactor
	expo.MaxInterval = d.maxDelay
	expo.Reset()

	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrConflict) {
			return err
		}
		if attempt > d.maxRetries {
			return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, err)
		}

		delay := expo.NextBackOff()
		log.Printf("Polling conflict on attempt %d/%d, retrying in %s: %v", attempt, d.maxRetries+1, delay, err)
		if onConflict != nil {
			onConflict()
		}
		if err := d.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// WaitContext pauses for d unless ctx ends first, in which case it
// returns the context error.
func WaitContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
