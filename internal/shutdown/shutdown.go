// Package shutdown runs registered cleanup callbacks exactly once, in
// reverse registration order, when the process stops, whether that stop
// comes from a termination signal or from normal control flow.
package shutdown

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// State tracks the coordinator lifecycle.
type State int

const (
	StateIdle State = iota
	StateShuttingDown
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateShuttingDown:
		return "shutting down"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

type callback struct {
	name string
	fn   func() error
}

// Coordinator is a process-wide cleanup registry. Build one per process in
// main; tests build their own instances.
type Coordinator struct {
	mu        sync.Mutex
	callbacks []callback
	state     State
	done      chan struct{}
	sigCh     chan os.Signal
}

func NewCoordinator() *Coordinator {
	return &Coordinator{done: make(chan struct{})}
}

// Register appends a named cleanup callback. Callbacks run last-to-first
// during Shutdown, so register in resource acquisition order. Registrations
// after shutdown has begun are dropped with a log line.
func (c *Coordinator) Register(name string, fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		log.Printf("shutdown: dropping %q, shutdown already started", name)
		return
	}
	c.callbacks = append(c.callbacks, callback{name: name, fn: fn})
}

// RegisterSignals routes SIGINT and SIGTERM into Shutdown. The signal is
// received on an ordinary goroutine; no cleanup logic runs on the delivery
// path itself.
func (c *Coordinator) RegisterSignals() {
	c.mu.Lock()
	if c.sigCh != nil || c.state != StateIdle {
		c.mu.Unlock()
		return
	}
	c.sigCh = make(chan os.Signal, 1)
	ch := c.sigCh
	c.mu.Unlock()

	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig, ok := <-ch
		if !ok {
			return
		}
		log.Printf("shutdown: received %s", sig)
		c.Shutdown()
	}()
}

// Shutdown drains the registered callbacks in LIFO order. Only the first
// call runs them; concurrent or repeated calls return immediately. Each
// callback failure is logged and never stops the remaining callbacks. Wait
// on Done to observe completion.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return
	}
	c.state = StateShuttingDown
	cbs := c.callbacks
	c.mu.Unlock()

	log.Printf("shutdown: running %d cleanup callbacks", len(cbs))
	for i := len(cbs) - 1; i >= 0; i-- {
		c.runCallback(cbs[i])
	}

	c.mu.Lock()
	c.state = StateComplete
	if c.sigCh != nil {
		signal.Stop(c.sigCh)
		close(c.sigCh)
		c.sigCh = nil
	}
	c.mu.Unlock()

	close(c.done)
	log.Println("shutdown: complete")
}

func (c *Coordinator) runCallback(cb callback) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("shutdown: %s panicked: %v", cb.name, r)
		}
	}()
	if err := cb.fn(); err != nil {
		log.Printf("shutdown: %s: %v", cb.name, err)
	}
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed once every callback has been attempted.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}
