package breathing

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrActive is returned by Start while a cycle runs.
var ErrActive = errors.New("breathing exercise already running")

// Ticker is the part of time.Ticker the timer uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock makes tickers.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type realClock struct{}

type realTicker struct{ t *time.Ticker }

func (realClock) NewTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

func (r realTicker) C() <-chan time.Time { return r.t.C }

func (r realTicker) Stop() { r.t.Stop() }

// Timer drives the state machine from a ticker, one goroutine per cycle.
type Timer struct {
	clock    Clock
	interval time.Duration

	mu        sync.Mutex
	state     State
	cycle     uint64
	cancel    context.CancelFunc
	done      chan struct{}
	observers []func(State)
}

// NewTimer returns an idle timer. A nil clock uses real time.
func NewTimer(clock Clock) *Timer {
	if clock == nil {
		clock = realClock{}
	}
	done := make(chan struct{})
	close(done)
	return &Timer{clock: clock, interval: Interval, done: done}
}

// OnChange registers fn to receive every state the timer enters. fn runs on
// the goroutine that caused the change and must not block.
func (t *Timer) OnChange(fn func(State)) {
	t.mu.Lock()
	t.observers = append(t.observers, fn)
	t.mu.Unlock()
}

// State returns the current state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Done is closed when the current cycle ends, whether it finished, was
// cancelled or its context was cancelled.
func (t *Timer) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Start begins a cycle. The cycle stops after the last tick, on Cancel or
// when ctx is cancelled.
func (t *Timer) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.state.Phase != Idle {
		t.mu.Unlock()
		return ErrActive
	}

	t.state = Next(t.state, EventStart)
	t.cycle++
	id := t.cycle
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	done := make(chan struct{})
	t.done = done
	ticker := t.clock.NewTicker(t.interval)
	state, observers := t.state, t.observers
	t.mu.Unlock()

	emit(observers, state)
	go t.run(runCtx, id, ticker, done)
	return nil
}

// Cancel returns a running cycle to Idle(0).
func (t *Timer) Cancel() {
	t.mu.Lock()
	if t.state.Phase == Idle {
		t.mu.Unlock()
		return
	}
	t.state = Next(t.state, EventCancel)
	t.cycle++
	if t.cancel != nil {
		t.cancel()
	}
	state, observers := t.state, t.observers
	t.mu.Unlock()

	emit(observers, state)
}

func (t *Timer) run(ctx context.Context, id uint64, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.apply(id, EventCancel)
			return
		case <-ticker.C():
			if !t.apply(id, EventTick) {
				return
			}
		}
	}
}

// apply feeds e into the cycle id and reports whether the cycle continues.
// Events from a superseded cycle are dropped.
func (t *Timer) apply(id uint64, e Event) bool {
	t.mu.Lock()
	if id != t.cycle {
		t.mu.Unlock()
		return false
	}

	states := []State{Next(t.state, e)}
	if states[0].Phase == Done {
		states = append(states, Next(states[0], EventReset))
	}
	t.state = states[len(states)-1]
	running := t.state.Phase == Counting
	if !running {
		t.cycle++
		t.cancel()
	}
	observers := t.observers
	t.mu.Unlock()

	for _, s := range states {
		emit(observers, s)
	}
	return running
}

func emit(observers []func(State), s State) {
	for _, fn := range observers {
		fn(s)
	}
}
