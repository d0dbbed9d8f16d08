package breathing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeTicker struct {
	c       chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() { t.once.Do(func() { close(t.stopped) }) }

type fakeClock struct {
	mu       sync.Mutex
	tickers  []*fakeTicker
	interval time.Duration
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time), stopped: make(chan struct{})}
	c.tickers = append(c.tickers, t)
	c.interval = d
	return t
}

func (c *fakeClock) last() *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[len(c.tickers)-1]
}

func newTestTimer() (*Timer, *fakeClock, chan State) {
	clock := &fakeClock{}
	timer := NewTimer(clock)
	states := make(chan State, 32)
	timer.OnChange(func(s State) { states <- s })
	return timer, clock, states
}

func next(t *testing.T, states chan State) State {
	t.Helper()
	select {
	case s := <-states:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no state change")
		return State{}
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		name string
		from State
		ev   Event
		want State
	}{
		{"start", State{Idle, 0}, EventStart, State{Counting, 0}},
		{"tick", State{Counting, 2}, EventTick, State{Counting, 3}},
		{"last tick", State{Counting, 5}, EventTick, State{Done, 6}},
		{"reset", State{Done, 6}, EventReset, State{Idle, 0}},
		{"cancel", State{Counting, 4}, EventCancel, State{Idle, 0}},
		{"start while counting", State{Counting, 1}, EventStart, State{Counting, 1}},
		{"tick while idle", State{Idle, 0}, EventTick, State{Idle, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Next(tt.from, tt.ev); got != tt.want {
				t.Errorf("Next(%+v, %d) = %+v, want %+v", tt.from, tt.ev, got, tt.want)
			}
		})
	}
}

func TestTimerFullCycle(t *testing.T) {
	timer, clock, states := newTestTimer()

	if err := timer.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if clock.interval != 4*time.Second {
		t.Errorf("interval = %v, want 4s", clock.interval)
	}
	if s := next(t, states); s != (State{Counting, 0}) {
		t.Fatalf("first state = %+v", s)
	}
	if err := timer.Start(context.Background()); !errors.Is(err, ErrActive) {
		t.Errorf("second Start() error = %v, want ErrActive", err)
	}

	ticker := clock.last()
	for i := 1; i < Cycles; i++ {
		ticker.c <- time.Time{}
		if s := next(t, states); s != (State{Counting, i}) {
			t.Fatalf("tick %d state = %+v", i, s)
		}
	}
	ticker.c <- time.Time{}
	if s := next(t, states); s != (State{Done, 6}) {
		t.Fatalf("last tick state = %+v", s)
	}
	if s := next(t, states); s != (State{Idle, 0}) {
		t.Fatalf("after done state = %+v", s)
	}

	<-timer.Done()
	<-ticker.stopped
	if err := timer.Start(context.Background()); err != nil {
		t.Errorf("restart error = %v", err)
	}
	timer.Cancel()
}

func TestTimerCancel(t *testing.T) {
	timer, clock, states := newTestTimer()
	timer.Start(context.Background())
	next(t, states)

	clock.last().c <- time.Time{}
	next(t, states)

	timer.Cancel()
	if s := next(t, states); s != (State{Idle, 0}) {
		t.Fatalf("state after Cancel = %+v", s)
	}
	<-timer.Done()
	<-clock.last().stopped

	if timer.State() != (State{Idle, 0}) {
		t.Errorf("State() = %+v", timer.State())
	}
	select {
	case s := <-states:
		t.Errorf("unexpected state %+v after cancel", s)
	default:
	}
}

func TestTimerContextCancel(t *testing.T) {
	timer, _, states := newTestTimer()
	ctx, cancel := context.WithCancel(context.Background())

	timer.Start(ctx)
	next(t, states)
	cancel()

	if s := next(t, states); s != (State{Idle, 0}) {
		t.Fatalf("state after ctx cancel = %+v", s)
	}
	<-timer.Done()
}

func TestStaleTickerIgnored(t *testing.T) {
	timer, clock, states := newTestTimer()
	timer.Start(context.Background())
	next(t, states)
	old := clock.last()
	timer.Cancel()
	next(t, states)
	<-timer.Done()

	timer.Start(context.Background())
	next(t, states)
	if clock.last() == old {
		t.Fatal("new cycle reused the old ticker")
	}

	// the old goroutine has exited, so nothing reads the old ticker
	select {
	case old.c <- time.Time{}:
		t.Error("old ticker still read")
	case <-time.After(20 * time.Millisecond):
	}
	if timer.State() != (State{Counting, 0}) {
		t.Errorf("State() = %+v", timer.State())
	}
	timer.Cancel()
}
