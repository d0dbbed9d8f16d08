// Package breathing runs the guided breathing exercise: a counter that
// advances once per interval and returns to zero after the last cycle.
package breathing

import "time"

// Defaults of the exercise.
const (
	Cycles   = 6
	Interval = 4 * time.Second
)

// Phase of the exercise.
type Phase int

const (
	Idle Phase = iota
	Counting
	Done
)

func (p Phase) String() string {
	switch p {
	case Counting:
		return "counting"
	case Done:
		return "done"
	default:
		return "idle"
	}
}

// State is the phase plus the counter shown to the user.
type State struct {
	Phase Phase
	Count int
}

// Event drives the state machine.
type Event int

const (
	EventStart Event = iota
	EventTick
	EventCancel
	EventReset
)

// Next returns the state after e. Events that do not apply to s leave it
// unchanged.
func Next(s State, e Event) State {
	switch s.Phase {
	case Idle:
		if e == EventStart {
			return State{Phase: Counting}
		}
	case Counting:
		switch e {
		case EventTick:
			n := s.Count + 1
			if n >= Cycles {
				return State{Phase: Done, Count: Cycles}
			}
			return State{Phase: Counting, Count: n}
		case EventCancel:
			return State{Phase: Idle}
		}
	case Done:
		if e == EventReset || e == EventCancel {
			return State{Phase: Idle}
		}
	}
	return s
}
