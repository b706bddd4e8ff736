package router

import (
	"errors"
	"sync"
)

// ErrReentrantDispatch is returned when a handler tries to navigate while its
// own dispatch is still running.
var ErrReentrantDispatch = errors.New("router: navigation requested during dispatch")

// History is the navigation record a Session reads the current path from and
// writes new paths to.
type History interface {
	Current() string
	Push(path string)
}

// State is the dispatch state of a Session.
type State int

const (
	Idle State = iota
	Dispatching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dispatching:
		return "dispatching"
	default:
		return "unknown"
	}
}

// Session binds a Dispatcher to a History. It belongs to a single navigator
// (one browser tab, one CLI session); the mutex only guards against misuse.
type Session[T any] struct {
	mu         sync.Mutex
	dispatcher *Dispatcher[T]
	history    History
	state      State
	last       Result[T]
}

// NewSession starts a session in the Idle state.
func NewSession[T any](d *Dispatcher[T], h History) *Session[T] {
	return &Session[T]{dispatcher: d, history: h}
}

// Navigate records path in the history and dispatches it. Navigating to the
// current path dispatches again without adding a history entry.
func (s *Session[T]) Navigate(path string) (Result[T], error) {
	path = Normalize(path)
	if !s.tryBegin() {
		return Result[T]{}, ErrReentrantDispatch
	}
	if Normalize(s.history.Current()) != path {
		s.history.Push(path)
	}
	return s.dispatch(path), nil
}

// PopState re-dispatches whatever the history reports as current, after the
// navigator has moved back or forward.
func (s *Session[T]) PopState() (Result[T], error) {
	if !s.tryBegin() {
		return Result[T]{}, ErrReentrantDispatch
	}
	return s.dispatch(s.history.Current()), nil
}

// State reports whether a dispatch is in progress.
func (s *Session[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Last returns the most recent dispatch result.
func (s *Session[T]) Last() Result[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Session[T]) tryBegin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Dispatching {
		return false
	}
	s.state = Dispatching
	return true
}

// dispatch returns the session to Idle even when a handler panics.
func (s *Session[T]) dispatch(path string) Result[T] {
	defer func() {
		s.mu.Lock()
		s.state = Idle
		s.mu.Unlock()
	}()

	res := s.dispatcher.Dispatch(path)
	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
	return res
}
