package router

import "fmt"

// Handler produces the outcome of a dispatch from the captured parameters.
type Handler[T any] func(params []string) T

// Route pairs a matcher with the handler it selects.
type Route[T any] struct {
	Matcher Matcher
	Handler Handler[T]
}

// Result is the outcome of Dispatch.
type Result[T any] struct {
	Path     string
	Params   []string
	Value    T
	NotFound bool
}

// Dispatcher resolves paths against a fixed route table. It holds no mutable
// state and is safe for concurrent use.
type Dispatcher[T any] struct {
	routes   []Route[T]
	notFound Handler[T]
}

// New builds a dispatcher from an ordered route table. The slice is copied so
// later changes by the caller do not affect routing.
func New[T any](notFound Handler[T], routes ...Route[T]) *Dispatcher[T] {
	if notFound == nil {
		panic("router: nil not-found handler")
	}
	table := make([]Route[T], len(routes))
	copy(table, routes)
	for i, r := range table {
		if r.Matcher == nil || r.Handler == nil {
			panic(fmt.Sprintf("router: route %d has a nil matcher or handler", i))
		}
	}
	return &Dispatcher[T]{routes: table, notFound: notFound}
}

// Dispatch normalizes path, runs the first matching handler and returns its
// value. Unmatched paths run the not-found handler.
func (d *Dispatcher[T]) Dispatch(path string) Result[T] {
	path = Normalize(path)
	for _, r := range d.routes {
		if params, ok := r.Matcher.Match(path); ok {
			return Result[T]{Path: path, Params: params, Value: r.Handler(params)}
		}
	}
	return Result[T]{Path: path, Value: d.notFound(nil), NotFound: true}
}

// Routes returns a copy of the route table in match order.
func (d *Dispatcher[T]) Routes() []Route[T] {
	out := make([]Route[T], len(d.routes))
	copy(out, d.routes)
	return out
}

// Table collects routes during startup. Duplicates are kept in order, so a
// later route with the same matcher is never reached.
type Table[T any] struct {
	routes []Route[T]
}

// Register appends a route.
func (t *Table[T]) Register(m Matcher, h Handler[T]) *Table[T] {
	t.routes = append(t.routes, Route[T]{Matcher: m, Handler: h})
	return t
}

// Len reports how many routes have been registered.
func (t *Table[T]) Len() int {
	return len(t.routes)
}

// Build freezes the table into a Dispatcher.
func (t *Table[T]) Build(notFound Handler[T]) *Dispatcher[T] {
	return New(notFound, t.routes...)
}
