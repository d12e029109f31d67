package statemachine

import "fmt"

// Transition declares that Event moves an entity from From to To.
type Transition[S, E comparable] struct {
	From  S
	To    S
	Event E
}

// Table maps (state, event) pairs to target states.
type Table[S, E comparable] struct {
	transitions map[S]map[E]S
}

// Option configures a Table during construction.
type Option[S, E comparable] func(*Table[S, E]) error

// WithTransition registers a transition. Registering the same state and
// event twice is an error because the target would be ambiguous.
func WithTransition[S, E comparable](from, to S, event E) Option[S, E] {
	return func(t *Table[S, E]) error {
		events, ok := t.transitions[from]
		if !ok {
			events = make(map[E]S)
			t.transitions[from] = events
		}
		if existing, ok := events[event]; ok {
			return fmt.Errorf("%w: %v on %v already leads to %v", ErrDuplicateTransition, from, event, existing)
		}
		events[event] = to
		return nil
	}
}

// WithTransitions registers every transition in ts.
func WithTransitions[S, E comparable](ts ...Transition[S, E]) Option[S, E] {
	return func(t *Table[S, E]) error {
		for _, tr := range ts {
			if err := WithTransition(tr.From, tr.To, tr.Event)(t); err != nil {
				return err
			}
		}
		return nil
	}
}

// New builds a table from opts.
func New[S, E comparable](opts ...Option[S, E]) (*Table[S, E], error) {
	t := &Table[S, E]{transitions: make(map[S]map[E]S)}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustNew is like New but panics on an invalid declaration.
func MustNew[S, E comparable](opts ...Option[S, E]) *Table[S, E] {
	t, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Fire returns the state event leads to from current.
func (t *Table[S, E]) Fire(current S, event E) (S, error) {
	if to, ok := t.transitions[current][event]; ok {
		return to, nil
	}
	var zero S
	return zero, &ErrNoTransitionAvailable{StateName: fmt.Sprint(current), EventName: fmt.Sprint(event)}
}

// CanFire reports whether event is allowed from current.
func (t *Table[S, E]) CanFire(current S, event E) bool {
	_, ok := t.transitions[current][event]
	return ok
}

// Events lists the events allowed from current, in no particular order.
func (t *Table[S, E]) Events(current S) []E {
	events := make([]E, 0, len(t.transitions[current]))
	for e := range t.transitions[current] {
		events = append(events, e)
	}
	return events
}
