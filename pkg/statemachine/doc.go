// Package statemachine provides a stateless transition table for entities
// whose state lives in storage.
//
// The table does not hold a current state. Callers load an entity, ask the
// table for the state an event leads to, then persist the result:
//
//	lifecycle := statemachine.MustNew(
//		statemachine.WithTransition(Pending, Accepted, Accept),
//		statemachine.WithTransition(Pending, Rejected, Reject),
//	)
//
//	next, err := lifecycle.Fire(sub.Status, Accept)
//	if statemachine.IsNoTransitionAvailableError(err) {
//		// the event is not allowed from the current state
//	}
//
// A table is immutable once built and safe for concurrent use.
package statemachine
