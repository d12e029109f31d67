package statemachine_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apimgmt/pkg/statemachine"
)

type state string

type event string

const (
	draft     state = "draft"
	inReview  state = "in_review"
	published state = "published"
	rejected  state = "rejected"

	submit  event = "submit"
	approve event = "approve"
	reject  event = "reject"
)

func newTable(t *testing.T) *statemachine.Table[state, event] {
	t.Helper()
	table, err := statemachine.New(
		statemachine.WithTransition(draft, inReview, submit),
		statemachine.WithTransitions(
			statemachine.Transition[state, event]{From: inReview, To: published, Event: approve},
			statemachine.Transition[state, event]{From: inReview, To: rejected, Event: reject},
		),
	)
	require.NoError(t, err)
	return table
}

func TestTable_Fire(t *testing.T) {
	t.Parallel()

	table := newTable(t)

	t.Run("allowed transition", func(t *testing.T) {
		t.Parallel()
		next, err := table.Fire(draft, submit)
		require.NoError(t, err)
		assert.Equal(t, inReview, next)
	})

	t.Run("same event from different states", func(t *testing.T) {
		t.Parallel()
		next, err := table.Fire(inReview, reject)
		require.NoError(t, err)
		assert.Equal(t, rejected, next)
	})

	t.Run("unknown transition", func(t *testing.T) {
		t.Parallel()
		_, err := table.Fire(published, submit)
		require.Error(t, err)
		assert.True(t, statemachine.IsNoTransitionAvailableError(err))
		assert.Contains(t, err.Error(), "published")
		assert.Contains(t, err.Error(), "submit")
	})
}

func TestTable_CanFire(t *testing.T) {
	t.Parallel()

	table := newTable(t)
	assert.True(t, table.CanFire(draft, submit))
	assert.False(t, table.CanFire(draft, approve))
	assert.False(t, table.CanFire(rejected, submit))
}

func TestTable_Events(t *testing.T) {
	t.Parallel()

	table := newTable(t)
	events := table.Events(inReview)
	sort.Slice(events, func(i, j int) bool { return events[i] < events[j] })
	assert.Equal(t, []event{approve, reject}, events)
	assert.Empty(t, table.Events(published))
}

func TestNew_DuplicateTransition(t *testing.T) {
	t.Parallel()

	_, err := statemachine.New(
		statemachine.WithTransition(draft, inReview, submit),
		statemachine.WithTransition(draft, published, submit),
	)
	require.ErrorIs(t, err, statemachine.ErrDuplicateTransition)

	assert.Panics(t, func() {
		statemachine.MustNew(
			statemachine.WithTransition(draft, inReview, submit),
			statemachine.WithTransition(draft, inReview, submit),
		)
	})
}
