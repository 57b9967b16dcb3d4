package mailing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	t.Parallel()

	allowed := []struct{ from, to Status }{
		{StatusDraft, StatusPending},
		{StatusDraft, StatusCanceled},
		{StatusPending, StatusSent},
		{StatusPending, StatusFailure},
		{StatusPending, StatusCanceled},
	}
	for _, tc := range allowed {
		require.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to Status }{
		{StatusDraft, StatusSent},
		{StatusSent, StatusPending},
		{StatusCanceled, StatusPending},
		{StatusFailure, StatusPending}, // failed mail needs an explicit re-queue
		{StatusFailure, StatusSent},
		{StatusPending, StatusDraft},
	}
	for _, tc := range denied {
		require.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestMail_Transition(t *testing.T) {
	t.Parallel()

	m := &Mail{Status: StatusDraft}
	require.NoError(t, m.transition(StatusPending))
	require.Equal(t, StatusPending, m.Status)

	err := m.transition(StatusDraft)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, StatusPending, m.Status)
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	st, err := ParseStatus("sent")
	require.NoError(t, err)
	require.Equal(t, StatusSent, st)

	_, err = ParseStatus("archived")
	require.ErrorIs(t, err, ErrInvalidConfig)
}
