package approval

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)

func ident(id string) Identity {
	return Identity{ExternalID: id, Username: id, Name: id, Email: id + "@example.com"}
}

func submitted(t *testing.T, approvers ...string) *Request {
	t.Helper()
	ids := make([]Identity, 0, len(approvers))
	for _, a := range approvers {
		ids = append(ids, ident(a))
	}
	r := &Request{
		RequestID: "r1",
		Category:  CategoryDevice,
		Status:    StatusPending,
		Requester: ident("req"),
		Steps:     NewSteps(ids),
	}
	require.NoError(t, r.Submit(t0))
	return r
}

func inProgressCount(r *Request) int {
	n := 0
	for _, s := range r.Steps {
		if s.Status == StepInProgress {
			n++
		}
	}
	return n
}

func TestSubmit(t *testing.T) {
	r := submitted(t, "a", "b")

	assert.Equal(t, StatusInProgress, r.Status)
	assert.Equal(t, StepInProgress, r.Steps[0].Status)
	assert.Equal(t, StepPending, r.Steps[1].Status)
	require.NotNil(t, r.SubmittedAt)
	assert.True(t, r.SubmittedAt.Equal(t0))

	assert.ErrorIs(t, r.Submit(t0), ErrInvalidTransition)
}

func TestSubmit_NoStepsStaysPending(t *testing.T) {
	r := &Request{Status: StatusPending}
	require.NoError(t, r.Submit(t0))
	assert.Equal(t, StatusPending, r.Status)
	assert.Nil(t, r.ActiveStep())
}

func TestApproveStep_TwoStepHappyPath(t *testing.T) {
	r := submitted(t, "a", "b")

	s, err := r.ApproveStep("a", "ok", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Sequence)
	assert.Equal(t, "ok", s.Comment)
	assert.Equal(t, StatusInProgress, r.Status)
	assert.Equal(t, StepInProgress, r.Steps[1].Status)
	assert.Equal(t, "1st stage complete", r.DisplayStatus())

	s, err = r.ApproveStep("b", "", t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Sequence)
	assert.Equal(t, StatusApproved, r.Status)
	assert.Equal(t, "Approved", r.DisplayStatus())
	require.NotNil(t, r.CompletedAt)
	assert.Equal(t, 0, inProgressCount(r))
}

func TestApproveStep_Errors(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T) *Request
		actor   string
		wantErr error
	}{
		{
			name:    "out of order",
			prepare: func(t *testing.T) *Request { return submitted(t, "a", "b") },
			actor:   "b",
			wantErr: ErrPreviousStepIncomplete,
		},
		{
			name:    "not assigned",
			prepare: func(t *testing.T) *Request { return submitted(t, "a", "b") },
			actor:   "x",
			wantErr: ErrStepNotAssigned,
		},
		{
			name: "already decided",
			prepare: func(t *testing.T) *Request {
				r := submitted(t, "a", "b")
				_, err := r.ApproveStep("a", "", t0)
				require.NoError(t, err)
				return r
			},
			actor:   "a",
			wantErr: ErrStepAlreadyDecided,
		},
		{
			name: "cancelled request",
			prepare: func(t *testing.T) *Request {
				r := submitted(t, "a", "b")
				require.NoError(t, r.Cancel("req", t0))
				return r
			},
			actor:   "a",
			wantErr: ErrRequestCompleted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.prepare(t)
			before := r.Status
			_, err := r.ApproveStep(tt.actor, "", t0)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, r.Status)
		})
	}
}

func TestRejectStep(t *testing.T) {
	r := submitted(t, "a", "b")

	_, err := r.RejectStep("a", "  ", t0)
	assert.ErrorIs(t, err, ErrReasonRequired)

	s, err := r.RejectStep("a", "not needed", t0)
	require.NoError(t, err)
	assert.Equal(t, StepRejected, s.Status)
	assert.Equal(t, "not needed", s.Comment)
	assert.Equal(t, StatusRejected, r.Status)
	assert.Equal(t, "Rejected", r.DisplayStatus())
	assert.Equal(t, StepPending, r.Steps[1].Status)

	_, err = r.RejectStep("b", "late", t0)
	assert.ErrorIs(t, err, ErrRequestCompleted)
}

func TestRejectStep_OutOfTurnAllowed(t *testing.T) {
	r := submitted(t, "a", "b")

	s, err := r.RejectStep("b", "wrong device", t0)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Sequence)
	assert.Equal(t, StatusRejected, r.Status)
	// step 1 is left untouched
	assert.Equal(t, StepInProgress, r.Steps[0].Status)
	assert.LessOrEqual(t, inProgressCount(r), 1)
}

func TestCancel(t *testing.T) {
	r := submitted(t, "a", "b")

	assert.ErrorIs(t, r.Cancel("a", t0), ErrNotRequester)
	require.NoError(t, r.Cancel("req", t0))
	assert.Equal(t, StatusCancelled, r.Status)
	assert.Equal(t, "Cancelled", r.DisplayStatus())

	assert.ErrorIs(t, r.Cancel("req", t0), ErrRequestCompleted)
}

func TestRestartWorkflow(t *testing.T) {
	r := submitted(t, "a", "b")
	assert.ErrorIs(t, r.RestartWorkflow(t0), ErrInvalidTransition)

	_, err := r.ApproveStep("a", "", t0)
	require.NoError(t, err)
	_, err = r.RejectStep("b", "no", t0)
	require.NoError(t, err)

	later := t0.Add(24 * time.Hour)
	require.NoError(t, r.RestartWorkflow(later))
	assert.Equal(t, StatusInProgress, r.Status)
	assert.Nil(t, r.CompletedAt)
	assert.True(t, r.SubmittedAt.Equal(later))
	for _, s := range r.Steps {
		assert.Nil(t, s.DecidedAt)
		assert.Empty(t, s.Comment)
	}
	assert.Equal(t, StepInProgress, r.Steps[0].Status)
	assert.Equal(t, LabelAwaiting, r.DisplayStatus())
}

func TestReplaceApprovers(t *testing.T) {
	r := submitted(t, "a", "b")
	_, err := r.ApproveStep("a", "", t0)
	require.NoError(t, err)

	require.NoError(t, r.ReplaceApprovers([]Identity{ident("c"), ident("d")}))
	require.Len(t, r.Steps, 2)
	assert.Equal(t, "c", r.Steps[0].Approver.ExternalID)
	assert.Equal(t, StepInProgress, r.Steps[0].Status)
	assert.Equal(t, StepPending, r.Steps[1].Status)
	assert.Equal(t, StatusInProgress, r.Status)
	assert.Equal(t, LabelAwaiting, r.DisplayStatus())
	assert.NoError(t, ValidateSequence(r.Steps))

	_, err = r.ApproveStep("a", "", t0)
	assert.ErrorIs(t, err, ErrStepNotAssigned)

	require.NoError(t, r.Cancel("req", t0))
	assert.True(t, errors.Is(r.ReplaceApprovers([]Identity{ident("e"), ident("f")}), ErrRequestCompleted))
}

func TestValidateSequence(t *testing.T) {
	ok := NewSteps([]Identity{ident("a"), ident("b"), ident("c")})
	assert.NoError(t, ValidateSequence(ok))

	gap := []Step{{Sequence: 1}, {Sequence: 3}}
	assert.ErrorIs(t, ValidateSequence(gap), ErrInvalidSequence)

	dup := []Step{{Sequence: 1}, {Sequence: 1}}
	assert.ErrorIs(t, ValidateSequence(dup), ErrInvalidSequence)
}

func TestSubmit_SortsSteps(t *testing.T) {
	r := &Request{
		Status: StatusPending,
		Steps: []Step{
			{Sequence: 2, Approver: ident("b")},
			{Sequence: 1, Approver: ident("a")},
		},
	}
	require.NoError(t, r.Submit(t0))
	active := r.ActiveStep()
	require.NotNil(t, active)
	assert.Equal(t, "a", active.Approver.ExternalID)
}
