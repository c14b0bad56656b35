package approval

import (
	"sort"
	"strings"
	"time"
)

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

func (s StepStatus) IsDecided() bool {
	return s == StepApproved || s == StepRejected
}

func (r *Request) IsTerminal() bool { return r.Status.IsTerminal() }

// NewSteps builds a fresh step list for approvers in order, sequenced from 1.
func NewSteps(approvers []Identity) []Step {
	steps := make([]Step, 0, len(approvers))
	for i, a := range approvers {
		steps = append(steps, Step{Sequence: i + 1, Approver: a, Status: StepPending})
	}
	return steps
}

// ValidateSequence checks that step sequences are exactly 1..N.
func ValidateSequence(steps []Step) error {
	seen := make(map[int]bool, len(steps))
	for _, s := range steps {
		if s.Sequence < 1 || s.Sequence > len(steps) || seen[s.Sequence] {
			return ErrInvalidSequence
		}
		seen[s.Sequence] = true
	}
	return nil
}

// Submit starts (or restarts) the workflow. Every step is reset and step 1
// becomes active. A request without steps stays PENDING.
func (r *Request) Submit(now time.Time) error {
	if r.Status != StatusPending {
		return ErrInvalidTransition
	}
	t := now
	r.SubmittedAt = &t
	r.activateFirst()
	return nil
}

// RestartWorkflow reopens a rejected or cancelled request.
func (r *Request) RestartWorkflow(now time.Time) error {
	if r.Status != StatusRejected && r.Status != StatusCancelled {
		return ErrInvalidTransition
	}
	r.CompletedAt = nil
	r.Status = StatusPending
	return r.Submit(now)
}

// ApproveStep records the approval of the active step held by approverID and
// either activates the next step or completes the request.
func (r *Request) ApproveStep(approverID, comment string, now time.Time) (*Step, error) {
	step, err := r.assignedStep(approverID)
	if err != nil {
		return nil, err
	}
	if r.IsTerminal() {
		return nil, ErrRequestCompleted
	}
	for i := range r.Steps {
		if r.Steps[i].Sequence < step.Sequence && r.Steps[i].Status != StepApproved {
			return nil, ErrPreviousStepIncomplete
		}
	}

	t := now
	step.Status = StepApproved
	step.DecidedAt = &t
	step.Comment = strings.TrimSpace(comment)

	if next := r.stepAt(step.Sequence + 1); next != nil {
		next.Status = StepInProgress
		r.Status = StatusInProgress
		return step, nil
	}
	r.Status = StatusApproved
	r.CompletedAt = &t
	return step, nil
}

// RejectStep rejects the request through any undecided step held by
// approverID. Unlike approval, earlier steps need not be approved first.
func (r *Request) RejectStep(approverID, reason string, now time.Time) (*Step, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	step, err := r.assignedStep(approverID)
	if err != nil {
		return nil, err
	}
	if r.IsTerminal() {
		return nil, ErrRequestCompleted
	}

	t := now
	step.Status = StepRejected
	step.DecidedAt = &t
	step.Comment = reason
	r.Status = StatusRejected
	r.CompletedAt = &t
	return step, nil
}

func (r *Request) Cancel(actorID string, now time.Time) error {
	if r.Requester.ExternalID != actorID {
		return ErrNotRequester
	}
	if r.IsTerminal() {
		return ErrRequestCompleted
	}
	t := now
	r.Status = StatusCancelled
	r.CompletedAt = &t
	return nil
}

// ReplaceApprovers discards every step and rebuilds the list from approvers,
// with step 1 active again. Earlier decisions are lost.
func (r *Request) ReplaceApprovers(approvers []Identity) error {
	if r.IsTerminal() {
		return ErrRequestCompleted
	}
	r.Steps = NewSteps(approvers)
	r.activateFirst()
	return nil
}

// ActiveStep returns the IN_PROGRESS step, if any.
func (r *Request) ActiveStep() *Step {
	for i := range r.Steps {
		if r.Steps[i].Status == StepInProgress {
			return &r.Steps[i]
		}
	}
	return nil
}

func (r *Request) activateFirst() {
	sort.SliceStable(r.Steps, func(i, j int) bool { return r.Steps[i].Sequence < r.Steps[j].Sequence })
	for i := range r.Steps {
		r.Steps[i].Status = StepPending
		r.Steps[i].DecidedAt = nil
		r.Steps[i].Comment = ""
	}
	if len(r.Steps) == 0 {
		r.Status = StatusPending
		return
	}
	r.Steps[0].Status = StepInProgress
	r.Status = StatusInProgress
}

func (r *Request) stepAt(seq int) *Step {
	for i := range r.Steps {
		if r.Steps[i].Sequence == seq {
			return &r.Steps[i]
		}
	}
	return nil
}

// assignedStep finds the undecided step held by approverID. If the approver
// only holds decided steps the result is ErrStepAlreadyDecided.
func (r *Request) assignedStep(approverID string) (*Step, error) {
	decided := false
	for i := range r.Steps {
		s := &r.Steps[i]
		if s.Approver.ExternalID != approverID {
			continue
		}
		if !s.Status.IsDecided() {
			return s, nil
		}
		decided = true
	}
	if decided {
		return nil, ErrStepAlreadyDecided
	}
	return nil, ErrStepNotAssigned
}
