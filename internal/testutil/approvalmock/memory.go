package approvalmock

import (
	"context"
	"sort"
	"sync"

	domain "device-approval-backend/internal/domain/approval"
)

// Memory keeps requests, steps and comments in maps and wires the mocks'
// function fields to them. Tests override single fields to inject failures.
type Memory struct {
	mu       sync.Mutex
	nextID   uint64
	requests map[string]*domain.Request
	steps    map[uint64][]domain.Step
	comments map[uint64][]domain.Comment

	Requests *Repo
	Steps    *StepRepo
	Comments *CommentRepo
}

func NewMemory() *Memory {
	m := &Memory{
		requests: map[string]*domain.Request{},
		steps:    map[uint64][]domain.Step{},
		comments: map[uint64][]domain.Comment{},
	}
	m.Requests = &Repo{
		CreateFn:                     m.create,
		GetByRequestIDFn:             m.get,
		GetByRequestIDForUpdateFn:    m.get,
		SaveStateFn:                  m.saveState,
		SaveDetailFn:                 m.saveDetail,
		ListByCategoryAndStatusesFn:  m.listByStatuses,
		ListByCategoryAndRequesterFn: m.listByRequester,
		DeleteFn:                     m.delete,
	}
	m.Steps = &StepRepo{
		ListByRequestFn:  m.listSteps,
		GetBySequenceFn:  m.stepBySequence,
		ListByApproverFn: m.stepsByApprover,
		UpdateFromFn:     m.updateStep,
		ReplaceAllFn:     m.replaceSteps,
	}
	m.Comments = &CommentRepo{
		CreateFn:         m.createComment,
		GetByCommentIDFn: m.getComment,
		ListByRequestFn:  m.listComments,
		UpdateFn:         m.updateComment,
		DeleteFn:         m.deleteComment,
	}
	return m
}

// Put stores r as if it had been created, without touching its statuses.
func (m *Memory) Put(r *domain.Request) {
	_ = m.create(context.Background(), r)
}

// Stored returns a copy of the stored request with its steps.
func (m *Memory) Stored(requestID string) *domain.Request {
	r, err := m.get(context.Background(), requestID)
	if err != nil {
		return nil
	}
	return r
}

func (m *Memory) id() uint64 {
	m.nextID++
	return m.nextID
}

func (m *Memory) create(_ context.Context, r *domain.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == 0 {
		r.ID = m.id()
	}
	for i := range r.Steps {
		r.Steps[i].ID = m.id()
		r.Steps[i].ApprovalRequestID = r.ID
	}
	if r.DeviceDetail != nil {
		r.DeviceDetail.ID = m.id()
		r.DeviceDetail.ApprovalRequestID = r.ID
	}
	cp := *r
	cp.Steps = nil
	if r.DeviceDetail != nil {
		d := *r.DeviceDetail
		cp.DeviceDetail = &d
	}
	m.requests[r.RequestID] = &cp
	m.steps[r.ID] = append([]domain.Step(nil), r.Steps...)
	return nil
}

func (m *Memory) load(r *domain.Request) *domain.Request {
	cp := *r
	if r.DeviceDetail != nil {
		d := *r.DeviceDetail
		cp.DeviceDetail = &d
	}
	cp.Steps = append([]domain.Step(nil), m.steps[r.ID]...)
	sort.Slice(cp.Steps, func(i, j int) bool { return cp.Steps[i].Sequence < cp.Steps[j].Sequence })
	return &cp
}

func (m *Memory) get(_ context.Context, requestID string) (*domain.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[requestID]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return m.load(r), nil
}

func (m *Memory) byPK(pk uint64) *domain.Request {
	for _, r := range m.requests {
		if r.ID == pk {
			return r
		}
	}
	return nil
}

func (m *Memory) saveState(_ context.Context, r *domain.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.requests[r.RequestID]
	if !ok {
		return domain.ErrRequestNotFound
	}
	stored.Status = r.Status
	stored.Title = r.Title
	stored.Reason = r.Reason
	stored.SubmittedAt = r.SubmittedAt
	stored.DueAt = r.DueAt
	stored.CompletedAt = r.CompletedAt
	return nil
}

func (m *Memory) delete(_ context.Context, r *domain.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[r.RequestID]; !ok {
		return domain.ErrRequestNotFound
	}
	delete(m.requests, r.RequestID)
	delete(m.steps, r.ID)
	delete(m.comments, r.ID)
	return nil
}

func (m *Memory) saveDetail(_ context.Context, d *domain.DeviceDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.byPK(d.ApprovalRequestID)
	if r == nil {
		return domain.ErrRequestNotFound
	}
	cp := *d
	r.DeviceDetail = &cp
	return nil
}

func (m *Memory) listByStatuses(_ context.Context, f domain.ListFilter) ([]domain.Request, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[domain.Status]bool{}
	for _, s := range f.Statuses {
		want[s] = true
	}
	var all []domain.Request
	for _, r := range m.requests {
		if r.Category != f.Category || (len(want) > 0 && !want[r.Status]) {
			continue
		}
		full := m.load(r)
		if f.ApproverExternalID != "" {
			active := full.ActiveStep()
			if active == nil || active.Approver.ExternalID != f.ApproverExternalID {
				continue
			}
		}
		all = append(all, *full)
	}
	sortBySubmittedDesc(all)
	total := int64(len(all))
	if f.Offset >= len(all) {
		return []domain.Request{}, total, nil
	}
	all = all[f.Offset:]
	if f.Limit > 0 && f.Limit < len(all) {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func (m *Memory) listByRequester(_ context.Context, c domain.Category, requester string) ([]domain.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Request
	for _, r := range m.requests {
		if r.Category == c && r.Requester.ExternalID == requester {
			out = append(out, *m.load(r))
		}
	}
	sortBySubmittedDesc(out)
	return out, nil
}

func sortBySubmittedDesc(rs []domain.Request) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i].SubmittedAt, rs[j].SubmittedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return rs[i].ID > rs[j].ID
		}
		return a.After(*b)
	})
}

func (m *Memory) listSteps(_ context.Context, pk uint64) ([]domain.Step, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]domain.Step(nil), m.steps[pk]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (m *Memory) stepBySequence(_ context.Context, pk uint64, seq int) (*domain.Step, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.steps[pk] {
		if s.Sequence == seq {
			cp := s
			return &cp, nil
		}
	}
	return nil, domain.ErrStepNotFound
}

func (m *Memory) stepsByApprover(_ context.Context, pk uint64, approver string) ([]domain.Step, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Step
	for _, s := range m.steps[pk] {
		if s.Approver.ExternalID == approver {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Memory) updateStep(_ context.Context, s *domain.Step, prev domain.StepStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	steps := m.steps[s.ApprovalRequestID]
	for i := range steps {
		if steps[i].ID != s.ID {
			continue
		}
		if steps[i].Status != prev {
			return domain.ErrStepAlreadyDecided
		}
		steps[i] = *s
		return nil
	}
	return domain.ErrStepAlreadyDecided
}

func (m *Memory) replaceSteps(_ context.Context, pk uint64, steps []domain.Step) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range steps {
		steps[i].ID = m.id()
		steps[i].ApprovalRequestID = pk
	}
	m.steps[pk] = append([]domain.Step(nil), steps...)
	return nil
}

func (m *Memory) createComment(_ context.Context, c *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id()
	m.comments[c.ApprovalRequestID] = append(m.comments[c.ApprovalRequestID], *c)
	return nil
}

func (m *Memory) getComment(_ context.Context, pk uint64, commentID string) (*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.comments[pk] {
		if c.CommentID == commentID {
			cp := c
			return &cp, nil
		}
	}
	return nil, domain.ErrCommentNotFound
}

func (m *Memory) listComments(_ context.Context, pk uint64) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Comment(nil), m.comments[pk]...), nil
}

func (m *Memory) updateComment(_ context.Context, c *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.comments[c.ApprovalRequestID]
	for i := range list {
		if list[i].ID == c.ID {
			list[i] = *c
			return nil
		}
	}
	return domain.ErrCommentNotFound
}

func (m *Memory) deleteComment(_ context.Context, c *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.comments[c.ApprovalRequestID]
	for i := range list {
		if list[i].ID == c.ID {
			m.comments[c.ApprovalRequestID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return domain.ErrCommentNotFound
}
