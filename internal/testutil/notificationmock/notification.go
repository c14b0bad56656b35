package notificationmock

import (
	"context"
	"sync"
	"time"

	"device-approval-backend/internal/domain/notification"
)

var (
	_ notification.Publisher = (*Publisher)(nil)
	_ notification.Mailer    = (*Mailer)(nil)
	_ notification.Store     = (*Store)(nil)
)

// Publisher records every notice it is given.
type Publisher struct {
	mu      sync.Mutex
	Notices []notification.Notice
}

func (p *Publisher) Notify(_ context.Context, notices ...notification.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Notices = append(p.Notices, notices...)
}

func (p *Publisher) Sent() []notification.Notice {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notification.Notice(nil), p.Notices...)
}

func (p *Publisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Notices = nil
}

// Mailer records mails; SendFn, when set, decides the result.
type Mailer struct {
	SendFn func(ctx context.Context, m notification.Mail) error

	mu   sync.Mutex
	Sent []notification.Mail
}

func (m *Mailer) Send(ctx context.Context, mail notification.Mail) error {
	if m.SendFn != nil {
		if err := m.SendFn(ctx, mail); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, mail)
	return nil
}

func (m *Mailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// Store is a function-backed mock of notification.Store with an in-memory
// default behaviour.
type Store struct {
	CreateFn func(ctx context.Context, n *notification.Notification) error

	mu   sync.Mutex
	Rows []notification.Notification
}

func (s *Store) Create(ctx context.Context, n *notification.Notification) error {
	if s.CreateFn != nil {
		if err := s.CreateFn(ctx, n); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = uint64(len(s.Rows) + 1)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	s.Rows = append(s.Rows, *n)
	return nil
}

func (s *Store) GetByNotificationID(_ context.Context, id string) (*notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.Rows {
		if n.NotificationID == id {
			cp := n
			return &cp, nil
		}
	}
	return nil, notification.ErrNotificationNotFound
}

func (s *Store) ListByRecipient(_ context.Context, recipient string, unreadOnly bool, limit int) ([]notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []notification.Notification
	for i := len(s.Rows) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		n := s.Rows[i]
		if n.RecipientExternalID != recipient || (unreadOnly && n.IsRead()) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *Store) MarkRead(_ context.Context, n *notification.Notification, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Rows {
		if s.Rows[i].NotificationID == n.NotificationID {
			s.Rows[i].ReadAt = &at
			return nil
		}
	}
	return notification.ErrNotificationNotFound
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Rows)
}
