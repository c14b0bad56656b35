package notification

import (
	"context"
	"time"

	"device-approval-backend/internal/domain/notification"
	"device-approval-backend/internal/infrastructure/queue"

	"github.com/sirupsen/logrus"
)

// Envelope is the queued unit. Stored survives redelivery so the in-app row
// is written once even when mail has to be retried.
type Envelope struct {
	Notice notification.Notice
	Stored bool
}

type Queue interface {
	Publish(ctx context.Context, e *Envelope) error
	Consume(ctx context.Context) (*queue.Message[Envelope], error)
}

type QueuePublisher struct {
	queue   Queue
	log     *logrus.Entry
	timeout time.Duration
}

func NewQueuePublisher(q Queue, log *logrus.Entry, timeout time.Duration) *QueuePublisher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &QueuePublisher{queue: q, log: log, timeout: timeout}
}

// Notify enqueues notices. The caller's cancellation does not apply; the
// notices describe changes that are already committed.
func (p *QueuePublisher) Notify(ctx context.Context, notices ...notification.Notice) {
	if len(notices) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	m := getMetrics()
	for _, n := range notices {
		if err := p.queue.Publish(ctx, &Envelope{Notice: n}); err != nil {
			m.publishTotal.WithLabelValues(string(n.Kind), "error").Inc()
			p.log.WithError(err).
				WithField("notice_kind", n.Kind).
				WithField("recipient", n.RecipientExternalID).
				Warn("notice dropped")
			continue
		}
		m.publishTotal.WithLabelValues(string(n.Kind), "ok").Inc()
	}
}

var _ notification.Publisher = (*QueuePublisher)(nil)
