package notification

import (
	"context"
	"errors"
	"time"

	"device-approval-backend/internal/domain/notification"
	"device-approval-backend/internal/infrastructure/queue"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Dispatcher drains the notice queue: each notice becomes an in-app row and
// a mail. Failures are retried by the queue and never surface to callers.
type Dispatcher struct {
	queue      Queue
	store      notification.Store
	mailer     notification.Mailer
	log        *logrus.Entry
	maxRetries int
	timeout    time.Duration
}

func NewDispatcher(q Queue, store notification.Store, mailer notification.Mailer, log *logrus.Entry, maxRetries int) *Dispatcher {
	return &Dispatcher{
		queue:      q,
		store:      store,
		mailer:     mailer,
		log:        log,
		maxRetries: maxRetries,
		timeout:    15 * time.Second,
	}
}

// Run blocks until ctx is done or the queue is closed.
func (d *Dispatcher) Run(ctx context.Context) {
	d.log.Info("notification dispatcher started")
	defer d.log.Info("notification dispatcher stopped")
	for {
		msg, err := d.queue.Consume(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrClosed) || ctx.Err() != nil {
				return
			}
			d.log.WithError(err).Error("consume notice")
			continue
		}
		d.handle(ctx, msg)
	}
}

func (d *Dispatcher) handle(ctx context.Context, msg *queue.Message[Envelope]) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	env := msg.T()
	n := env.Notice
	log := d.log.
		WithField("message_id", msg.ID()).
		WithField("notice_kind", n.Kind).
		WithField("recipient", n.RecipientExternalID).
		WithField("attempt", msg.Retries()+1)
	m := getMetrics()
	start := time.Now()

	if !env.Stored {
		row := &notification.Notification{
			NotificationID:      uuid.NewString(),
			RecipientExternalID: n.RecipientExternalID,
			Kind:                n.Kind,
			Subject:             n.Subject,
			DeepLink:            n.DeepLink,
			Vars:                datatypes.NewJSONType(withLink(n.Vars, n.DeepLink)),
		}
		if err := d.store.Create(ctx, row); err != nil {
			m.dispatchTotal.WithLabelValues(string(n.Kind), "store", "error").Inc()
			d.fail(msg, log, err)
			return
		}
		m.dispatchTotal.WithLabelValues(string(n.Kind), "store", "ok").Inc()
		env.Stored = true
	}

	mail := notification.Mail{
		To:       n.RecipientEmail,
		ToName:   n.RecipientName,
		Subject:  n.Subject,
		Template: n.Template,
		Vars:     withLink(n.Vars, n.DeepLink),
	}
	if err := d.mailer.Send(ctx, mail); err != nil {
		m.dispatchTotal.WithLabelValues(string(n.Kind), "mail", "error").Inc()
		d.fail(msg, log, err)
		return
	}
	m.dispatchTotal.WithLabelValues(string(n.Kind), "mail", "ok").Inc()
	m.dispatchLatency.WithLabelValues(string(n.Kind), "ok").Observe(time.Since(start).Seconds())

	if err := msg.Ack(); err != nil {
		log.WithError(err).Warn("ack notice")
	}
}

func (d *Dispatcher) fail(msg *queue.Message[Envelope], log *logrus.Entry, cause error) {
	kind := string(msg.T().Notice.Kind)
	if err := msg.Nack(cause); err != nil {
		log.WithError(err).Warn("nack notice")
		return
	}
	if msg.Retries() > d.maxRetries {
		getMetrics().deadTotal.WithLabelValues(kind).Inc()
		log.WithError(cause).Error("notice dead-lettered")
		return
	}
	log.WithError(cause).Warn("notice delivery failed, will retry")
}

func withLink(vars map[string]string, link string) map[string]string {
	out := make(map[string]string, len(vars)+1)
	for k, v := range vars {
		out[k] = v
	}
	if link != "" {
		out["Link"] = link
	}
	return out
}
