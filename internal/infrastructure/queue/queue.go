package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrClosed           = errors.New("queue closed")
	ErrAlreadyProcessed = errors.New("message already processed")
)

type Config struct {
	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	DeadLetter    bool
	Buffer        int
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:    3,
		RetryDelay:    time.Second,
		MaxRetryDelay: 30 * time.Second,
		DeadLetter:    true,
		Buffer:        256,
	}
}

// Message is a single delivery of a payload. Exactly one of Ack or Nack must
// be called.
type Message[T any] struct {
	id         string
	payload    T
	queue      *Queue[T]
	retryCount int
	lastErr    error
	mu         sync.Mutex
	processed  bool
	createdAt  time.Time
}

func (m *Message[T]) ID() string { return m.id }
func (m *Message[T]) T() *T { return &m.payload }
func (m *Message[T]) Retries() int { return m.retryCount }
func (m *Message[T]) LastErr() error { return m.lastErr }
func (m *Message[T]) Created() time.Time { return m.createdAt }

func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return ErrAlreadyProcessed
	}
	m.processed = true
	return nil
}

// Nack schedules a redelivery with exponential backoff, or moves the message
// to the dead letter list once retries are exhausted.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return ErrAlreadyProcessed
	}
	m.processed = true
	m.retryCount++
	m.lastErr = err

	q := m.queue
	if m.retryCount <= q.config.MaxRetries {
		retry := &Message[T]{
			id:         m.id,
			payload:    m.payload,
			queue:      q,
			retryCount: m.retryCount,
			lastErr:    err,
			createdAt:  m.createdAt,
		}
		q.wg.Add(1)
		go q.redeliver(retry, Backoff(m.retryCount, q.config.RetryDelay, q.config.MaxRetryDelay))
		return nil
	}
	if q.config.DeadLetter {
		q.dlqMu.Lock()
		q.dlq = append(q.dlq, m)
		q.dlqMu.Unlock()
	}
	return nil
}

// Queue is an in-process buffered queue with retries and a dead letter list.
type Queue[T any] struct {
	messages chan *Message[T]
	config   Config

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	dlq   []*Message[T]
	dlqMu sync.Mutex
}

func New[T any](config Config) *Queue[T] {
	if config.Buffer <= 0 {
		config.Buffer = DefaultConfig().Buffer
	}
	if config.MaxRetryDelay <= 0 {
		config.MaxRetryDelay = DefaultConfig().MaxRetryDelay
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.Buffer),
		config:   config,
		done:     make(chan struct{}),
	}
}

func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	msg := &Message[T]{
		id:        uuid.NewString(),
		payload:   *t,
		queue:     q,
		createdAt: time.Now(),
	}
	select {
	case <-q.done:
		return ErrClosed
	default:
	}
	select {
	case q.messages <- msg:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume blocks until a message is available, the context ends or the
// queue is closed.
func (q *Queue[T]) Consume(ctx context.Context) (*Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-q.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting messages. Pending redeliveries are dropped.
func (q *Queue[T]) Close() {
	q.closeOnce.Do(func() { close(q.done) })
	q.wg.Wait()
}

func (q *Queue[T]) Size() int { return len(q.messages) }

func (q *Queue[T]) DLQSize() int {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	return len(q.dlq)
}

// DeadLetters returns a copy of the payloads that exhausted their retries.
func (q *Queue[T]) DeadLetters() []T {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	out := make([]T, 0, len(q.dlq))
	for _, m := range q.dlq {
		out = append(out, m.payload)
	}
	return out
}

func (q *Queue[T]) redeliver(m *Message[T], delay time.Duration) {
	defer q.wg.Done()
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-q.done:
		return
	}
	select {
	case q.messages <- m:
	case <-q.done:
	}
}

// Backoff returns base*2^(attempt-1) capped at max.
func Backoff(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}
