package service

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialgraph/internal/model"
	"github.com/d60-Lab/socialgraph/internal/repository"
	"github.com/d60-Lab/socialgraph/pkg/logger"
)

// Event describes an interaction that may warrant a notification. The emitting
// service resolves RecipientID from the target it has already loaded.
type Event struct {
	Kind        model.NotificationKind
	ActorID     string
	RecipientID string
	TargetID    string
	At          time.Time
}

// Notifier accepts events without blocking the caller and without reporting
// delivery failures back to it.
type Notifier interface {
	Notify(ev Event)
}

type DispatcherOptions struct {
	QueueSize      int
	MaxAttempts    uint
	AttemptTimeout time.Duration
	// NewBackOff builds the retry schedule for one event. Defaults to exponential.
	NewBackOff func() backoff.BackOff
}

// Dispatcher persists notifications from a bounded in-process queue. A full queue
// drops the event with a warning; a write that still fails after MaxAttempts is
// logged and reported, never returned.
type Dispatcher struct {
	repo      repository.NotificationRepository
	opts      DispatcherOptions
	ch        chan Event
	metricsCh chan time.Duration
}

func NewDispatcher(repo repository.NotificationRepository, opts DispatcherOptions) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 10000
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 5 * time.Second
	}
	if opts.NewBackOff == nil {
		opts.NewBackOff = func() backoff.BackOff { return backoff.NewExponentialBackOff() }
	}
	return &Dispatcher{
		repo:      repo,
		opts:      opts,
		ch:        make(chan Event, opts.QueueSize),
		metricsCh: make(chan time.Duration, 65536),
	}
}

// Start launches the workers and returns a stop function. Stop lets the workers
// drain what is already queued, then waits for them or for ctx.
func (d *Dispatcher) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	stopCh := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case ev := <-d.ch:
					d.deliver(ev)
				case <-stopCh:
					for {
						select {
						case ev := <-d.ch:
							d.deliver(ev)
						default:
							return
						}
					}
				}
			}
		}()
	}

	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() { close(stopCh) })
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Notify enqueues ev. Self-notifications are suppressed here, before they take a
// queue slot.
func (d *Dispatcher) Notify(ev Event) {
	if ev.RecipientID == "" || ev.ActorID == ev.RecipientID {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	select {
	case d.ch <- ev:
	default:
		logger.Warn("notification queue full, drop event",
			zap.String("kind", string(ev.Kind)),
			zap.String("actor", ev.ActorID),
			zap.String("recipient", ev.RecipientID))
	}
}

func (d *Dispatcher) deliver(ev Event) {
	ctx, span := otel.Tracer("socialgraph/notifier").Start(context.Background(), "notification.deliver")
	span.SetAttributes(attribute.String("notification.kind", string(ev.Kind)))
	defer span.End()

	n := &model.Notification{
		ID:          uuid.New().String(),
		RecipientID: ev.RecipientID,
		ActorID:     ev.ActorID,
		Kind:        ev.Kind,
		TargetKind:  ev.Kind.TargetKind(),
		TargetID:    ev.TargetID,
		CreatedAt:   ev.At,
	}
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		actx, cancel := context.WithTimeout(ctx, d.opts.AttemptTimeout)
		defer cancel()
		return struct{}{}, d.repo.Create(actx, n)
	}, backoff.WithBackOff(d.opts.NewBackOff()), backoff.WithMaxTries(d.opts.MaxAttempts))
	if err != nil {
		span.RecordError(err)
		logger.Error("persist notification failed",
			zap.Error(err),
			zap.String("kind", string(ev.Kind)),
			zap.String("recipient", ev.RecipientID),
			zap.String("target", ev.TargetID))
		sentry.CaptureException(err)
		return
	}

	select {
	case d.metricsCh <- time.Since(ev.At):
	default:
	}
}

// Metrics yields, per persisted notification, the time from event to stored row.
func (d *Dispatcher) Metrics() <-chan time.Duration { return d.metricsCh }

// QueueLen is a sampled queue depth.
func (d *Dispatcher) QueueLen() int { return len(d.ch) }

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
