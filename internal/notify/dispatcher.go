package notify

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"jobboard/internal/notify/metrics"
	"jobboard/pkg/platform/circuit"
	"jobboard/pkg/requestcontext"
)

const (
	defaultQueueSize   = 1024
	defaultWorkers     = 4
	defaultSendTimeout = 5 * time.Second
)

// Dispatcher queues notifications and delivers them from a worker pool.
// Dispatch never blocks: when the queue is full the notification is dropped.
type Dispatcher struct {
	sender      Sender
	queue       chan Notification
	workers     int
	sendTimeout time.Duration
	breaker     *circuit.Breaker
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Dispatcher)

func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Notification, n)
		}
	}
}

func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

func WithSendTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		if t > 0 {
			d.sendTimeout = t
		}
	}
}

// WithBreaker pauses delivery while the sender keeps failing.
func WithBreaker(b *circuit.Breaker) Option {
	return func(d *Dispatcher) {
		d.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func NewDispatcher(sender Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender:      sender,
		queue:       make(chan Notification, defaultQueueSize),
		workers:     defaultWorkers,
		sendTimeout: defaultSendTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.breaker == nil {
		d.breaker = circuit.New("notify-" + sender.Name())
	}
	return d
}

// Dispatch enqueues n and reports whether it was accepted.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) bool {
	select {
	case d.queue <- n:
		d.metrics.IncEnqueued()
		return true
	default:
		d.metrics.IncDropped("queue_full")
		d.logger.WarnContext(ctx, "notification queue full, dropping",
			"request_id", requestcontext.RequestID(ctx),
			"event_id", n.EventID.String(),
			"kind", string(n.Kind),
		)
		return false
	}
}

// Run starts the workers and blocks until ctx is cancelled. Notifications
// still queued at that point are flushed before Run returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for range d.workers {
		g.Go(func() error {
			d.work(gctx)
			return nil
		})
	}
	err := g.Wait()
	d.flush(context.WithoutCancel(ctx))
	return err
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-d.queue:
			// an in-flight send is bounded by sendTimeout, not by shutdown
			d.deliver(context.WithoutCancel(ctx), n)
		}
	}
}

func (d *Dispatcher) flush(ctx context.Context) {
	for {
		select {
		case n := <-d.queue:
			d.deliver(ctx, n)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n Notification) {
	if !d.breaker.Allow() {
		d.metrics.IncDropped("breaker_open")
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	err := d.sender.Send(sendCtx, n)
	cancel()

	d.metrics.IncDelivery(d.sender.Name(), err == nil)
	if err != nil {
		d.logger.WarnContext(ctx, "notification delivery failed",
			"sender", d.sender.Name(),
			"event_id", n.EventID.String(),
			"kind", string(n.Kind),
			"error", err,
		)
		if d.breaker.RecordFailure() {
			d.metrics.SetBreakerOpen(true)
			d.logger.ErrorContext(ctx, "notification sender circuit opened", "sender", d.sender.Name())
		}
		return
	}
	if d.breaker.RecordSuccess() {
		d.metrics.SetBreakerOpen(false)
		d.logger.InfoContext(ctx, "notification sender circuit closed", "sender", d.sender.Name())
	}
}

// Pending returns the number of queued notifications.
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}
