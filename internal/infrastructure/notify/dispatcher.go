package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/clienttracker/crm-system/internal/api/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Sender delivers a single formatted message to the external transport.
type Sender interface {
	Send(ctx context.Context, message string) error
}

// Dispatcher implements ports.Notifier: it hands messages to a fixed pool of
// workers so the caller never waits on delivery. A full buffer drops the
// message rather than blocking the primary operation.
type Dispatcher struct {
	queue   chan string
	sender  Sender
	workers int
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers delivery workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender Sender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &Dispatcher{
		queue:   make(chan string, channelBuffer),
		sender:  sender,
		workers: numWorkers,
		log:     log,
	}
}

// Start launches the worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		go d.runWorker(ctx, i)
	}
}

// Notify enqueues a message for delivery. Never blocks and never fails from
// the caller's point of view.
func (d *Dispatcher) Notify(ctx context.Context, message string) {
	select {
	case d.queue <- message:
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("message", message).Msg("notification queue full, message dropped")
	}
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-d.queue:
			if !ok {
				return
			}
			if err := d.sender.Send(ctx, message); err != nil {
				metrics.NotificationsTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Int("worker_id", id).
					Str("message", message).
					Msg("notification delivery failed")
				continue
			}
			metrics.NotificationsTotal.WithLabelValues("sent").Inc()
		}
	}
}
