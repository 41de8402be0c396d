// Package queue fans domain events out to the notification sink on a fixed
// set of background workers.
package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicportal/portal/internal/api/metrics"
	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/core/ports"
)

const (
	defaultWorkers = 4
	defaultBuffer  = 256
	deliverTimeout = 5 * time.Second
)

// Dispatcher routes events to workers by hashing the aggregate id, so events
// about one appointment or assignment are delivered in publish order.
type Dispatcher struct {
	workers []chan domain.Event
	sink    ports.EventSink
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers, each
// with a channel of the given buffer size. Non-positive values use defaults.
func NewDispatcher(numWorkers, buffer int, sink ports.EventSink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	d := &Dispatcher{
		workers: make([]chan domain.Event, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Event, buffer)
	}
	return d
}

// Start launches the worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Publish hands the event to its worker without blocking. When the worker's
// queue is full the event is dropped; the domain change it describes is
// already committed.
func (d *Dispatcher) Publish(e domain.Event) {
	idx := d.shardIndex(e.AggregateID)
	select {
	case d.workers[idx] <- e:
		metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.NotificationsDroppedTotal.Inc()
		d.log.Warn().
			Str("event_id", e.ID).
			Str("type", string(e.Type)).
			Int("worker_id", idx).
			Msg("notification queue full, event dropped")
	}
}

func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Event) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-ch:
			metrics.NotificationsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.deliver(ctx, id, e)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, worker int, e domain.Event) {
	ctx, cancel := context.WithTimeout(ctx, deliverTimeout)
	defer cancel()

	start := time.Now()
	err := d.sink.Deliver(ctx, e)
	result := "ok"
	if err != nil {
		result = "error"
		d.log.Error().Err(err).
			Str("event_id", e.ID).
			Str("type", string(e.Type)).
			Int("worker_id", worker).
			Msg("notification delivery failed")
	}
	metrics.NotificationDeliveryDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
