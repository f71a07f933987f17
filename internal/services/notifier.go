package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/parceldesk/shiptrack-backend/internal/platform/logger"
)

// RequestLogSink appends (method, endpoint) records to the external request
// log collaborator.
type RequestLogSink interface {
	Append(ctx context.Context, method, endpoint string) error
}

// UsageSink delivers usage pings to the remote statistics collaborator.
type UsageSink interface {
	Ping(ctx context.Context, endpoint string) error
}

// EventSink publishes shipment lifecycle events to the message broker.
type EventSink interface {
	Publish(ctx context.Context, key string, payload interface{}) error
}

// Notifier is the best-effort side channel. Nothing it does may block or fail
// a primary operation: enqueueing never blocks (the queue is bounded and drops
// when full), delivery runs on a detached worker with a fixed per-attempt
// timeout, and failures are logged and discarded.
type Notifier interface {
	RecordRequest(method, endpoint string)
	PingUsage(endpoint string)
	ShipmentEvent(event string, shipmentID uint, orderID string)
	Start(ctx context.Context)
	Close()
}

type noteKind int

const (
	noteRequest noteKind = iota
	noteUsage
	noteEvent
)

type note struct {
	kind       noteKind
	method     string
	endpoint   string
	event      string
	shipmentID uint
	orderID    string
}

type shipmentEventPayload struct {
	Event      string    `json:"event"`
	ShipmentID uint      `json:"shipment_id"`
	OrderID    string    `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type notifier struct {
	log            *logger.Logger
	requestLog     RequestLogSink
	usage          UsageSink
	events         EventSink
	queue          chan note
	done           chan struct{}
	deliverTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

const defaultNotifierQueueSize = 256

func NewNotifier(log *logger.Logger, requestLog RequestLogSink, usage UsageSink, events EventSink) Notifier {
	return &notifier{
		log:            log.With("service", "Notifier"),
		requestLog:     requestLog,
		usage:          usage,
		events:         events,
		queue:          make(chan note, defaultNotifierQueueSize),
		done:           make(chan struct{}),
		deliverTimeout: 2 * time.Second,
	}
}

func (n *notifier) Start(ctx context.Context) {
	go n.drain(ctx)
}

// Close stops accepting notes, then waits for the worker to drain what is
// already queued. Safe to call more than once; enqueues after Close are
// silently dropped rather than panicking on the closed queue.
func (n *notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.queue)
	n.mu.Unlock()
	<-n.done
}

func (n *notifier) RecordRequest(method, endpoint string) {
	n.enqueue(note{kind: noteRequest, method: method, endpoint: endpoint})
}

func (n *notifier) PingUsage(endpoint string) {
	n.enqueue(note{kind: noteUsage, endpoint: endpoint})
}

func (n *notifier) ShipmentEvent(event string, shipmentID uint, orderID string) {
	n.enqueue(note{kind: noteEvent, event: event, shipmentID: shipmentID, orderID: orderID})
}

func (n *notifier) enqueue(nt note) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	select {
	case n.queue <- nt:
	default:
		n.log.Warn("notifier queue full, dropping", "endpoint", nt.endpoint)
	}
}

func (n *notifier) drain(ctx context.Context) {
	defer close(n.done)
	for nt := range n.queue {
		select {
		case <-ctx.Done():
			// Keep draining so Close does not hang, but stop delivering.
			continue
		default:
		}
		n.deliver(nt)
	}
}

func (n *notifier) deliver(nt note) {
	ctx, cancel := context.WithTimeout(context.Background(), n.deliverTimeout)
	defer cancel()

	switch nt.kind {
	case noteRequest:
		if n.requestLog == nil {
			return
		}
		if err := n.requestLog.Append(ctx, nt.method, nt.endpoint); err != nil {
			n.log.Warn("request log append failed", "endpoint", nt.endpoint, "error", err)
		}
	case noteUsage:
		if n.usage == nil {
			return
		}
		if err := n.usage.Ping(ctx, nt.endpoint); err != nil {
			n.log.Warn("usage ping failed", "endpoint", nt.endpoint, "error", err)
		}
	case noteEvent:
		if n.events == nil {
			return
		}
		payload := shipmentEventPayload{
			Event:      nt.event,
			ShipmentID: nt.shipmentID,
			OrderID:    nt.orderID,
			OccurredAt: time.Now().UTC(),
		}
		key := strconv.FormatUint(uint64(nt.shipmentID), 10)
		if err := n.events.Publish(ctx, key, payload); err != nil {
			n.log.Warn("event publish failed", "event", nt.event, "error", err)
		}
	}
}
