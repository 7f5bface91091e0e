package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campus360/incident-service/internal/events"
	"github.com/campus360/incident-service/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// EventForwarder relays dispatched events to an external publisher from a
// background goroutine so request handlers never wait on the broker. When the
// buffer is full new events are dropped and logged.
type EventForwarder struct {
	publisher events.Publisher
	logger    *zap.Logger
	timeout   time.Duration

	mu      sync.Mutex
	closed  bool
	queue   chan events.Event
	done    chan struct{}
	dropped int
}

// NewEventForwarder builds a forwarder with the given buffer size.
func NewEventForwarder(publisher events.Publisher, bufferSize int, logger *zap.Logger) *EventForwarder {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventForwarder{
		publisher: publisher,
		logger:    logger,
		timeout:   5 * time.Second,
		queue:     make(chan events.Event, bufferSize),
		done:      make(chan struct{}),
	}
}

// Register subscribes the forwarder to every ticket event.
func (f *EventForwarder) Register(dispatcher events.Dispatcher) {
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, f.enqueue)
	}
}

// Start runs the delivery loop until Stop is called.
func (f *EventForwarder) Start() {
	go func() {
		defer close(f.done)
		for event := range f.queue {
			f.deliver(event)
		}
	}()
}

// Stop stops accepting events, drains the buffer and waits for the loop to
// finish or ctx to expire.
func (f *EventForwarder) Stop(ctx context.Context) error {
	f.mu.Lock()
	if !f.closed {
		f.closed = true
		close(f.queue)
	}
	f.mu.Unlock()

	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dropped reports how many events were discarded because the buffer was full.
func (f *EventForwarder) Dropped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}

func (f *EventForwarder) enqueue(_ context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	select {
	case f.queue <- event:
	default:
		f.dropped++
		f.logger.Warn("event buffer full; dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

func (f *EventForwarder) deliver(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	if err := f.publisher.Publish(ctx, event); err != nil {
		f.logger.Error("event publication failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Int64("ticket_id", event.TicketID),
			zap.Error(err))
	}
}
