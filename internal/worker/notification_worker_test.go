package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/campus360/incident-service/internal/events"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
	fail   bool
	block  chan struct{}
}

func (p *capturePublisher) Publish(_ context.Context, event events.Event) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	if p.fail {
		return errors.New("broker down")
	}
	return nil
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestEventForwarderDeliversEveryType(t *testing.T) {
	publisher := &capturePublisher{fail: true}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	forwarder := NewEventForwarder(publisher, 16, zap.NewNop())
	forwarder.Register(dispatcher)
	forwarder.Start()

	for i, eventType := range events.AllEventTypes {
		_ = dispatcher.Publish(context.Background(), events.Event{ID: string(rune('a' + i)), Type: eventType, TicketID: 1})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := forwarder.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := publisher.count(); got != len(events.AllEventTypes) {
		t.Fatalf("expected %d deliveries despite failures, got %d", len(events.AllEventTypes), got)
	}

	// events after Stop are ignored
	_ = dispatcher.Publish(context.Background(), events.Event{ID: "late", Type: events.EventTicketCreated})
	if publisher.count() != len(events.AllEventTypes) {
		t.Fatalf("event delivered after stop")
	}
}

func TestEventForwarderDropsWhenFull(t *testing.T) {
	publisher := &capturePublisher{block: make(chan struct{})}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	forwarder := NewEventForwarder(publisher, 1, zap.NewNop())
	forwarder.Register(dispatcher)

	// not started: the buffer holds one event and the rest are dropped
	for i := 0; i < 3; i++ {
		_ = dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketUpdated})
	}
	if forwarder.Dropped() != 2 {
		t.Fatalf("expected 2 dropped events, got %d", forwarder.Dropped())
	}

	forwarder.Start()
	close(publisher.block)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := forwarder.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if publisher.count() != 1 {
		t.Fatalf("expected the buffered event to be delivered, got %d", publisher.count())
	}
}
