package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishSyncDeliversToAllSubscribers(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var got []string
	bus.Subscribe("delivery.confirmed", HandlerFunc(func(_ context.Context, _ Event) error {
		got = append(got, "first")
		return nil
	}))
	bus.Subscribe("delivery.confirmed", HandlerFunc(func(_ context.Context, _ Event) error {
		got = append(got, "second")
		return nil
	}))
	bus.Subscribe("delivery.other", HandlerFunc(func(_ context.Context, _ Event) error {
		got = append(got, "other")
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "delivery.confirmed"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("expected [first second], got %v", got)
	}
}

func TestPublishSyncRunsRemainingHandlersAfterFailure(t *testing.T) {
	bus := NewInMemoryBus(nil)

	ran := false
	bus.Subscribe("evt", HandlerFunc(func(_ context.Context, _ Event) error {
		return errors.New("boom")
	}))
	bus.Subscribe("evt", HandlerFunc(func(_ context.Context, _ Event) error {
		ran = true
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "evt"})
	if err == nil {
		t.Fatal("expected combined error")
	}
	if !ran {
		t.Fatal("second handler should still run after first fails")
	}
}

func TestPublishIsAsynchronousAndAwaitable(t *testing.T) {
	bus := NewInMemoryBus(nil)

	done := make(chan struct{})
	bus.Subscribe("evt", HandlerFunc(func(_ context.Context, _ Event) error {
		close(done)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "evt"})
	bus.Wait()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not run")
	}
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewInMemoryBus(nil)
	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "nothing"})
	bus.Wait()
}
