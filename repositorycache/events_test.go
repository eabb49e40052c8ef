package repositorycache

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
)

func TestEvents_DispatchOrder(t *testing.T) {
	events := NewEvents[int]()

	var order []string
	events.On(EventCreated, func(context.Context, Event[int]) error {
		order = append(order, "first")
		return nil
	})
	events.On(EventCreated, func(context.Context, Event[int]) error {
		order = append(order, "second")
		return nil
	})
	events.On(EventDeleted, func(context.Context, Event[int]) error {
		order = append(order, "deleted")
		return nil
	})

	if err := events.Dispatch(context.Background(), Event[int]{Kind: EventCreated}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if want := []string{"first", "second"}; !reflect.DeepEqual(order, want) {
		t.Errorf("expected %v, got %v", want, order)
	}
}

func TestEvents_FirstErrorStops(t *testing.T) {
	events := NewEvents[int]()
	boom := errors.New("boom")

	called := false
	events.On(EventUpdated, func(context.Context, Event[int]) error { return boom })
	events.On(EventUpdated, func(context.Context, Event[int]) error {
		called = true
		return nil
	})

	err := events.Dispatch(context.Background(), Event[int]{Kind: EventUpdated})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if called {
		t.Error("expected later listeners to be skipped")
	}
}

func TestEvents_NoListeners(t *testing.T) {
	events := NewEvents[int]()
	events.On(EventCreated, nil)

	if events.Len(EventCreated) != 0 {
		t.Error("expected nil listener to be ignored")
	}
	if err := events.Dispatch(context.Background(), Event[int]{Kind: EventCreated}); err != nil {
		t.Errorf("expected no error without listeners, got %v", err)
	}
}

func TestEvents_ConcurrentRegistration(t *testing.T) {
	events := NewEvents[int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			events.On(EventCreated, func(context.Context, Event[int]) error { return nil })
			_ = events.Dispatch(context.Background(), Event[int]{Kind: EventCreated})
		}()
	}
	wg.Wait()

	if got := events.Len(EventCreated); got != 50 {
		t.Errorf("expected 50 listeners, got %d", got)
	}
}

func TestEvents_ZeroValue(t *testing.T) {
	var events Events[int]

	if err := events.Dispatch(context.Background(), Event[int]{Kind: EventCreated}); err != nil {
		t.Fatalf("dispatch on empty registry failed: %v", err)
	}

	called := false
	events.On(EventCreated, func(context.Context, Event[int]) error {
		called = true
		return nil
	})
	if events.Len(EventCreated) != 1 {
		t.Fatalf("expected 1 listener, got %d", events.Len(EventCreated))
	}

	if err := events.Dispatch(context.Background(), Event[int]{Kind: EventCreated}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if !called {
		t.Error("expected listener on zero value registry to run")
	}
}
