package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	contractsv1 "lunchlauncher/contracts/gen/events/v1"
)

func TestBusDeliversToTopicSubscribers(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan contractsv1.Envelope, 1)
	if err := bus.Subscribe(ctx, "vote.logged", "test-cg", func(_ context.Context, event contractsv1.Envelope) error {
		received <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := bus.Publish(ctx, "nomination.closed", contractsv1.Envelope{EventID: "evt-0"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if err := bus.Publish(ctx, "vote.logged", contractsv1.Envelope{EventID: "evt-1", EventType: "vote.logged"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case event := <-received:
		if event.EventID != "evt-1" {
			t.Fatalf("expected evt-1, got %s", event.EventID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(nil)
	if err := bus.Publish(context.Background(), "vote.logged", contractsv1.Envelope{EventID: "evt-1"}); err != nil {
		t.Fatalf("publish without subscribers failed: %v", err)
	}
}

func TestBusDeliversOncePerConsumerGroup(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu     sync.Mutex
		counts = map[string]int{}
		wg     sync.WaitGroup
	)
	const events = 20
	// audit sees every event once across its two members; metrics sees each once.
	wg.Add(2 * events)
	record := func(name string) Handler {
		return func(context.Context, contractsv1.Envelope) error {
			mu.Lock()
			counts[name]++
			mu.Unlock()
			wg.Done()
			return nil
		}
	}
	for _, sub := range []struct{ group, name string }{
		{"audit", "audit-a"},
		{"audit", "audit-b"},
		{"metrics", "metrics"},
	} {
		if err := bus.Subscribe(ctx, "vote.logged", sub.group, record(sub.name)); err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}
	}

	for i := 0; i < events; i++ {
		event := contractsv1.Envelope{EventID: fmt.Sprintf("evt-%d", i), PartitionKey: fmt.Sprintf("session-%d", i)}
		if err := bus.Publish(ctx, "vote.logged", event); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
	}
	waitOrFail(t, &wg)

	mu.Lock()
	defer mu.Unlock()
	if counts["audit-a"]+counts["audit-b"] != events {
		t.Fatalf("expected audit group to see %d events, got %v", events, counts)
	}
	if counts["metrics"] != events {
		t.Fatalf("expected metrics group to see %d events, got %v", events, counts)
	}
}

func TestBusKeepsPartitionOrderWithoutDropping(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const events = groupBuffer * 3
	var (
		mu  sync.Mutex
		got []string
		wg  sync.WaitGroup
	)
	wg.Add(events)
	err := bus.Subscribe(ctx, "vote.logged", "audit", func(context.Context, contractsv1.Envelope) error {
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	err = bus.Subscribe(ctx, "vote.logged", "audit", func(_ context.Context, event contractsv1.Envelope) error {
		mu.Lock()
		got = append(got, event.EventID)
		mu.Unlock()
		wg.Done()
		time.Sleep(time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// Find a key owned by the slow member so every event lands on it.
	key := ""
	bus.mu.RLock()
	group := bus.groups["vote.logged"]["audit"]
	bus.mu.RUnlock()
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("session-%d", i)
		if group.assign(candidate) == group.members[1] {
			key = candidate
			break
		}
	}

	for i := 0; i < events; i++ {
		event := contractsv1.Envelope{EventID: fmt.Sprintf("evt-%03d", i), PartitionKey: key}
		if err := bus.Publish(ctx, "vote.logged", event); err != nil {
			t.Fatalf("publish %d failed: %v", i, err)
		}
	}
	waitOrFail(t, &wg)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != events {
		t.Fatalf("expected %d events, got %d", events, len(got))
	}
	for i, id := range got {
		if want := fmt.Sprintf("evt-%03d", i); id != want {
			t.Fatalf("event %d out of order: expected %s, got %s", i, want, id)
		}
	}
}

func TestBusPublishHonoursContextWhenGroupIsFull(t *testing.T) {
	bus := NewBus(nil)
	subCtx, stop := context.WithCancel(context.Background())
	defer stop()

	release := make(chan struct{})
	defer close(release)
	if err := bus.Subscribe(subCtx, "vote.logged", "audit", func(context.Context, contractsv1.Envelope) error {
		<-release
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// One event is held by the blocked handler, the rest fill the buffer.
	for i := 0; i <= groupBuffer; i++ {
		if err := bus.Publish(context.Background(), "vote.logged", contractsv1.Envelope{EventID: fmt.Sprintf("evt-%d", i)}); err != nil {
			t.Fatalf("publish %d failed: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	deadline := time.Now().Add(2 * time.Second)
	var err error
	for time.Now().Before(deadline) {
		err = bus.Publish(ctx, "vote.logged", contractsv1.Envelope{EventID: "evt-overflow"})
		if err != nil {
			break
		}
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected publish to block until deadline, got %v", err)
	}
}

func TestBusRemovesGroupWhenLastMemberLeaves(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	if err := bus.Subscribe(ctx, "vote.logged", "test-cg", func(context.Context, contractsv1.Envelope) error {
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		bus.mu.RLock()
		remaining := len(bus.groups["vote.logged"])
		bus.mu.RUnlock()
		if remaining == 0 {
			if err := bus.Publish(context.Background(), "vote.logged", contractsv1.Envelope{EventID: "evt-1"}); err != nil {
				t.Fatalf("publish after group removal failed: %v", err)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("consumer group was not removed after cancel")
}

func waitOrFail(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for deliveries")
	}
}
