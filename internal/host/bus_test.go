package host

import (
	"sync"
	"testing"
)

func TestStream_PublishSubscribe(t *testing.T) {
	s := NewStream()
	var got []Event
	cancel := s.Subscribe(func(ev Event) { got = append(got, ev) })

	s.Publish(Event{Kind: EventContent, Content: "a"})
	s.Publish(Event{Kind: EventContent, Content: "b"})

	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Content != "a" || got[1].Content != "b" {
		t.Errorf("events out of order: %v", got)
	}

	cancel()
	s.Publish(Event{Kind: EventContent, Content: "c"})
	if len(got) != 2 {
		t.Errorf("expected no delivery after cancel, got %d events", len(got))
	}
	if s.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", s.SubscriberCount())
	}
}

func TestStream_CancelIdempotent(t *testing.T) {
	s := NewStream()
	cancelA := s.Subscribe(func(Event) {})
	cancelB := s.Subscribe(func(Event) {})

	cancelA()
	cancelA()

	if s.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", s.SubscriberCount())
	}
	cancelB()
	if s.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", s.SubscriberCount())
	}
}

func TestBus_TopicIsolation(t *testing.T) {
	b := NewBus()
	var a, c int
	b.Subscribe("topic-a", func(any) { a++ })
	b.Subscribe("topic-c", func(any) { c++ })

	b.Publish("topic-a", nil)
	b.Publish("topic-a", nil)
	b.Publish("topic-c", nil)

	if a != 2 || c != 1 {
		t.Errorf("expected a=2 c=1, got a=%d c=%d", a, c)
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	b := NewBus()
	var mu sync.Mutex
	count := 0
	b.Subscribe("t", func(any) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Publish("t", nil)
		}()
	}
	wg.Wait()

	if count != 20 {
		t.Errorf("expected 20 deliveries, got %d", count)
	}
}

func TestRuntime_InjectInput(t *testing.T) {
	r := NewRuntime("s1")
	if r.SessionID() != "s1" {
		t.Fatalf("expected session id s1, got %q", r.SessionID())
	}

	var got []string
	r.OnInput(func(text string) { got = append(got, text) })
	r.InjectInput("hello")

	if len(got) != 1 || got[0] != "hello" {
		t.Errorf("expected [hello], got %v", got)
	}
}

func TestRuntime_GeneratedSessionID(t *testing.T) {
	r := NewRuntime("")
	if r.SessionID() == "" {
		t.Error("expected generated session id")
	}
}

func TestRuntime_EmitHelpers(t *testing.T) {
	r := NewRuntime("s")
	var kinds []EventKind
	cancel, err := r.SubscribeEvents(func(ev Event) { kinds = append(kinds, ev.Kind) })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	r.EmitThought("plan", "thinking")
	r.EmitContent("text")
	r.EmitToolCallRequest("t1", "run_shell", nil)
	r.EmitOutput([]byte("out"), false)
	r.EmitConsoleLog("info", "log")
	r.EmitHookStart("pre")
	r.EmitHookEnd("pre", true)

	want := []EventKind{
		EventThought, EventContent, EventToolCallRequest,
		EventOutput, EventConsoleLog, EventHookStart, EventHookEnd,
	}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(kinds))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], kinds[i])
		}
	}
}
