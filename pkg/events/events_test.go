package events

import (
	"context"
	"testing"
	"time"
)

func TestNames_For(t *testing.T) {
	tests := []struct {
		name  string
		names Names
		kind  Kind
		want  string
	}{
		{
			name:  "defaults",
			names: DefaultNames(),
			kind:  LoadStarted,
			want:  "quickload:load-started",
		},
		{
			name:  "custom namespace",
			names: Names{Namespace: "feed"}.Merge(DefaultNames()),
			kind:  Exhausted,
			want:  "feed:exhausted",
		},
		{
			name:  "custom event name",
			names: Names{Error: "load-error"}.Merge(DefaultNames()),
			kind:  Error,
			want:  "quickload:load-error",
		},
		{
			name:  "no namespace",
			names: Names{LoadFinished: "finished"},
			kind:  LoadFinished,
			want:  "finished",
		},
		{
			name:  "unset name falls back to default",
			names: Names{Namespace: "feed"},
			kind:  LoadStarted,
			want:  "feed:load-started",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.names.For(tt.kind); got != tt.want {
				t.Errorf("For(%v) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestNames_MergeOverridesIndependently(t *testing.T) {
	n := Names{Namespace: "app", Exhausted: "done"}.Merge(DefaultNames())

	if n.LoadStarted != "load-started" {
		t.Errorf("LoadStarted = %q, want default", n.LoadStarted)
	}
	if n.Exhausted != "done" {
		t.Errorf("Exhausted = %q, want %q", n.Exhausted, "done")
	}
	if n.Namespace != "app" {
		t.Errorf("Namespace = %q, want %q", n.Namespace, "app")
	}
}

func TestBus_DeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe()
	b := bus.Subscribe()

	bus.Emit(context.Background(), "quickload:load-started")

	for i, ch := range []<-chan string{a, b} {
		select {
		case got := <-ch:
			if got != "quickload:load-started" {
				t.Errorf("subscriber %d received %q, want quickload:load-started", i, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d received nothing", i)
		}
	}
}

func TestBus_SlowSubscriberDoesNotBlockEmit(t *testing.T) {
	bus := NewBus()
	_ = bus.Subscribe() // never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Emit(context.Background(), "quickload:load-finished")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked on an undrained subscriber")
	}
}

func TestBus_NoSubscribers(t *testing.T) {
	bus := NewBus()
	// Zero listeners is a legal observation channel.
	bus.Emit(context.Background(), "quickload:error")
}

type recordingEmitter struct {
	names []string
}

func (r *recordingEmitter) Emit(_ context.Context, event string) {
	r.names = append(r.names, event)
}

func TestMulti_FansOutInOrder(t *testing.T) {
	a := &recordingEmitter{}
	b := &recordingEmitter{}
	m := Multi{a, b}

	m.Emit(context.Background(), "quickload:exhausted")
	m.Emit(context.Background(), "quickload:load-finished")

	for name, r := range map[string]*recordingEmitter{"a": a, "b": b} {
		if len(r.names) != 2 ||
			r.names[0] != "quickload:exhausted" ||
			r.names[1] != "quickload:load-finished" {
			t.Errorf("emitter %s saw %v", name, r.names)
		}
	}
}

func TestNop_Discards(t *testing.T) {
	Nop{}.Emit(context.Background(), "quickload:load-started")
}
