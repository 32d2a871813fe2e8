// Package events defines the lifecycle notifications emitted by the
// prefetch coordinator and the channels they can be delivered through.
//
// Four event kinds exist; their firing points are fixed by the coordinator
// but every name, and the shared namespace, is independently overridable.
// The coordinator resolves kinds to fully qualified names and hands them to
// an Emitter; delivery is fire-and-forget with zero or more listeners.
package events

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "quickload_events_emitted_total",
	Help: "Total lifecycle events emitted by name",
}, []string{"event"})

// Kind identifies a lifecycle event.
type Kind int

const (
	// LoadStarted fires when a foreground fetch chain begins.
	LoadStarted Kind = iota

	// LoadFinished fires when a foreground fetch chain settles,
	// successfully or not.
	LoadFinished

	// Error fires after LoadFinished when a foreground fetch chain fails.
	Error

	// Exhausted fires once per response that signals upstream exhaustion.
	Exhausted
)

// String returns the default name of the kind.
func (k Kind) String() string {
	switch k {
	case LoadStarted:
		return "load-started"
	case LoadFinished:
		return "load-finished"
	case Error:
		return "error"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Names maps event kinds to the names they are published under.
type Names struct {
	Namespace    string
	LoadStarted  string
	LoadFinished string
	Error        string
	Exhausted    string
}

// DefaultNames returns the conventional namespace and event names.
func DefaultNames() Names {
	return Names{
		Namespace:    "quickload",
		LoadStarted:  "load-started",
		LoadFinished: "load-finished",
		Error:        "error",
		Exhausted:    "exhausted",
	}
}

// For returns the fully qualified publish name for a kind:
// "namespace:name".
func (n Names) For(kind Kind) string {
	name := ""
	switch kind {
	case LoadStarted:
		name = n.LoadStarted
	case LoadFinished:
		name = n.LoadFinished
	case Error:
		name = n.Error
	case Exhausted:
		name = n.Exhausted
	}
	if name == "" {
		name = kind.String()
	}
	if n.Namespace == "" {
		return name
	}
	return n.Namespace + ":" + name
}

// Merge fills unset fields from defaults, letting callers override names
// independently.
func (n Names) Merge(defaults Names) Names {
	if n.Namespace == "" {
		n.Namespace = defaults.Namespace
	}
	if n.LoadStarted == "" {
		n.LoadStarted = defaults.LoadStarted
	}
	if n.LoadFinished == "" {
		n.LoadFinished = defaults.LoadFinished
	}
	if n.Error == "" {
		n.Error = defaults.Error
	}
	if n.Exhausted == "" {
		n.Exhausted = defaults.Exhausted
	}
	return n
}

// Emitter delivers a named lifecycle event to an observation channel. Emit
// must not block the coordinator; slow or absent listeners drop events
// rather than stall fetching.
type Emitter interface {
	Emit(ctx context.Context, event string)
}

// Nop is an Emitter that discards all events.
type Nop struct{}

// Emit implements Emitter.
func (Nop) Emit(context.Context, string) {}

// Multi fans one event out to several emitters in order.
type Multi []Emitter

// Emit implements Emitter.
func (m Multi) Emit(ctx context.Context, event string) {
	for _, e := range m {
		e.Emit(ctx, event)
	}
}
