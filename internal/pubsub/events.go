// Package pubsub provides a generic publish/subscribe event system used to
// fan registration-pass events out to observers.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// PassStartedEvent is published when a top-level registration pass begins.
	PassStartedEvent EventType = "pass-started"
	// PassCompletedEvent is published when a top-level registration pass ends.
	PassCompletedEvent EventType = "pass-completed"
	// ImportProcessedEvent is published after an import node has been handled,
	// whether or not the imported document loaded successfully.
	ImportProcessedEvent EventType = "import-processed"
	// AliasRegisteredEvent is published after an alias node has been handled.
	AliasRegisteredEvent EventType = "alias-registered"
	// ComponentRegisteredEvent is published after a component definition has
	// been registered.
	ComponentRegisteredEvent EventType = "component-registered"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
