package pubsub

import (
	"context"
	"encoding/json"
)

// TopicHierarchyStatus carries HierarchyStatus events.
const TopicHierarchyStatus = "hierarchy_status"

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "hierarchy_status")
	Type    string          `json:"type"`    // Event type (e.g., "loading", "ready", "error")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events. It is closed when the
	// subscription or the publisher is closed.
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// HierarchyStatus describes the most recent (re)build of the hierarchy.
type HierarchyStatus struct {
	State       string `json:"state"`   // loading, ready, error
	Message     string `json:"message"` // Human-readable status message
	Source      string `json:"source"`  // input file
	Employees   int    `json:"employees"`
	Edges       int    `json:"edges"`
	Diagnostics int    `json:"diagnostics"`
	Generation  int    `json:"generation"` // increments with every successful build
}
