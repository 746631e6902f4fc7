package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ritzau/org-budget/pkg/logging"
)

const subscriberBuffer = 100

// ErrClosed is returned by a publisher that has been shut down.
var ErrClosed = errors.New("pubsub: publisher is closed")

// TopicConfig configures buffering behavior for a topic
type TopicConfig struct {
	BufferSize int  // Number of events to buffer (0 = no buffering)
	ReplayAll  bool // If true, replay all buffered events; if false, only replay last event
}

// topicState is everything the publisher tracks for one topic.
type topicState struct {
	config  TopicConfig
	version int
	history []Event
	subs    map[*sseSubscription]struct{}
}

// replay returns the events a new subscriber should see first.
func (t *topicState) replay() []Event {
	if t.config.ReplayAll || len(t.history) <= 1 {
		return t.history
	}
	return t.history[len(t.history)-1:]
}

func (t *topicState) record(event Event) {
	if t.config.BufferSize <= 0 {
		return
	}
	t.history = append(t.history, event)
	if over := len(t.history) - t.config.BufferSize; over > 0 {
		t.history = t.history[over:]
	}
}

// SSEPublisher implements Publisher for Server-Sent Events streams. One
// mutex guards every topic and every subscription's closed flag.
type SSEPublisher struct {
	mu     sync.Mutex
	topics map[string]*topicState
	closed bool
}

// NewSSEPublisher creates a new SSE-based publisher
func NewSSEPublisher() *SSEPublisher {
	return &SSEPublisher{topics: make(map[string]*topicState)}
}

// topic returns the state for name, creating it on first use. Callers hold mu.
func (p *SSEPublisher) topic(name string) *topicState {
	t, ok := p.topics[name]
	if !ok {
		t = &topicState{subs: make(map[*sseSubscription]struct{})}
		p.topics[name] = t
	}
	return t
}

// ConfigureTopic sets buffering configuration for a topic
func (p *SSEPublisher) ConfigureTopic(topic string, config TopicConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic(topic).config = config
}

// Subscribe creates a new subscription to a topic and replays buffered
// events according to the topic configuration.
func (p *SSEPublisher) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	sub := &sseSubscription{
		topic:     topic,
		events:    make(chan Event, subscriberBuffer),
		publisher: p,
	}
	t := p.topic(topic)
	t.subs[sub] = struct{}{}

	replay := t.replay()
	for _, event := range replay {
		sub.offer(event)
	}
	if len(replay) > 0 {
		logging.Debug("replayed events to new subscriber", "topic", topic, "count", len(replay))
	}

	go func() {
		<-ctx.Done()
		_ = sub.Close()
	}()

	return sub, nil
}

// Publish sends an event to all subscribers of a topic
func (p *SSEPublisher) Publish(topic string, eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	t := p.topic(topic)
	t.version++
	event := Event{Topic: topic, Type: eventType, Data: payload, Version: t.version}
	t.record(event)

	for sub := range t.subs {
		sub.offer(event)
	}
	return nil
}

// Close shuts down the publisher and all subscriptions
func (p *SSEPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for _, t := range p.topics {
		for sub := range t.subs {
			sub.shut()
		}
		clear(t.subs)
	}
	return nil
}

func (p *SSEPublisher) unsubscribe(sub *sseSubscription) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if sub.closed {
		return
	}
	sub.shut()
	if t, ok := p.topics[sub.topic]; ok {
		delete(t.subs, sub)
	}
}

// sseSubscription implements Subscription. closed is guarded by the
// publisher's mutex.
type sseSubscription struct {
	topic     string
	events    chan Event
	publisher *SSEPublisher
	closed    bool
}

// offer delivers event without blocking; a full client loses it.
func (s *sseSubscription) offer(event Event) {
	select {
	case s.events <- event:
	default:
		logging.Warn("subscription channel full, dropping event", "topic", s.topic, "version", event.Version)
	}
}

func (s *sseSubscription) shut() {
	s.closed = true
	close(s.events)
}

func (s *sseSubscription) Topic() string { return s.topic }

func (s *sseSubscription) Events() <-chan Event { return s.events }

func (s *sseSubscription) Close() error {
	s.publisher.unsubscribe(s)
	return nil
}

// WriteSSE writes an event as one "event: {type}\ndata: {json}\n\n" frame.
func WriteSSE(w io.Writer, event Event) error {
	frame, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, frame)
	return err
}
