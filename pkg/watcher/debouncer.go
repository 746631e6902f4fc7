package watcher

import (
	"context"
	"time"

	"github.com/ritzau/org-budget/pkg/logging"
)

// Debouncer batches rapid file system events to avoid rebuilding the
// hierarchy on every partial write.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer. A batch is flushed after
// quietPeriod without events, or maxWait after its first event.
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		pending  *ChangeEvent
		quiet    <-chan time.Time
		deadline <-chan time.Time
	)

	flush := func() {
		if pending == nil {
			return
		}
		logging.Debug("flushing accumulated events", "count", pending.Count, "type", pending.Type.String())
		select {
		case d.output <- *pending:
		case <-ctx.Done():
		}
		pending, quiet, deadline = nil, nil, nil
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}
			if pending == nil {
				pending = &event
				deadline = time.After(d.maxWait)
			} else {
				// the latest type wins: a remove followed by a write is a write
				pending.Type = event.Type
				pending.Count += event.Count
				pending.Timestamp = event.Timestamp
			}
			quiet = time.After(d.quietPeriod)

		case <-quiet:
			flush()

		case <-deadline:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
