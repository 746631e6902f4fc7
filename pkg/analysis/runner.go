// Package analysis rebuilds the hierarchy from the input file and hands it
// to the web server.
package analysis

import (
	"context"
	"fmt"
	"sync"

	"github.com/ritzau/org-budget/pkg/hierarchy"
	"github.com/ritzau/org-budget/pkg/logging"
	"github.com/ritzau/org-budget/pkg/pubsub"
	"github.com/ritzau/org-budget/pkg/watcher"
	"github.com/ritzau/org-budget/pkg/web"
)

// AnalysisRunner orchestrates loading and publishing the hierarchy
type AnalysisRunner struct {
	input   string
	server  *web.Server
	options []hierarchy.Option
	mu      sync.Mutex // Prevent concurrent runs
}

// AnalysisOptions describes one run
type AnalysisOptions struct {
	Reason string // e.g., "initial load", "input file changed"
}

// NewAnalysisRunner creates a runner for input. Build options are applied on
// every run.
func NewAnalysisRunner(input string, server *web.Server, opts ...hierarchy.Option) *AnalysisRunner {
	return &AnalysisRunner{
		input:   input,
		server:  server,
		options: opts,
	}
}

// Run loads the input, builds a fresh hierarchy and swaps it into the server.
// On failure the previous hierarchy keeps being served.
func (ar *AnalysisRunner) Run(ctx context.Context, opts AnalysisOptions) error {
	ar.mu.Lock()
	defer ar.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	logging.Info("loading hierarchy", "input", ar.input, "reason", opts.Reason)
	ar.publish(pubsub.HierarchyStatus{
		State:   "loading",
		Message: fmt.Sprintf("Loading %s (%s)", ar.input, opts.Reason),
		Source:  ar.input,
	})

	buildOpts := append([]hierarchy.Option{
		hierarchy.WithDiagnosticSink(LogDiagnostic),
	}, ar.options...)

	h, err := hierarchy.LoadFile(ar.input, buildOpts...)
	if err != nil {
		logging.Error("could not load hierarchy", "input", ar.input, "error", err)
		ar.publish(pubsub.HierarchyStatus{
			State:   "error",
			Message: err.Error(),
			Source:  ar.input,
		})
		return fmt.Errorf("loading hierarchy: %w", err)
	}

	generation := ar.server.SetHierarchy(h)
	status := pubsub.HierarchyStatus{
		State:       "ready",
		Message:     fmt.Sprintf("Loaded %d employees", h.Len()),
		Source:      ar.input,
		Employees:   h.Len(),
		Edges:       h.Graph().EdgesCount(),
		Diagnostics: len(h.Diagnostics()),
		Generation:  generation,
	}
	logging.Info("hierarchy ready",
		"employees", status.Employees,
		"edges", status.Edges,
		"diagnostics", status.Diagnostics,
		"generation", generation)
	if changes := ar.server.Store().Changes(); changes != nil && !changes.FullGraph {
		logging.Debug("hierarchy changes",
			"added", len(changes.AddedNodes),
			"removed", len(changes.RemovedNodes),
			"modified", len(changes.ModifiedNodes))
	}
	ar.publish(status)
	return nil
}

// Watch reruns the analysis for every debounced change until events closes
// or ctx is cancelled.
func (ar *AnalysisRunner) Watch(ctx context.Context, events <-chan watcher.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}

			change := watcher.AnalyzeChanges(event)
			if change.KeepCurrent {
				logging.Warn("keeping current hierarchy", "reason", change.Reason, "path", event.Path)
				ar.publish(pubsub.HierarchyStatus{
					State:   "error",
					Message: change.Reason,
					Source:  ar.input,
				})
				continue
			}

			if err := ar.Run(ctx, AnalysisOptions{Reason: change.Reason}); err != nil {
				// already logged and published; keep watching
				logging.Debug("rerun failed", "error", err)
			}
		}
	}
}

func (ar *AnalysisRunner) publish(status pubsub.HierarchyStatus) {
	if err := ar.server.PublishHierarchyStatus(status); err != nil {
		logging.Warn("could not publish hierarchy status", "state", status.State, "error", err)
	}
}

// LogDiagnostic forwards a build diagnostic to the logger.
func LogDiagnostic(d hierarchy.Diagnostic) {
	logging.Warn("record rejected",
		"kind", string(d.Kind),
		"line", d.Line,
		"column", d.Column,
		"record", d.Record,
		"message", d.Message)
}
