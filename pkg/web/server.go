package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/ritzau/org-budget/pkg/budget"
	"github.com/ritzau/org-budget/pkg/cycles"
	"github.com/ritzau/org-budget/pkg/hierarchy"
	"github.com/ritzau/org-budget/pkg/logging"
	"github.com/ritzau/org-budget/pkg/pubsub"
)

// GraphNode represents an employee in the hierarchy graph
type GraphNode struct {
	ID        string `json:"id"`
	ManagerID string `json:"managerId,omitempty"`
	Salary    int64  `json:"salary"`
	Root      bool   `json:"root"`
}

// GraphEdge represents a manager -> report link
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// GraphData holds the hierarchy for visualization
type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// DiagnosticsData is the payload of /api/diagnostics
type DiagnosticsData struct {
	Diagnostics []hierarchy.Diagnostic  `json:"diagnostics"`
	Cycles      []cycles.ReportingCycle `json:"cycles"`
}

// Store holds the hierarchy currently being served. Queries take the read
// lock; a rebuild swaps in a fresh hierarchy under the write lock.
type Store struct {
	mu         sync.RWMutex
	hierarchy  *hierarchy.Hierarchy
	aggregator *budget.Aggregator
	generation int
	snapshot   *GraphSnapshot
	changes    *GraphDiff
}

// Swap replaces the current hierarchy and returns the new generation.
func (st *Store) Swap(h *hierarchy.Hierarchy) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.hierarchy = h
	st.aggregator = budget.New(h)
	st.generation++

	snapshot := CreateSnapshot(buildGraphData(h))
	st.changes = ComputeDiff(st.snapshot, snapshot)
	st.changes.Generation = st.generation
	st.snapshot = snapshot
	return st.generation
}

// Changes returns what the last swap changed, or nil before the first one.
func (st *Store) Changes() *GraphDiff {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.changes
}

// View runs fn with the current hierarchy under the read lock. It reports
// false when nothing has been loaded yet.
func (st *Store) View(fn func(h *hierarchy.Hierarchy, agg *budget.Aggregator)) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.hierarchy == nil {
		return false
	}
	fn(st.hierarchy, st.aggregator)
	return true
}

// Generation returns the number of successful swaps.
func (st *Store) Generation() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.generation
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	store     *Store
	publisher pubsub.Publisher
}

// NewServer creates a new web server
func NewServer() *Server {
	ssePublisher := pubsub.NewSSEPublisher()

	// hierarchy_status: buffer last 10 events, replay only the current state
	ssePublisher.ConfigureTopic(pubsub.TopicHierarchyStatus, pubsub.TopicConfig{
		BufferSize: 10,
		ReplayAll:  false,
	})

	s := &Server{
		router:    mux.NewRouter(),
		store:     &Store{},
		publisher: ssePublisher,
	}
	s.setupRoutes()
	return s
}

// SetHierarchy makes h the hierarchy answered by the API.
func (s *Server) SetHierarchy(h *hierarchy.Hierarchy) int {
	return s.store.Swap(h)
}

// Store returns the backing store.
func (s *Server) Store() *Store {
	return s.store
}

// PublishHierarchyStatus publishes a hierarchy status event
func (s *Server) PublishHierarchyStatus(status pubsub.HierarchyStatus) error {
	return s.publisher.Publish(pubsub.TopicHierarchyStatus, status.State, status)
}

// Handler returns the router wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("web server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	// SSE streams end once the publisher closes their subscriptions
	_ = s.publisher.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down web server: %w", err)
	}
	return nil
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/subscribe/hierarchy_status", s.handleSubscribeHierarchyStatus).Methods("GET")

	// more specific routes must come first
	s.router.HandleFunc("/api/budget/{id}/breakdown", s.handleBreakdown).Methods("GET")
	s.router.HandleFunc("/api/budget/{id}", s.handleBudget).Methods("GET")
	s.router.HandleFunc("/api/budgets", s.handleBudgets).Methods("GET")
	s.router.HandleFunc("/api/hierarchy/readable", s.handleReadable).Methods("GET")
	s.router.HandleFunc("/api/hierarchy/changes", s.handleChanges).Methods("GET")
	s.router.HandleFunc("/api/hierarchy", s.handleHierarchy).Methods("GET")
	s.router.HandleFunc("/api/diagnostics", s.handleDiagnostics).Methods("GET")
}

func (s *Server) handleSubscribeHierarchyStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	flush(w)

	sub, err := s.publisher.Subscribe(r.Context(), pubsub.TopicHierarchyStatus)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	for event := range sub.Events() {
		if err := pubsub.WriteSSE(w, event); err != nil {
			logging.WarnContext(r.Context(), "error writing SSE event", "error", err)
			return
		}
		flush(w)
	}
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var (
		total int64
		err   error
	)
	if !s.store.View(func(_ *hierarchy.Hierarchy, agg *budget.Aggregator) {
		total, err = agg.Budget(id)
	}) {
		http.Error(w, "Hierarchy not loaded", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		writeLookupError(w, r, err)
		return
	}

	writeJSON(w, r, budget.Line{ID: id, Budget: total})
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var (
		b   *budget.Breakdown
		err error
	)
	if !s.store.View(func(_ *hierarchy.Hierarchy, agg *budget.Aggregator) {
		b, err = agg.Breakdown(id)
	}) {
		http.Error(w, "Hierarchy not loaded", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		writeLookupError(w, r, err)
		return
	}

	writeJSON(w, r, b)
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	lines := []budget.Line{}
	s.store.View(func(_ *hierarchy.Hierarchy, agg *budget.Aggregator) {
		lines = agg.All()
	})
	writeJSON(w, r, lines)
}

func (s *Server) handleHierarchy(w http.ResponseWriter, r *http.Request) {
	data := &GraphData{Nodes: []GraphNode{}, Edges: []GraphEdge{}}
	s.store.View(func(h *hierarchy.Hierarchy, _ *budget.Aggregator) {
		data = buildGraphData(h)
	})
	writeJSON(w, r, data)
}

func (s *Server) handleReadable(w http.ResponseWriter, r *http.Request) {
	var text string
	if !s.store.View(func(h *hierarchy.Hierarchy, _ *budget.Aggregator) {
		text = h.Readable()
	}) {
		http.Error(w, "Hierarchy not loaded", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, text)
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	changes := s.store.Changes()
	if changes == nil {
		http.Error(w, "Hierarchy not loaded", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, r, changes)
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	data := &DiagnosticsData{
		Diagnostics: []hierarchy.Diagnostic{},
		Cycles:      []cycles.ReportingCycle{},
	}
	s.store.View(func(h *hierarchy.Hierarchy, _ *budget.Aggregator) {
		data.Diagnostics = append(data.Diagnostics, h.Diagnostics()...)
		data.Cycles = append(data.Cycles, cycles.FindReportingCycles(h)...)
	})
	writeJSON(w, r, data)
}

// buildGraphData converts the hierarchy to nodes and edges
func buildGraphData(h *hierarchy.Hierarchy) *GraphData {
	data := &GraphData{
		Nodes: make([]GraphNode, 0, h.Len()),
		Edges: make([]GraphEdge, 0, h.Graph().EdgesCount()),
	}

	for _, e := range h.Employees() {
		data.Nodes = append(data.Nodes, GraphNode{
			ID:        e.ID,
			ManagerID: e.ManagerID,
			Salary:    e.Salary,
			Root:      e.IsRoot(),
		})
	}
	for edge := range h.Graph().Edges() {
		data.Edges = append(data.Edges, GraphEdge{
			Source: edge.Source.ID,
			Target: edge.Destination.ID,
		})
	}
	return data
}

func writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, hierarchy.ErrEmployeeNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	logging.ErrorContext(r.Context(), "budget query failed", "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.WarnContext(r.Context(), "error encoding response", "error", err)
	}
}

func flush(w http.ResponseWriter) {
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
