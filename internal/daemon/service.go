// Package daemon provides a long-running budget monitor that refreshes the
// sync engine on an interval and re-serves its state over local HTTP/SSE.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mlcortes/wburn/internal/engine"
	"github.com/mlcortes/wburn/internal/log"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr     string
	Interval time.Duration
}

// Snapshot is a compact view of the engine state for status/event payloads.
type Snapshot struct {
	At           time.Time `json:"at"`
	Phase        string    `json:"phase"`
	WeeklyBudget float64   `json:"weekly_budget"`
	WeeklyTotal  float64   `json:"weekly_total"`
	Remaining    float64   `json:"remaining"`
	ExpenseCount int       `json:"expense_count"`
	Error        string    `json:"error,omitempty"`
	Notification string    `json:"notification,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt          time.Time `json:"started_at"`
	LastRefreshAt      time.Time `json:"last_refresh_at"`
	RefreshIntervalSec int       `json:"refresh_interval_sec"`
	RefreshCount       int64     `json:"refresh_count"`
	SubscriberCount    int       `json:"subscriber_count"`
	Summary            Snapshot  `json:"summary"`
}

// Service wraps an engine with the daemon runtime and HTTP API.
type Service struct {
	eng    *engine.Engine
	cfg    Config
	logger *log.Logger

	mu            sync.RWMutex
	startedAt     time.Time
	lastRefreshAt time.Time
	refreshCount  int64

	nextSubID int
	subs      map[int]chan Snapshot
}

// New returns a daemon service around eng.
func New(eng *engine.Engine, cfg Config, logger *log.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if logger == nil {
		logger = log.Discard()
	}

	return &Service{
		eng:       eng,
		cfg:       cfg,
		logger:    logger,
		startedAt: time.Now(),
		subs:      make(map[int]chan Snapshot),
	}
}

// Run serves the HTTP endpoints and refreshes the engine until ctx is
// canceled.
func (s *Service) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/stream", s.handleStream)

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Forward every engine publish to stream subscribers. The engine's
	// signal channel coalesces, so each wake re-reads the whole state.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.eng.Updates():
				s.broadcast()
			}
		}
	}()

	s.logger.Info("daemon listening", "addr", s.cfg.Addr, "interval", s.cfg.Interval.String())

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.mu.Lock()
			s.lastRefreshAt = time.Now()
			s.refreshCount++
			s.mu.Unlock()
			s.eng.Refresh()
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// snapshotNow captures the engine state. The daemon is the notification
// consumer in this mode: a pending message is included once and cleared.
func (s *Service) snapshotNow() Snapshot {
	state := s.eng.State()

	snap := Snapshot{
		At:           time.Now(),
		Phase:        state.Phase.String(),
		WeeklyBudget: s.eng.WeeklyBudget(),
		WeeklyTotal:  state.WeeklyTotal,
		Remaining:    state.Remaining,
		ExpenseCount: len(state.Expenses),
		Error:        state.Err,
	}
	if n, ok := s.eng.Notification(); ok {
		snap.Notification = n.Text
		s.eng.ConsumeNotification()
	}
	return snap
}

func (s *Service) broadcast() {
	snap := s.snapshotNow()

	s.mu.Lock()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) status() Status {
	snap := s.snapshotNow()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		StartedAt:          s.startedAt,
		LastRefreshAt:      s.lastRefreshAt,
		RefreshIntervalSec: int(s.cfg.Interval.Seconds()),
		RefreshCount:       s.refreshCount,
		SubscriberCount:    len(s.subs),
		Summary:            snap,
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.status())
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Snapshot, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send the current snapshot immediately.
	writeSSE(w, s.snapshotNow())
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-ch:
			writeSSE(w, snap)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: snapshot\n")
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Snapshot) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
