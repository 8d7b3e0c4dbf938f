// Package watch provides the long-running background reconciliation service:
// it periodically reloads the bill book, rebuilds the reminder schedule, and
// serves status over a local HTTP API.
package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/lmittmann/tint"

	"billwatch/internal/config"
	"billwatch/internal/schedule"
	"billwatch/internal/spendable"
	"billwatch/internal/store"
)

// Config controls the watcher runtime behavior.
type Config struct {
	DBPath   string
	Settings config.Config
	Interval time.Duration
	Addr     string
}

// Status is served at /v1/status.
type Status struct {
	StartedAt     time.Time `json:"started_at"`
	LastRunAt     time.Time `json:"last_run_at"`
	IntervalSec   int       `json:"interval_sec"`
	RunCount      int64     `json:"run_count"`
	LastError     string    `json:"last_error,omitempty"`
	Scheduled     int       `json:"scheduled"`
	Cancelled     int       `json:"cancelled"`
	Overspent     []string  `json:"overspent,omitempty"`
	AggregateSafe float64   `json:"aggregate_safe_to_spend"`
}

// Service runs the reconciliation loop and HTTP API.
type Service struct {
	cfg Config
	log *slog.Logger

	st        *store.Store
	scheduler *schedule.Scheduler

	mu        sync.RWMutex
	startedAt time.Time
	lastRunAt time.Time
	runCount  int64
	lastError string
	lastPlan  schedule.Plan
	aggregate float64
}

// NewLogger builds the watcher's structured logger.
func NewLogger() *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
}

// New returns a watcher service over the given store.
func New(cfg Config, st *store.Store, logger *slog.Logger) *Service {
	if cfg.Interval < 10*time.Second {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8791"
	}
	if logger == nil {
		logger = NewLogger()
	}

	return &Service{
		cfg:       cfg,
		log:       logger,
		st:        st,
		scheduler: schedule.New(st.Registry(), st, cfg.Settings),
		startedAt: time.Now(),
	}
}

// Run starts HTTP endpoints and the reconciliation loop until ctx is
// canceled.
func (s *Service) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/reminders", s.handleReminders)

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

	// Seed an initial run so status is useful immediately.
	s.runOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.runOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("watch http server: %w", err)
		}
	}
}

// RunOnce performs a single reconciliation pass, for one-shot callers.
func (s *Service) RunOnce(ctx context.Context) error {
	return s.runOnce(ctx)
}

func (s *Service) runOnce(ctx context.Context) error {
	now := time.Now()

	accounts, err := s.st.ListAccounts()
	if err != nil {
		s.recordError(now, err)
		return err
	}
	bills, err := s.st.RefreshBills(now)
	if err != nil {
		s.recordError(now, err)
		return err
	}

	plan, err := s.scheduler.RescheduleAll(ctx, accounts, bills, now)
	if err != nil {
		// Best-effort: log, keep the loop alive, leave whatever state the
		// platform had.
		s.recordError(now, err)
		s.log.Warn("reschedule failed", "err", err)
		return err
	}

	calc := spendable.New(s.cfg.Settings.Budget)
	aggregate := calc.Aggregate(accounts, bills, false, now)

	s.mu.Lock()
	s.lastRunAt = now
	s.runCount++
	s.lastError = ""
	s.lastPlan = plan
	s.aggregate = aggregate
	s.mu.Unlock()

	s.log.Info("schedule reconciled",
		"reminders", len(plan.Desired),
		"cancelled", plan.Cancelled,
		"overspent", len(plan.Overspent),
		"safe_to_spend", aggregate,
	)
	return nil
}

func (s *Service) recordError(now time.Time, err error) {
	s.mu.Lock()
	s.lastRunAt = now
	s.runCount++
	s.lastError = err.Error()
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:     s.startedAt,
		LastRunAt:     s.lastRunAt,
		IntervalSec:   int(s.cfg.Interval.Seconds()),
		RunCount:      s.runCount,
		LastError:     s.lastError,
		Scheduled:     len(s.lastPlan.Desired),
		Cancelled:     s.lastPlan.Cancelled,
		Overspent:     s.lastPlan.Overspent,
		AggregateSafe: s.aggregate,
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleReminders(w http.ResponseWriter, r *http.Request) {
	pending, err := s.st.Registry().Pending(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(pending)
}
