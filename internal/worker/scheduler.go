package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"printd/internal/model"
	"printd/internal/service"
)

// SweepStore enumerates sweep candidates.
type SweepStore interface {
	FindUnsynchronized(ctx context.Context, from, to time.Time) ([]model.Order, error)
}

// OrderPropagator is what a sweep does with each candidate.
type OrderPropagator interface {
	Propagate(ctx context.Context, o model.Order)
}

// PlaceSource supplies the platform's current place list.
type PlaceSource interface {
	ListPlaces(ctx context.Context) ([]string, error)
}

// Scheduler drives the three periodic jobs from a single goroutine, so
// the jobs run sequentially relative to each other: a minutes-scale
// catchup sweep over recent unsynchronized orders, a daily
// reconciliation sweep over a shorter window, and the place-list
// refresh. The job bodies are exported so the sync endpoints can run
// them on demand.
type Scheduler struct {
	store      SweepStore
	propagator OrderPropagator
	places     *service.PlaceCache
	source     PlaceSource

	catchupInterval   time.Duration
	refreshInterval   time.Duration
	reconcileHour     int
	reconcileMinute   int
	catchupLookback   time.Duration
	reconcileLookback time.Duration
}

func NewScheduler(store SweepStore, propagator OrderPropagator, places *service.PlaceCache, source PlaceSource) *Scheduler {
	return &Scheduler{
		store:             store,
		propagator:        propagator,
		places:            places,
		source:            source,
		catchupInterval:   2 * time.Minute,
		refreshInterval:   3 * time.Minute,
		reconcileHour:     2,
		reconcileMinute:   0,
		catchupLookback:   30 * 24 * time.Hour,
		reconcileLookback: 14 * 24 * time.Hour,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("starting scheduler",
		"catchup_interval", s.catchupInterval,
		"refresh_interval", s.refreshInterval,
		"reconcile_at", fmt.Sprintf("%02d:%02d", s.reconcileHour, s.reconcileMinute))

	catchup := time.NewTicker(s.catchupInterval)
	defer catchup.Stop()
	refresh := time.NewTicker(s.refreshInterval)
	defer refresh.Stop()
	reconcile := time.NewTimer(untilNext(s.reconcileHour, s.reconcileMinute, time.Now()))
	defer reconcile.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return
		case <-catchup.C:
			if err := s.RunCatchup(ctx); err != nil {
				slog.Error("catchup sweep failed", "error", err)
			}
		case <-reconcile.C:
			if err := s.RunReconciliation(ctx); err != nil {
				slog.Error("reconciliation sweep failed", "error", err)
			}
			reconcile.Reset(untilNext(s.reconcileHour, s.reconcileMinute, time.Now()))
		case <-refresh.C:
			if err := s.RunRefresh(ctx); err != nil {
				slog.Error("place refresh failed", "error", err)
			}
		}
	}
}

// RunCatchup re-propagates orders that fell through their initial
// attempts, over the long lookback window.
func (s *Scheduler) RunCatchup(ctx context.Context) error {
	return s.sweep(ctx, "catchup", s.catchupLookback)
}

// RunReconciliation re-runs propagation over the shorter window to
// repair records whose remote state may have drifted.
func (s *Scheduler) RunReconciliation(ctx context.Context) error {
	return s.sweep(ctx, "reconciliation", s.reconcileLookback)
}

// sweep processes candidates one at a time. Propagate keeps each
// record's failures to itself, so one bad record never aborts the rest
// of the sweep.
func (s *Scheduler) sweep(ctx context.Context, name string, lookback time.Duration) error {
	now := time.Now()
	orders, err := s.store.FindUnsynchronized(ctx, now.Add(-lookback), now)
	if err != nil {
		return fmt.Errorf("find unsynchronized: %w", err)
	}

	slog.Info("sweep started", "job", name, "candidates", len(orders))
	for _, o := range orders {
		s.propagator.Propagate(ctx, o)
	}
	return nil
}

// RunRefresh rebuilds the place cache wholesale from the platform list.
func (s *Scheduler) RunRefresh(ctx context.Context) error {
	places, err := s.source.ListPlaces(ctx)
	if err != nil {
		return fmt.Errorf("list places: %w", err)
	}

	s.places.Replace(places)
	slog.Info("place cache refreshed", "places", len(places))
	return nil
}

// untilNext returns the duration from now to the next wall-clock
// occurrence of hour:min.
func untilNext(hour, min int, now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
