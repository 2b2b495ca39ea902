package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"printd/internal/model"
	"printd/internal/service"
)

// StatusStore is the slice of the order store the worker needs: it only
// ever advances sync status. The bool reports whether the status
// actually moved; false means a concurrent writer got there first.
type StatusStore interface {
	UpdateStatus(ctx context.Context, localID int64, status model.SyncStatus) (bool, error)
}

// Platform is the outbound side of propagation.
type Platform interface {
	WriteRecord(ctx context.Context, rec service.Record) error
	SendMessage(ctx context.Context, msg service.Message) error
	SendAlert(ctx context.Context, text string) error
}

// PropagationWorker pushes orders to the external ledger and the
// notification channel. Ad-hoc work arrives through a bounded queue
// drained by a fixed-size pool, which caps concurrent load on the
// platform; sweeps call Propagate directly, one order at a time.
type PropagationWorker struct {
	store    StatusStore
	platform Platform

	queue      chan model.Order
	workers    int
	attempts   int
	retryDelay time.Duration

	wg sync.WaitGroup
}

func NewPropagationWorker(store StatusStore, platform Platform) *PropagationWorker {
	return &PropagationWorker{
		store:      store,
		platform:   platform,
		queue:      make(chan model.Order, 64),
		workers:    2,
		attempts:   3,
		retryDelay: time.Second,
	}
}

// Start launches the worker pool. Workers stop when ctx is cancelled.
func (w *PropagationWorker) Start(ctx context.Context) {
	slog.Info("starting propagation workers", "count", w.workers)
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case o := <-w.queue:
					w.Propagate(ctx, o)
				}
			}
		}()
	}
}

// Wait blocks until all workers have exited.
func (w *PropagationWorker) Wait() {
	w.wg.Wait()
}

// Enqueue hands an order to the pool without blocking the caller. When
// the queue is full the order is left for the catchup sweep, which is
// the durable retry path anyway.
func (w *PropagationWorker) Enqueue(o model.Order) {
	select {
	case w.queue <- o:
	default:
		slog.Warn("propagation queue full, deferring to catchup sweep", "order_id", o.OrderID)
	}
}

// Propagate pushes one order as far along the sync pipeline as it can:
// ledger write first, notification second, advancing status after each
// confirmed step. Safe to call on an already-synced order; it does
// nothing. All failures stay inside this invocation — the record just
// remains eligible for the next sweep.
func (w *PropagationWorker) Propagate(ctx context.Context, o model.Order) {
	if o.SyncStatus.Terminal() {
		return
	}

	if o.SyncStatus == model.StatusLocalOnly {
		if !w.writeLedger(ctx, o) {
			return
		}
		advanced, err := w.store.UpdateStatus(ctx, o.LocalID, model.StatusLedgerAcked)
		if err != nil {
			slog.Error("failed to mark order ledger-acked", "order_id", o.OrderID, "error", err)
			return
		}
		if !advanced {
			// A concurrent sweep already carried this record further;
			// its status owner handles the notification.
			slog.Info("order already past ledger ack, skipping notification", "order_id", o.OrderID)
			return
		}
		slog.Info("order written to ledger", "order_id", o.OrderID)
	}

	if err := w.platform.SendMessage(ctx, messageFor(o)); err != nil {
		// Not retried here; a later sweep re-runs the notification.
		slog.Error("notification send failed", "order_id", o.OrderID, "error", err)
		return
	}
	if _, err := w.store.UpdateStatus(ctx, o.LocalID, model.StatusNotificationSent); err != nil {
		slog.Error("failed to mark order notified", "order_id", o.OrderID, "error", err)
		return
	}
	slog.Info("order notification sent", "order_id", o.OrderID)
}

// writeLedger attempts the ledger insert with bounded retry: a fixed
// pause between attempts, no backoff. On terminal failure it raises an
// ops alert and reports false without touching status.
func (w *PropagationWorker) writeLedger(ctx context.Context, o model.Order) bool {
	rec := recordFor(o)
	for attempt := 1; attempt <= w.attempts; attempt++ {
		err := w.platform.WriteRecord(ctx, rec)
		if err == nil {
			return true
		}
		slog.Error("ledger write failed", "order_id", o.OrderID, "attempt", attempt, "error", err)

		if attempt < w.attempts {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(w.retryDelay):
			}
		}
	}

	slog.Error("ledger write gave up, leaving order for next sweep", "order_id", o.OrderID, "attempts", w.attempts)
	alert := fmt.Sprintf("order %d failed to reach the ledger after %d attempts", o.OrderID, w.attempts)
	if err := w.platform.SendAlert(ctx, alert); err != nil {
		slog.Error("alert send failed", "order_id", o.OrderID, "error", err)
	}
	return false
}

func recordFor(o model.Order) service.Record {
	return service.Record{Fields: service.RecordFields{
		OrderID:   o.OrderID,
		LocalID:   o.LocalID,
		Address:   o.Address,
		Content:   o.Content,
		PrintTime: o.PrintTime,
		Printer:   o.Printer,
		Progress:  service.ProgressPrinted,
		Handler:   o.Printer,
		HandledAt: o.PrintTime,
		Overall:   o.Trace,
	}}
}

func messageFor(o model.Order) service.Message {
	return service.Message{
		OrderID:  o.OrderID,
		LocalID:  o.LocalID,
		Address:  o.Address,
		Content:  o.Content,
		Progress: service.ProgressPrinted,
		Handler:  o.Printer,
		Time:     time.UnixMilli(o.PrintTime).Format("2006-01-02 15:04:05"),
	}
}
