package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"printd/internal/model"
)

var ErrOrderNotFound = errors.New("order not found")

// orderIDOffset turns the store-assigned row id into the human-facing
// order number. The transform is fixed and reversible so either id can
// be recovered from the other.
const orderIDOffset = 100000

const traceTimeLayout = "2006-01-02 15:04:05"

type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

// Create durably stores a new order. Row insert and order-number
// assignment happen in one transaction: a successful return means the
// full record, ids included, is visible to subsequent reads.
func (s *OrderStore) Create(ctx context.Context, printer, address, content string) (*model.Order, error) {
	now := time.Now()
	printTime := now.UnixMilli()
	trace := "打单人：" + printer + "，打单时间：" + now.Format(traceTimeLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var localID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (printer, address, content, print_time, order_trace, sync_status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING local_id`,
		printer, address, content, printTime, trace, model.StatusLocalOnly,
	).Scan(&localID)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	orderID := localID + orderIDOffset
	_, err = tx.ExecContext(ctx,
		`UPDATE orders SET order_id = $1 WHERE local_id = $2`, orderID, localID)
	if err != nil {
		return nil, fmt.Errorf("assign order id: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &model.Order{
		LocalID:    localID,
		OrderID:    orderID,
		Printer:    printer,
		Address:    address,
		Content:    content,
		PrintTime:  printTime,
		Trace:      trace,
		SyncStatus: model.StatusLocalOnly,
	}, nil
}

func (s *OrderStore) GetByOrderID(ctx context.Context, orderID int64) (*model.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT local_id, order_id, printer, address, content, print_time, order_trace, sync_status
		FROM orders
		WHERE order_id = $1
	`, orderID)

	var o model.Order
	if err := scanOrder(row.Scan, &o); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

// List returns orders most recent first.
func (s *OrderStore) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT local_id, order_id, printer, address, content, print_time, order_trace, sync_status
		FROM orders
		ORDER BY local_id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// UpdateStatus advances an order's sync status. The monotonicity guard
// lives in the WHERE clause: a write that would keep or regress the
// status matches no row and is logged as a no-op, which is the expected
// outcome when an immediate propagation and a sweep race on the same
// record. The returned bool tells the caller whether its write won, so
// the loser can stop its half of the pipeline.
func (s *OrderStore) UpdateStatus(ctx context.Context, localID int64, status model.SyncStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET sync_status = $1 WHERE local_id = $2 AND sync_status < $1`,
		status, localID)
	if err != nil {
		return false, fmt.Errorf("update status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		slog.Warn("sync status not advanced", "local_id", localID, "status", status.String())
		return false, nil
	}
	return true, nil
}

// FindUnsynchronized returns non-terminal orders created inside the
// [from, to] window, oldest first. The window keeps sweeps from
// rescanning the whole history forever.
func (s *OrderStore) FindUnsynchronized(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT local_id, order_id, printer, address, content, print_time, order_trace, sync_status
		FROM orders
		WHERE sync_status < $1 AND print_time BETWEEN $2 AND $3
		ORDER BY local_id ASC
	`, model.StatusNotificationSent, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query unsynchronized: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func scanOrder(scan func(...any) error, o *model.Order) error {
	var orderID sql.NullInt64
	if err := scan(&o.LocalID, &orderID, &o.Printer, &o.Address, &o.Content, &o.PrintTime, &o.Trace, &o.SyncStatus); err != nil {
		return err
	}
	if orderID.Valid {
		o.OrderID = orderID.Int64
	}
	return nil
}

func collectOrders(rows *sql.Rows) ([]model.Order, error) {
	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows.Scan, &o); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return orders, nil
}
