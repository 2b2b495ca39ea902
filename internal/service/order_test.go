package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printd/internal/model"
)

var orderColumns = []string{
	"local_id", "order_id", "printer", "address", "content", "print_time", "order_trace", "sync_status",
}

func newMockStore(t *testing.T) (*OrderStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOrderStore(db), mock
}

func TestOrderStore_CreateInsertsAndAssignsIDInOneTransaction(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs("张三", "杭州大厦", "总条数：5", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(model.StatusLocalOnly)).
		WillReturnRows(sqlmock.NewRows([]string{"local_id"}).AddRow(int64(7)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET order_id = $1 WHERE local_id = $2")).
		WithArgs(int64(100007), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	order, err := store.Create(context.Background(), "张三", "杭州大厦", "总条数：5")
	require.NoError(t, err)

	assert.Equal(t, int64(7), order.LocalID)
	assert.Equal(t, int64(100007), order.OrderID, "order id must be the fixed offset from local id")
	assert.Equal(t, model.StatusLocalOnly, order.SyncStatus)
	assert.Contains(t, order.Trace, "打单人：张三")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderStore_CreateRollsBackOnInsertFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	_, err := store.Create(context.Background(), "张三", "杭州大厦", "x")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet(), "failed create must roll back, leaving no partial record")
}

func TestOrderStore_UpdateStatusAdvances(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET sync_status = $1 WHERE local_id = $2 AND sync_status < $1")).
		WithArgs(int64(model.StatusLedgerAcked), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	advanced, err := store.UpdateStatus(context.Background(), 5, model.StatusLedgerAcked)
	require.NoError(t, err)
	assert.True(t, advanced)
	require.NoError(t, mock.ExpectationsWereMet())
}

// An equal or earlier status matches no row under the guard; the call
// reports "not advanced" without an error.
func TestOrderStore_UpdateStatusNoOpWhenNotStrictlyLater(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("AND sync_status < $1")).
		WithArgs(int64(model.StatusLedgerAcked), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	advanced, err := store.UpdateStatus(context.Background(), 5, model.StatusLedgerAcked)
	require.NoError(t, err)
	assert.False(t, advanced, "a guarded no-op must be reported to the caller")
	require.NoError(t, mock.ExpectationsWereMet())
}

// The candidate query must carry both halves of the eligibility filter:
// non-terminal status and the bounded creation window.
func TestOrderStore_FindUnsynchronizedFiltersByStatusAndWindow(t *testing.T) {
	store, mock := newMockStore(t)

	to := time.Now()
	from := to.Add(-30 * 24 * time.Hour)

	rows := sqlmock.NewRows(orderColumns).
		AddRow(int64(1), int64(100001), "张三", "杭州大厦", "总条数：5", from.UnixMilli()+1, "打单人：张三", int64(model.StatusLocalOnly)).
		AddRow(int64(2), nil, "李四", "上海仓库", "规格和数量：", from.UnixMilli()+2, "打单人：李四", int64(model.StatusLedgerAcked))

	mock.ExpectQuery(regexp.QuoteMeta("WHERE sync_status < $1 AND print_time BETWEEN $2 AND $3")).
		WithArgs(int64(model.StatusNotificationSent), from.UnixMilli(), to.UnixMilli()).
		WillReturnRows(rows)

	orders, err := store.FindUnsynchronized(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, int64(100001), orders[0].OrderID)
	assert.Equal(t, model.StatusLocalOnly, orders[0].SyncStatus)
	assert.Equal(t, int64(0), orders[1].OrderID, "unassigned order id scans as zero")
	assert.Equal(t, model.StatusLedgerAcked, orders[1].SyncStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderStore_GetByOrderIDNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE order_id = $1")).
		WithArgs(int64(100999)).
		WillReturnRows(sqlmock.NewRows(orderColumns))

	_, err := store.GetByOrderID(context.Background(), 100999)
	require.ErrorIs(t, err, ErrOrderNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
