package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printd/internal/model"
	"printd/internal/service"
)

type fakeSweepStore struct {
	orders []model.Order
	err    error

	gotFrom time.Time
	gotTo   time.Time
}

func (f *fakeSweepStore) FindUnsynchronized(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	f.gotFrom, f.gotTo = from, to
	return f.orders, f.err
}

type fakePropagator struct {
	propagated []int64
}

func (f *fakePropagator) Propagate(ctx context.Context, o model.Order) {
	f.propagated = append(f.propagated, o.OrderID)
}

type fakePlaceSource struct {
	places []string
	err    error
}

func (f *fakePlaceSource) ListPlaces(ctx context.Context) ([]string, error) {
	return f.places, f.err
}

func newTestScheduler(store SweepStore, prop OrderPropagator, source PlaceSource) (*Scheduler, *service.PlaceCache) {
	cache := service.NewPlaceCache()
	return NewScheduler(store, prop, cache, source), cache
}

func TestRunCatchup_PropagatesEveryCandidate(t *testing.T) {
	store := &fakeSweepStore{orders: []model.Order{
		{LocalID: 1, OrderID: 100001},
		{LocalID: 2, OrderID: 100002},
		{LocalID: 3, OrderID: 100003},
	}}
	prop := &fakePropagator{}
	s, _ := newTestScheduler(store, prop, &fakePlaceSource{})

	require.NoError(t, s.RunCatchup(context.Background()))
	assert.Equal(t, []int64{100001, 100002, 100003}, prop.propagated)
}

func TestRunCatchup_UsesThirtyDayLookback(t *testing.T) {
	store := &fakeSweepStore{}
	s, _ := newTestScheduler(store, &fakePropagator{}, &fakePlaceSource{})

	require.NoError(t, s.RunCatchup(context.Background()))
	window := store.gotTo.Sub(store.gotFrom)
	assert.Equal(t, 30*24*time.Hour, window)
}

func TestRunReconciliation_UsesFourteenDayLookback(t *testing.T) {
	store := &fakeSweepStore{}
	s, _ := newTestScheduler(store, &fakePropagator{}, &fakePlaceSource{})

	require.NoError(t, s.RunReconciliation(context.Background()))
	window := store.gotTo.Sub(store.gotFrom)
	assert.Equal(t, 14*24*time.Hour, window)
}

func TestSweep_StoreErrorIsReturned(t *testing.T) {
	store := &fakeSweepStore{err: errors.New("db down")}
	s, _ := newTestScheduler(store, &fakePropagator{}, &fakePlaceSource{})

	assert.Error(t, s.RunCatchup(context.Background()))
}

func TestRunRefresh_ReplacesCache(t *testing.T) {
	source := &fakePlaceSource{places: []string{"上海", "杭州"}}
	s, cache := newTestScheduler(&fakeSweepStore{}, &fakePropagator{}, source)

	require.NoError(t, s.RunRefresh(context.Background()))
	assert.Equal(t, []string{"上海", "杭州"}, cache.Snapshot())
}

func TestRunRefresh_EmptyRemoteListStillSwaps(t *testing.T) {
	source := &fakePlaceSource{places: []string{"上海"}}
	s, cache := newTestScheduler(&fakeSweepStore{}, &fakePropagator{}, source)
	require.NoError(t, s.RunRefresh(context.Background()))
	require.NotEmpty(t, cache.Snapshot())

	source.places = nil
	require.NoError(t, s.RunRefresh(context.Background()))
	assert.Empty(t, cache.Snapshot())
}

func TestRunRefresh_SourceErrorKeepsOldSnapshot(t *testing.T) {
	source := &fakePlaceSource{places: []string{"上海"}}
	s, cache := newTestScheduler(&fakeSweepStore{}, &fakePropagator{}, source)
	require.NoError(t, s.RunRefresh(context.Background()))

	source.err = errors.New("platform down")
	assert.Error(t, s.RunRefresh(context.Background()))
	assert.Equal(t, []string{"上海"}, cache.Snapshot())
}

func TestUntilNext(t *testing.T) {
	now := time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Hour, untilNext(2, 0, now))

	now = time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, 23*time.Hour, untilNext(2, 0, now))

	// exactly at the boundary rolls to the next day
	now = time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, 24*time.Hour, untilNext(2, 0, now))
}
