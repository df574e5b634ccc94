package poller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/linemk/printshop/internal/domain/models"
	"github.com/linemk/printshop/internal/lib/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFetcher struct{}

func (staticFetcher) Get(ctx context.Context, id int64) (*models.Order, error) {
	return &models.Order{ID: id, Status: models.OrderPaid}, nil
}

func (staticFetcher) Jobs(ctx context.Context, orderID int64) ([]models.PrintJob, error) {
	return []models.PrintJob{{ID: 1, Status: models.JobDone}}, nil
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestRegistry_WatchAndReap(t *testing.T) {
	clock := &manualClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	r := NewRegistry(context.Background(), logger.Discard(), staticFetcher{}, RegistryConfig{
		ActiveInterval: time.Millisecond,
		IdleInterval:   time.Millisecond,
		VisibleFor:     30 * time.Second,
		IdleTTL:        5 * time.Minute,
	})
	r.now = clock.Now
	defer r.Close()

	_, err := r.Watch(42)
	require.NoError(t, err)
	_, err = r.Watch(42)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())

	assert.Eventually(t, func() bool {
		state, _ := r.Watch(42)
		return !state.Loading && state.View != nil
	}, time.Second, 5*time.Millisecond)

	clock.Advance(time.Minute)
	assert.Equal(t, 0, r.Reap(), "idle ttl not reached yet")

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 1, r.Reap())
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_InvalidOrder(t *testing.T) {
	r := NewRegistry(context.Background(), logger.Discard(), staticFetcher{}, RegistryConfig{})
	defer r.Close()

	_, err := r.Watch(0)
	assert.ErrorIs(t, err, ErrInvalidOrderID)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_VisibilityWindow(t *testing.T) {
	clock := &manualClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	r := NewRegistry(context.Background(), logger.Discard(), staticFetcher{}, RegistryConfig{VisibleFor: 30 * time.Second})
	r.now = clock.Now

	e := &entry{lastSeen: clock.Now()}
	assert.Equal(t, time.Duration(0), e.since(clock.Now()))
	clock.Advance(31 * time.Second)
	assert.Greater(t, e.since(clock.Now()), r.cfg.VisibleFor)
	r.Close()
}
