package poller_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/linemk/printshop/internal/api"
	"github.com/linemk/printshop/internal/domain/models"
	"github.com/linemk/printshop/internal/lib/logger"
	"github.com/linemk/printshop/internal/poller"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher отдаёт копии заданных данных, чтобы сравнение шло по значению, а не по указателю
type fakeFetcher struct {
	mu       sync.Mutex
	order    models.Order
	jobs     []models.PrintJob
	orderErr error
	jobsErr  error

	orderCalls atomic.Int32
	jobsCalls  atomic.Int32
	onFetch    func()
}

var _ poller.Fetcher = (*fakeFetcher)(nil)

func (f *fakeFetcher) Get(ctx context.Context, id int64) (*models.Order, error) {
	f.orderCalls.Add(1)
	if f.onFetch != nil {
		f.onFetch()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	o := f.order
	o.ID = id
	return &o, nil
}

func (f *fakeFetcher) Jobs(ctx context.Context, orderID int64) ([]models.PrintJob, error) {
	f.jobsCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.jobsErr != nil {
		return nil, f.jobsErr
	}
	out := make([]models.PrintJob, len(f.jobs))
	copy(out, f.jobs)
	return out, nil
}

func (f *fakeFetcher) set(fn func(f *fakeFetcher)) {
	f.mu.Lock()
	fn(f)
	f.mu.Unlock()
}

func newPoller(t *testing.T, f poller.Fetcher, opts ...poller.Option) *poller.Poller {
	t.Helper()
	p, err := poller.New(logger.Discard(), f, 42, opts...)
	require.NoError(t, err)
	return p
}

func order42() models.Order {
	return models.Order{ID: 42, Status: models.OrderPaid, TotalEUR: decimal.RequireFromString("25.00")}
}

func TestPoller_SortsJobsAndSchedulesActive(t *testing.T) {
	f := &fakeFetcher{
		order: order42(),
		jobs:  []models.PrintJob{{ID: 5, Status: models.JobPrinting}, {ID: 3, Status: models.JobDone}},
	}
	p := newPoller(t, f)

	assert.True(t, p.State().Loading)
	next := p.Tick(context.Background())

	state := p.State()
	assert.False(t, state.Loading)
	require.NotNil(t, state.View)
	require.Len(t, state.View.Jobs, 2)
	assert.Equal(t, int64(3), state.View.Jobs[0].ID)
	assert.Equal(t, int64(5), state.View.Jobs[1].ID)
	assert.Equal(t, 4000*time.Millisecond, next)
}

func TestPoller_IdleInterval(t *testing.T) {
	tests := []struct {
		name string
		jobs []models.PrintJob
	}{
		{name: "all terminal", jobs: []models.PrintJob{{ID: 1, Status: models.JobDone}, {ID: 2, Status: models.JobCanceled}}},
		{name: "no jobs", jobs: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPoller(t, &fakeFetcher{order: order42(), jobs: tt.jobs})
			assert.Equal(t, 10*time.Second, p.Tick(context.Background()))
		})
	}
}

func TestPoller_EveryActiveStatusSchedulesFast(t *testing.T) {
	for _, status := range models.JobStatuses {
		f := &fakeFetcher{order: order42(), jobs: []models.PrintJob{{ID: 1, Status: status}}}
		want := 10 * time.Second
		if status.Active() {
			want = 4 * time.Second
		}
		assert.Equal(t, want, newPoller(t, f).Tick(context.Background()), string(status))
	}
}

func TestPoller_InvisibleSkipsFetchButReschedules(t *testing.T) {
	var visible atomic.Bool
	f := &fakeFetcher{order: order42(), jobs: []models.PrintJob{{ID: 1, Status: models.JobPrinting}}}
	p := newPoller(t, f, poller.WithVisibility(poller.VisibilityFunc(visible.Load)))

	next := p.Tick(context.Background())
	assert.Equal(t, 10*time.Second, next, "no activity known yet")
	assert.Equal(t, int32(0), f.orderCalls.Load())
	assert.Equal(t, int32(0), f.jobsCalls.Load())
	assert.True(t, p.State().Loading)

	visible.Store(true)
	assert.Equal(t, 4*time.Second, p.Tick(context.Background()))

	visible.Store(false)
	assert.Equal(t, 4*time.Second, p.Tick(context.Background()), "keeps the last known interval")
	assert.Equal(t, int32(1), f.orderCalls.Load())
}

func TestPoller_UnchangedViewKeepsReference(t *testing.T) {
	f := &fakeFetcher{order: order42(), jobs: []models.PrintJob{{ID: 5, Status: models.JobPrinting}, {ID: 3, Status: models.JobDone}}}
	var changes int
	p := newPoller(t, f, poller.WithOnChange(func(poller.State) { changes++ }))

	p.Tick(context.Background())
	first := p.State().View

	// тот же заказ, другой порядок задач и другая запись суммы
	f.set(func(f *fakeFetcher) {
		f.jobs = []models.PrintJob{{ID: 3, Status: models.JobDone}, {ID: 5, Status: models.JobPrinting}}
		f.order.TotalEUR = decimal.RequireFromString("25")
	})
	p.Tick(context.Background())

	assert.Same(t, first, p.State().View)
	assert.Equal(t, 1, changes)

	f.set(func(f *fakeFetcher) { f.jobs[1].Progress = 0.5 })
	p.Tick(context.Background())

	assert.NotSame(t, first, p.State().View)
	assert.Equal(t, 2, changes)
}

func TestPoller_ErrorKeepsDataAndActivity(t *testing.T) {
	f := &fakeFetcher{order: order42(), jobs: []models.PrintJob{{ID: 1, Status: models.JobPrinting}}}
	p := newPoller(t, f)

	p.Tick(context.Background())
	before := p.State().View

	f.set(func(f *fakeFetcher) {
		f.jobsErr = &api.Error{Message: "Service Unavailable", Status: 503, RequestID: "rid-1"}
	})
	next := p.Tick(context.Background())

	state := p.State()
	assert.Equal(t, 4*time.Second, next)
	assert.Same(t, before, state.View)
	assert.Equal(t, "could not load order status [request id: rid-1]", state.Err)

	f.set(func(f *fakeFetcher) { f.jobsErr = nil })
	p.Tick(context.Background())
	assert.Empty(t, p.State().Err)
}

func TestPoller_FirstLoadError(t *testing.T) {
	f := &fakeFetcher{orderErr: errors.New("boom")}
	p := newPoller(t, f)

	assert.Equal(t, 10*time.Second, p.Tick(context.Background()))
	state := p.State()
	assert.False(t, state.Loading)
	assert.Nil(t, state.View)
	assert.Equal(t, "could not load order status", state.Err)
}

func TestPoller_PartialResultNotApplied(t *testing.T) {
	f := &fakeFetcher{order: order42(), jobsErr: errors.New("jobs down")}
	p := newPoller(t, f)

	p.Tick(context.Background())
	assert.Nil(t, p.State().View, "order must not be shown without its jobs")
}

func TestPoller_InvalidOrderID(t *testing.T) {
	for _, id := range []int64{0, -1} {
		p, err := poller.New(logger.Discard(), &fakeFetcher{}, id)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, poller.ErrInvalidOrderID)
	}
}

func TestPoller_CancelledDuringFetchAppliesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &fakeFetcher{order: order42(), onFetch: cancel}
	var changes int
	p := newPoller(t, f, poller.WithOnChange(func(poller.State) { changes++ }))

	p.Tick(ctx)

	assert.True(t, p.State().Loading)
	assert.Nil(t, p.State().View)
	assert.Zero(t, changes)
}

// fakeTimer срабатывает, когда тест пишет в fire
type fakeTimer struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (f *fakeTimer) C() <-chan time.Time { return f.ch }
func (f *fakeTimer) Stop() bool {
	f.stopped.Store(true)
	return true
}

func TestPoller_RunSchedulesAndStops(t *testing.T) {
	f := &fakeFetcher{order: order42(), jobs: []models.PrintJob{{ID: 1, Status: models.JobPrinting}}}

	delays := make(chan time.Duration, 10)
	timers := make(chan *fakeTimer, 10)
	newTimer := func(d time.Duration) poller.Timer {
		ft := &fakeTimer{ch: make(chan time.Time, 1)}
		delays <- d
		timers <- ft
		return ft
	}
	p := newPoller(t, f, poller.WithTimer(newTimer))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// первый цикл сразу
	assert.Equal(t, time.Duration(0), <-delays)
	(<-timers).ch <- time.Now()

	assert.Equal(t, 4*time.Second, <-delays)
	f.set(func(f *fakeFetcher) { f.jobs[0].Status = models.JobDone })
	(<-timers).ch <- time.Now()

	assert.Equal(t, 10*time.Second, <-delays)
	pending := <-timers

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.True(t, pending.stopped.Load(), "pending timer must be cleared")
	assert.Equal(t, int32(2), f.orderCalls.Load())
}
