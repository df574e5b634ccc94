package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/linemk/printshop/internal/api"
	"github.com/linemk/printshop/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultActiveInterval = 4 * time.Second
	DefaultIdleInterval   = 10 * time.Second
)

var ErrInvalidOrderID = errors.New("invalid order id")

// Fetcher - источник данных для страницы статуса заказа
type Fetcher interface {
	Get(ctx context.Context, id int64) (*models.Order, error)
	Jobs(ctx context.Context, orderID int64) ([]models.PrintJob, error)
}

// Visibility сообщает, смотрит ли кто-то на страницу сейчас
type Visibility interface {
	Visible() bool
}

type VisibilityFunc func() bool

func (f VisibilityFunc) Visible() bool { return f() }

var alwaysVisible = VisibilityFunc(func() bool { return true })

// Timer - то, что нужно циклу от time.Timer
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

type stdTimer struct{ t *time.Timer }

func (s stdTimer) C() <-chan time.Time { return s.t.C }
func (s stdTimer) Stop() bool          { return s.t.Stop() }

func newStdTimer(d time.Duration) Timer {
	return stdTimer{t: time.NewTimer(d)}
}

// View - заказ и его задачи, применяются только вместе
type View struct {
	Order *models.Order
	Jobs  []models.PrintJob
}

func (v *View) Equal(other *View) bool {
	if v == nil || other == nil {
		return v == other
	}
	return v.Order.Equal(other.Order) && models.EqualJobs(v.Jobs, other.Jobs)
}

// State - то, что показывает страница. View меняется только при реальных изменениях.
type State struct {
	Loading bool
	View    *View
	Err     string
	Active  bool
}

type Poller struct {
	log      *slog.Logger
	fetcher  Fetcher
	orderID  int64
	vis      Visibility
	active   time.Duration
	idle     time.Duration
	newTimer func(time.Duration) Timer
	onChange func(State)

	mu    sync.RWMutex
	state State
}

type Option func(*Poller)

func WithVisibility(v Visibility) Option {
	return func(p *Poller) { p.vis = v }
}

// WithIntervals задаёт задержки при активных задачах и без них
func WithIntervals(active, idle time.Duration) Option {
	return func(p *Poller) {
		if active > 0 {
			p.active = active
		}
		if idle > 0 {
			p.idle = idle
		}
	}
}

func WithTimer(newTimer func(time.Duration) Timer) Option {
	return func(p *Poller) { p.newTimer = newTimer }
}

// WithOnChange - вызывается после каждого изменения показываемого состояния
func WithOnChange(fn func(State)) Option {
	return func(p *Poller) { p.onChange = fn }
}

func New(log *slog.Logger, fetcher Fetcher, orderID int64, opts ...Option) (*Poller, error) {
	if orderID <= 0 {
		return nil, fmt.Errorf("poller: %w: %d", ErrInvalidOrderID, orderID)
	}

	p := &Poller{
		log:      log.With(slog.Int64("orderID", orderID)),
		fetcher:  fetcher,
		orderID:  orderID,
		vis:      alwaysVisible,
		active:   DefaultActiveInterval,
		idle:     DefaultIdleInterval,
		newTimer: newStdTimer,
		state:    State{Loading: true},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Poller) OrderID() int64 {
	return p.orderID
}

func (p *Poller) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Run крутит цикл до отмены ctx. Первый цикл сразу, дальше по интервалу.
func (p *Poller) Run(ctx context.Context) error {
	delay := time.Duration(0)
	for {
		timer := p.newTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C():
		}
		delay = p.Tick(ctx)
	}
}

// Tick - один цикл опроса. Возвращает задержку до следующего.
// Если страница не видна, запросов нет, но задержка всё равно возвращается.
func (p *Poller) Tick(ctx context.Context) time.Duration {
	const op = "poller.Poller.Tick"

	if ctx.Err() != nil || !p.vis.Visible() {
		return p.next()
	}

	view, err := p.fetch(ctx)
	if ctx.Err() != nil {
		// страницу уже закрыли, результат никому не нужен
		return p.next()
	}
	if err != nil {
		p.log.Warn("status fetch failed", slog.String("op", op), slog.Any("error", err))
		p.fail(api.Describe("load order status", err))
		return p.next()
	}

	p.apply(view)
	return p.next()
}

func (p *Poller) fetch(ctx context.Context) (*View, error) {
	var (
		order *models.Order
		jobs  []models.PrintJob
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		order, err = p.fetcher.Get(gctx, p.orderID)
		return err
	})
	g.Go(func() error {
		var err error
		jobs, err = p.fetcher.Jobs(gctx, p.orderID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &View{Order: order, Jobs: models.SortJobs(jobs)}, nil
}

func (p *Poller) apply(view *View) {
	p.mu.Lock()
	changed := p.state.Loading || p.state.Err != "" || !p.state.View.Equal(view)
	p.state.Loading = false
	p.state.Err = ""
	p.state.Active = models.AnyActive(view.Jobs)
	if !p.state.View.Equal(view) {
		p.state.View = view
	}
	state := p.state
	p.mu.Unlock()

	if changed {
		p.notify(state)
	}
}

// fail оставляет старые данные и признак активности, меняется только сообщение
func (p *Poller) fail(msg string) {
	p.mu.Lock()
	changed := p.state.Loading || p.state.Err != msg
	p.state.Loading = false
	p.state.Err = msg
	state := p.state
	p.mu.Unlock()

	if changed {
		p.notify(state)
	}
}

func (p *Poller) notify(state State) {
	if p.onChange != nil {
		p.onChange(state)
	}
}

func (p *Poller) next() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.state.Active {
		return p.active
	}
	return p.idle
}
