package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RegistryConfig - настройки опроса для дашборда
type RegistryConfig struct {
	ActiveInterval time.Duration
	IdleInterval   time.Duration
	// заказ считается видимым, пока его запрашивали не позже VisibleFor назад
	VisibleFor time.Duration
	// без запросов дольше IdleTTL поллер останавливается
	IdleTTL time.Duration
}

type entry struct {
	poller *Poller
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	lastSeen time.Time
}

func (e *entry) seen(now time.Time) {
	e.mu.Lock()
	e.lastSeen = now
	e.mu.Unlock()
}

func (e *entry) since(now time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return now.Sub(e.lastSeen)
}

// Registry держит по одному поллеру на заказ, который кто-то смотрит
type Registry struct {
	log     *slog.Logger
	fetcher Fetcher
	cfg     RegistryConfig
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries map[int64]*entry
}

func NewRegistry(ctx context.Context, log *slog.Logger, fetcher Fetcher, cfg RegistryConfig) *Registry {
	ctx, cancel := context.WithCancel(ctx)
	return &Registry{
		log:     log,
		fetcher: fetcher,
		cfg:     cfg,
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[int64]*entry),
	}
}

// Watch отмечает заказ как просматриваемый и возвращает текущее состояние.
// Поллер запускается при первом обращении.
func (r *Registry) Watch(orderID int64) (State, error) {
	const op = "poller.Registry.Watch"

	r.mu.Lock()
	e, ok := r.entries[orderID]
	if !ok {
		var err error
		e, err = r.start(orderID)
		if err != nil {
			r.mu.Unlock()
			return State{}, err
		}
		r.entries[orderID] = e
		r.log.Debug("poller started", slog.String("op", op), slog.Int64("orderID", orderID))
	}
	r.mu.Unlock()

	e.seen(r.now())
	return e.poller.State(), nil
}

func (r *Registry) start(orderID int64) (*entry, error) {
	e := &entry{lastSeen: r.now(), done: make(chan struct{})}

	visible := VisibilityFunc(func() bool {
		return e.since(r.now()) <= r.cfg.VisibleFor
	})
	p, err := New(r.log, r.fetcher, orderID,
		WithVisibility(visible),
		WithIntervals(r.cfg.ActiveInterval, r.cfg.IdleInterval),
	)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(r.ctx)
	e.poller = p
	e.cancel = cancel
	go func() {
		defer close(e.done)
		_ = p.Run(ctx)
	}()
	return e, nil
}

// Reap останавливает поллеры, которые давно никто не запрашивал
func (r *Registry) Reap() int {
	now := r.now()

	r.mu.Lock()
	var stale []*entry
	for id, e := range r.entries {
		if e.since(now) > r.cfg.IdleTTL {
			stale = append(stale, e)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, e := range stale {
		e.cancel()
		<-e.done
	}
	if len(stale) > 0 {
		r.log.Debug("idle pollers stopped", slog.Int("count", len(stale)))
	}
	return len(stale)
}

// Run периодически вызывает Reap до отмены ctx
func (r *Registry) Run(ctx context.Context) {
	every := r.cfg.IdleTTL / 2
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Reap()
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close останавливает все поллеры и ждёт их завершения
func (r *Registry) Close() {
	r.cancel()

	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[int64]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		<-e.done
	}
}
