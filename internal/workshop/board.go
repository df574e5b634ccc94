package workshop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/linemk/printshop/internal/domain/models"
)

var (
	ErrActionNotPermitted = errors.New("action is not permitted for the job status")
	ErrBusy               = errors.New("job already has a request in flight")
	ErrJobNotFound        = errors.New("job not found")
	ErrDeclined           = errors.New("canceled by operator")
	ErrChecklist          = errors.New("preflight checklist is incomplete")
)

// Jobs - бэкенд цеха, его реализует service.WorkshopService
type Jobs interface {
	List(ctx context.Context) ([]models.PrintJob, error)
	Transition(ctx context.Context, jobID int64, action string) error
	Preflight(ctx context.Context, jobID int64, checklist models.Checklist) error
}

// Confirmer спрашивает оператора перед необратимым действием
type Confirmer interface {
	Confirm(ctx context.Context, job models.PrintJob, action Action) bool
}

type ConfirmFunc func(ctx context.Context, job models.PrintJob, action Action) bool

func (f ConfirmFunc) Confirm(ctx context.Context, job models.PrintJob, action Action) bool {
	return f(ctx, job, action)
}

// Board - список задач цеха с действиями над ними.
// Статусы меняются только после перезагрузки списка с сервера.
type Board struct {
	log  *slog.Logger
	jobs Jobs

	mu   sync.RWMutex
	list []models.PrintJob
	busy map[int64]bool
}

func NewBoard(log *slog.Logger, jobs Jobs) *Board {
	return &Board{
		log:  log,
		jobs: jobs,
		busy: make(map[int64]bool),
	}
}

// Reload перечитывает список с сервера
func (b *Board) Reload(ctx context.Context) ([]models.PrintJob, error) {
	const op = "workshop.Board.Reload"

	jobs, err := b.jobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b.mu.Lock()
	b.list = jobs
	b.mu.Unlock()
	return jobs, nil
}

// Jobs - последний загруженный список
func (b *Board) Jobs() []models.PrintJob {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.PrintJob, len(b.list))
	copy(out, b.list)
	return out
}

// Page фильтрует последний загруженный список и отдаёт страницу
func (b *Board) Page(f Filter, page, size int) Page {
	return Paginate(f.Apply(b.Jobs()), page, size)
}

func (b *Board) Find(jobID int64) (models.PrintJob, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, j := range b.list {
		if j.ID == jobID {
			return j, true
		}
	}
	return models.PrintJob{}, false
}

func (b *Board) Busy(jobID int64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.busy[jobID]
}

// Do запрашивает переход для задачи и перезагружает список.
// Отмена требует подтверждения, отказ оператора запроса не отправляет.
func (b *Board) Do(ctx context.Context, jobID int64, action Action, confirmer Confirmer) error {
	const op = "workshop.Board.Do"
	logger := b.log.With(slog.String("op", op), slog.Int64("jobID", jobID), slog.String("action", string(action)))

	job, err := b.check(jobID, action)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if action == Preflight {
		return b.Preflight(ctx, jobID, models.DefaultChecklist())
	}

	if action.Destructive() && (confirmer == nil || !confirmer.Confirm(ctx, job, action)) {
		logger.Info("action declined by operator")
		return ErrDeclined
	}

	return b.run(ctx, jobID, func() error {
		return b.jobs.Transition(ctx, jobID, string(action))
	})
}

// Preflight отправляет чек-лист; все пункты должны быть отмечены
func (b *Board) Preflight(ctx context.Context, jobID int64, checklist models.Checklist) error {
	const op = "workshop.Board.Preflight"

	if _, err := b.check(jobID, Preflight); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !checklist.BedCleared || !checklist.FilamentOK || !checklist.NozzleOK {
		return fmt.Errorf("%s: %w", op, ErrChecklist)
	}

	return b.run(ctx, jobID, func() error {
		return b.jobs.Preflight(ctx, jobID, checklist)
	})
}

func (b *Board) check(jobID int64, action Action) (models.PrintJob, error) {
	job, ok := b.Find(jobID)
	if !ok {
		return job, ErrJobNotFound
	}
	if !Permitted(job.Status, action) {
		return job, fmt.Errorf("%w: %s on %s", ErrActionNotPermitted, action, job.Status)
	}
	return job, nil
}

// run держит флаг занятости задачи на время запроса и перезагружает список после успеха
func (b *Board) run(ctx context.Context, jobID int64, request func() error) error {
	b.mu.Lock()
	if b.busy[jobID] {
		b.mu.Unlock()
		return ErrBusy
	}
	b.busy[jobID] = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.busy, jobID)
		b.mu.Unlock()
	}()

	if err := request(); err != nil {
		return err
	}
	if _, err := b.Reload(ctx); err != nil {
		b.log.Warn("reload after transition failed", slog.Int64("jobID", jobID), slog.Any("error", err))
		return err
	}
	return nil
}
