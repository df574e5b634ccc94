package models

import (
	"slices"
	"sort"
)

// JobStatus - закрытый набор статусов задачи печати
type JobStatus string

const (
	JobAwaitingPreflight JobStatus = "awaiting_preflight"
	JobReady             JobStatus = "ready"
	JobQueued            JobStatus = "queued"
	JobPrinting          JobStatus = "printing"
	JobPaused            JobStatus = "paused"
	JobNeedsAttention    JobStatus = "needs_attention"
	JobDone              JobStatus = "done"
	JobCanceled          JobStatus = "canceled"
)

// JobStatuses в порядке жизненного цикла
var JobStatuses = []JobStatus{
	JobAwaitingPreflight,
	JobReady,
	JobQueued,
	JobPrinting,
	JobPaused,
	JobNeedsAttention,
	JobDone,
	JobCanceled,
}

// Active - задача ещё не в терминальном статусе
func (s JobStatus) Active() bool {
	switch s {
	case JobAwaitingPreflight, JobReady, JobQueued, JobPrinting, JobPaused, JobNeedsAttention:
		return true
	}
	return false
}

func (s JobStatus) Valid() bool {
	return slices.Contains(JobStatuses, s)
}

// ModelRef - ссылка на загруженную 3D модель
type ModelRef struct {
	ID int64 `json:"id"`
}

// PrintJob представляет задачу печати, опционально привязанную к принтеру
type PrintJob struct {
	ID         int64     `json:"id"`
	OrderID    *int64    `json:"order_id,omitempty"`
	Status     JobStatus `json:"status"`
	PrinterID  *int64    `json:"printer_id"`
	Progress   float64   `json:"progress"`
	EstTimeMin int       `json:"est_time_min"`
	StartedAt  *Time     `json:"started_at,omitempty"`
	FinishedAt *Time     `json:"finished_at,omitempty"`
	Model      *ModelRef `json:"model,omitempty"`
}

func (j PrintJob) Equal(other PrintJob) bool {
	sameModel := (j.Model == nil && other.Model == nil) ||
		(j.Model != nil && other.Model != nil && j.Model.ID == other.Model.ID)
	return j.ID == other.ID &&
		j.Status == other.Status &&
		equalInt64Ptr(j.OrderID, other.OrderID) &&
		equalInt64Ptr(j.PrinterID, other.PrinterID) &&
		j.Progress == other.Progress &&
		j.EstTimeMin == other.EstTimeMin &&
		equalTimePtr(j.StartedAt, other.StartedAt) &&
		equalTimePtr(j.FinishedAt, other.FinishedAt) &&
		sameModel
}

// SortJobs возвращает копию, упорядоченную по возрастанию id
func SortJobs(jobs []PrintJob) []PrintJob {
	sorted := make([]PrintJob, len(jobs))
	copy(sorted, jobs)
	sort.SliceStable(sorted, func(i, k int) bool { return sorted[i].ID < sorted[k].ID })
	return sorted
}

// AnyActive - есть ли хотя бы одна нетерминальная задача
func AnyActive(jobs []PrintJob) bool {
	for _, j := range jobs {
		if j.Status.Active() {
			return true
		}
	}
	return false
}

func EqualJobs(a, b []PrintJob) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Checklist - чек-лист оператора перед стартом печати
type Checklist struct {
	BedCleared bool `json:"bed_cleared"`
	FilamentOK bool `json:"filament_ok"`
	NozzleOK   bool `json:"nozzle_ok"`
}

// DefaultChecklist - все пункты отмечены
func DefaultChecklist() Checklist {
	return Checklist{BedCleared: true, FilamentOK: true, NozzleOK: true}
}
