package workshop

import (
	"fmt"
	"slices"

	"github.com/linemk/printshop/internal/domain/models"
)

// Action - переход задачи печати, который может запросить оператор
type Action string

const (
	Preflight Action = "preflight"
	Start     Action = "start"
	Pause     Action = "pause"
	Resume    Action = "resume"
	Cancel    Action = "cancel"
)

var Actions = []Action{Preflight, Start, Pause, Resume, Cancel}

// permitted - какие кнопки показываются для статуса.
// Сервер всё равно проверяет переход сам.
var permitted = map[models.JobStatus][]Action{
	models.JobAwaitingPreflight: {Preflight},
	models.JobReady:             {Start},
	models.JobQueued:            {Start},
	models.JobPrinting:          {Pause, Cancel},
	models.JobPaused:            {Resume, Cancel},
	models.JobNeedsAttention:    {Resume, Cancel},
	models.JobDone:              nil,
	models.JobCanceled:          nil,
}

func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !slices.Contains(Actions, a) {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// Destructive - нужно подтверждение оператора
func (a Action) Destructive() bool {
	return a == Cancel
}

// PermittedActions для неизвестного статуса пусто
func PermittedActions(status models.JobStatus) []Action {
	return slices.Clone(permitted[status])
}

func Permitted(status models.JobStatus, action Action) bool {
	return slices.Contains(permitted[status], action)
}
