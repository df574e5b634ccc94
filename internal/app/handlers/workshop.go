package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/printshop/internal/domain/models"
	"github.com/linemk/printshop/internal/workshop"
)

// JobRow - строка таблицы цеха с доступными действиями
type JobRow struct {
	models.PrintJob
	Actions []workshop.Action `json:"actions"`
	Busy    bool              `json:"busy"`
}

type JobsPageResponse struct {
	Jobs       []JobRow `json:"jobs"`
	Page       int      `json:"page"`
	TotalPages int      `json:"total_pages"`
	Total      int      `json:"total"`
}

// PreflightRequest - чек-лист, незаполненные пункты считаются отмеченными
type PreflightRequest struct {
	BedCleared *bool `json:"bed_cleared"`
	FilamentOK *bool `json:"filament_ok"`
	NozzleOK   *bool `json:"nozzle_ok"`
}

func (p PreflightRequest) checklist() models.Checklist {
	c := models.DefaultChecklist()
	if p.BedCleared != nil {
		c.BedCleared = *p.BedCleared
	}
	if p.FilamentOK != nil {
		c.FilamentOK = *p.FilamentOK
	}
	if p.NozzleOK != nil {
		c.NozzleOK = *p.NozzleOK
	}
	return c
}

// confirmedByQuery - для отмены нужен ?confirm=true
type confirmedByQuery bool

func (c confirmedByQuery) Confirm(context.Context, models.PrintJob, workshop.Action) bool {
	return bool(c)
}

func jobID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// WorkshopJobsHandler обрабатывает запрос GET /api/workshop/jobs?status=&q=&page=
func WorkshopJobsHandler(log *slog.Logger, board *workshop.Board, pageSize int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.WorkshopJobsHandler"
		logger := log.With(slog.String("op", op))

		if _, err := board.Reload(r.Context()); err != nil {
			logger.Error("failed to load jobs", slog.Any("error", err))
			writeError(w, "load print jobs", err)
			return
		}

		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		filter := workshop.Filter{Status: q.Get("status"), Query: q.Get("q")}
		p := board.Page(filter, page, pageSize)

		resp := JobsPageResponse{
			Jobs:       make([]JobRow, 0, len(p.Jobs)),
			Page:       p.Page,
			TotalPages: p.TotalPages,
			Total:      p.Total,
		}
		for _, j := range p.Jobs {
			actions := workshop.PermittedActions(j.Status)
			if actions == nil {
				actions = []workshop.Action{}
			}
			resp.Jobs = append(resp.Jobs, JobRow{PrintJob: j, Actions: actions, Busy: board.Busy(j.ID)})
		}
		writeJSON(w, logger, resp)
	}
}

// WorkshopActionHandler обрабатывает запрос POST /api/workshop/jobs/{id}/{action}
func WorkshopActionHandler(log *slog.Logger, board *workshop.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.WorkshopActionHandler"
		logger := log.With(slog.String("op", op))

		id, ok := jobID(r)
		if !ok {
			http.Error(w, "invalid job id", http.StatusBadRequest)
			return
		}
		action, err := workshop.ParseAction(chi.URLParam(r, "action"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		// список мог устареть, действие проверяется по свежему статусу
		if _, err := board.Reload(r.Context()); err != nil {
			writeError(w, "load print jobs", err)
			return
		}

		confirmed := confirmedByQuery(r.URL.Query().Get("confirm") == "true")
		if err := board.Do(r.Context(), id, action, confirmed); err != nil {
			logger.Warn("action failed", slog.Int64("jobID", id), slog.String("action", string(action)), slog.Any("error", err))
			writeError(w, string(action)+" job #"+strconv.FormatInt(id, 10), err)
			return
		}

		job, _ := board.Find(id)
		writeJSON(w, logger, job)
	}
}

// PreflightHandler обрабатывает запрос POST /api/workshop/jobs/{id}/preflight
func PreflightHandler(log *slog.Logger, board *workshop.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PreflightHandler"
		logger := log.With(slog.String("op", op))

		id, ok := jobID(r)
		if !ok {
			http.Error(w, "invalid job id", http.StatusBadRequest)
			return
		}

		var req PreflightRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				logger.Error("invalid request: decoding error", slog.Any("error", err))
				http.Error(w, "invalid request", http.StatusBadRequest)
				return
			}
		}

		if _, err := board.Reload(r.Context()); err != nil {
			writeError(w, "load print jobs", err)
			return
		}
		if err := board.Preflight(r.Context(), id, req.checklist()); err != nil {
			logger.Warn("preflight failed", slog.Int64("jobID", id), slog.Any("error", err))
			writeError(w, "submit preflight for job #"+strconv.FormatInt(id, 10), err)
			return
		}

		job, _ := board.Find(id)
		writeJSON(w, logger, job)
	}
}
