package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/linemk/printshop/internal/api"
	"github.com/linemk/printshop/internal/domain/models"
)

type WorkshopService interface {
	List(ctx context.Context) ([]models.PrintJob, error)
	Transition(ctx context.Context, jobID int64, action string) error
	Preflight(ctx context.Context, jobID int64, checklist models.Checklist) error
}

type workshopService struct {
	log     *slog.Logger
	backend Backend
}

func NewWorkshopService(log *slog.Logger, backend Backend) WorkshopService {
	return &workshopService{log: log, backend: backend}
}

func (s *workshopService) List(ctx context.Context) ([]models.PrintJob, error) {
	const op = "service.WorkshopService.List"

	// бэкенд отдаёт либо массив, либо {"items": [...]} / {"data": [...]}
	var jobs jobList
	if err := s.backend.Get(ctx, api.PathPrintJobs, &jobs); err != nil {
		s.log.Error("failed to list print jobs", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return jobs, nil
}

type jobList []models.PrintJob

func (l *jobList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var envelope struct {
			Items []models.PrintJob `json:"items"`
			Data  []models.PrintJob `json:"data"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return err
		}
		if envelope.Items != nil {
			*l = envelope.Items
		} else {
			*l = envelope.Data
		}
		return nil
	}

	var jobs []models.PrintJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		return err
	}
	*l = jobs
	return nil
}

// Transition - один POST без тела; какие переходы допустимы, решает сервер
func (s *workshopService) Transition(ctx context.Context, jobID int64, action string) error {
	const op = "service.WorkshopService.Transition"
	logger := s.log.With(slog.String("op", op), slog.Int64("jobID", jobID), slog.String("action", action))

	if err := s.backend.Post(ctx, api.JobAction(jobID, action), nil, nil); err != nil {
		logger.Error("transition failed", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("transition requested")
	return nil
}

func (s *workshopService) Preflight(ctx context.Context, jobID int64, checklist models.Checklist) error {
	const op = "service.WorkshopService.Preflight"
	logger := s.log.With(slog.String("op", op), slog.Int64("jobID", jobID))

	if err := s.backend.Post(ctx, api.JobAction(jobID, "preflight"), checklist, nil); err != nil {
		logger.Error("preflight failed", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("preflight submitted")
	return nil
}
