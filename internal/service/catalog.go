package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/linemk/printshop/internal/api"
	"github.com/linemk/printshop/internal/domain/models"
)

type CatalogService interface {
	Materials(ctx context.Context, locale string) ([]models.Material, error)
}

type catalogService struct {
	log     *slog.Logger
	backend Backend
}

func NewCatalogService(log *slog.Logger, backend Backend) CatalogService {
	return &catalogService{log: log, backend: backend}
}

// Materials возвращает материалы, отсортированные по названию и цвету
func (s *catalogService) Materials(ctx context.Context, locale string) ([]models.Material, error) {
	const op = "service.CatalogService.Materials"

	var materials []models.Material
	if err := s.backend.Get(ctx, api.Materials(locale), &materials); err != nil {
		s.log.Error("failed to load materials", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sort.SliceStable(materials, func(i, j int) bool {
		if materials[i].Name != materials[j].Name {
			return materials[i].Name < materials[j].Name
		}
		return materials[i].Color < materials[j].Color
	})
	return materials, nil
}
