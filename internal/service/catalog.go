package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// CatalogService serves the preset destination and activity labels.
type CatalogService struct {
	repo repo.CatalogRepo
}

// NewCatalogService constructs a CatalogService backed by the provided CatalogRepo.
func NewCatalogService(r repo.CatalogRepo) *CatalogService {
	return &CatalogService{repo: r}
}

// ListDestinations returns one page of destinations whose name starts with q
// (case-insensitive, surrounding whitespace ignored) and the total match count.
// Always returns a non-nil slice.
func (s *CatalogService) ListDestinations(ctx context.Context, q string, p domain.PaginationParams) ([]domain.Destination, int64, error) {
	out, total, err := s.repo.ListDestinations(ctx, strings.TrimSpace(q), p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.CatalogService.ListDestinations: %w", err)
	}
	if out == nil {
		out = []domain.Destination{}
	}
	return out, total, nil
}

// ListActivities returns one page of activity categories whose name starts
// with q and the total match count. Always returns a non-nil slice.
func (s *CatalogService) ListActivities(ctx context.Context, q string, p domain.PaginationParams) ([]domain.Activity, int64, error) {
	out, total, err := s.repo.ListActivities(ctx, strings.TrimSpace(q), p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.CatalogService.ListActivities: %w", err)
	}
	if out == nil {
		out = []domain.Activity{}
	}
	return out, total, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
