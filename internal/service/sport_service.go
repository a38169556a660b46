package service

import (
	"context"

	"github.com/noah-isme/sportsgrades-api/internal/models"
	appErrors "github.com/noah-isme/sportsgrades-api/pkg/errors"
)

type sportRepository interface {
	List(ctx context.Context) ([]models.Sport, error)
}

// SportService lists sports for search forms and grant management.
type SportService struct {
	repo sportRepository
}

// NewSportService constructs a SportService.
func NewSportService(repo sportRepository) *SportService {
	return &SportService{repo: repo}
}

// List returns every sport ordered by name.
func (s *SportService) List(ctx context.Context) ([]models.Sport, error) {
	sports, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sports")
	}
	if sports == nil {
		sports = []models.Sport{}
	}
	return sports, nil
}
