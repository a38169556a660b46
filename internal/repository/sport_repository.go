package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sportsgrades-api/internal/models"
)

// SportRepository reads the sport reference table.
type SportRepository struct {
	db *sqlx.DB
}

// NewSportRepository constructs a SportRepository.
func NewSportRepository(db *sqlx.DB) *SportRepository {
	return &SportRepository{db: db}
}

// List returns all sports ordered by name.
func (r *SportRepository) List(ctx context.Context) ([]models.Sport, error) {
	var sports []models.Sport
	if err := r.db.SelectContext(ctx, &sports, `SELECT id, code, name FROM sports ORDER BY name ASC, code ASC`); err != nil {
		return nil, fmt.Errorf("list sports: %w", err)
	}
	return sports, nil
}

// FindByID fetches a sport. sql.ErrNoRows is returned unwrapped when absent.
func (r *SportRepository) FindByID(ctx context.Context, id int64) (*models.Sport, error) {
	var sport models.Sport
	if err := r.db.GetContext(ctx, &sport, `SELECT id, code, name FROM sports WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &sport, nil
}
