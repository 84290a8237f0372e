package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/kdimtricp/formcheck/internal/apperr"
	"github.com/kdimtricp/formcheck/internal/models"
	"gorm.io/gorm"
)

type ResultRepository struct {
	db *DB
}

func NewResultRepository(db *DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Create stores result. A second result for the same job id is rejected by
// the unique index with a conflict; an owner that is not a user is rejected
// by the foreign key.
func (r *ResultRepository) Create(ctx context.Context, result *models.Result) error {
	res := r.db.GORM().WithContext(ctx).Create(result)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("Result already exists for this job")
		}
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return apperr.NotFound("No user found")
		}
		return fmt.Errorf("failed to insert result: %w", res.Error)
	}
	return nil
}

func (r *ResultRepository) GetByJobID(ctx context.Context, jobID string) (*models.Result, error) {
	var result models.Result
	res := r.db.GORM().WithContext(ctx).First(&result, "job_id = ?", jobID)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("No result found")
		}
		return nil, fmt.Errorf("failed to get result: %w", res.Error)
	}
	return &result, nil
}

// ListByUser returns the user's results, newest first. No rows is an empty
// slice, not an error.
func (r *ResultRepository) ListByUser(ctx context.Context, userID string) ([]models.Result, error) {
	results := []models.Result{}
	res := r.db.GORM().WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to list results: %w", res.Error)
	}
	return results, nil
}

func (r *ResultRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GORM().WithContext(ctx).Model(&models.Result{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return count, nil
}
