package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dialectic-ai/dialectic-api/internal/models"
)

// EvaluationRepository exposes persistence helpers for evaluation records.
type EvaluationRepository interface {
	Create(ctx context.Context, record *models.EvaluationRecord) error
	ListByTaskID(ctx context.Context, taskID string) ([]models.EvaluationRecord, error)
	List(ctx context.Context, limit, offset int) ([]models.EvaluationRecord, int64, error)
}

// NewEvaluationRepository constructs an evaluation repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

type evaluationRepository struct {
	db *gorm.DB
}

func (r *evaluationRepository) Create(ctx context.Context, record *models.EvaluationRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *evaluationRepository) ListByTaskID(ctx context.Context, taskID string) ([]models.EvaluationRecord, error) {
	var records []models.EvaluationRecord
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *evaluationRepository) List(ctx context.Context, limit, offset int) ([]models.EvaluationRecord, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.EvaluationRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.EvaluationRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
