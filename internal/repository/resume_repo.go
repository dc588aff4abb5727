package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/mock-interview-api/internal/models"
)

// ResumeRepository persists uploaded resume metadata.
type ResumeRepository interface {
	Create(ctx context.Context, resume *models.Resume) error
	GetByID(ctx context.Context, id uint) (models.Resume, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Resume, error)
	Delete(ctx context.Context, id uint) error
}

type resumeRepository struct {
	db *gorm.DB
}

// NewResumeRepository constructs a repository for resume records.
func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) Create(ctx context.Context, resume *models.Resume) error {
	return r.db.WithContext(ctx).Create(resume).Error
}

func (r *resumeRepository) GetByID(ctx context.Context, id uint) (models.Resume, error) {
	var resume models.Resume
	err := r.db.WithContext(ctx).First(&resume, id).Error
	return resume, err
}

func (r *resumeRepository) ListByUser(ctx context.Context, userID uint) ([]models.Resume, error) {
	var resumes []models.Resume
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&resumes).Error
	return resumes, err
}

func (r *resumeRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Resume{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
