package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/models"
)

type ExportJobRepository interface {
	Create(ctx context.Context, job *models.ExportJob) error
	Find(ctx context.Context, jobID string) (*models.ExportJob, error)
	Update(ctx context.Context, jobID string, fields map[string]interface{}) error
}

type exportJobRepo struct {
	db *gorm.DB
}

func NewExportJobRepository(db *gorm.DB) ExportJobRepository {
	return &exportJobRepo{db: db}
}

func (r *exportJobRepo) Create(ctx context.Context, job *models.ExportJob) error {
	return translate(r.db.WithContext(ctx).Create(job).Error)
}

func (r *exportJobRepo) Find(ctx context.Context, jobID string) (*models.ExportJob, error) {
	var job models.ExportJob
	if err := r.db.WithContext(ctx).First(&job, "job_id = ?", jobID).Error; err != nil {
		return nil, translate(err)
	}
	return &job, nil
}

func (r *exportJobRepo) Update(ctx context.Context, jobID string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.ExportJob{}).Where("job_id = ?", jobID).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
