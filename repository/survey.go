package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/models"
)

type SurveyRepository interface {
	// Create persists the survey together with its questions and options.
	Create(ctx context.Context, s *models.Survey) error
	FindByID(ctx context.Context, id uint) (*models.Survey, error)
	FindActiveByPublicID(ctx context.Context, publicID string) (*models.Survey, error)
	ListByCreator(ctx context.Context, creatorID uint, limit int) ([]models.Survey, error)
	CountByCreator(ctx context.Context, creatorID uint) (total int64, active int64, err error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	CountResponses(ctx context.Context, surveyID uint) (int64, error)
	// ResponseCounts returns surveyID -> number of responses. Missing ids count zero.
	ResponseCounts(ctx context.Context, surveyIDs []uint) (map[uint]int64, error)
	CountResponsesByCreator(ctx context.Context, creatorID uint) (int64, error)
}

type surveyRepo struct {
	db *gorm.DB
}

func NewSurveyRepository(db *gorm.DB) SurveyRepository {
	return &surveyRepo{db: db}
}

func (r *surveyRepo) Create(ctx context.Context, s *models.Survey) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(s).Error
	}))
}

func (r *surveyRepo) withQuestions(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Questions", orderByPosition).
		Preload("Questions.Options", orderByPosition)
}

func (r *surveyRepo) FindByID(ctx context.Context, id uint) (*models.Survey, error) {
	var s models.Survey
	if err := r.withQuestions(r.db.WithContext(ctx)).First(&s, id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// FindActiveByPublicID treats an inactive survey the same as a missing one.
func (r *surveyRepo) FindActiveByPublicID(ctx context.Context, publicID string) (*models.Survey, error) {
	var s models.Survey
	err := r.withQuestions(r.db.WithContext(ctx)).
		Where("public_id = ? AND is_active = ?", publicID, true).
		First(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// ListByCreator returns the creator's surveys newest first. limit <= 0 means no limit.
func (r *surveyRepo) ListByCreator(ctx context.Context, creatorID uint, limit int) ([]models.Survey, error) {
	var out []models.Survey
	q := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *surveyRepo) CountByCreator(ctx context.Context, creatorID uint) (int64, int64, error) {
	var total, active int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Survey{}).Where("creator_id = ?", creatorID).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := db.Model(&models.Survey{}).
		Where("creator_id = ? AND is_active = ?", creatorID, true).
		Count(&active).Error; err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

func (r *surveyRepo) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Survey{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the survey and everything hanging off it in one transaction.
// Rows are deleted explicitly so the cascade does not depend on the driver
// enforcing foreign keys.
func (r *surveyRepo) Delete(ctx context.Context, id uint) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		responseIDs := tx.Model(&models.Response{}).Select("id").Where("survey_id = ?", id)
		questionIDs := tx.Model(&models.Question{}).Select("id").Where("survey_id = ?", id)

		if err := tx.Where("response_id IN (?)", responseIDs).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("survey_id = ?", id).Delete(&models.Response{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id IN (?)", questionIDs).Delete(&models.QuestionOption{}).Error; err != nil {
			return err
		}
		if err := tx.Where("survey_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("survey_id = ?", id).Delete(&models.ExportJob{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Survey{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}))
}

func (r *surveyRepo) CountResponses(ctx context.Context, surveyID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Response{}).Where("survey_id = ?", surveyID).Count(&n).Error
	return n, err
}

func (r *surveyRepo) ResponseCounts(ctx context.Context, surveyIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(surveyIDs))
	if len(surveyIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		SurveyID uint
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&models.Response{}).
		Select("survey_id, COUNT(*) AS total").
		Where("survey_id IN ?", surveyIDs).
		Group("survey_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.SurveyID] = row.Total
	}
	return out, nil
}

func (r *surveyRepo) CountResponsesByCreator(ctx context.Context, creatorID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Response{}).
		Joins("JOIN surveys ON surveys.id = responses.survey_id").
		Where("surveys.creator_id = ?", creatorID).
		Count(&n).Error
	return n, err
}
