package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/models"
)

// RespondentGuard, when passed to Record, makes the insert conditional on no
// earlier response from the same session token or IP address.
type RespondentGuard struct {
	SessionID string
	IPAddress string
}

type ResponseRepository interface {
	ExistsForRespondent(ctx context.Context, surveyID uint, sessionID, ip string) (bool, error)
	// Record inserts the response and its answers atomically. With a guard it
	// returns ErrDuplicate instead of inserting when the respondent already answered.
	Record(ctx context.Context, resp *models.Response, guard *RespondentGuard) error
	AnswersForQuestions(ctx context.Context, questionIDs []uint) ([]models.Answer, error)
}

type responseRepo struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepo{db: db}
}

// respondentScope matches on session OR ip. An empty session token never
// matches, otherwise every tokenless response would collide with each other.
func respondentScope(surveyID uint, sessionID, ip string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("survey_id = ?", surveyID)
		switch {
		case sessionID != "" && ip != "":
			return db.Where("(session_id = ? OR ip_address = ?)", sessionID, ip)
		case sessionID != "":
			return db.Where("session_id = ?", sessionID)
		case ip != "":
			return db.Where("ip_address = ?", ip)
		}
		return db.Where("1 = 0")
	}
}

func exists(db *gorm.DB, surveyID uint, sessionID, ip string) (bool, error) {
	var n int64
	err := db.Model(&models.Response{}).
		Scopes(respondentScope(surveyID, sessionID, ip)).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

func (r *responseRepo) ExistsForRespondent(ctx context.Context, surveyID uint, sessionID, ip string) (bool, error) {
	return exists(r.db.WithContext(ctx), surveyID, sessionID, ip)
}

func (r *responseRepo) Record(ctx context.Context, resp *models.Response, guard *RespondentGuard) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if guard != nil {
			dup, err := exists(tx, resp.SurveyID, guard.SessionID, guard.IPAddress)
			if err != nil {
				return err
			}
			if dup {
				return ErrDuplicate
			}
		}
		return tx.Create(resp).Error
	}))
}

func (r *responseRepo) AnswersForQuestions(ctx context.Context, questionIDs []uint) ([]models.Answer, error) {
	var out []models.Answer
	if len(questionIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).
		Where("question_id IN ?", questionIDs).
		Order("id ASC").
		Find(&out).Error
	return out, err
}
