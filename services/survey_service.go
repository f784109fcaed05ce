package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/repository"
)

type OptionInput struct {
	Text  string `json:"text" binding:"required"`
	Order *int   `json:"order"`
}

type QuestionInput struct {
	Text       string        `json:"text" binding:"required"`
	Type       string        `json:"type" binding:"required,questiontype"`
	IsRequired *bool         `json:"isRequired"`
	Order      *int          `json:"order"`
	Options    []OptionInput `json:"options" binding:"omitempty,dive"`
}

type CreateSurveyInput struct {
	Title                  string          `json:"title" binding:"required,max=255"`
	Description            string          `json:"description"`
	IsActive               *bool           `json:"isActive"`
	AllowMultipleResponses bool            `json:"allowMultipleResponses"`
	Questions              []QuestionInput `json:"questions" binding:"omitempty,dive"`
}

// SurveyPatch carries the fields a creator may change after creation. Nil
// fields are left untouched. Questions are fixed once the survey exists.
type SurveyPatch struct {
	Title                  *string `json:"title" binding:"omitempty,max=255"`
	Description            *string `json:"description"`
	IsActive               *bool   `json:"isActive"`
	AllowMultipleResponses *bool   `json:"allowMultipleResponses"`
}

func (p SurveyPatch) fields() (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, validationf("title cannot be empty")
		}
		updates["title"] = title
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.IsActive != nil {
		updates["is_active"] = *p.IsActive
	}
	if p.AllowMultipleResponses != nil {
		updates["allow_multiple_responses"] = *p.AllowMultipleResponses
	}
	if len(updates) == 0 {
		return nil, validationf("nothing to update")
	}
	return updates, nil
}

// PublicSurvey is what anonymous respondents see: no owner, no counts.
type PublicSurvey struct {
	PublicID               string            `json:"publicId"`
	Title                  string            `json:"title"`
	Description            string            `json:"description"`
	AllowMultipleResponses bool              `json:"allowMultipleResponses"`
	Questions              []models.Question `json:"questions"`
}

type SurveyService struct {
	surveys     repository.SurveyRepository
	newPublicID func() string
}

func NewSurveyService(surveys repository.SurveyRepository) *SurveyService {
	return &SurveyService{surveys: surveys, newPublicID: uuid.NewString}
}

func buildQuestions(in []QuestionInput) ([]models.Question, error) {
	out := make([]models.Question, 0, len(in))
	for i, q := range in {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			return nil, validationf("question %d: text is required", i+1)
		}
		qt, ok := models.ParseQuestionType(q.Type)
		if !ok {
			return nil, validationf("question %d: unknown type %q", i+1, q.Type)
		}
		if qt.IsChoice() && len(q.Options) == 0 {
			return nil, validationf("question %d: choice questions need at least one option", i+1)
		}
		if !qt.IsChoice() && len(q.Options) > 0 {
			return nil, validationf("question %d: open questions cannot have options", i+1)
		}

		question := models.Question{
			Text:       text,
			Type:       qt,
			IsRequired: true,
			Order:      i,
		}
		if q.IsRequired != nil {
			question.IsRequired = *q.IsRequired
		}
		if q.Order != nil {
			question.Order = *q.Order
		}
		for j, o := range q.Options {
			optText := strings.TrimSpace(o.Text)
			if optText == "" {
				return nil, validationf("question %d option %d: text is required", i+1, j+1)
			}
			opt := models.QuestionOption{Text: optText, Order: j}
			if o.Order != nil {
				opt.Order = *o.Order
			}
			question.Options = append(question.Options, opt)
		}
		out = append(out, question)
	}
	return out, nil
}

// Create stores the survey with all of its questions and options in one
// transaction and returns it as read back from storage.
func (s *SurveyService) Create(ctx context.Context, creatorID uint, in CreateSurveyInput) (*models.Survey, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validationf("title is required")
	}
	questions, err := buildQuestions(in.Questions)
	if err != nil {
		return nil, err
	}

	survey := &models.Survey{
		Title:                  title,
		Description:            in.Description,
		PublicID:               s.newPublicID(),
		IsActive:               true,
		AllowMultipleResponses: in.AllowMultipleResponses,
		CreatorID:              creatorID,
		Questions:              questions,
	}
	if in.IsActive != nil {
		survey.IsActive = *in.IsActive
	}

	if err := s.surveys.Create(ctx, survey); err != nil {
		return nil, fmt.Errorf("create survey: %w", err)
	}
	return s.Get(ctx, survey.ID, creatorID)
}

// List returns the creator's surveys, newest first, with response counts.
func (s *SurveyService) List(ctx context.Context, creatorID uint) ([]models.Survey, error) {
	return s.list(ctx, creatorID, 0)
}

func (s *SurveyService) list(ctx context.Context, creatorID uint, limit int) ([]models.Survey, error) {
	surveys, err := s.surveys.ListByCreator(ctx, creatorID, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(surveys))
	for i := range surveys {
		ids[i] = surveys[i].ID
	}
	counts, err := s.surveys.ResponseCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range surveys {
		surveys[i].ResponseCount = counts[surveys[i].ID]
	}
	return surveys, nil
}

// Get loads a survey owned by creatorID. A survey owned by someone else is
// reported as Forbidden, a missing one as NotFound.
func (s *SurveyService) Get(ctx context.Context, id, creatorID uint) (*models.Survey, error) {
	survey, err := s.surveys.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errSurveyNotFound
		}
		return nil, err
	}
	if survey.CreatorID != creatorID {
		return nil, fmt.Errorf("%w: you do not own this survey", ErrForbidden)
	}
	if survey.ResponseCount, err = s.surveys.CountResponses(ctx, survey.ID); err != nil {
		return nil, err
	}
	return survey, nil
}

func (s *SurveyService) Update(ctx context.Context, id, creatorID uint, patch SurveyPatch) (*models.Survey, error) {
	if _, err := s.Get(ctx, id, creatorID); err != nil {
		return nil, err
	}
	fields, err := patch.fields()
	if err != nil {
		return nil, err
	}
	fields["updated_at"] = time.Now()
	if err := s.surveys.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errSurveyNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id, creatorID)
}

// Delete removes the survey and cascades to its questions, options,
// responses, answers and export jobs.
func (s *SurveyService) Delete(ctx context.Context, id, creatorID uint) error {
	if _, err := s.Get(ctx, id, creatorID); err != nil {
		return err
	}
	if err := s.surveys.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errSurveyNotFound
		}
		return err
	}
	return nil
}

// activeByPublicID resolves a public identifier. Inactive and unknown
// surveys produce the same NotFound error.
func (s *SurveyService) activeByPublicID(ctx context.Context, publicID string) (*models.Survey, error) {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return nil, errSurveyNotFound
	}
	survey, err := s.surveys.FindActiveByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errSurveyNotFound
		}
		return nil, err
	}
	return survey, nil
}

func (s *SurveyService) GetPublic(ctx context.Context, publicID string) (*PublicSurvey, error) {
	survey, err := s.activeByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	questions := survey.Questions
	if questions == nil {
		questions = []models.Question{}
	}
	return &PublicSurvey{
		PublicID:               survey.PublicID,
		Title:                  survey.Title,
		Description:            survey.Description,
		AllowMultipleResponses: survey.AllowMultipleResponses,
		Questions:              questions,
	}, nil
}
