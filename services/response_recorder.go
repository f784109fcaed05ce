package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/vnkhanh/survey-hub/logger"
	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/repository"
	"github.com/vnkhanh/survey-hub/utils"
)

type AnswerInput struct {
	QuestionID      uint   `json:"questionId" binding:"required"`
	TextAnswer      string `json:"textAnswer"`
	SelectedOptions []uint `json:"selectedOptions"`
}

type SubmitInput struct {
	SessionID string        `json:"sessionId" binding:"max=255"`
	Answers   []AnswerInput `json:"answers" binding:"omitempty,dive"`
}

// Respondent identifies who is submitting, as seen by the HTTP layer.
type Respondent struct {
	SessionID string
	IPAddress string
	UserAgent string
}

type SubmitResult struct {
	ResponseID uint   `json:"responseId"`
	SessionID  string `json:"sessionId"`
}

// SubmissionMetrics is notified about the outcome of each submission.
type SubmissionMetrics interface {
	ResponseRecorded()
	DuplicateRejected()
}

type nopSubmissionMetrics struct{}

func (nopSubmissionMetrics) ResponseRecorded()  {}
func (nopSubmissionMetrics) DuplicateRejected() {}

type ResponseRecorder struct {
	surveys   *SurveyService
	responses repository.ResponseRepository
	strict    bool
	metrics   SubmissionMetrics
	newToken  func() (string, error)
}

// NewResponseRecorder builds a recorder. With strict set, answers are also
// checked against each question's type and required flag.
func NewResponseRecorder(surveys *SurveyService, responses repository.ResponseRepository, strict bool, metrics SubmissionMetrics) *ResponseRecorder {
	if metrics == nil {
		metrics = nopSubmissionMetrics{}
	}
	return &ResponseRecorder{
		surveys:   surveys,
		responses: responses,
		strict:    strict,
		metrics:   metrics,
		newToken:  utils.GenerateSessionToken,
	}
}

// Submit records one response to the active survey behind publicID. When
// the survey disallows multiple responses, a prior response from the same
// session token or the same IP address rejects the submission.
func (r *ResponseRecorder) Submit(ctx context.Context, publicID string, in SubmitInput, who Respondent) (*SubmitResult, error) {
	survey, err := r.surveys.activeByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := r.validate(survey, in.Answers); err != nil {
		return nil, err
	}

	sessionID := strings.TrimSpace(who.SessionID)
	if sessionID == "" {
		sessionID = strings.TrimSpace(in.SessionID)
	}
	if sessionID == "" {
		if sessionID, err = r.newToken(); err != nil {
			return nil, fmt.Errorf("generate session token: %w", err)
		}
	}

	resp := &models.Response{
		SurveyID:  survey.ID,
		SessionID: sessionID,
		IPAddress: who.IPAddress,
		UserAgent: who.UserAgent,
		Answers:   make([]models.Answer, 0, len(in.Answers)),
	}
	for _, a := range in.Answers {
		selected := a.SelectedOptions
		if selected == nil {
			selected = []uint{}
		}
		resp.Answers = append(resp.Answers, models.Answer{
			QuestionID:      a.QuestionID,
			TextAnswer:      a.TextAnswer,
			SelectedOptions: datatypes.JSONSlice[uint](selected),
		})
	}

	var guard *repository.RespondentGuard
	if !survey.AllowMultipleResponses {
		guard = &repository.RespondentGuard{SessionID: sessionID, IPAddress: who.IPAddress}
		resp.DedupSession = &sessionID
		if who.IPAddress != "" {
			ip := who.IPAddress
			resp.DedupIP = &ip
		}
	}

	if err := r.responses.Record(ctx, resp, guard); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			r.metrics.DuplicateRejected()
			logger.WithFields(logrus.Fields{
				"survey_id": survey.ID,
				"ip":        who.IPAddress,
			}).Debug("duplicate response rejected")
			return nil, ErrDuplicateSubmission
		}
		return nil, fmt.Errorf("record response: %w", err)
	}

	r.metrics.ResponseRecorded()
	return &SubmitResult{ResponseID: resp.ID, SessionID: sessionID}, nil
}

// CheckDuplicate reports whether a submission from this respondent would be
// rejected. Surveys that allow multiple responses never report a duplicate.
func (r *ResponseRecorder) CheckDuplicate(ctx context.Context, publicID string, who Respondent) (bool, error) {
	survey, err := r.surveys.activeByPublicID(ctx, publicID)
	if err != nil {
		return false, err
	}
	if survey.AllowMultipleResponses {
		return false, nil
	}
	return r.responses.ExistsForRespondent(ctx, survey.ID, strings.TrimSpace(who.SessionID), who.IPAddress)
}

// validate always requires answers to reference the survey's own questions,
// at most once each. Type and required checks only run in strict mode.
func (r *ResponseRecorder) validate(survey *models.Survey, answers []AnswerInput) error {
	questions := make(map[uint]*models.Question, len(survey.Questions))
	for i := range survey.Questions {
		questions[survey.Questions[i].ID] = &survey.Questions[i]
	}

	seen := make(map[uint]AnswerInput, len(answers))
	for _, a := range answers {
		if _, ok := questions[a.QuestionID]; !ok {
			return validationf("question %d does not belong to this survey", a.QuestionID)
		}
		if _, dup := seen[a.QuestionID]; dup {
			return validationf("question %d answered more than once", a.QuestionID)
		}
		seen[a.QuestionID] = a
	}
	if !r.strict {
		return nil
	}

	for i := range survey.Questions {
		q := &survey.Questions[i]
		a, ok := seen[q.ID]
		answered := ok && (strings.TrimSpace(a.TextAnswer) != "" || len(a.SelectedOptions) > 0)
		if !answered {
			if q.IsRequired {
				return validationf("question %d is required", q.ID)
			}
			continue
		}

		if !q.Type.IsChoice() {
			if len(a.SelectedOptions) > 0 {
				return validationf("question %d expects a text answer", q.ID)
			}
			continue
		}
		if strings.TrimSpace(a.TextAnswer) != "" {
			return validationf("question %d expects selected options", q.ID)
		}
		if q.Type == models.QuestionSingle && len(a.SelectedOptions) != 1 {
			return validationf("question %d accepts exactly one option", q.ID)
		}
		for _, opt := range a.SelectedOptions {
			if !q.HasOption(opt) {
				return validationf("option %d does not belong to question %d", opt, q.ID)
			}
		}
	}
	return nil
}
