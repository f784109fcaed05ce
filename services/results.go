package services

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/repository"
)

type OptionResult struct {
	OptionID   uint    `json:"optionId"`
	Text       string  `json:"text"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type QuestionResult struct {
	QuestionID uint                `json:"questionId"`
	Text       string              `json:"text"`
	Type       models.QuestionType `json:"type"`
	// TotalResponses counts non-empty texts for open questions and answers
	// with at least one selection for choice questions.
	TotalResponses int            `json:"totalResponses"`
	Answers        []string       `json:"answers"`
	Options        []OptionResult `json:"options,omitempty"`
}

type questionResultJSON QuestionResult

// MarshalJSON always writes "answers" for open questions, as [] when none
// are non-empty, and leaves it out for choice questions.
func (r QuestionResult) MarshalJSON() ([]byte, error) {
	if r.Type.IsChoice() {
		return json.Marshal(struct {
			questionResultJSON
			Answers []string `json:"answers,omitempty"`
		}{questionResultJSON: questionResultJSON(r)})
	}
	answers := r.Answers
	if answers == nil {
		answers = []string{}
	}
	return json.Marshal(struct {
		questionResultJSON
		Answers []string `json:"answers"`
	}{questionResultJSON(r), answers})
}

type SurveySummary struct {
	ID          uint   `json:"id"`
	PublicID    string `json:"publicId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}

type SurveyResults struct {
	Survey         SurveySummary    `json:"survey"`
	TotalResponses int64            `json:"totalResponses"`
	Questions      []QuestionResult `json:"questions"`
}

// Percentage returns count/total as a percentage rounded to one decimal, or
// zero when total is zero.
func Percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

// Aggregate tallies answers per question. Answers to questions not in the
// list are ignored, as are selected options that do not belong to the
// answered question. An option repeated inside one answer counts each time.
func Aggregate(questions []models.Question, answers []models.Answer) []QuestionResult {
	byQuestion := make(map[uint][]models.Answer, len(questions))
	for _, a := range answers {
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}

	out := make([]QuestionResult, 0, len(questions))
	for i := range questions {
		q := &questions[i]
		res := QuestionResult{QuestionID: q.ID, Text: q.Text, Type: q.Type}

		if !q.Type.IsChoice() {
			res.Answers = []string{}
			for _, a := range byQuestion[q.ID] {
				if strings.TrimSpace(a.TextAnswer) == "" {
					continue
				}
				res.Answers = append(res.Answers, a.TextAnswer)
			}
			res.TotalResponses = len(res.Answers)
			out = append(out, res)
			continue
		}

		counts := make(map[uint]int, len(q.Options))
		for _, a := range byQuestion[q.ID] {
			if len(a.SelectedOptions) == 0 {
				continue
			}
			res.TotalResponses++
			for _, optID := range a.SelectedOptions {
				if !q.HasOption(optID) {
					continue
				}
				counts[optID]++
			}
		}

		res.Options = make([]OptionResult, 0, len(q.Options))
		for _, o := range q.Options {
			res.Options = append(res.Options, OptionResult{
				OptionID:   o.ID,
				Text:       o.Text,
				Count:      counts[o.ID],
				Percentage: Percentage(counts[o.ID], res.TotalResponses),
			})
		}
		out = append(out, res)
	}
	return out
}

type ResultsService struct {
	surveys   *SurveyService
	responses repository.ResponseRepository
}

func NewResultsService(surveys *SurveyService, responses repository.ResponseRepository) *ResultsService {
	return &ResultsService{surveys: surveys, responses: responses}
}

// Results computes per-question statistics for a survey owned by creatorID.
// It only reads, so repeated calls without new responses agree.
func (s *ResultsService) Results(ctx context.Context, surveyID, creatorID uint) (*SurveyResults, error) {
	survey, err := s.surveys.Get(ctx, surveyID, creatorID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(survey.Questions))
	for i := range survey.Questions {
		ids[i] = survey.Questions[i].ID
	}
	answers, err := s.responses.AnswersForQuestions(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &SurveyResults{
		Survey: SurveySummary{
			ID:          survey.ID,
			PublicID:    survey.PublicID,
			Title:       survey.Title,
			Description: survey.Description,
			IsActive:    survey.IsActive,
		},
		TotalResponses: survey.ResponseCount,
		Questions:      Aggregate(survey.Questions, answers),
	}, nil
}
