package models

import (
	"strings"
	"time"
)

type QuestionType string

const (
	QuestionOpen     QuestionType = "open"
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
)

// ParseQuestionType accepts the short tags used on the wire plus the
// long "single-choice" / "multiple-choice" spellings.
func ParseQuestionType(raw string) (QuestionType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "open":
		return QuestionOpen, true
	case "single", "single-choice", "single_choice":
		return QuestionSingle, true
	case "multiple", "multiple-choice", "multiple_choice":
		return QuestionMultiple, true
	}
	return "", false
}

// IsChoice reports whether answers to the question are option selections.
func (t QuestionType) IsChoice() bool {
	return t == QuestionSingle || t == QuestionMultiple
}

type Question struct {
	ID         uint         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SurveyID   uint         `gorm:"column:survey_id;not null;index" json:"surveyId"`
	Text       string       `gorm:"column:text;type:text;not null" json:"text"`
	Type       QuestionType `gorm:"column:type;size:20;not null" json:"type"`
	IsRequired bool         `gorm:"column:is_required;not null" json:"isRequired"`
	Order      int          `gorm:"column:order_index;not null" json:"order"`
	CreatedAt  time.Time    `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Options []QuestionOption `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options"`
}

func (Question) TableName() string {
	return "questions"
}

// HasOption reports whether optionID belongs to this question.
func (q *Question) HasOption(optionID uint) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}
