package models

import "gorm.io/datatypes"

type Answer struct {
	ID              uint                      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ResponseID      uint                      `gorm:"column:response_id;not null;index" json:"responseId"`
	QuestionID      uint                      `gorm:"column:question_id;not null;index" json:"questionId"`
	TextAnswer      string                    `gorm:"column:text_answer;type:text" json:"textAnswer"`
	SelectedOptions datatypes.JSONSlice[uint] `gorm:"column:selected_options" json:"selectedOptions"`

	Question *Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Answer) TableName() string {
	return "answers"
}
