package models

type QuestionOption struct {
	ID         uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QuestionID uint   `gorm:"column:question_id;not null;index" json:"questionId"`
	Text       string `gorm:"column:text;type:text;not null" json:"text"`
	Order      int    `gorm:"column:order_index;not null" json:"order"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
