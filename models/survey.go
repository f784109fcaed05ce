package models

import "time"

type Survey struct {
	ID                     uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title                  string    `gorm:"column:title;size:255;not null" json:"title"`
	Description            string    `gorm:"column:description;type:text" json:"description"`
	PublicID               string    `gorm:"column:public_id;size:36;uniqueIndex;not null" json:"publicId"`
	IsActive               bool      `gorm:"column:is_active;not null" json:"isActive"`
	AllowMultipleResponses bool      `gorm:"column:allow_multiple_responses;not null" json:"allowMultipleResponses"`
	CreatorID              uint      `gorm:"column:creator_id;not null;index" json:"creatorId"`
	CreatedAt              time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt              time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Creator *User `gorm:"foreignKey:CreatorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	// relations
	Questions []Question `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"questions"`
	Responses []Response `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"-"`

	// filled by list queries, not persisted
	ResponseCount int64 `gorm:"-" json:"responseCount"`
}

func (Survey) TableName() string {
	return "surveys"
}
