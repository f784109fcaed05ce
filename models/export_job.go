package models

import "time"

const (
	ExportQueued     = "queued"
	ExportProcessing = "processing"
	ExportDone       = "done"
	ExportFailed     = "failed"
)

type ExportJob struct {
	JobID       string    `gorm:"column:job_id;primaryKey;size:36" json:"jobId"`
	SurveyID    uint      `gorm:"column:survey_id;not null;index" json:"surveyId"`
	RequestedBy uint      `gorm:"column:requested_by;not null" json:"requestedBy"`
	Format      string    `gorm:"column:format;size:10;not null" json:"format"` // csv, xlsx
	Status      string    `gorm:"column:status;size:20;not null" json:"status"`
	StorageKind *string   `gorm:"column:storage_kind;size:20" json:"-"`
	Location    *string   `gorm:"column:location;type:text" json:"-"`
	ErrorMsg    *string   `gorm:"column:error_msg;type:text" json:"error,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (ExportJob) TableName() string {
	return "export_jobs"
}

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Survey{},
		&Question{},
		&QuestionOption{},
		&Response{},
		&Answer{},
		&ExportJob{},
	}
}
