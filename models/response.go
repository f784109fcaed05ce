package models

import "time"

// Response is one respondent's submission. DedupSession and DedupIP are only
// populated when the survey disallows multiple responses; the composite
// unique indexes on them reject a second accepted response at the storage
// layer. NULLs never collide, so surveys allowing repeats are unaffected.
type Response struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SurveyID     uint      `gorm:"column:survey_id;not null;index;uniqueIndex:idx_responses_dedup_session,priority:1;uniqueIndex:idx_responses_dedup_ip,priority:1" json:"surveyId"`
	SessionID    string    `gorm:"column:session_id;size:255;index" json:"sessionId"`
	IPAddress    string    `gorm:"column:ip_address;size:64;index" json:"ipAddress"`
	UserAgent    string    `gorm:"column:user_agent;type:text" json:"userAgent"`
	DedupSession *string   `gorm:"column:dedup_session;size:255;uniqueIndex:idx_responses_dedup_session,priority:2" json:"-"`
	DedupIP      *string   `gorm:"column:dedup_ip;size:64;uniqueIndex:idx_responses_dedup_ip,priority:2" json:"-"`
	SubmittedAt  time.Time `gorm:"column:submitted_at;autoCreateTime" json:"submittedAt"`

	Answers []Answer `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"answers"`
}

func (Response) TableName() string {
	return "responses"
}
