package model

import "time"

// Interaction is one logged participant interaction with the discovery
// UI, persisted for later analysis. Mapped by GORM.
type Interaction struct {
	ID                 int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ParticipantID      string    `json:"participantId" gorm:"column:participant_id;size:100;index"`
	Condition          string    `json:"condition" gorm:"size:20;index"`
	TaskNumber         int       `json:"taskNumber" gorm:"column:task_number"`
	QueryInput         string    `json:"queryInput" gorm:"column:query_input;type:text"`
	TimestampStart     string    `json:"timestampStart" gorm:"column:timestamp_start;size:64"`
	TimestampEnd       string    `json:"timestampEnd" gorm:"column:timestamp_end;size:64"`
	DurationSeconds    float64   `json:"durationSeconds" gorm:"column:duration_seconds"`
	SongsClicked       string    `json:"songsClicked" gorm:"column:songs_clicked;type:text"` // JSON array of track ids
	FinalSelection     string    `json:"finalSelection" gorm:"column:final_selection;size:255"`
	Success            bool      `json:"success"`
	SatisfactionRating int       `json:"satisfactionRating" gorm:"column:satisfaction_rating"`
	CreatedAt          time.Time `json:"createdAt" gorm:"column:created_at;autoCreateTime"`
}

// TableName fixes the table name for GORM.
func (Interaction) TableName() string {
	return "interactions"
}

// ConditionStats aggregates interactions per condition.
type ConditionStats struct {
	Condition       string  `json:"condition"`
	Total           int64   `json:"totalInteractions"`
	AvgDuration     float64 `json:"avgDuration"`
	AvgSatisfaction float64 `json:"avgSatisfaction"`
	SuccessCount    int64   `json:"successCount"`
}
