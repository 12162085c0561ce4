package models

import (
	"time"

	"gorm.io/datatypes"
)

// EvaluationRecord is the persisted audit trail for one completed evaluation.
// Breakdown and StudyPlan are stored as JSON so the record mirrors the wire
// response exactly.
type EvaluationRecord struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	TaskID       string            `gorm:"size:128;index;not null" json:"task_id"`
	Score        float64           `gorm:"not null" json:"score"`
	AwardedScore float64           `gorm:"not null" json:"awarded_score"`
	MaxScore     float64           `gorm:"not null" json:"max_score"`
	Reason       string            `gorm:"size:32" json:"reason"`
	Feedback     string            `gorm:"type:text" json:"feedback"`
	Breakdown    datatypes.JSON    `json:"breakdown"`
	StudyPlan    datatypes.JSONMap `json:"study_plan"`
	Model        string            `gorm:"size:128" json:"model"`
	CreatedAt    time.Time         `json:"created_at"`
}
