package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Result is the persisted outcome of analysing one job. JobID is unique.
type Result struct {
	ID                string                      `gorm:"primaryKey;type:text" json:"id"`
	UserID            string                      `gorm:"not null;index;type:text" json:"userId"`
	JobID             string                      `gorm:"uniqueIndex;not null;type:text" json:"jobId"`
	PredictedExercise string                      `gorm:"type:text" json:"predictedExercise"`
	IsCorrect         *bool                       `json:"isCorrect,omitempty"`
	Feedback          datatypes.JSONSlice[string] `gorm:"type:text" json:"feedback"`
	CreatedAt         time.Time                   `gorm:"index" json:"createdAt"`
}

func (Result) TableName() string {
	return "results"
}

func NewResult(userID, jobID, exercise string, isCorrect *bool, feedback []string) *Result {
	if feedback == nil {
		feedback = []string{}
	}
	return &Result{
		ID:                uuid.New().String(),
		UserID:            userID,
		JobID:             jobID,
		PredictedExercise: exercise,
		IsCorrect:         isCorrect,
		Feedback:          datatypes.JSONSlice[string](feedback),
		CreatedAt:         time.Now().UTC(),
	}
}
