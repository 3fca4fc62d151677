package models

import "time"

// CallOutcome classifies how an upstream call ended.
type CallOutcome string

const (
	OutcomeSuccess  CallOutcome = "success"
	OutcomeNotFound CallOutcome = "not_found"
	OutcomeFailure  CallOutcome = "failure"
)

// UpstreamCall is one journal row describing a PokeAPI request.
type UpstreamCall struct {
	ID         uint        `json:"id" gorm:"primaryKey;autoIncrement"`
	Method     string      `json:"method" gorm:"not null"`
	Path       string      `json:"path" gorm:"not null"`
	StatusCode int         `json:"statusCode" gorm:"column:status_code"`
	Outcome    CallOutcome `json:"outcome" gorm:"not null;index"`
	DurationMs int64       `json:"durationMs" gorm:"column:duration_ms"`
	Error      string      `json:"error,omitempty"`
	CreatedAt  time.Time   `json:"createdAt" gorm:"index"`
}

// TableName specifies the table name for UpstreamCall Model
func (UpstreamCall) TableName() string {
	return "upstream_calls"
}

// CallSummary aggregates journal rows by outcome.
type CallSummary struct {
	Total    int64 `json:"total"`
	Success  int64 `json:"success"`
	NotFound int64 `json:"notFound"`
	Failure  int64 `json:"failure"`
}
