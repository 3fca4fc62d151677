package database

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"pokedex-api/internal/models"
)

// DefaultRetention is the number of upstream call rows kept when none is configured.
const DefaultRetention = 1000

// CallJournal stores a bounded history of upstream calls.
type CallJournal struct {
	db        *gorm.DB
	retention int
}

func NewCallJournal(db *gorm.DB, retention int) *CallJournal {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &CallJournal{db: db, retention: retention}
}

// Record inserts call and prunes rows beyond the retention window.
func (j *CallJournal) Record(ctx context.Context, call models.UpstreamCall) error {
	return j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&call).Error; err != nil {
			return errors.Wrap(err, "insert upstream call")
		}
		// ids are monotonic, so everything at or below id-retention is outside the window
		if cutoff := int64(call.ID) - int64(j.retention); cutoff > 0 {
			if err := tx.Where("id <= ?", cutoff).Delete(&models.UpstreamCall{}).Error; err != nil {
				return errors.Wrap(err, "prune upstream calls")
			}
		}
		return nil
	})
}

// Recent returns up to limit calls, newest first.
func (j *CallJournal) Recent(ctx context.Context, limit int) ([]models.UpstreamCall, error) {
	var calls []models.UpstreamCall
	err := j.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Find(&calls).Error
	if err != nil {
		return nil, errors.Wrap(err, "list upstream calls")
	}
	return calls, nil
}

// Summary counts the retained calls by outcome.
func (j *CallJournal) Summary(ctx context.Context) (models.CallSummary, error) {
	type row struct {
		Outcome models.CallOutcome
		Count   int64
	}

	var rows []row
	if err := j.db.WithContext(ctx).Model(&models.UpstreamCall{}).
		Select("outcome, COUNT(*) as count").
		Group("outcome").
		Scan(&rows).Error; err != nil {
		return models.CallSummary{}, errors.Wrap(err, "summarize upstream calls")
	}

	var summary models.CallSummary
	for _, r := range rows {
		summary.Total += r.Count
		switch r.Outcome {
		case models.OutcomeSuccess:
			summary.Success = r.Count
		case models.OutcomeNotFound:
			summary.NotFound = r.Count
		case models.OutcomeFailure:
			summary.Failure = r.Count
		}
	}
	return summary, nil
}
