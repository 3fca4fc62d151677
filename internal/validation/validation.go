// Package validation holds the pure input checks run before any cache or
// upstream access.
package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"pokedex-api/internal/errs"
	"pokedex-api/internal/models"
)

// Limits are the bounds the validator enforces.
type Limits struct {
	MinID        int
	MaxID        int
	DefaultLimit int
	MaxLimit     int
}

// DefaultLimits mirrors the upstream catalog: IDs 1..1025, pages of 20, at most 100.
func DefaultLimits() Limits {
	return Limits{MinID: 1, MaxID: 1025, DefaultLimit: 20, MaxLimit: 100}
}

// Validator is stateless apart from its limits and safe for concurrent use.
type Validator struct {
	limits   Limits
	validate *validator.Validate
}

func New(limits Limits) *Validator {
	return &Validator{
		limits:   limits,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (v *Validator) Limits() Limits {
	return v.limits
}

// ValidateIdentifier accepts numeric IDs within [MinID, MaxID] and non-empty names.
func (v *Validator) ValidateIdentifier(id models.Identifier) error {
	if id.IsNumeric() {
		if id.ID() < v.limits.MinID || id.ID() > v.limits.MaxID {
			return errs.Validation("invalid pokemon identifier",
				fmt.Sprintf("id must be a number between %d and %d or a name", v.limits.MinID, v.limits.MaxID))
		}
		return nil
	}
	if id.Name() == "" {
		return errs.Validation("invalid pokemon identifier", "name must not be empty")
	}
	return nil
}

// ParsePagination parses raw query values, applying the defaults for missing
// values, then validates the result.
func (v *Validator) ParsePagination(pageRaw, limitRaw string) (page, limit int, err error) {
	page, limit = 1, v.limits.DefaultLimit

	if s := strings.TrimSpace(pageRaw); s != "" {
		if page, err = strconv.Atoi(s); err != nil {
			return 0, 0, errs.Validation("invalid pagination", "page must be a positive integer")
		}
	}
	if s := strings.TrimSpace(limitRaw); s != "" {
		if limit, err = strconv.Atoi(s); err != nil {
			return 0, 0, errs.Validation("invalid pagination", "limit must be a positive integer")
		}
	}
	if err := v.ValidatePagination(page, limit); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

// ValidatePagination rejects out-of-range values; it never clamps.
func (v *Validator) ValidatePagination(page, limit int) error {
	var fields []string
	if page < 1 {
		fields = append(fields, "page must be a positive integer")
	}
	if limit < 1 {
		fields = append(fields, "limit must be a positive integer")
	} else if limit > v.limits.MaxLimit {
		fields = append(fields, fmt.Sprintf("limit cannot exceed %d", v.limits.MaxLimit))
	} else if page > math.MaxInt/limit {
		// page*limit must fit in an int for the offset and hasNext arithmetic
		fields = append(fields, "page is out of range")
	}
	if len(fields) > 0 {
		return errs.Validation("invalid pagination", fields...)
	}
	return nil
}

// ValidateSearchParams returns every failed rule; an empty result means valid.
// A zero limit is treated as absent.
func (v *Validator) ValidateSearchParams(q models.SearchQuery) []string {
	var fields []string

	if q.Name != "" && v.validate.Var(q.Name, "min=2,max=50") != nil {
		fields = append(fields, "name must be between 2 and 50 characters")
	}
	if q.Type != "" && v.validate.Var(q.Type, "min=2") != nil {
		fields = append(fields, "type must be at least 2 characters")
	}
	if q.Limit != 0 && v.validate.Var(q.Limit, fmt.Sprintf("min=1,max=%d", v.limits.MaxLimit)) != nil {
		fields = append(fields, fmt.Sprintf("limit must be between 1 and %d", v.limits.MaxLimit))
	}
	if q.Name == "" && q.Type == "" {
		fields = append(fields, "a name or a type is required to search")
	}
	return fields
}

// CheckSearchParams wraps ValidateSearchParams into a Validation error.
func (v *Validator) CheckSearchParams(q models.SearchQuery) error {
	if fields := v.ValidateSearchParams(q); len(fields) > 0 {
		return errs.Validation("invalid search parameters", fields...)
	}
	return nil
}

// ParseSearchLimit parses an optional limit query value. An empty value
// yields 0, which the service replaces with DefaultLimit.
func (v *Validator) ParseSearchLimit(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > v.limits.MaxLimit {
		return 0, errs.Validation("invalid search parameters",
			fmt.Sprintf("limit must be between 1 and %d", v.limits.MaxLimit))
	}
	return n, nil
}
