package query

import (
	"fmt"
)

// Validation limits to prevent resource exhaustion from a single request.
const (
	// MaxColumns is the default maximum number of requested columns.
	MaxColumns = 256

	// MaxFilters is the default maximum number of filter expressions.
	MaxFilters = 256

	// MaxColumnNameLength is the maximum length for a column reference.
	MaxColumnNameLength = 256
)

// Limits bounds the size of a request.
type Limits struct {
	MaxColumns int
	MaxFilters int
}

// DefaultLimits returns the limits used by the zero Engine.
func DefaultLimits() Limits {
	return Limits{MaxColumns: MaxColumns, MaxFilters: MaxFilters}
}

// ValidateRequest checks a request against the limits before any row is
// touched. Zero limits fall back to the defaults.
func ValidateRequest(req *Request, limits Limits) error {
	if req == nil {
		return fmt.Errorf("%w: empty request", ErrInvalidRequest)
	}
	if limits.MaxColumns <= 0 {
		limits.MaxColumns = MaxColumns
	}
	if limits.MaxFilters <= 0 {
		limits.MaxFilters = MaxFilters
	}

	if req.Limit != nil && *req.Limit < 0 {
		return fmt.Errorf("%w: limit must be non-negative, got %d", ErrInvalidRequest, *req.Limit)
	}
	if len(req.Columns) > limits.MaxColumns {
		return fmt.Errorf("%w: %d columns (max %d)", ErrInvalidRequest, len(req.Columns), limits.MaxColumns)
	}
	if len(req.Filters) > limits.MaxFilters {
		return fmt.Errorf("%w: %d filters (max %d)", ErrInvalidRequest, len(req.Filters), limits.MaxFilters)
	}

	for _, c := range req.Columns {
		if err := ValidateColumnName(c.Ref()); err != nil {
			return err
		}
	}
	for _, f := range req.Filters {
		if err := ValidateColumnName(f.Ref()); err != nil {
			return err
		}
	}
	return nil
}

// ValidateColumnName validates column reference length.
func ValidateColumnName(name string) error {
	if len(name) > MaxColumnNameLength {
		return fmt.Errorf("%w: column name too long: %d chars (max %d)", ErrInvalidRequest, len(name), MaxColumnNameLength)
	}
	return nil
}
