package query

import "errors"

var (
	// ErrUnknownColumn is returned when a requested group or measure column
	// is not part of the dataset schema.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrUnsupportedAggregation is returned when a measure names an
	// aggregation outside count, sum, avg, min and max.
	ErrUnsupportedAggregation = errors.New("unsupported aggregation")

	// ErrInvalidRequest is returned when a request fails validation.
	ErrInvalidRequest = errors.New("invalid request")
)

// IsClientError reports whether err was caused by the request itself
// rather than by the engine or its data source.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnknownColumn) ||
		errors.Is(err, ErrUnsupportedAggregation) ||
		errors.Is(err, ErrInvalidRequest)
}
