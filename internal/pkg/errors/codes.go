package errors

import "net/http"

// Planning failure kinds. These are expected, user-facing outcomes: the
// handler maps each one to actionable guidance (drop a segment, extend the
// date range, raise a cap).
var (
	ErrInvalidInput = New(
		"INVALID_INPUT",
		"Invalid planning input",
		http.StatusBadRequest,
	)

	ErrSolverFailure = New(
		"SOLVER_FAILURE",
		"Could not determine a segment order",
		http.StatusUnprocessableEntity,
	)

	ErrSegmentTooFar = New(
		"SEGMENT_TOO_FAR",
		"A single segment does not fit into any day",
		http.StatusUnprocessableEntity,
	)

	ErrDailyLimitExceeded = New(
		"DAILY_LIMIT_EXCEEDED",
		"Daily limit cannot be satisfied",
		http.StatusUnprocessableEntity,
	)

	ErrNeedMoreDays = New(
		"NEED_MORE_DAYS",
		"Trip requires more days than allowed",
		http.StatusUnprocessableEntity,
	)

	ErrGeometryUnresolvable = New(
		"GEOMETRY_UNRESOLVABLE",
		"Segment has no resolvable coordinates",
		http.StatusUnprocessableEntity,
	)
)

// Infrastructure and service errors.
var (
	ErrTripNotFound = New(
		"TRIP_NOT_FOUND",
		"Trip not found",
		http.StatusNotFound,
	)

	ErrSegmentNotFound = New(
		"SEGMENT_NOT_FOUND",
		"Segment not found",
		http.StatusNotFound,
	)

	ErrProviderError = New(
		"PROVIDER_ERROR",
		"External provider request failed",
		http.StatusBadGateway,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	// ErrInternalServer marks invariant violations inside the planning core.
	// Unlike the taxonomy above it signals a bug, not a bad input.
	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
