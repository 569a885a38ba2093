package dto

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/pkg/errors"
)

// SegmentInput is one requested segment with its riding direction.
type SegmentInput struct {
	ID       string `json:"id" validate:"required"`
	Reversed bool   `json:"reversed"`
}

// PointInput is a lat/lon coordinate pair.
type PointInput struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
}

// PlanTripRequest is the planning request body. The day budget comes either
// from an explicit max_days or from an inclusive start/end date range.
type PlanTripRequest struct {
	Name     string         `json:"name" validate:"omitempty,max=120"`
	Segments []SegmentInput `json:"segments" validate:"required,min=1,max=10,dive"`
	Start    *PointInput    `json:"start,omitempty"`

	StartDate string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	MaxDays   int    `json:"max_days,omitempty" validate:"omitempty,min=1"`

	MaxDailyDistanceMeters  float64 `json:"max_daily_distance_meters" validate:"required,gt=0"`
	MaxDailyElevationMeters float64 `json:"max_daily_elevation_meters" validate:"required,gt=0"`
}

// Constraints derives the per-day caps and the day budget. An explicit
// max_days wins over the date range.
func (r *PlanTripRequest) Constraints() (domain.Constraints, error) {
	c := domain.Constraints{
		MaxDays:                 r.MaxDays,
		MaxDailyDistanceMeters:  r.MaxDailyDistanceMeters,
		MaxDailyElevationMeters: r.MaxDailyElevationMeters,
	}

	if c.MaxDays == 0 {
		if r.StartDate == "" || r.EndDate == "" {
			return c, errors.ErrInvalidInput.WithDetail("either max_days or a start_date/end_date range is required")
		}
		start, err := time.Parse("2006-01-02", r.StartDate)
		if err != nil {
			return c, errors.ErrInvalidInput.WithDetail("start_date must be YYYY-MM-DD")
		}
		end, err := time.Parse("2006-01-02", r.EndDate)
		if err != nil {
			return c, errors.ErrInvalidInput.WithDetail("end_date must be YYYY-MM-DD")
		}
		if end.Before(start) {
			return c, errors.ErrInvalidInput.WithDetail("end_date must not be before start_date")
		}
		// Inclusive range: same-day trips get one day.
		c.MaxDays = int(end.Sub(start).Hours()/24) + 1
	}

	return c, nil
}

// SegmentRequests converts the inputs into domain requests.
func (r *PlanTripRequest) SegmentRequests() []domain.SegmentRequest {
	out := make([]domain.SegmentRequest, len(r.Segments))
	for i, s := range r.Segments {
		out[i] = domain.SegmentRequest{ID: s.ID, Reversed: s.Reversed}
	}
	return out
}

// StartPoint returns the fixed trip start, or nil when the trip is free.
func (r *PlanTripRequest) StartPoint() *domain.Point {
	if r.Start == nil {
		return nil
	}
	return &domain.Point{Lat: r.Start.Lat, Lon: r.Start.Lon}
}

// DayPlanResponse is one planned day.
type DayPlanResponse struct {
	Number              int            `json:"number"`
	DistanceMeters      float64        `json:"distance_meters"`
	ElevationGainMeters float64        `json:"elevation_gain_meters"`
	DurationSeconds     float64        `json:"duration_seconds"`
	SegmentIDs          []string       `json:"segment_ids"`
	SegmentNames        []string       `json:"segment_names"`
	Geometry            orb.LineString `json:"geometry"`
}

// TripPlanResponse is a finished plan as returned to clients.
type TripPlanResponse struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name,omitempty"`
	Method               string            `json:"method"`
	TotalDistanceMeters  float64           `json:"total_distance_meters"`
	TotalElevationMeters float64           `json:"total_elevation_meters"`
	TotalDurationSeconds float64           `json:"total_duration_seconds"`
	Days                 []DayPlanResponse `json:"days"`
	CreatedAt            time.Time         `json:"created_at"`
}

// FromTripPlan maps the domain trip into the response shape.
func FromTripPlan(trip *domain.TripPlan) *TripPlanResponse {
	resp := &TripPlanResponse{
		ID:                   trip.ID.String(),
		Name:                 trip.Name,
		Method:               string(trip.Method),
		TotalDistanceMeters:  trip.TotalDistanceMeters,
		TotalElevationMeters: trip.TotalElevationMeters,
		TotalDurationSeconds: trip.TotalDurationSeconds,
		Days:                 make([]DayPlanResponse, 0, len(trip.Days)),
		CreatedAt:            trip.CreatedAt,
	}
	for _, day := range trip.Days {
		resp.Days = append(resp.Days, DayPlanResponse{
			Number:              day.Number,
			DistanceMeters:      day.DistanceMeters,
			ElevationGainMeters: day.ElevationGainMeters,
			DurationSeconds:     day.DurationSeconds,
			SegmentIDs:          day.SegmentIDs,
			SegmentNames:        day.SegmentNames,
			Geometry:            day.Geometry,
		})
	}
	return resp
}

// EnqueueResponse is returned when an async planning job is accepted.
type EnqueueResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// JobStatusResponse is the async job pickup payload.
type JobStatusResponse struct {
	JobID       string `json:"job_id"`
	Status      string `json:"status"`
	TripID      string `json:"trip_id,omitempty"`
	ErrorCode   string `json:"error_code,omitempty"`
	ErrorDetail string `json:"error_detail,omitempty"`
}
