package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// SolveMethod identifies which solver tier produced a Solution.
type SolveMethod string

const (
	SolveMethodExact           SolveMethod = "exact"
	SolveMethodExhaustive      SolveMethod = "exhaustive"
	SolveMethodNearestNeighbor SolveMethod = "nearest_neighbor"
)

// OrderedSegment is a segment request annotated with its waypoint indices
// and its position in the visiting order. The start->end traversal is a
// forced edge: the solver only chooses the order between segments.
type OrderedSegment struct {
	Request  SegmentRequest `json:"request"`
	StartIdx int            `json:"start_idx"`
	EndIdx   int            `json:"end_idx"`
	Position int            `json:"position"`

	// SourceIndex is the segment's index in the original request list,
	// letting callers realign per-segment metadata after solving.
	SourceIndex int `json:"source_index"`
}

// Solution is the solved segment order plus aggregate totals and solver
// metadata. Built once per planning request and never mutated afterwards.
type Solution struct {
	Segments             []OrderedSegment `json:"segments"`
	TotalDistanceMeters  float64          `json:"total_distance_meters"`
	TotalDurationSeconds float64          `json:"total_duration_seconds"`
	Method               SolveMethod      `json:"method"`
	SolveTime            time.Duration    `json:"solve_time"`
}

// Constraints are the per-day caps and the overall day limit.
type Constraints struct {
	MaxDays                 int     `json:"max_days"`
	MaxDailyDistanceMeters  float64 `json:"max_daily_distance_meters"`
	MaxDailyElevationMeters float64 `json:"max_daily_elevation_meters"`
}

// DayPartition is a contiguous run of solution-order indices assigned to one
// day. Day numbers are consecutive starting at 1; StartIndex/EndIndex are
// inclusive positions into Solution.Segments.
type DayPartition struct {
	Day                 int     `json:"day"`
	StartIndex          int     `json:"start_index"`
	EndIndex            int     `json:"end_index"`
	DistanceMeters      float64 `json:"distance_meters"`
	ElevationGainMeters float64 `json:"elevation_gain_meters"`
	DurationSeconds     float64 `json:"duration_seconds"`
}

// SegmentCount returns how many ordered segments the day covers.
func (p DayPartition) SegmentCount() int {
	return p.EndIndex - p.StartIndex + 1
}

// SegmentSpan records where one ordered segment lives on the stitched curve:
// Start is the cumulative distance where its inbound connector begins, End
// where its own path ends. Spans tile the curve without gaps.
type SegmentSpan struct {
	StartMeters float64 `json:"start_meters"`
	EndMeters   float64 `json:"end_meters"`
}

// StitchedGeometry is the whole trip as one continuous polyline with a
// cumulative-distance value per vertex. Invariants: len(Cumulative) ==
// len(Line), Cumulative[0] == 0, Cumulative is non-decreasing.
type StitchedGeometry struct {
	Line       orb.LineString `json:"line"`
	Cumulative []float64      `json:"cumulative"`
	Spans      []SegmentSpan  `json:"spans"`
}

// TotalMeters returns the stitched length of the whole trip.
func (g *StitchedGeometry) TotalMeters() float64 {
	if len(g.Cumulative) == 0 {
		return 0
	}
	return g.Cumulative[len(g.Cumulative)-1]
}

// DayGeometry is the sub-curve of the stitched geometry covered by one day.
type DayGeometry struct {
	Day         int            `json:"day"`
	Line        orb.LineString `json:"line"`
	StartMeters float64        `json:"start_meters"`
	EndMeters   float64        `json:"end_meters"`
}

// DayPlan is one day of a finished trip plan as stored and returned to
// clients.
type DayPlan struct {
	Number              int            `json:"number" db:"day_number"`
	DistanceMeters      float64        `json:"distance_meters" db:"distance_meters"`
	ElevationGainMeters float64        `json:"elevation_gain_meters" db:"elevation_gain_meters"`
	DurationSeconds     float64        `json:"duration_seconds" db:"duration_seconds"`
	SegmentIDs          []string       `json:"segment_ids" db:"-"`
	SegmentNames        []string       `json:"segment_names" db:"-"`
	Geometry            orb.LineString `json:"geometry" db:"-"`
}

// TripPlan is the persisted result of a planning request.
type TripPlan struct {
	ID                   uuid.UUID   `json:"id" db:"id"`
	Name                 string      `json:"name" db:"name"`
	Method               SolveMethod `json:"method" db:"method"`
	TotalDistanceMeters  float64     `json:"total_distance_meters" db:"total_distance_meters"`
	TotalElevationMeters float64     `json:"total_elevation_meters" db:"total_elevation_meters"`
	TotalDurationSeconds float64     `json:"total_duration_seconds" db:"total_duration_seconds"`
	Days                 []DayPlan   `json:"days" db:"-"`
	CreatedAt            time.Time   `json:"created_at" db:"created_at"`
}

// PlanJobStatus is the lifecycle of an async planning job.
type PlanJobStatus string

const (
	PlanJobPending   PlanJobStatus = "pending"
	PlanJobCompleted PlanJobStatus = "completed"
	PlanJobFailed    PlanJobStatus = "failed"
)

// PlanJob is one queued planning request flowing through the Redis stream.
type PlanJob struct {
	JobID      string    `json:"job_id"`
	Payload    []byte    `json:"payload"`
	EnqueuedAt time.Time `json:"enqueued_at"`

	// StreamID is set by the queue on delivery and used for acking.
	StreamID string `json:"-"`
}

// PlanJobResult is what the worker leaves behind for pickup.
type PlanJobResult struct {
	JobID       string        `json:"job_id"`
	Status      PlanJobStatus `json:"status"`
	TripID      string        `json:"trip_id,omitempty"`
	ErrorCode   string        `json:"error_code,omitempty"`
	ErrorDetail string        `json:"error_detail,omitempty"`
	FinishedAt  time.Time     `json:"finished_at"`
}
