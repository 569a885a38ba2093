package domain

import "github.com/paulmach/orb"

// SegmentRequest is a user-chosen segment id plus riding direction.
type SegmentRequest struct {
	ID       string `json:"id" validate:"required"`
	Reversed bool   `json:"reversed"`
}

// SegmentMeta is a resolved segment: the metadata provider has already
// applied the requested direction, so Start/End and Path are oriented the
// way the segment will be ridden.
type SegmentMeta struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	DistanceMeters      float64 `json:"distance_meters"`
	ElevationGainMeters float64 `json:"elevation_gain_meters"`
	Start               Point   `json:"start"`
	End                 Point   `json:"end"`

	// Path is the full-resolution segment geometry, lon/lat order.
	// May be empty; the stitcher then falls back to a straight line.
	Path orb.LineString `json:"path,omitempty"`
}

// Resolvable reports whether the segment has any usable coordinates: either
// a stored path or at least one real endpoint.
func (m SegmentMeta) Resolvable() bool {
	return len(m.Path) > 0 || !m.Start.IsZero() || !m.End.IsZero()
}

// StartPoint returns the geometry-space start of the segment, preferring the
// stored path over the endpoint metadata.
func (m SegmentMeta) StartPoint() orb.Point {
	if len(m.Path) > 0 {
		return m.Path[0]
	}
	return orb.Point{m.Start.Lon, m.Start.Lat}
}

// EndPoint returns the geometry-space end of the segment.
func (m SegmentMeta) EndPoint() orb.Point {
	if len(m.Path) > 0 {
		return m.Path[len(m.Path)-1]
	}
	return orb.Point{m.End.Lon, m.End.Lat}
}
