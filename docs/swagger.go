// Package docs Trip Planner API.
//
// Service for planning multi-day cycling trips over curated road segments.
// Takes a set of segments, solves the order they should be ridden in,
// splits the route into days under distance and climbing caps, and
// returns per-day geometry ready for rendering.
//
// Main capabilities:
// - Solve the riding order across requested segments
// - Partition the ordered route into days by distance and elevation caps
// - Stitch continuous trip geometry and slice it per day
// - Persist finished plans and export them as GeoJSON
// - Asynchronous planning over a Redis stream job queue
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//	- application/geo+json
//
// swagger:meta
package docs
