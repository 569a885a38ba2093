package domain

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat" db:"lat"`
	Lon float64 `json:"lon" db:"lon"`
}

// IsZero reports whether the point carries no coordinate at all. The zero
// value doubles as "unresolved" throughout the planner; (0,0) is in the Gulf
// of Guinea and never a real segment endpoint for this service.
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lon == 0
}
