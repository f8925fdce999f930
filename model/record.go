package model

// TrackedObjectRecord is one observation of a tracked object (a flight) at a
// time instant. Records have no identity beyond their row position.
type TrackedObjectRecord struct {
	// Index is the zero-based position of the row in the source table.
	Index int

	// TimeInstant is the time-of-day key exactly as read, e.g. "23:25:00".
	TimeInstant string

	Latitude  float64 // degrees, -90..90
	Longitude float64 // degrees, -180..180
}

// Point returns the record position as a CoveragePoint.
func (r TrackedObjectRecord) Point() CoveragePoint {
	return CoveragePoint{Latitude: r.Latitude, Longitude: r.Longitude}
}

// CoveragePoint is a latitude/longitude pair in degrees.
type CoveragePoint struct {
	Latitude  float64
	Longitude float64
}
