package model

// Unit selects the distance unit used for a coverage radius.
type Unit int

const (
	// NauticalMiles is the default unit.
	NauticalMiles Unit = iota
	Kilometers
)

// String returns the short unit label shown to operators.
func (u Unit) String() string {
	switch u {
	case Kilometers:
		return "km"
	default:
		return "NM"
	}
}

// CoverageSpec describes a circular footprint. Radius is expressed in Unit and
// must be positive.
type CoverageSpec struct {
	Center CoveragePoint
	Radius float64
	Unit   Unit
}

// Acceptance pairs a record with its coverage decision.
type Acceptance struct {
	Record   TrackedObjectRecord
	Accepted bool
}

// AcceptanceResult holds one decision per record of a time slice, in slice
// order.
type AcceptanceResult []Acceptance

// Count returns the number of accepted records.
func (r AcceptanceResult) Count() int {
	n := 0
	for _, a := range r {
		if a.Accepted {
			n++
		}
	}
	return n
}

// AcceptedRecords returns the accepted records in slice order.
func (r AcceptanceResult) AcceptedRecords() []TrackedObjectRecord {
	out := make([]TrackedObjectRecord, 0, r.Count())
	for _, a := range r {
		if a.Accepted {
			out = append(out, a.Record)
		}
	}
	return out
}
