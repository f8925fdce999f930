package core

import "github.com/signalsfoundry/satcov/model"

// SelectSlice returns every record whose TimeInstant equals instant, keeping
// their relative order. No match yields an empty, non-nil slice.
func SelectSlice(records []model.TrackedObjectRecord, instant string) []model.TrackedObjectRecord {
	out := make([]model.TrackedObjectRecord, 0)
	for _, r := range records {
		if r.TimeInstant == instant {
			out = append(out, r)
		}
	}
	return out
}
