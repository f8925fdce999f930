package core

import "github.com/signalsfoundry/satcov/model"

// Classify decides, for every record of slice in order, whether it lies
// inside the footprint described by spec. A record is accepted only when its
// distance to the centre is strictly less than the radius, so a record sitting
// exactly on the boundary is rejected.
func Classify(slice []model.TrackedObjectRecord, spec model.CoverageSpec) model.AcceptanceResult {
	result := make(model.AcceptanceResult, len(slice))
	for i, rec := range slice {
		d := Distance(spec.Center, rec.Point(), spec.Unit)
		result[i] = model.Acceptance{
			Record:   rec,
			Accepted: d < spec.Radius,
		}
	}
	return result
}
