package core

import (
	"fmt"
	"testing"

	"github.com/signalsfoundry/satcov/model"
)

func sampleRecords() []model.TrackedObjectRecord {
	rows := []struct {
		instant  string
		lat, lon float64
	}{
		{"23:25:00", 15.0, -23.8},
		{"23:25:00", 40.4, -3.7},
		{"23:25:10", 15.1, -23.7},
		{"23:25:00", 14.9, -23.9},
		{"23:25:10", 60.0, 10.0},
		{"23:25:20", 15.0, -23.8},
	}
	out := make([]model.TrackedObjectRecord, len(rows))
	for i, r := range rows {
		out[i] = model.TrackedObjectRecord{Index: i, TimeInstant: r.instant, Latitude: r.lat, Longitude: r.lon}
	}
	return out
}

func TestSelectSlice_PreservesOrder(t *testing.T) {
	got := SelectSlice(sampleRecords(), "23:25:00")
	want := []int{0, 1, 3}
	if len(got) != len(want) {
		t.Fatalf("SelectSlice returned %d records, want %d", len(got), len(want))
	}
	for i, idx := range want {
		if got[i].Index != idx {
			t.Fatalf("slice[%d].Index = %d, want %d", i, got[i].Index, idx)
		}
	}
}

func TestSelectSlice_NoMatchIsEmpty(t *testing.T) {
	got := SelectSlice(sampleRecords(), "00:00:00")
	if got == nil || len(got) != 0 {
		t.Fatalf("SelectSlice(no match) = %#v, want empty non-nil slice", got)
	}
	if n := Classify(got, model.CoverageSpec{Radius: 1000}).Count(); n != 0 {
		t.Fatalf("Count on empty slice = %d, want 0", n)
	}
}

func TestSelectSlice_DisjointAndComplete(t *testing.T) {
	records := sampleRecords()
	seen := make(map[int]string)
	for _, instant := range []string{"23:25:00", "23:25:10", "23:25:20"} {
		for _, r := range SelectSlice(records, instant) {
			if prev, dup := seen[r.Index]; dup {
				t.Fatalf("record %d selected for both %s and %s", r.Index, prev, instant)
			}
			seen[r.Index] = instant
		}
	}
	if len(seen) != len(records) {
		t.Fatalf("union of slices covers %d records, want %d", len(seen), len(records))
	}
}

func TestSelectSlice_ExactMatchOnly(t *testing.T) {
	records := []model.TrackedObjectRecord{
		{Index: 0, TimeInstant: "12:00:00"},
		{Index: 1, TimeInstant: "12:00:00 "},
		{Index: 2, TimeInstant: "12:00"},
	}
	if got := SelectSlice(records, "12:00:00"); len(got) != 1 || got[0].Index != 0 {
		t.Fatalf("SelectSlice exact match = %#v, want only record 0", got)
	}
}

func TestClassify_CenterAcceptedFarRejected(t *testing.T) {
	center := model.CoveragePoint{Latitude: 15.092736, Longitude: -23.792856}
	far := model.CoveragePoint{Latitude: center.Latitude, Longitude: center.Longitude + 2000/(EarthRadiusKm*degToRad(1))}
	slice := []model.TrackedObjectRecord{
		{Index: 0, TimeInstant: "12:00:00", Latitude: center.Latitude, Longitude: center.Longitude},
		{Index: 1, TimeInstant: "12:00:00", Latitude: far.Latitude, Longitude: far.Longitude},
	}
	res := Classify(slice, model.CoverageSpec{Center: center, Radius: 1000, Unit: model.Kilometers})
	if got := res.Count(); got != 1 {
		t.Fatalf("Count = %d, want 1", got)
	}
	if !res[0].Accepted || res[1].Accepted {
		t.Fatalf("acceptance = [%v %v], want [true false]", res[0].Accepted, res[1].Accepted)
	}
}

func TestClassify_BoundaryIsRejected(t *testing.T) {
	center := model.CoveragePoint{Latitude: 10, Longitude: 20}
	edge := model.TrackedObjectRecord{Index: 0, Latitude: 12.5, Longitude: 21}
	for _, unit := range []model.Unit{model.NauticalMiles, model.Kilometers} {
		radius := Distance(center, edge.Point(), unit)
		res := Classify([]model.TrackedObjectRecord{edge}, model.CoverageSpec{Center: center, Radius: radius, Unit: unit})
		if res[0].Accepted {
			t.Fatalf("record exactly at radius %v %v was accepted", radius, unit)
		}

		res = Classify([]model.TrackedObjectRecord{edge}, model.CoverageSpec{Center: center, Radius: radius * 1.0001, Unit: unit})
		if !res[0].Accepted {
			t.Fatalf("record just inside radius %v %v was rejected", radius*1.0001, unit)
		}
	}
}

func TestClassify_UnitChangesDecision(t *testing.T) {
	center := model.CoveragePoint{Latitude: 0, Longitude: 0}
	// ~111 km / ~60 NM east of the centre.
	rec := model.TrackedObjectRecord{Latitude: 0, Longitude: 1}
	slice := []model.TrackedObjectRecord{rec}

	if Classify(slice, model.CoverageSpec{Center: center, Radius: 100, Unit: model.Kilometers})[0].Accepted {
		t.Fatalf("expected rejection at 100 km")
	}
	if !Classify(slice, model.CoverageSpec{Center: center, Radius: 100, Unit: model.NauticalMiles})[0].Accepted {
		t.Fatalf("expected acceptance at 100 NM")
	}
}

func TestClassify_PreservesSliceOrder(t *testing.T) {
	slice := SelectSlice(sampleRecords(), "23:25:00")
	res := Classify(slice, model.CoverageSpec{
		Center: model.CoveragePoint{Latitude: 15, Longitude: -23.8},
		Radius: 500,
		Unit:   model.NauticalMiles,
	})
	if len(res) != len(slice) {
		t.Fatalf("len(result) = %d, want %d", len(res), len(slice))
	}
	for i := range slice {
		if res[i].Record != slice[i] {
			t.Fatalf("result[%d] = %+v, want %+v", i, res[i].Record, slice[i])
		}
	}
	accepted := res.AcceptedRecords()
	if got := fmt.Sprint(indices(accepted)); got != "[0 3]" {
		t.Fatalf("accepted indices = %s, want [0 3]", got)
	}
}

func indices(recs []model.TrackedObjectRecord) []int {
	out := make([]int, len(recs))
	for i, r := range recs {
		out[i] = r.Index
	}
	return out
}
