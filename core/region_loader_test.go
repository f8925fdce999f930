package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/signalsfoundry/satcov/model"
)

const twoFIRs = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"FIRname": "SAL OCEANIC", "ICAO": "GVSC", "area": 2451000.5, "oceanic": true, "note": null},
      "geometry": {"type": "Polygon", "coordinates": [
        [[-30, 20], [-20, 20], [-20, 10], [-30, 10], [-30, 20]],
        [[-26, 16], [-24, 16], [-24, 14], [-26, 16]]
      ]}
    },
    {
      "type": "Feature",
      "properties": {"zeta": 1, "name": "CANARIAS", "alpha": "x", "tags": ["a", "b"]},
      "geometry": {"type": "Polygon", "coordinates": [[[-19, 31], [-12, 31], [-12, 26], [-19, 26]]]}
    }
  ]
}`

func TestLoadRegions_OrderAndNormalisation(t *testing.T) {
	regions, err := LoadRegions(strings.NewReader(twoFIRs), nil)
	if err != nil {
		t.Fatalf("LoadRegions: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("len(regions) = %d, want 2", len(regions))
	}

	first := regions[0]
	if first.Label != "SAL OCEANIC" {
		t.Fatalf("first label = %q, want SAL OCEANIC", first.Label)
	}
	if len(first.Vertices) != 5 {
		t.Fatalf("first ring has %d vertices, want 5 (holes ignored)", len(first.Vertices))
	}
	if first.Vertices[1] != (model.Vertex{Lon: -20, Lat: 20}) {
		t.Fatalf("vertex[1] = %+v, want lon -20 lat 20", first.Vertices[1])
	}

	wantAttrs := []model.Attribute{
		{Name: "FIRname", Value: "SAL OCEANIC"},
		{Name: "ICAO", Value: "GVSC"},
		{Name: "area", Value: "2451000.5"},
		{Name: "oceanic", Value: "true"},
		{Name: "note", Value: ""},
	}
	if len(first.Attributes) != len(wantAttrs) {
		t.Fatalf("first attributes = %+v, want %+v", first.Attributes, wantAttrs)
	}
	for i, a := range wantAttrs {
		if first.Attributes[i] != a {
			t.Fatalf("attribute[%d] = %+v, want %+v", i, first.Attributes[i], a)
		}
	}

	second := regions[1]
	if second.Label != "CANARIAS" {
		t.Fatalf("second label = %q, want CANARIAS (name preferred)", second.Label)
	}
	var names []string
	for _, a := range second.Attributes {
		names = append(names, a.Name)
	}
	if got := strings.Join(names, ","); got != "zeta,name,alpha,tags" {
		t.Fatalf("attribute order = %s, want zeta,name,alpha,tags", got)
	}
	if v, _ := second.Attribute("tags"); v != `["a","b"]` {
		t.Fatalf("tags = %q, want compact JSON array", v)
	}
	if len(second.Vertices) != 4 {
		t.Fatalf("open ring kept as-is: got %d vertices, want 4", len(second.Vertices))
	}
}

func TestLoadRegions_SingleFeatureAndCustomLabel(t *testing.T) {
	src := `{"type":"Feature","properties":{"id":"R1","title":"Zone"},
	  "geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}`
	regions, err := LoadRegions(strings.NewReader(src), []string{"title"})
	if err != nil {
		t.Fatalf("LoadRegions: %v", err)
	}
	if len(regions) != 1 || regions[0].Label != "Zone" {
		t.Fatalf("regions = %+v, want one region labelled Zone", regions)
	}
}

func TestLoadRegions_EmptyLabelFallsThrough(t *testing.T) {
	cases := map[string]string{
		"null name":  `{"name":null,"FIRname":"GCCC"}`,
		"empty name": `{"name":"","FIRname":"GCCC"}`,
		"blank name": `{"name":"  ","FIRname":"GCCC"}`,
	}
	for name, props := range cases {
		t.Run(name, func(t *testing.T) {
			src := `{"type":"Feature","properties":` + props + `,
			  "geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}`
			regions, err := LoadRegions(strings.NewReader(src), nil)
			if err != nil {
				t.Fatalf("LoadRegions: %v", err)
			}
			if len(regions) != 1 || regions[0].Label != "GCCC" {
				t.Fatalf("regions = %+v, want one region labelled GCCC", regions)
			}
			if v, ok := regions[0].Attribute("name"); !ok || strings.TrimSpace(v) != "" {
				t.Fatalf("name attribute = %q, %v; want kept and empty", v, ok)
			}
		})
	}
}

func TestLoadRegions_Errors(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"type":`,
		"unknown type":   `{"type":"GeometryCollection"}`,
		"missing label":  `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"x":1},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1]]]}}]}`,
		"null label":     `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":null,"area":1},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1]]]}}]}`,
		"empty label":    `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":""},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1]]]}}]}`,
		"no geometry":    `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":"A"}}]}`,
		"multipolygon":   `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":"A"},"geometry":{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1]]]]}}]}`,
		"empty polygon":  `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":"A"},"geometry":{"type":"Polygon","coordinates":[]}}]}`,
		"short ring":     `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":"A"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0]]]}}]}`,
		"short position": `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":"A"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1],[1,1]]]}}]}`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			regions, err := LoadRegions(strings.NewReader(src), nil)
			if !errors.Is(err, ErrLoad) {
				t.Fatalf("LoadRegions error = %v, want ErrLoad", err)
			}
			if regions != nil {
				t.Fatalf("expected no partial result, got %+v", regions)
			}
		})
	}
}

func TestLoadRegions_FailsWholeLoadOnLaterFeature(t *testing.T) {
	src := `{"type":"FeatureCollection","features":[
	  {"type":"Feature","properties":{"name":"OK"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1]]]}},
	  {"type":"Feature","properties":{"other":"x"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1]]]}}
	]}`
	_, err := LoadRegions(strings.NewReader(src), nil)
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("LoadRegions error = %v, want ErrLoad", err)
	}
	if !strings.Contains(err.Error(), "feature 1") {
		t.Fatalf("error %q should name the failing feature", err)
	}
}
