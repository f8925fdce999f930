package core

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/signalsfoundry/satcov/model"
)

// ErrLoad marks input data that could not be turned into domain values.
var ErrLoad = errors.New("load error")

// DefaultLabelFields lists the properties tried, in order, for a region's
// display label.
var DefaultLabelFields = []string{"name", "FIRname"}

// internal JSON shapes – keep them unexported so we're free to evolve them.
type featureCollectionJSON struct {
	Type     string        `json:"type"`
	Features []featureJSON `json:"features"`
}

type featureJSON struct {
	Type       string           `json:"type"`
	Geometry   *geometryJSON    `json:"geometry"`
	Properties orderedPropsJSON `json:"properties"`
}

type geometryJSON struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// orderedPropsJSON keeps GeoJSON properties in document order.
type orderedPropsJSON []model.Attribute

// LoadRegions reads a GeoJSON FeatureCollection (or a single Feature) from r
// and returns one Region per feature, in document order.
//
// Only Polygon geometries are accepted and only their outer ring is kept.
// The region label is the first property named in labelFields that the
// feature carries with a non-empty value; DefaultLabelFields is used when labelFields is empty.
// Any malformed feature fails the whole load.
func LoadRegions(r io.Reader, labelFields []string) ([]model.Region, error) {
	if len(labelFields) == 0 {
		labelFields = DefaultLabelFields
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read regions: %v", ErrLoad, err)
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: decode regions: %v", ErrLoad, err)
	}

	var features []featureJSON
	switch strings.ToLower(head.Type) {
	case "featurecollection":
		var fc featureCollectionJSON
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("%w: decode feature collection: %v", ErrLoad, err)
		}
		features = fc.Features
	case "feature":
		var f featureJSON
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("%w: decode feature: %v", ErrLoad, err)
		}
		features = []featureJSON{f}
	default:
		return nil, fmt.Errorf("%w: unsupported GeoJSON type %q", ErrLoad, head.Type)
	}

	regions := make([]model.Region, 0, len(features))
	for i, f := range features {
		region, err := normalizeFeature(f, labelFields)
		if err != nil {
			return nil, fmt.Errorf("%w: feature %d: %v", ErrLoad, i, err)
		}
		regions = append(regions, region)
	}
	return regions, nil
}

func normalizeFeature(f featureJSON, labelFields []string) (model.Region, error) {
	if f.Geometry == nil {
		return model.Region{}, errors.New("missing geometry")
	}
	if !strings.EqualFold(f.Geometry.Type, "Polygon") {
		return model.Region{}, fmt.Errorf("unsupported geometry type %q", f.Geometry.Type)
	}

	var rings [][][]float64
	if err := json.Unmarshal(f.Geometry.Coordinates, &rings); err != nil {
		return model.Region{}, fmt.Errorf("polygon coordinates: %v", err)
	}
	if len(rings) == 0 {
		return model.Region{}, errors.New("polygon has no outer ring")
	}
	outer := rings[0]
	if len(outer) < 3 {
		return model.Region{}, fmt.Errorf("outer ring has %d positions, want at least 3", len(outer))
	}

	vertices := make([]model.Vertex, len(outer))
	for i, pos := range outer {
		if len(pos) < 2 {
			return model.Region{}, fmt.Errorf("position %d has %d values, want [lon, lat]", i, len(pos))
		}
		vertices[i] = model.Vertex{Lon: pos[0], Lat: pos[1]}
	}

	region := model.Region{
		Vertices:   vertices,
		Attributes: []model.Attribute(f.Properties),
	}
	// null and blank values do not count as a label.
	for _, field := range labelFields {
		if v, ok := region.Attribute(field); ok && strings.TrimSpace(v) != "" {
			region.Label = v
			return region, nil
		}
	}
	return model.Region{}, fmt.Errorf("missing or empty label property (tried %s)", strings.Join(labelFields, ", "))
}

// UnmarshalJSON walks the properties object token by token so that the
// attribute order matches the source document.
func (p *orderedPropsJSON) UnmarshalJSON(data []byte) error {
	dec := stdjson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if d, ok := tok.(stdjson.Delim); !ok || d != '{' {
		return fmt.Errorf("properties must be an object, got %v", tok)
	}

	var attrs []model.Attribute
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw stdjson.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("property %q: %w", key, err)
		}
		value, err := scalarText(raw)
		if err != nil {
			return fmt.Errorf("property %q: %w", key, err)
		}
		attrs = append(attrs, model.Attribute{Name: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = attrs
	return nil
}

// scalarText renders a JSON value as attribute text. Numbers keep their
// literal spelling, null becomes empty and composite values stay compact JSON.
func scalarText(raw []byte) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case 'n':
		return "", nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return string(raw), nil
	}
}
