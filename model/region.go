package model

// Vertex is a boundary position in GeoJSON order (longitude first).
type Vertex struct {
	Lon float64
	Lat float64
}

// Attribute is one region property. Value holds the scalar rendered as text.
type Attribute struct {
	Name  string
	Value string
}

// Region is a named boundary (an FIR) rendered in the overlay. Vertices is the
// outer ring only; first and last vertex need not coincide. Attributes keep
// the order in which the properties appeared in the source.
type Region struct {
	Label      string
	Vertices   []Vertex
	Attributes []Attribute
}

// Attribute returns the value of the named attribute.
func (r Region) Attribute(name string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}
