package overlay

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/signalsfoundry/satcov/model"
)

// KML namespaces declared on the document root.
const (
	NamespaceKML  = "http://www.opengis.net/kml/2.2"
	NamespaceGX   = "http://www.google.com/kml/ext/2.2"
	NamespaceAtom = "http://www.w3.org/2005/Atom"
)

// Style ids referenced by placemarks.
const (
	RegionStyleID = "FIR"
	MarkerStyleID = "Flight"
)

// Styles holds the presentation of region outlines and object markers.
// Colors are KML aabbggrr hex strings.
type Styles struct {
	LineColor   string
	LineWidth   float64
	FillColor   string
	MarkerColor string
	MarkerScale float64
	MarkerIcon  string
	Open        bool
}

// DefaultStyles returns blue region outlines with a transparent fill and
// yellow dot markers.
func DefaultStyles() Styles {
	return Styles{
		LineColor:   "FFFF0000",
		LineWidth:   1,
		FillColor:   "00FFFFFF",
		MarkerColor: "FFFFD600",
		MarkerScale: 1.3,
		MarkerIcon:  "http://maps.google.com/mapfiles/kml/shapes/shaded_dot.png",
		Open:        true,
	}
}

// Document is a KML overlay: a <kml> root holding one <Document> with the
// region and marker styles followed by region placemarks, then marker
// placemarks, in insertion order.
type Document struct {
	XMLName   xml.Name `xml:"kml"`
	Xmlns     string   `xml:"xmlns,attr,omitempty"`
	XmlnsGX   string   `xml:"xmlns:gx,attr,omitempty"`
	XmlnsKML  string   `xml:"xmlns:kml,attr,omitempty"`
	XmlnsAtom string   `xml:"xmlns:atom,attr,omitempty"`
	Body      Body     `xml:"Document"`
}

// Body is the KML <Document> element.
type Body struct {
	Name       string      `xml:"name"`
	Open       int         `xml:"open"`
	Styles     []Style     `xml:"Style"`
	Placemarks []Placemark `xml:"Placemark"`
}

type Style struct {
	ID        string     `xml:"id,attr"`
	LineStyle *LineStyle `xml:"LineStyle,omitempty"`
	PolyStyle *PolyStyle `xml:"PolyStyle,omitempty"`
	IconStyle *IconStyle `xml:"IconStyle,omitempty"`
}

type LineStyle struct {
	Color string  `xml:"color"`
	Width float64 `xml:"width"`
}

type PolyStyle struct {
	Color string `xml:"color"`
}

type IconStyle struct {
	Color string  `xml:"color"`
	Scale float64 `xml:"scale"`
	Icon  Icon    `xml:"Icon"`
}

type Icon struct {
	Href string `xml:"href"`
}

// Placemark is either a region (Polygon set) or a marker (Point set).
type Placemark struct {
	Name         string        `xml:"name,omitempty"`
	StyleURL     string        `xml:"styleUrl"`
	ExtendedData *ExtendedData `xml:"ExtendedData,omitempty"`
	Polygon      *Polygon      `xml:"Polygon,omitempty"`
	Point        *Point        `xml:"Point,omitempty"`
}

type ExtendedData struct {
	Data []Data `xml:"Data"`
}

type Data struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type Polygon struct {
	OuterBoundary LinearRing `xml:"outerBoundaryIs>LinearRing"`
}

type LinearRing struct {
	Coordinates Coordinates `xml:"coordinates"`
}

type Point struct {
	Coordinates Coordinates `xml:"coordinates"`
}

// NewDocument starts an overlay titled title with the given styles.
func NewDocument(title string, styles Styles) *Document {
	open := 0
	if styles.Open {
		open = 1
	}
	return &Document{
		Xmlns:     NamespaceKML,
		XmlnsGX:   NamespaceGX,
		XmlnsKML:  NamespaceKML,
		XmlnsAtom: NamespaceAtom,
		Body: Body{
			Name: title,
			Open: open,
			Styles: []Style{
				{
					ID:        RegionStyleID,
					LineStyle: &LineStyle{Color: styles.LineColor, Width: styles.LineWidth},
					PolyStyle: &PolyStyle{Color: styles.FillColor},
				},
				{
					ID: MarkerStyleID,
					IconStyle: &IconStyle{
						Color: styles.MarkerColor,
						Scale: styles.MarkerScale,
						Icon:  Icon{Href: styles.MarkerIcon},
					},
				},
			},
		},
	}
}

// AddRegions appends one outlined placemark per region. Attributes become
// ExtendedData entries in source order and open rings are closed.
func (d *Document) AddRegions(regions []model.Region) {
	for _, r := range regions {
		ring := make(Coordinates, 0, len(r.Vertices)+1)
		for _, v := range r.Vertices {
			ring = append(ring, FromLatLon(v.Lat, v.Lon))
		}
		if n := len(ring); n > 0 && ring[0] != ring[n-1] {
			ring = append(ring, ring[0])
		}

		pm := Placemark{
			Name:     r.Label,
			StyleURL: "#" + RegionStyleID,
			Polygon:  &Polygon{OuterBoundary: LinearRing{Coordinates: ring}},
		}
		if len(r.Attributes) > 0 {
			ext := &ExtendedData{Data: make([]Data, len(r.Attributes))}
			for i, a := range r.Attributes {
				ext.Data[i] = Data{Name: a.Name, Value: a.Value}
			}
			pm.ExtendedData = ext
		}
		d.Body.Placemarks = append(d.Body.Placemarks, pm)
	}
}

// AddMarkers appends one point placemark per record.
func (d *Document) AddMarkers(records []model.TrackedObjectRecord) {
	for _, rec := range records {
		d.Body.Placemarks = append(d.Body.Placemarks, Placemark{
			StyleURL: "#" + MarkerStyleID,
			Point:    &Point{Coordinates: Coordinates{FromLatLon(rec.Latitude, rec.Longitude)}},
		})
	}
}

// Regions returns the region placemarks in document order.
func (d *Document) Regions() []Placemark {
	return d.filter(func(p Placemark) bool { return p.Polygon != nil })
}

// Markers returns the marker placemarks in document order.
func (d *Document) Markers() []Placemark {
	return d.filter(func(p Placemark) bool { return p.Point != nil })
}

func (d *Document) filter(keep func(Placemark) bool) []Placemark {
	var out []Placemark
	for _, p := range d.Body.Placemarks {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Encode writes the document as indented UTF-8 XML preceded by the XML
// declaration.
func (d *Document) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode kml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode kml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Decode parses a KML document produced by Encode.
func Decode(r io.Reader) (*Document, error) {
	var d Document
	if err := xml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode kml: %w", err)
	}
	return &d, nil
}
