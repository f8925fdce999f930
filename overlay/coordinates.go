package overlay

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate is one KML position. KML orders positions longitude first.
type Coordinate struct {
	Lon float64
	Lat float64
	Alt float64
}

// FromLatLon converts a latitude/longitude pair into a KML coordinate on the
// ground. It is the only place where the geographic (lat, lon) order is
// swapped into KML's lon,lat,alt order.
func FromLatLon(lat, lon float64) Coordinate {
	return Coordinate{Lon: lon, Lat: lat}
}

// Coordinates is the text content of a KML <coordinates> element: whitespace
// separated lon,lat[,alt] tuples.
type Coordinates []Coordinate

// MarshalText implements encoding.TextMarshaler.
func (c Coordinates) MarshalText() ([]byte, error) {
	var b strings.Builder
	for i, p := range c {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(formatFloat(p.Lon))
		b.WriteByte(',')
		b.WriteString(formatFloat(p.Lat))
		b.WriteByte(',')
		b.WriteString(formatFloat(p.Alt))
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The altitude is optional.
func (c *Coordinates) UnmarshalText(text []byte) error {
	fields := strings.Fields(string(text))
	out := make(Coordinates, 0, len(fields))
	for _, tuple := range fields {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 || len(parts) > 3 {
			return fmt.Errorf("coordinate %q: want lon,lat[,alt]", tuple)
		}
		var vals [3]float64
		for i, part := range parts {
			v, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return fmt.Errorf("coordinate %q: %w", tuple, err)
			}
			vals[i] = v
		}
		out = append(out, Coordinate{Lon: vals[0], Lat: vals[1], Alt: vals[2]})
	}
	*c = out
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
