package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/satcov/model"
)

// ErrInvalidTLE is returned when a two-line element set is malformed.
var ErrInvalidTLE = errors.New("invalid TLE")

// tleLineLength is the fixed width of a TLE data line.
const tleLineLength = 69

// TLE holds the two data lines of a two-line element set plus the optional
// title line.
type TLE struct {
	Name  string
	Line1 string
	Line2 string
}

// ParseTLE reads a two- or three-line element set. Blank lines are ignored;
// a leading line that does not start with "1 " is taken as the satellite name.
// Both data lines are checksum-verified.
func ParseTLE(text string) (TLE, error) {
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		l = strings.TrimRight(l, " \t")
		if l != "" {
			lines = append(lines, l)
		}
	}

	var tle TLE
	switch len(lines) {
	case 2:
		tle.Line1, tle.Line2 = lines[0], lines[1]
	case 3:
		tle.Name = strings.TrimSpace(strings.TrimPrefix(lines[0], "0 "))
		tle.Line1, tle.Line2 = lines[1], lines[2]
	default:
		return TLE{}, fmt.Errorf("%w: expected 2 or 3 lines, got %d", ErrInvalidTLE, len(lines))
	}

	for i, line := range []string{tle.Line1, tle.Line2} {
		n := i + 1
		if len(line) != tleLineLength {
			return TLE{}, fmt.Errorf("%w: line %d has %d characters, want %d", ErrInvalidTLE, n, len(line), tleLineLength)
		}
		if line[0] != byte('0'+n) || line[1] != ' ' {
			return TLE{}, fmt.Errorf("%w: line %d must start with %q", ErrInvalidTLE, n, fmt.Sprintf("%d ", n))
		}
		if want, got := tleChecksum(line[:tleLineLength-1]), line[tleLineLength-1]; got != want {
			return TLE{}, fmt.Errorf("%w: line %d checksum %q, want %q", ErrInvalidTLE, n, got, want)
		}
	}
	if tle.Line1[2:7] != tle.Line2[2:7] {
		return TLE{}, fmt.Errorf("%w: catalog numbers differ (%q vs %q)", ErrInvalidTLE, tle.Line1[2:7], tle.Line2[2:7])
	}
	for _, f := range tleFields {
		line := tle.Line1
		if f.line == 2 {
			line = tle.Line2
		}
		text := f.text(line)
		var err error
		if f.integer {
			_, err = strconv.ParseInt(text, 10, 0)
		} else {
			_, err = strconv.ParseFloat(text, 64)
		}
		if err != nil {
			return TLE{}, fmt.Errorf("%w: line %d %s %q is not a number", ErrInvalidTLE, f.line, f.name, text)
		}
	}
	return tle, nil
}

// tleField is a numeric column of a TLE data line, extracted the same way
// the SGP4 propagator reads it. The propagator exits the process on a
// malformed number.
type tleField struct {
	name    string
	line    int
	integer bool
	text    func(line string) string
}

var tleFields = []tleField{
	{"catalog number", 1, true, func(l string) string { return strings.TrimSpace(l[2:7]) }},
	{"epoch year", 1, true, func(l string) string { return l[18:20] }},
	{"epoch day", 1, false, func(l string) string { return l[20:32] }},
	{"mean motion derivative", 1, false, func(l string) string { return stripTwoSpaces(l[33:43]) }},
	{"mean motion second derivative", 1, false, func(l string) string {
		return stripTwoSpaces(l[44:45] + "." + l[45:50] + "e" + l[50:52])
	}},
	{"drag term", 1, false, func(l string) string {
		return stripTwoSpaces(l[53:54] + "." + l[54:59] + "e" + l[59:61])
	}},
	{"inclination", 2, false, func(l string) string { return stripTwoSpaces(l[8:16]) }},
	{"right ascension", 2, false, func(l string) string { return stripTwoSpaces(l[17:25]) }},
	{"eccentricity", 2, false, func(l string) string { return "." + l[26:33] }},
	{"argument of perigee", 2, false, func(l string) string { return stripTwoSpaces(l[34:42]) }},
	{"mean anomaly", 2, false, func(l string) string { return stripTwoSpaces(l[43:51]) }},
	{"mean motion", 2, false, func(l string) string { return stripTwoSpaces(l[52:63]) }},
}

func stripTwoSpaces(s string) string { return strings.Replace(s, " ", "", 2) }

// tleChecksum computes the modulo-10 checksum character: digits count at face
// value, minus signs count as one, everything else is ignored.
func tleChecksum(s string) byte {
	sum := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return byte('0' + sum%10)
}

// SubSatellitePoint propagates the satellite described by tle to t with SGP4
// and returns the point on the sphere directly beneath it. This is the
// natural centre of the satellite's coverage footprint.
func SubSatellitePoint(tle TLE, t time.Time) (model.CoveragePoint, error) {
	sat := satellite.TLEToSat(tle.Line1, tle.Line2, satellite.GravityWGS72)

	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	v := Vec3{X: posECEF.X, Y: posECEF.Y, Z: posECEF.Z}
	if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z) || v.Norm() < EarthRadiusKm {
		return model.CoveragePoint{}, fmt.Errorf("%w: SGP4 propagation to %s failed", ErrInvalidTLE, t.Format(time.RFC3339))
	}
	return v.SubPoint(), nil
}
