// Package cli turns command-line arguments into validated run options. Both
// commands share one parser; they differ only in their positional arguments.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/signalsfoundry/satcov/model"
	"github.com/signalsfoundry/satcov/timectrl"
)

// Variant selects which command's arguments are parsed.
type Variant int

const (
	// Filter counts tracked objects inside the footprint.
	Filter Variant = iota
	// Overlay writes the KML overlay of regions and covered objects.
	Overlay
)

// String returns the command name of the variant.
func (v Variant) String() string {
	if v == Overlay {
		return "covkml"
	}
	return "covfilter"
}

func (v Variant) positionals() []string {
	if v == Overlay {
		return []string{"geojson_file", "flights_file", "output_name"}
	}
	return []string{"flights_file"}
}

// Options are the validated inputs of one run.
type Options struct {
	Variant Variant

	RegionsPath string // Overlay only
	FlightsPath string
	OutputPath  string // Overlay only

	Instant timectrl.Instant
	Radius  float64
	Unit    model.Unit

	// Center is set from -lat/-lon unless TLEPath is given, in which case the
	// driver derives it from the orbit at Date + Instant.
	Center  model.CoveragePoint
	TLEPath string
	Date    time.Time

	ConfigPath string
}

// FromTLE reports whether the footprint centre comes from a TLE.
func (o Options) FromTLE() bool { return o.TLEPath != "" }

// Coverage returns the footprint for center.
func (o Options) Coverage(center model.CoveragePoint) model.CoverageSpec {
	return model.CoverageSpec{Center: center, Radius: o.Radius, Unit: o.Unit}
}

// rawArgs are the arguments as typed, before any validation.
type rawArgs struct {
	positionals []string
	set         map[string]bool

	lat, lon, time, rad string
	nm, km, help        bool
	tle, date, config   string
}

// Parse reads args (without the program name) for variant and validates
// them in a fixed order: argument shape, numeric values, the time instant,
// input files, then the output name. Flags and positional arguments may be
// interleaved. ErrHelp is returned alone when -h is present.
func Parse(v Variant, args []string) (Options, error) {
	raw, err := scan(v, args)
	if err != nil {
		return Options{}, err
	}
	if raw.help {
		return Options{Variant: v}, ErrHelp
	}
	if err := checkShape(v, raw); err != nil {
		return Options{}, err
	}

	opts, err := validateValues(v, raw)
	if err != nil {
		return Options{}, err
	}

	switch v {
	case Overlay:
		opts.RegionsPath = raw.positionals[0]
		opts.FlightsPath = raw.positionals[1]
		opts.OutputPath = raw.positionals[2]
	default:
		opts.FlightsPath = raw.positionals[0]
	}
	opts.TLEPath = raw.tle
	opts.ConfigPath = raw.config

	if err := checkFiles(opts); err != nil {
		return Options{}, err
	}
	if v == Overlay {
		if err := checkOutputName(opts.OutputPath); err != nil {
			return Options{}, err
		}
	}
	return opts, nil
}

func scan(v Variant, args []string) (rawArgs, error) {
	fs := flag.NewFlagSet(v.String(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	var raw rawArgs
	fs.StringVar(&raw.lat, "lat", "", "satellite latitude")
	fs.StringVar(&raw.lon, "lon", "", "satellite longitude")
	fs.StringVar(&raw.time, "time", "", "time instant HH:MM:SS")
	fs.StringVar(&raw.rad, "rad", "", "coverage radius")
	fs.BoolVar(&raw.nm, "nm", false, "radius in nautical miles")
	fs.BoolVar(&raw.km, "km", false, "radius in kilometers")
	fs.BoolVar(&raw.help, "h", false, "show the help manual")
	fs.StringVar(&raw.tle, "tle", "", "two-line element set file")
	fs.StringVar(&raw.date, "date", "", "date YYYY-MM-DD")
	fs.StringVar(&raw.config, "config", "", "settings file")

	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				raw.help = true
				return raw, nil
			}
			return rawArgs{}, fmt.Errorf("%w: %v", ErrUsage, err)
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		raw.positionals = append(raw.positionals, rest[0])
		rest = rest[1:]
	}

	raw.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { raw.set[f.Name] = true })
	return raw, nil
}

func checkShape(v Variant, raw rawArgs) error {
	want := v.positionals()
	if len(raw.positionals) != len(want) {
		return fmt.Errorf("%w: expected %d positional argument(s) <%s>, got %d",
			ErrUsage, len(want), strings.Join(want, "> <"), len(raw.positionals))
	}

	required := []string{"time", "rad"}
	if raw.set["tle"] {
		if raw.set["lat"] || raw.set["lon"] {
			return fmt.Errorf("%w: -tle replaces -lat and -lon; give one or the other", ErrUsage)
		}
		required = append(required, "date")
	} else {
		required = append([]string{"lat", "lon"}, required...)
		if raw.set["date"] {
			return fmt.Errorf("%w: -date is only used together with -tle", ErrUsage)
		}
	}
	for _, name := range required {
		if !raw.set[name] {
			return fmt.Errorf("%w: -%s argument not found", ErrUsage, name)
		}
	}
	return nil
}

func checkOutputName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: output name is empty", ErrUsage)
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("%w: output name %q is not valid", ErrUsage, name)
	}
	return nil
}
