package cli

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/signalsfoundry/satcov/model"
	"github.com/signalsfoundry/satcov/timectrl"
)

// values holds the typed argument values for struct validation. Field order
// fixes the order in which problems are reported.
type values struct {
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
	Radius    float64 `validate:"gt=0"`
	Time      string  `validate:"clocktime"`
	Date      string  `validate:"omitempty,isodate"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("clocktime", func(fl validator.FieldLevel) bool {
		_, err := timectrl.ParseInstant(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := timectrl.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

var fieldMessages = map[string]string{
	"Latitude":  "latitude must be between -90 and 90",
	"Longitude": "longitude must be between -180 and 180",
	"Radius":    "radius must be greater than 0",
	"Time":      "incorrect time format, want HH:MM:SS with hour < 24, minute < 60, second < 60",
	"Date":      "incorrect date format, want YYYY-MM-DD",
}

func validateValues(v Variant, raw rawArgs) (Options, error) {
	opts := Options{Variant: v, Unit: model.NauticalMiles}
	if raw.km {
		opts.Unit = model.Kilometers
	}

	var vals values
	var err error
	if !raw.set["tle"] {
		if vals.Latitude, err = parseNumber("latitude", raw.lat); err != nil {
			return Options{}, err
		}
		if vals.Longitude, err = parseNumber("longitude", raw.lon); err != nil {
			return Options{}, err
		}
	}
	if vals.Radius, err = parseNumber("radius", raw.rad); err != nil {
		return Options{}, err
	}
	vals.Time = raw.time
	vals.Date = raw.date

	if err := validate.Struct(vals); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return Options{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s (got %v)", fieldMessages[fe.Field()], fe.Value()))
		}
		return Options{}, fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
	}

	opts.Center = model.CoveragePoint{Latitude: vals.Latitude, Longitude: vals.Longitude}
	opts.Radius = vals.Radius
	opts.Instant, _ = timectrl.ParseInstant(vals.Time)
	if vals.Date != "" {
		opts.Date, _ = timectrl.ParseDate(vals.Date)
	}
	return opts, nil
}

func parseNumber(name, s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: incorrect %s value %q", ErrValidation, name, s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s must be a finite number, got %q", ErrValidation, name, s)
	}
	return f, nil
}

func checkFiles(opts Options) error {
	if opts.Variant == Overlay {
		if err := checkFile(opts.RegionsPath, ".geojson", "FIR information file must be in geojson format"); err != nil {
			return err
		}
	}
	if err := checkFile(opts.FlightsPath, ".csv", "file with flights information must be in csv format"); err != nil {
		return err
	}
	if opts.TLEPath != "" {
		if err := checkFile(opts.TLEPath, "", ""); err != nil {
			return err
		}
	}
	return nil
}

// checkFile requires path to be an existing regular file whose extension
// is exactly ext (case-sensitive) when ext is set.
func checkFile(path, ext, hint string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s is not a file: %v", ErrInputFile, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInputFile, path)
	}
	if ext != "" && filepath.Ext(path) != ext {
		return fmt.Errorf("%w: incorrect file extension for %s: %s", ErrInputFile, path, hint)
	}
	return nil
}
