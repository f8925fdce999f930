// Package run wires validated options to the loaders, the classifier and the
// overlay writer, reporting progress the way operators expect on the console.
package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/satcov/core"
	"github.com/signalsfoundry/satcov/internal/cli"
	"github.com/signalsfoundry/satcov/internal/logging"
	"github.com/signalsfoundry/satcov/internal/observability"
	"github.com/signalsfoundry/satcov/kb"
	"github.com/signalsfoundry/satcov/model"
	"github.com/signalsfoundry/satcov/overlay"
)

// Driver executes one run. Stdout receives the operator-facing console
// output; diagnostics go through Log.
type Driver struct {
	Stdout      io.Writer
	Log         logging.Logger
	Metrics     *observability.RunCollector
	LabelFields []string
	Styles      overlay.Styles
}

// OverlaySummary describes a written overlay document.
type OverlaySummary struct {
	Path     string
	Regions  int
	Markers  int
	Accepted int
}

func (d *Driver) out() io.Writer {
	if d.Stdout == nil {
		return io.Discard
	}
	return d.Stdout
}

func (d *Driver) log() logging.Logger {
	if d.Log == nil {
		return logging.Noop()
	}
	return d.Log
}

// Filter counts the tracked objects of the requested time slice that lie
// inside the footprint and prints the count.
func (d *Driver) Filter(ctx context.Context, opts cli.Options) (int, error) {
	spec, err := d.prepare(ctx, opts)
	if err != nil {
		return 0, err
	}

	fmt.Fprintln(d.out(), "\nLoading file...")
	table, err := d.loadTable(ctx, opts.FlightsPath)
	if err != nil {
		return 0, err
	}

	result, err := d.classify(ctx, table, opts, spec)
	if err != nil {
		return 0, err
	}

	count := result.Count()
	fmt.Fprintf(d.out(), "\nFlights within satellite coverage: %d\n", count)
	return count, nil
}

// Overlay writes a KML document with every region and a marker for each
// tracked object inside the footprint.
func (d *Driver) Overlay(ctx context.Context, opts cli.Options) (OverlaySummary, error) {
	spec, err := d.prepare(ctx, opts)
	if err != nil {
		return OverlaySummary{}, err
	}

	fmt.Fprintln(d.out(), "\nLoading geojson file...")
	regions, err := d.loadRegions(ctx, opts.RegionsPath)
	if err != nil {
		return OverlaySummary{}, err
	}

	fmt.Fprintln(d.out(), "\nLoading csv file...")
	table, err := d.loadTable(ctx, opts.FlightsPath)
	if err != nil {
		return OverlaySummary{}, err
	}

	result, err := d.classify(ctx, table, opts, spec)
	if err != nil {
		return OverlaySummary{}, err
	}

	fmt.Fprintln(d.out(), "\nStarting KML file creation...")
	summary, err := d.render(ctx, opts.OutputPath, regions, result.AcceptedRecords())
	if err != nil {
		return OverlaySummary{}, err
	}
	summary.Accepted = result.Count()

	fmt.Fprintf(d.out(), "\nKML file %s written: %d regions, %d flights within satellite coverage\n",
		summary.Path, summary.Regions, summary.Markers)
	return summary, nil
}

// prepare resolves the footprint and echoes the inputs.
func (d *Driver) prepare(ctx context.Context, opts cli.Options) (model.CoverageSpec, error) {
	if err := ctx.Err(); err != nil {
		return model.CoverageSpec{}, err
	}

	center := opts.Center
	var tle core.TLE
	if opts.FromTLE() {
		var err error
		tle, center, err = d.centerFromTLE(ctx, opts)
		if err != nil {
			return model.CoverageSpec{}, err
		}
	}
	spec := opts.Coverage(center)

	w := d.out()
	fmt.Fprintln(w, "\nUser input values:")
	fmt.Fprintf(w, "  Satellite time:      %s\n", opts.Instant)
	if opts.FromTLE() {
		fmt.Fprintf(w, "  Satellite date:      %s\n", opts.Date.Format("2006-01-02"))
		name := tle.Name
		if name == "" {
			name = tle.Line1[2:7]
		}
		fmt.Fprintf(w, "  Satellite TLE:       %s\n", name)
	}
	fmt.Fprintf(w, "  Satellite radius:    %s %s\n", formatNumber(spec.Radius), spec.Unit)
	fmt.Fprintf(w, "  Satellite latitude:  %s\n", formatNumber(spec.Center.Latitude))
	fmt.Fprintf(w, "  Satellite longitude: %s\n", formatNumber(spec.Center.Longitude))

	d.log().Debug(ctx, "coverage footprint resolved",
		logging.String("instant", opts.Instant.String()),
		logging.Float64("latitude", spec.Center.Latitude),
		logging.Float64("longitude", spec.Center.Longitude),
		logging.Float64("radius", spec.Radius),
		logging.String("unit", spec.Unit.String()),
	)
	return spec, nil
}

func (d *Driver) centerFromTLE(ctx context.Context, opts cli.Options) (core.TLE, model.CoveragePoint, error) {
	ctx, span := observability.StartPhase(ctx, observability.PhaseLoad, attribute.String("satcov.input", "tle"))
	var err error
	defer func() { observability.EndSpan(span, err) }()

	data, err := os.ReadFile(opts.TLEPath)
	if err != nil {
		err = fmt.Errorf("%w: read %s: %v", cli.ErrInputFile, opts.TLEPath, err)
		return core.TLE{}, model.CoveragePoint{}, err
	}
	tle, err := core.ParseTLE(string(data))
	if err != nil {
		err = fmt.Errorf("%w: %s: %v", cli.ErrInputFile, opts.TLEPath, err)
		return core.TLE{}, model.CoveragePoint{}, err
	}
	at := opts.Instant.On(opts.Date)
	center, err := core.SubSatellitePoint(tle, at)
	if err != nil {
		err = fmt.Errorf("%w: %s: %v", cli.ErrValidation, opts.TLEPath, err)
		return core.TLE{}, model.CoveragePoint{}, err
	}
	d.log().Info(ctx, "footprint centre propagated from TLE",
		logging.String("satellite", tle.Name),
		logging.String("at", at.Format(time.RFC3339)),
	)
	return tle, center, nil
}

func (d *Driver) loadTable(ctx context.Context, path string) (*kb.TrackTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, span := observability.StartPhase(ctx, observability.PhaseLoad, attribute.String("satcov.input", "csv"))
	start := time.Now()
	var err error
	defer func() {
		d.Metrics.ObservePhase(observability.PhaseLoad, time.Since(start))
		observability.EndSpan(span, err)
	}()

	f, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("%w: open %s: %v", cli.ErrInputFile, path, err)
		return nil, err
	}
	defer f.Close()

	table, err := kb.LoadCSV(f)
	if err != nil {
		err = fmt.Errorf("%s: %w", path, err)
		return nil, err
	}
	d.Metrics.SetLoaded(table.Len())
	span.SetAttributes(attribute.Int("satcov.records", table.Len()))
	d.log().Info(ctx, "track table loaded",
		logging.String("path", path),
		logging.Int("records", table.Len()),
		logging.Int("instants", len(table.Instants())),
	)
	return table, nil
}

func (d *Driver) loadRegions(ctx context.Context, path string) ([]model.Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, span := observability.StartPhase(ctx, observability.PhaseLoad, attribute.String("satcov.input", "geojson"))
	start := time.Now()
	var err error
	defer func() {
		d.Metrics.ObservePhase(observability.PhaseLoad, time.Since(start))
		observability.EndSpan(span, err)
	}()

	f, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("%w: open %s: %v", cli.ErrInputFile, path, err)
		return nil, err
	}
	defer f.Close()

	regions, err := core.LoadRegions(f, d.LabelFields)
	if err != nil {
		err = fmt.Errorf("%s: %w", path, err)
		return nil, err
	}
	d.log().Info(ctx, "regions loaded", logging.String("path", path), logging.Int("regions", len(regions)))
	return regions, nil
}

func (d *Driver) classify(ctx context.Context, table *kb.TrackTable, opts cli.Options, spec model.CoverageSpec) (model.AcceptanceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, span := observability.StartPhase(ctx, observability.PhaseClassify,
		attribute.String("satcov.instant", opts.Instant.String()),
	)
	start := time.Now()
	defer func() {
		d.Metrics.ObservePhase(observability.PhaseClassify, time.Since(start))
		observability.EndSpan(span, nil)
	}()

	slice := table.Slice(opts.Instant.String())
	result := core.Classify(slice, spec)

	d.Metrics.SetClassification(len(slice), result.Count())
	span.SetAttributes(
		attribute.Int("satcov.slice", len(slice)),
		attribute.Int("satcov.accepted", result.Count()),
	)
	if len(slice) == 0 {
		d.log().Warn(ctx, "no records at the requested time instant", logging.String("instant", opts.Instant.String()))
	}
	d.log().Info(ctx, "slice classified",
		logging.Int("slice", len(slice)),
		logging.Int("accepted", result.Count()),
	)
	return result, nil
}

func (d *Driver) render(ctx context.Context, path string, regions []model.Region, accepted []model.TrackedObjectRecord) (OverlaySummary, error) {
	if err := ctx.Err(); err != nil {
		return OverlaySummary{}, err
	}
	ctx, span := observability.StartPhase(ctx, observability.PhaseRender)
	start := time.Now()
	var err error
	defer func() {
		d.Metrics.ObservePhase(observability.PhaseRender, time.Since(start))
		observability.EndSpan(span, err)
	}()

	doc := overlay.NewDocument(path, d.Styles)
	doc.AddRegions(regions)
	doc.AddMarkers(accepted)
	if err = overlay.WriteFile(path, doc); err != nil {
		return OverlaySummary{}, err
	}

	summary := OverlaySummary{Path: path, Regions: len(regions), Markers: len(accepted)}
	d.Metrics.SetOverlay(summary.Regions, summary.Markers)
	d.log().Info(ctx, "overlay written",
		logging.String("path", path),
		logging.Int("regions", summary.Regions),
		logging.Int("markers", summary.Markers),
	)
	return summary, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
