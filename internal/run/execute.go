package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalsfoundry/satcov/core"
	"github.com/signalsfoundry/satcov/internal/cli"
	"github.com/signalsfoundry/satcov/internal/config"
	"github.com/signalsfoundry/satcov/internal/logging"
	"github.com/signalsfoundry/satcov/internal/observability"
	"github.com/signalsfoundry/satcov/overlay"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitUsage      = 2
	ExitValidation = 3
	ExitInputFile  = 4
	ExitLoad       = 5
	ExitOutput     = 6
)

// ExitCode maps an error returned by Parse or the Driver to a process exit
// code.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, cli.ErrHelp):
		return ExitOK
	case errors.Is(err, cli.ErrUsage):
		return ExitUsage
	case errors.Is(err, cli.ErrValidation):
		return ExitValidation
	case errors.Is(err, cli.ErrInputFile):
		return ExitInputFile
	case errors.Is(err, core.ErrLoad):
		return ExitLoad
	case errors.Is(err, overlay.ErrOutput):
		return ExitOutput
	default:
		return ExitFailure
	}
}

func outcome(err error) string {
	switch ExitCode(err) {
	case ExitOK:
		return "ok"
	case ExitUsage:
		return "usage"
	case ExitValidation:
		return "validation"
	case ExitInputFile:
		return "input_file"
	case ExitLoad:
		return "load"
	case ExitOutput:
		return "output"
	default:
		return "error"
	}
}

// showsUsage reports whether the help manual should follow the error.
func showsUsage(err error) bool {
	return errors.Is(err, cli.ErrUsage) || errors.Is(err, cli.ErrValidation) || errors.Is(err, cli.ErrInputFile)
}

// Execute runs one command invocation end to end and returns its exit code.
// args excludes the program name.
func Execute(ctx context.Context, v cli.Variant, args []string, stdout, stderr io.Writer) int {
	started := time.Now()
	opts, err := cli.Parse(v, args)
	parsed := time.Since(started)
	if errors.Is(err, cli.ErrHelp) {
		fmt.Fprintf(stdout, "\nHELP MANUAL\n\n%s", cli.Usage(v))
		return ExitOK
	}
	if err != nil {
		reportError(stderr, v, err)
		return ExitCode(err)
	}

	cfg, err := config.Load(config.Options{Path: opts.ConfigPath})
	if err != nil {
		reportError(stderr, v, err)
		return ExitCode(err)
	}

	logCfg := cfg.LoggerConfig()
	logCfg.Output = stderr
	ctx, log := logging.WithRunLogger(ctx, logging.New(logCfg).With(logging.String("command", v.String())))

	tracerCfg := cfg.TracerConfig()
	tracerCfg.Output = stderr
	shutdown, err := observability.InitTracing(ctx, tracerCfg, log)
	if err != nil {
		reportError(stderr, v, err)
		return ExitCode(err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	metrics, err := observability.NewRunCollector(prometheus.NewRegistry())
	if err != nil {
		log.Warn(ctx, "metrics disabled", logging.Err(err))
	}
	metrics.ObservePhase(observability.PhaseValidate, parsed)

	d := &Driver{
		Stdout:      stdout,
		Log:         log,
		Metrics:     metrics,
		LabelFields: cfg.Regions.LabelFields,
		Styles:      cfg.Styles(),
	}
	switch v {
	case cli.Overlay:
		_, err = d.Overlay(ctx, opts)
	default:
		_, err = d.Filter(ctx, opts)
	}

	metrics.CountRun(v.String(), outcome(err))
	if werr := metrics.WriteTextfile(cfg.Metrics.TextfilePath); werr != nil {
		log.Warn(ctx, "metrics textfile not written", logging.Err(werr))
	}

	if err != nil {
		log.Error(ctx, "run failed", logging.Err(err), logging.Int("exit_code", ExitCode(err)))
		reportError(stderr, v, err)
		return ExitCode(err)
	}
	log.Info(ctx, "run finished", logging.Any("duration", time.Since(started)))
	return ExitOK
}

func reportError(w io.Writer, v cli.Variant, err error) {
	fmt.Fprintf(w, "\nERROR: %v\n", err)
	if showsUsage(err) {
		fmt.Fprintf(w, "\n%s", cli.Usage(v))
	}
}
