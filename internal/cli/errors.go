package cli

import "errors"

var (
	// ErrHelp is returned when the operator asked for the help manual.
	ErrHelp = errors.New("help requested")
	// ErrUsage marks missing or malformed arguments.
	ErrUsage = errors.New("usage error")
	// ErrValidation marks argument values outside their allowed range or format.
	ErrValidation = errors.New("validation error")
	// ErrInputFile marks input files that are missing, unreadable or of the
	// wrong kind.
	ErrInputFile = errors.New("input file error")
)
