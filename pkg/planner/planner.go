// Package planner orchestrates the calculation pipeline: tariff resolution,
// weekly curve scheduling, storage sizing and the economic projection.
package planner

import (
	"errors"
	"fmt"

	"github.com/pvece/pvece/pkg/sizing"
)

// Input errors; the HTTP boundary maps them to client errors.
var (
	// ErrMissingInput marks a required configuration that is absent.
	ErrMissingInput = errors.New("missing required input")
	// ErrInvalidInput marks a present but unusable configuration.
	ErrInvalidInput = errors.New("invalid input")
)

func missingf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMissingInput, fmt.Sprintf(format, args...))
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Planner runs calculations against a fixed parameter set and the standard
// module tables. It is stateless and safe for concurrent use.
type Planner struct {
	params *Params
	tables *sizing.Tables
}

// New returns a Planner using the given parameters and standard tables.
func New(params *Params, tables *sizing.Tables) *Planner {
	return &Planner{params: params, tables: tables}
}
