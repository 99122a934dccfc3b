package params

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidP            = errors.New("p out of range")
	ErrNegativeWinPoints   = errors.New("negative win points")
	ErrNegativeTiePoints   = errors.New("negative tie points")
	ErrTiersNotMonotonic   = errors.New("margin tiers not non-decreasing")
	ErrNegativeMarginValue = errors.New("negative margin value")
	ErrNotANumber          = errors.New("not a number")
	ErrUnknownMode         = errors.New("unknown mode")
	ErrTierIndex           = errors.New("tier index out of range")
)

// ValidationError blocks a submission before the backend is called. Message
// is shown to the user verbatim.
type ValidationError struct {
	Kind    error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.Kind }

func invalid(kind error, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: "Invalid input: " + fmt.Sprintf(format, args...)}
}

// Validate reports the first rule the params break, in form order.
func (p Params) Validate() error {
	if !p.AdjacencyMode.Valid() {
		return invalid(ErrUnknownMode, "adjacency mode %d is not supported", int(p.AdjacencyMode))
	}
	if !p.BMode.Valid() {
		return invalid(ErrUnknownMode, "B matrix mode %d is not supported", int(p.BMode))
	}
	if !(p.P > 0 && p.P < 1) {
		return invalid(ErrInvalidP, "p must be a value between 0 and 1")
	}
	if p.AdjacencyWinPoints < 0 {
		return invalid(ErrNegativeWinPoints, "adjacencyWinPoints must be non-negative")
	}
	if p.AdjacencyTiePoints < 0 {
		return invalid(ErrNegativeTiePoints, "adjacencyTiePoints must be non-negative")
	}

	maxTier := 0.0
	for _, t := range p.MarginTiers {
		if t < maxTier {
			return invalid(ErrTiersNotMonotonic, "adjacencyMarginTiers must be non-decreasing")
		}
		maxTier = t
	}
	for _, v := range p.MarginValues {
		if v < 0 {
			return invalid(ErrNegativeMarginValue, "adjacencyMarginValues must be non-negative")
		}
	}
	return nil
}

// parseNumber follows number-input semantics: a blank field reads as zero.
func parseNumber(field, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalid(ErrNotANumber, "%s must be a number, got %q", field, raw)
	}
	return v, nil
}

func errIndex(what string, i int) error {
	return fmt.Errorf("%w: %s %d", ErrTierIndex, what, i)
}
