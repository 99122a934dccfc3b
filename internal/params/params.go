// Package params models the power-ranking parameter form: its defaults, the
// transitions the form applies when a selector changes, validation, and the
// payload sent to the ranking backend.
package params

import (
	"strconv"

	"github.com/MikeSquared-Agency/Playground/internal/rankings"
)

type AdjacencyMode int

const (
	AdjacencyWinLoss AdjacencyMode = iota
	AdjacencyMargin
	AdjacencyMarginTiers
)

func (m AdjacencyMode) String() string {
	switch m {
	case AdjacencyWinLoss:
		return "Simple win-loss"
	case AdjacencyMargin:
		return "Raw margin of victory"
	case AdjacencyMarginTiers:
		return "Margin of victory tiers"
	default:
		return "unknown"
	}
}

func (m AdjacencyMode) Valid() bool { return m >= AdjacencyWinLoss && m <= AdjacencyMarginTiers }

type BMode int

const (
	BUniform BMode = iota
	BScaledByWins
)

func (m BMode) String() string {
	switch m {
	case BUniform:
		return "Uniform"
	case BScaledByWins:
		return "Scaled by wins"
	default:
		return "unknown"
	}
}

func (m BMode) Valid() bool { return m == BUniform || m == BScaledByWins }

var (
	AdjacencyModes = []AdjacencyMode{AdjacencyWinLoss, AdjacencyMargin, AdjacencyMarginTiers}
	BModes         = []BMode{BUniform, BScaledByWins}
)

const (
	DefaultP                    = 0.15
	DefaultBWinsPower           = 1.0
	DefaultAdjacencyWinPoints   = 1.0
	DefaultAdjacencyTiePoints   = 0.5
	DefaultAdjacencyMarginPower = 1.0
	DefaultNumTiers             = 2
)

// Params is the full form state for one algorithm run.
type Params struct {
	P                    float64
	BMode                BMode
	AdjacencyMode        AdjacencyMode
	BWinsPower           float64
	AdjacencyWinPoints   float64
	AdjacencyTiePoints   float64
	AdjacencyMarginPower float64

	// NumTiers counts margin-of-victory intervals, including the tie bucket
	// and the open-ended top bucket.
	NumTiers     int
	MarginTiers  []float64
	MarginValues []float64

	// Display values echo exactly what the user typed.
	MarginTiersDisplay  []string
	MarginValuesDisplay []string
}

func Default() Params {
	p := Params{
		P:             DefaultP,
		BMode:         BUniform,
		AdjacencyMode: AdjacencyWinLoss,
	}
	p.ResetB()
	p.ResetAdjacency()
	return p
}

// ResetB runs whenever the B matrix mode changes.
func (p *Params) ResetB() {
	p.BWinsPower = DefaultBWinsPower
}

// ResetAdjacency runs whenever the adjacency mode changes.
func (p *Params) ResetAdjacency() {
	p.AdjacencyWinPoints = DefaultAdjacencyWinPoints
	p.AdjacencyTiePoints = DefaultAdjacencyTiePoints
	p.AdjacencyMarginPower = DefaultAdjacencyMarginPower
	p.SetNumTiers(DefaultNumTiers)
}

// SetNumTiers resizes the tier editor. Every bound and value resets to zero.
func (p *Params) SetNumTiers(n int) {
	p.NumTiers = n
	bounds, values := 0, 2
	if n > 2 {
		bounds, values = n-2, n
	}
	p.MarginTiers = make([]float64, bounds)
	p.MarginTiersDisplay = filled(bounds, "0")
	p.MarginValues = make([]float64, values)
	p.MarginValuesDisplay = filled(values, "0")
}

// SetTier stores the upper bound of interval i+1.
func (p *Params) SetTier(i int, raw string) error {
	if i < 0 || i >= len(p.MarginTiers) {
		return errIndex("tier", i)
	}
	v, err := parseNumber("adjacencyMarginTiers", raw)
	if err != nil {
		return err
	}
	p.MarginTiersDisplay[i] = raw
	p.MarginTiers[i] = v
	return nil
}

// SetValue stores the adjacency weight of interval i.
func (p *Params) SetValue(i int, raw string) error {
	if i < 0 || i >= len(p.MarginValues) {
		return errIndex("value", i)
	}
	v, err := parseNumber("adjacencyMarginValues", raw)
	if err != nil {
		return err
	}
	p.MarginValuesDisplay[i] = raw
	p.MarginValues[i] = v
	return nil
}

// Request builds the backend payload. All fields are sent regardless of mode.
func (p Params) Request() rankings.PowerRankingsRequest {
	return rankings.PowerRankingsRequest{
		P:                     p.P,
		BMode:                 int(p.BMode),
		AdjacencyMode:         int(p.AdjacencyMode),
		BWinsPower:            p.BWinsPower,
		AdjacencyWinPoints:    p.AdjacencyWinPoints,
		AdjacencyTiePoints:    p.AdjacencyTiePoints,
		AdjacencyMarginPower:  p.AdjacencyMarginPower,
		AdjacencyMarginTiers:  append([]float64{}, p.MarginTiers...),
		AdjacencyMarginValues: append([]float64{}, p.MarginValues...),
	}
}

// FormatNumber renders a float the way a number input shows it.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func filled(n int, s string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}
