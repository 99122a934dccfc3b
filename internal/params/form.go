package params

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/Playground/internal/rankings"
)

// Form field names. Tier bounds and values repeat in document order.
const (
	FieldOp                   = "op"
	FieldP                    = "p"
	FieldBMode                = "b_mode"
	FieldAdjacencyMode        = "adjacency_mode"
	FieldBWinsPower           = "b_wins_power"
	FieldAdjacencyWinPoints   = "adjacency_win_points"
	FieldAdjacencyTiePoints   = "adjacency_tie_points"
	FieldAdjacencyMarginPower = "adjacency_margin_power"
	FieldNumTiers             = "adjacency_num_tier"
	FieldMarginTiers          = "adjacency_margin_tiers"
	FieldMarginValues         = "adjacency_margin_values"
)

// MaxTiers bounds the tier editor so a typo cannot allocate a huge form.
const MaxTiers = 64

var ErrTierCount = errors.New("tier count mismatch")

// Op names the form transition a submission asks for.
type Op string

const (
	OpRun           Op = "run"
	OpAdjacencyMode Op = "adjacency_mode"
	OpBMode         Op = "b_mode"
	OpNumTiers      Op = "num_tiers"
)

func ParseOp(s string) Op {
	switch Op(s) {
	case OpAdjacencyMode, OpBMode, OpNumTiers:
		return Op(s)
	default:
		return OpRun
	}
}

// ApplyChange applies the reset that follows a selector change.
func (p *Params) ApplyChange(op Op) {
	switch op {
	case OpAdjacencyMode:
		p.ResetAdjacency()
	case OpBMode:
		p.ResetB()
	case OpNumTiers:
		p.SetNumTiers(p.NumTiers)
	}
}

// FromForm decodes a submitted parameter form. Fields the current mode does
// not render keep their defaults.
func FromForm(form url.Values) (Params, error) {
	p := Default()

	var err error
	if p.P, err = floatField(form, FieldP, p.P); err != nil {
		return p, err
	}
	bMode, err := intField(form, FieldBMode, int(p.BMode))
	if err != nil {
		return p, err
	}
	p.BMode = BMode(bMode)
	adjMode, err := intField(form, FieldAdjacencyMode, int(p.AdjacencyMode))
	if err != nil {
		return p, err
	}
	p.AdjacencyMode = AdjacencyMode(adjMode)

	if p.BWinsPower, err = floatField(form, FieldBWinsPower, p.BWinsPower); err != nil {
		return p, err
	}
	if p.AdjacencyWinPoints, err = floatField(form, FieldAdjacencyWinPoints, p.AdjacencyWinPoints); err != nil {
		return p, err
	}
	if p.AdjacencyTiePoints, err = floatField(form, FieldAdjacencyTiePoints, p.AdjacencyTiePoints); err != nil {
		return p, err
	}
	if p.AdjacencyMarginPower, err = floatField(form, FieldAdjacencyMarginPower, p.AdjacencyMarginPower); err != nil {
		return p, err
	}

	numTiers, err := intField(form, FieldNumTiers, DefaultNumTiers)
	if err != nil {
		return p, err
	}
	if numTiers > MaxTiers {
		return p, invalid(ErrTierCount, "at most %d margin of victory intervals are supported", MaxTiers)
	}
	p.SetNumTiers(numTiers)

	tiers := form[FieldMarginTiers]
	for i := 0; i < len(tiers) && i < len(p.MarginTiers); i++ {
		if err := p.SetTier(i, tiers[i]); err != nil {
			return p, err
		}
	}
	values := form[FieldMarginValues]
	for i := 0; i < len(values) && i < len(p.MarginValues); i++ {
		if err := p.SetValue(i, values[i]); err != nil {
			return p, err
		}
	}
	return p, nil
}

// Input is the JSON body accepted by the API. It is the backend payload plus
// an optional interval count; without one the count follows the values.
type Input struct {
	rankings.PowerRankingsRequest
	NumTiers *int `json:"adjacency_num_tier,omitempty"`
}

func FromInput(in Input) (Params, error) {
	n := len(in.AdjacencyMarginValues)
	if in.NumTiers != nil {
		n = *in.NumTiers
	}
	if n > MaxTiers {
		return Params{}, invalid(ErrTierCount, "at most %d margin of victory intervals are supported", MaxTiers)
	}

	p := Params{
		P:                    in.P,
		BMode:                BMode(in.BMode),
		AdjacencyMode:        AdjacencyMode(in.AdjacencyMode),
		BWinsPower:           in.BWinsPower,
		AdjacencyWinPoints:   in.AdjacencyWinPoints,
		AdjacencyTiePoints:   in.AdjacencyTiePoints,
		AdjacencyMarginPower: in.AdjacencyMarginPower,
	}
	p.SetNumTiers(n)

	if len(in.AdjacencyMarginTiers) != len(p.MarginTiers) || len(in.AdjacencyMarginValues) != len(p.MarginValues) {
		return p, invalid(ErrTierCount,
			"%d intervals need %d adjacencyMarginTiers and %d adjacencyMarginValues, got %d and %d",
			n, len(p.MarginTiers), len(p.MarginValues), len(in.AdjacencyMarginTiers), len(in.AdjacencyMarginValues))
	}
	for i, v := range in.AdjacencyMarginTiers {
		p.MarginTiers[i] = v
		p.MarginTiersDisplay[i] = FormatNumber(v)
	}
	for i, v := range in.AdjacencyMarginValues {
		p.MarginValues[i] = v
		p.MarginValuesDisplay[i] = FormatNumber(v)
	}
	return p, nil
}

// TierRow is one line of the margin-of-victory editor. Every row edits the
// value of its interval; rows between the tie row and the open-ended row also
// edit the interval's upper bound.
type TierRow struct {
	Index      int
	Tie        bool
	OpenEnded  bool
	Lower      string
	UpperIndex int
	Upper      string
	Value      string
}

func (p Params) TierRows() []TierRow {
	rows := make([]TierRow, len(p.MarginValuesDisplay))
	for i, v := range p.MarginValuesDisplay {
		row := TierRow{Index: i, Value: v, UpperIndex: i - 1}
		switch {
		case i == 0:
			row.Tie = true
		case i-1 == len(p.MarginTiersDisplay):
			row.OpenEnded = true
			row.Lower = p.boundLabel(i - 2)
		case i == 1:
			row.Lower = "0"
			row.Upper = p.MarginTiersDisplay[0]
		default:
			row.Lower = p.boundLabel(i - 2)
			row.Upper = p.MarginTiersDisplay[i-1]
		}
		rows[i] = row
	}
	return rows
}

func (p Params) boundLabel(i int) string {
	if i < 0 || i >= len(p.MarginTiersDisplay) {
		return "0"
	}
	return p.MarginTiersDisplay[i]
}

func floatField(form url.Values, key string, def float64) (float64, error) {
	if _, ok := form[key]; !ok {
		return def, nil
	}
	return parseNumber(key, form.Get(key))
}

func intField(form url.Values, key string, def int) (int, error) {
	if _, ok := form[key]; !ok {
		return def, nil
	}
	s := strings.TrimSpace(form.Get(key))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, invalid(ErrNotANumber, "%s must be a whole number, got %q", key, form.Get(key))
	}
	return n, nil
}

func (op Op) String() string { return string(op) }

// Describe summarises the algorithm choice for logs and events.
func (p Params) Describe() string {
	return fmt.Sprintf("adjacency=%s b=%s p=%s", p.AdjacencyMode, p.BMode, FormatNumber(p.P))
}
