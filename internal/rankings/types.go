package rankings

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedResponse = errors.New("malformed ranking response")

// PowerRankingsRequest is the algorithm configuration posted to the backend.
type PowerRankingsRequest struct {
	P                     float64   `json:"p"`
	BMode                 int       `json:"b_mode"`
	AdjacencyMode         int       `json:"adjacency_mode"`
	BWinsPower            float64   `json:"b_wins_power"`
	AdjacencyWinPoints    float64   `json:"adjacency_win_points"`
	AdjacencyTiePoints    float64   `json:"adjacency_tie_points"`
	AdjacencyMarginPower  float64   `json:"adjacency_margin_power"`
	AdjacencyMarginTiers  []float64 `json:"adjacency_margin_tiers"`
	AdjacencyMarginValues []float64 `json:"adjacency_margin_values"`
}

// PowerRankingsResponse holds parallel per-team sequences, ordered by rank.
type PowerRankingsResponse struct {
	Teams            []string  `json:"teams"`
	Wins             []int     `json:"wins"`
	Losses           []int     `json:"losses"`
	Ties             []int     `json:"ties"`
	Scores           []float64 `json:"scores"`
	PointsFor        []float64 `json:"points_for,omitempty"`
	PointsAgainst    []float64 `json:"points_against,omitempty"`
	NetPoints        []float64 `json:"net_points,omitempty"`
	PointsForFit     *Fit      `json:"points_for_fit,omitempty"`
	PointsAgainstFit *Fit      `json:"points_against_fit,omitempty"`
	NetPointsFit     *Fit      `json:"net_points_fit,omitempty"`
}

// Fit is a least-squares line descriptor: slope, intercept, R².
type Fit [3]float64

func (f Fit) Slope() float64     { return f[0] }
func (f Fit) Intercept() float64 { return f[1] }
func (f Fit) R2() float64        { return f[2] }

// At evaluates the fitted line.
func (f Fit) At(x float64) float64 { return f.Slope()*x + f.Intercept() }

func (f *Fit) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("%w: fit has %d elements, want 3", ErrMalformedResponse, len(raw))
	}
	copy(f[:], raw)
	return nil
}

// Validate checks that the parallel sequences line up with teams.
func (r *PowerRankingsResponse) Validate() error {
	n := len(r.Teams)
	perTeam := []struct {
		name string
		len  int
	}{
		{"wins", len(r.Wins)},
		{"losses", len(r.Losses)},
		{"ties", len(r.Ties)},
		{"scores", len(r.Scores)},
	}
	for _, s := range perTeam {
		if s.len != n {
			return fmt.Errorf("%w: %s has %d entries for %d teams", ErrMalformedResponse, s.name, s.len, n)
		}
	}

	for _, c := range r.totals() {
		if len(c.values) == 0 {
			continue
		}
		if len(c.values) != n {
			return fmt.Errorf("%w: %s has %d entries for %d teams", ErrMalformedResponse, c.key, len(c.values), n)
		}
		if c.fit == nil {
			return fmt.Errorf("%w: %s present without %s_fit", ErrMalformedResponse, c.key, c.key)
		}
	}
	return nil
}

type total struct {
	key    string
	label  string
	values []float64
	fit    *Fit
}

func (r *PowerRankingsResponse) totals() []total {
	return []total{
		{"points_for", "Points For", r.PointsFor, r.PointsForFit},
		{"points_against", "Points Against", r.PointsAgainst, r.PointsAgainstFit},
		{"net_points", "Net Points", r.NetPoints, r.NetPointsFit},
	}
}

// Standing is one row of the ranking list.
type Standing struct {
	Rank   int     `json:"rank"`
	Team   string  `json:"team"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	Ties   int     `json:"ties"`
	Score  float64 `json:"score"`
}

// Record renders W-L, or W-L-T when the team has ties.
func (s Standing) Record() string {
	if s.Ties > 0 {
		return fmt.Sprintf("%d-%d-%d", s.Wins, s.Losses, s.Ties)
	}
	return fmt.Sprintf("%d-%d", s.Wins, s.Losses)
}

func (s Standing) String() string {
	return fmt.Sprintf("%2d. %s (%s) (%.4f)", s.Rank, s.Team, s.Record(), s.Score)
}

// Standings assumes a validated response.
func (r *PowerRankingsResponse) Standings() []Standing {
	out := make([]Standing, len(r.Teams))
	for i, team := range r.Teams {
		out[i] = Standing{
			Rank:   i + 1,
			Team:   team,
			Wins:   r.Wins[i],
			Losses: r.Losses[i],
			Ties:   r.Ties[i],
			Score:  r.Scores[i],
		}
	}
	return out
}

// Correlation pairs a season total with its fit against the ranking scores.
type Correlation struct {
	Key    string
	Label  string
	Values []float64
	Fit    Fit
}

// Correlations returns the season totals present in the response, in
// points for / points against / net points order.
func (r *PowerRankingsResponse) Correlations() []Correlation {
	var out []Correlation
	for _, c := range r.totals() {
		if len(c.values) == 0 || c.fit == nil {
			continue
		}
		out = append(out, Correlation{Key: c.key, Label: c.label, Values: c.values, Fit: *c.fit})
	}
	return out
}
