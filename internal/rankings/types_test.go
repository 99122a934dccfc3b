package rankings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) *PowerRankingsResponse {
	t.Helper()
	var r PowerRankingsResponse
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	return &r
}

func TestFit_RejectsWrongLength(t *testing.T) {
	var f Fit
	err := json.Unmarshal([]byte(`[1, 2]`), &f)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	err = json.Unmarshal([]byte(`[1, 2, 3, 4]`), &f)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestFit_At(t *testing.T) {
	f := Fit{2, 1, 0.9}
	assert.Equal(t, 2.0, f.Slope())
	assert.Equal(t, 1.0, f.Intercept())
	assert.Equal(t, 0.9, f.R2())
	assert.Equal(t, 21.0, f.At(10))
}

func TestValidate_AcceptsResponseWithoutTotals(t *testing.T) {
	r := decode(t, `{"teams":["A","B"],"wins":[1,0],"losses":[0,1],"ties":[0,0],"scores":[0.6,0.4]}`)
	assert.NoError(t, r.Validate())
	assert.Empty(t, r.Correlations())
}

func TestValidate_EmptyResponse(t *testing.T) {
	r := decode(t, `{"teams":[],"wins":[],"losses":[],"ties":[],"scores":[]}`)
	assert.NoError(t, r.Validate())
	assert.Empty(t, r.Standings())
}

func TestValidate_TotalsWithoutFit(t *testing.T) {
	r := decode(t, `{"teams":["A"],"wins":[1],"losses":[0],"ties":[0],"scores":[1],"points_for":[20]}`)
	assert.ErrorIs(t, r.Validate(), ErrMalformedResponse)
}

func TestValidate_TotalsWrongLength(t *testing.T) {
	r := decode(t, `{"teams":["A","B"],"wins":[1,0],"losses":[0,1],"ties":[0,0],"scores":[0.6,0.4],
		"net_points":[3],"net_points_fit":[1,0,1]}`)
	assert.ErrorIs(t, r.Validate(), ErrMalformedResponse)
}

func TestStandings(t *testing.T) {
	r := decode(t, `{"teams":["Lions","Bears"],"wins":[9,4],"losses":[2,6],"ties":[0,1],"scores":[0.12345,0.05]}`)
	require.NoError(t, r.Validate())

	rows := r.Standings()
	require.Len(t, rows, 2)
	assert.Equal(t, " 1. Lions (9-2) (0.1235)", rows[0].String())
	assert.Equal(t, " 2. Bears (4-6-1) (0.0500)", rows[1].String())
	assert.Equal(t, "4-6-1", rows[1].Record())
}

func TestStandings_TwoDigitRanks(t *testing.T) {
	s := Standing{Rank: 12, Team: "Jets", Wins: 5, Losses: 12, Score: 0.02}
	assert.Equal(t, "12. Jets (5-12) (0.0200)", s.String())
}

func TestCorrelations_Order(t *testing.T) {
	r := decode(t, sampleResponse)
	require.NoError(t, r.Validate())

	cs := r.Correlations()
	require.Len(t, cs, 3)
	assert.Equal(t, "Points For", cs[0].Label)
	assert.Equal(t, "Points Against", cs[1].Label)
	assert.Equal(t, "Net Points", cs[2].Label)
	assert.Equal(t, []float64{222, 59, -142}, cs[2].Values)
	assert.InDelta(t, 0.77, cs[2].Fit.R2(), 1e-12)
}
