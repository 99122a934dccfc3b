package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/Playground/internal/params"
	"github.com/MikeSquared-Agency/Playground/internal/rankings"
)

const runIDHeader = "X-Run-ID"

// maxRequestBytes caps a JSON submission; the largest legal tier editor is
// far below it.
const maxRequestBytes = 64 << 10

// RankingsHandler is the JSON face of the playground: same validation, same
// backend call, response passed through.
type RankingsHandler struct {
	runner *Runner
}

func NewRankingsHandler(rn *Runner) *RankingsHandler {
	return &RankingsHandler{runner: rn}
}

type RankingsResponse struct {
	RunID string `json:"run_id"`
	*rankings.PowerRankingsResponse
	Standings []rankings.Standing `json:"standings"`
}

type backendErrorResponse struct {
	Error         string `json:"error"`
	BackendStatus int    `json:"backend_status,omitempty"`
	Detail        string `json:"detail,omitempty"`
}

func (h *RankingsHandler) PowerRankings(w http.ResponseWriter, r *http.Request) {
	var in params.Input
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := params.FromInput(in)
	if err != nil {
		w.Header().Set(runIDHeader, h.runner.Reject(r.Context(), SourceAPI, p, err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	runID, resp, err := h.runner.Run(r.Context(), SourceAPI, p)
	w.Header().Set(runIDHeader, runID)
	if err != nil {
		var ve *params.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Message)
			return
		}
		out := backendErrorResponse{Error: "ranking backend request failed"}
		var be *rankings.BackendError
		if errors.As(err, &be) {
			out.BackendStatus = be.StatusCode
			out.Detail = be.Detail
		}
		writeJSON(w, http.StatusBadGateway, out)
		return
	}

	writeJSON(w, http.StatusOK, RankingsResponse{
		RunID:                 runID,
		PowerRankingsResponse: resp,
		Standings:             resp.Standings(),
	})
}
