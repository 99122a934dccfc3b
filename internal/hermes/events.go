package hermes

import (
	"time"

	"github.com/MikeSquared-Agency/Playground/internal/rankings"
)

// Run events carry the exact payload the backend was, or would have been, sent.

type RunCompletedEvent struct {
	RunID      string                        `json:"run_id"`
	Source     string                        `json:"source"`
	Params     rankings.PowerRankingsRequest `json:"params"`
	Teams      int                           `json:"teams"`
	TopTeam    string                        `json:"top_team,omitempty"`
	DurationMs int64                         `json:"duration_ms"`
	Timestamp  time.Time                     `json:"timestamp"`
}

type RunRejectedEvent struct {
	RunID     string                        `json:"run_id"`
	Source    string                        `json:"source"`
	Params    rankings.PowerRankingsRequest `json:"params"`
	Reason    string                        `json:"reason"`
	Timestamp time.Time                     `json:"timestamp"`
}

type RunFailedEvent struct {
	RunID      string                        `json:"run_id"`
	Source     string                        `json:"source"`
	Params     rankings.PowerRankingsRequest `json:"params"`
	Error      string                        `json:"error"`
	StatusCode int                           `json:"status_code,omitempty"`
	Timestamp  time.Time                     `json:"timestamp"`
}
