package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Playground/internal/hermes"
	"github.com/MikeSquared-Agency/Playground/internal/params"
	"github.com/MikeSquared-Agency/Playground/internal/rankings"
)

const (
	SourcePage = "page"
	SourceAPI  = "api"
)

// publishTimeout bounds how long a run waits for the event stream.
const publishTimeout = 2 * time.Second

const (
	outcomeCompleted = "completed"
	outcomeRejected  = "rejected"
	outcomeFailed    = "failed"
)

// Runner executes one algorithm run: validate, call the backend once, then
// record the outcome.
type Runner struct {
	client rankings.Client
	hermes hermes.Client
	logger *slog.Logger
	now    func() time.Time
}

func NewRunner(c rankings.Client, h hermes.Client, logger *slog.Logger) *Runner {
	return &Runner{client: c, hermes: h, logger: logger, now: time.Now}
}

// Run returns a *params.ValidationError without contacting the backend when
// p is invalid.
func (rn *Runner) Run(ctx context.Context, source string, p params.Params) (string, *rankings.PowerRankingsResponse, error) {
	if err := p.Validate(); err != nil {
		return rn.Reject(ctx, source, p, err), nil, err
	}

	runID := uuid.New().String()
	req := p.Request()
	log := rn.logger.With("run_id", runID, "source", source,
		"adjacency_mode", int(p.AdjacencyMode), "b_mode", int(p.BMode))

	start := rn.now()
	resp, err := rn.client.PowerRankings(ctx, req)
	elapsed := rn.now().Sub(start)
	backendDuration.Observe(elapsed.Seconds())

	if err != nil {
		runsTotal.WithLabelValues(outcomeFailed).Inc()
		log.Warn("run failed", "error", err, "duration_ms", elapsed.Milliseconds())
		evt := hermes.RunFailedEvent{
			RunID:     runID,
			Source:    source,
			Params:    req,
			Error:     err.Error(),
			Timestamp: rn.now().UTC(),
		}
		var be *rankings.BackendError
		if errors.As(err, &be) {
			evt.StatusCode = be.StatusCode
		}
		rn.publish(ctx, hermes.SubjectRunFailed(runID), evt)
		return runID, nil, err
	}

	runsTotal.WithLabelValues(outcomeCompleted).Inc()
	log.Info("run completed", "teams", len(resp.Teams), "duration_ms", elapsed.Milliseconds())
	evt := hermes.RunCompletedEvent{
		RunID:      runID,
		Source:     source,
		Params:     req,
		Teams:      len(resp.Teams),
		DurationMs: elapsed.Milliseconds(),
		Timestamp:  rn.now().UTC(),
	}
	if len(resp.Teams) > 0 {
		evt.TopTeam = resp.Teams[0]
	}
	rn.publish(ctx, hermes.SubjectRunCompleted(runID), evt)
	return runID, resp, nil
}

// Reject records a submission that never reached the backend, whether it
// failed validation or could not be decoded at all.
func (rn *Runner) Reject(ctx context.Context, source string, p params.Params, reason error) string {
	runID := uuid.New().String()
	runsTotal.WithLabelValues(outcomeRejected).Inc()
	rn.logger.Info("run rejected", "run_id", runID, "source", source, "reason", reason.Error())
	rn.publish(ctx, hermes.SubjectRunRejected(runID), hermes.RunRejectedEvent{
		RunID:     runID,
		Source:    source,
		Params:    p.Request(),
		Reason:    reason.Error(),
		Timestamp: rn.now().UTC(),
	})
	return runID
}

func (rn *Runner) publish(ctx context.Context, subject string, evt interface{}) {
	if rn.hermes == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := rn.hermes.Publish(ctx, subject, evt); err != nil {
		rn.logger.Warn("failed to publish run event", "subject", subject, "error", err)
	}
}
