package hermes

const (
	SubjectRunAll = "rankings.run.>"

	StreamName   = "RANKINGS_EVENTS"
	StreamMaxAge = "168h" // 7 days
)

func SubjectRunCompleted(runID string) string { return "rankings.run." + runID + ".completed" }
func SubjectRunRejected(runID string) string  { return "rankings.run." + runID + ".rejected" }
func SubjectRunFailed(runID string) string    { return "rankings.run." + runID + ".failed" }
