package pipeline

import "github.com/spigell/resume-scorer/internal/analysis"

// State is a stage of a single analysis request.
type State int

const (
	NotStarted State = iota
	TryPrimary
	TryFallback
	Enrich
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case TryPrimary:
		return "try_primary"
	case TryFallback:
		return "try_fallback"
	case Enrich:
		return "enrich"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// outcome is the tagged result of a base analysis stage: either report or
// err is set, never both.
type outcome struct {
	report *analysis.Report
	err    error
}

func ok(report *analysis.Report) outcome { return outcome{report: report} }

func fail(err error) outcome { return outcome{err: err} }

func (o outcome) succeeded() bool { return o.err == nil && o.report != nil }
