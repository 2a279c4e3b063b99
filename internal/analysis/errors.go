package analysis

import "errors"

var (
	// ErrEmptyResume is returned when the resume text is empty or blank.
	ErrEmptyResume = errors.New("resume text is empty")
	// ErrAllMethodsFailed is the terminal error of the pipeline. It always
	// wraps the reason the last method could not produce a report.
	ErrAllMethodsFailed = errors.New("all analysis methods failed")
)
