package grading

import "errors"

// errJudgeNotConfigured is reported as feedback when no judgment service has
// been wired in; evaluation still completes with a zero score.
var errJudgeNotConfigured = errors.New("judgment service is not configured")
