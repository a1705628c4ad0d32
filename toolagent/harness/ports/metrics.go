package harnessports

import "time"

// Metrics records orchestration activity.
type Metrics interface {
	ObserveRun(outcome string, d time.Duration)
	ObserveModelCall(phase string, d time.Duration, err error)
	ObserveToolCall(tool, outcome string, d time.Duration)
}
