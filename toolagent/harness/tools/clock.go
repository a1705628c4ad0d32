package tools

import (
	"context"
	"time"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
)

// TimeLayout is the format of the clock tool's output.
const TimeLayout = "2006-01-02 15:04:05"

// ClockTool reports the current local time.
type ClockTool struct {
	now func() time.Time
}

// NewClockTool creates a clock. A nil now uses time.Now.
func NewClockTool(now func() time.Time) *ClockTool {
	if now == nil {
		now = time.Now
	}
	return &ClockTool{now: now}
}

func (t *ClockTool) Spec() ports.ToolSpec {
	return ports.ToolSpec{
		Name:        "get_time_now",
		Description: "Returns the current local time in YYYY-MM-DD HH:MM:SS format.",
		Parameters:  map[string]string{},
	}
}

// Invoke returns {"time": "YYYY-MM-DD HH:MM:SS"}.
func (t *ClockTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	return map[string]string{"time": t.now().Local().Format(TimeLayout)}, nil
}

var _ ports.Tool = (*ClockTool)(nil)
