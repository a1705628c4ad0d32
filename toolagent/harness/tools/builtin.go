package tools

import (
	"time"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
)

// Dependencies carries what the built-in tools need.
type Dependencies struct {
	WeatherBaseURL string
	WeatherTimeout time.Duration
	Now            func() time.Time
	// Retriever is optional; without it the retriever tool is not offered.
	Retriever *RetrieverTool
}

// Builtin returns the built-in tools in registration order.
func Builtin(deps Dependencies) []ports.Tool {
	tools := []ports.Tool{
		NewWeatherTool(deps.WeatherBaseURL, deps.WeatherTimeout),
		NewClockTool(deps.Now),
	}
	if deps.Retriever != nil {
		tools = append(tools, deps.Retriever)
	}
	return tools
}
