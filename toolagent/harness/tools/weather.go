package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
)

// DefaultWeatherBaseURL is the public Open-Meteo API.
const DefaultWeatherBaseURL = "https://api.open-meteo.com"

// WeatherTool fetches current conditions from the Open-Meteo forecast API.
type WeatherTool struct {
	baseURL string
	client  *http.Client
}

// NewWeatherTool creates the tool. An empty baseURL uses Open-Meteo and a
// zero timeout defaults to 15s.
func NewWeatherTool(baseURL string, timeout time.Duration) *WeatherTool {
	if baseURL == "" {
		baseURL = DefaultWeatherBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WeatherTool{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (t *WeatherTool) Spec() ports.ToolSpec {
	return ports.ToolSpec{
		Name:        "get_weather",
		Description: "Retrieves current weather data for a given set of geographic coordinates (latitude, longitude).",
		Parameters: map[string]string{
			"latitude":  "float - The latitude of the location.",
			"longitude": "float - The longitude of the location.",
		},
	}
}

// Invoke returns the "current" object of the forecast response as is.
func (t *WeatherTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	lat, err := floatArg(args, "latitude")
	if err != nil {
		return nil, err
	}
	lon, err := floatArg(args, "longitude")
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", "temperature_2m,wind_speed_10m")
	q.Set("hourly", "temperature_2m,relative_humidity_2m,wind_speed_10m")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/v1/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("weather API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data struct {
		Current map[string]any `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}
	if data.Current == nil {
		return nil, fmt.Errorf("weather response has no current conditions")
	}

	return data.Current, nil
}

var _ ports.Tool = (*WeatherTool)(nil)
