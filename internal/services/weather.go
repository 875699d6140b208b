package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/kdigolf/caddie/internal/models"
	"github.com/kdigolf/caddie/pkg/config"
)

// WeatherConditions is the normalized view of an upstream forecast.
type WeatherConditions struct {
	TemperatureC float64 `json:"temperature_c"`
	WindSpeedKmh float64 `json:"wind_speed_kmh"`
	WindDirDeg   float64 `json:"wind_dir_deg"`
	Conditions   string  `json:"conditions"`
	Humidity     float64 `json:"humidity"`
}

// WeatherAdvisory is the course-condition note attached to a
// recommendation. Impact multiplies expected shot difficulty; 1.0
// means no adjustment.
type WeatherAdvisory struct {
	Conditions WeatherConditions `json:"conditions"`
	Impact     float64           `json:"impact"`
	Note       string            `json:"note,omitempty"`
}

const weatherCacheTTL = 15 * time.Minute

// WeatherService fetches conditions from the configured provider
// behind a circuit breaker. Advisory degrades to nil when the
// provider is down or unconfigured; a recommendation never fails on
// weather.
type WeatherService struct {
	httpClient *http.Client
	cache      *CacheService
	logger     *logrus.Logger
	apiKey     string
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
}

func NewWeatherService(cfg *config.Config, cache *CacheService, logger *logrus.Logger) *WeatherService {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weather-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > uint32(cfg.CircuitBreakerThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Info("Weather API circuit breaker state changed")
		},
	})

	return &WeatherService{
		httpClient: &http.Client{Timeout: cfg.ExternalAPITimeout},
		cache:      cache,
		logger:     logger,
		apiKey:     cfg.WeatherAPIKey,
		baseURL:    cfg.WeatherAPIURL,
		breaker:    cb,
	}
}

// GetConditions returns current conditions near a point, cached on a
// coarse grid so nearby players share a forecast.
func (ws *WeatherService) GetConditions(ctx context.Context, pos models.Point) (*WeatherConditions, error) {
	if ws.apiKey == "" || ws.baseURL == "" {
		return nil, errors.New("weather provider not configured")
	}

	key := WeatherCacheKey(pos.Latitude, pos.Longitude)
	if ws.cache != nil {
		var cached WeatherConditions
		if err := ws.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	result, err := ws.breaker.Execute(func() (interface{}, error) {
		return ws.fetch(ctx, pos)
	})
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	conditions := result.(*WeatherConditions)

	if ws.cache != nil {
		if err := ws.cache.Set(ctx, key, conditions, weatherCacheTTL); err != nil {
			ws.logger.WithError(err).Debug("Failed to cache weather conditions")
		}
	}
	return conditions, nil
}

func (ws *WeatherService) fetch(ctx context.Context, pos models.Point) (*WeatherConditions, error) {
	endpoint := fmt.Sprintf("%s/current.json?key=%s&q=%s", ws.baseURL, ws.apiKey,
		url.QueryEscape(fmt.Sprintf("%.4f,%.4f", pos.Latitude, pos.Longitude)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := ws.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("weather API returned %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Current struct {
			TempC     float64 `json:"temp_c"`
			WindKph   float64 `json:"wind_kph"`
			WindDeg   float64 `json:"wind_degree"`
			Humidity  float64 `json:"humidity"`
			Condition struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	return &WeatherConditions{
		TemperatureC: payload.Current.TempC,
		WindSpeedKmh: payload.Current.WindKph,
		WindDirDeg:   payload.Current.WindDeg,
		Conditions:   payload.Current.Condition.Text,
		Humidity:     payload.Current.Humidity,
	}, nil
}

// Advisory fetches conditions and scores their golf impact. Returns
// nil when weather is unavailable.
func (ws *WeatherService) Advisory(ctx context.Context, pos models.Point) *WeatherAdvisory {
	conditions, err := ws.GetConditions(ctx, pos)
	if err != nil {
		ws.logger.WithError(err).Debug("Weather advisory unavailable")
		return nil
	}
	impact, note := GolfImpact(*conditions)
	return &WeatherAdvisory{Conditions: *conditions, Impact: impact, Note: note}
}

// GolfImpact converts conditions into a difficulty multiplier. Wind
// dominates; rain and temperature extremes add smaller factors.
func GolfImpact(c WeatherConditions) (float64, string) {
	impact := 1.0
	note := ""

	switch {
	case c.WindSpeedKmh > 40:
		impact *= 1.08
		note = "very strong wind, club up and keep the ball low"
	case c.WindSpeedKmh > 30:
		impact *= 1.06
		note = "strong wind, expect significant carry changes"
	case c.WindSpeedKmh > 23:
		impact *= 1.04
		note = "moderate wind, allow for drift"
	case c.WindSpeedKmh > 15:
		impact *= 1.02
		note = "light wind"
	}

	switch c.Conditions {
	case "rain", "heavy_rain", "Heavy rain", "Moderate rain":
		impact *= 1.05
		if note == "" {
			note = "wet conditions, expect less roll"
		}
	case "light_rain", "drizzle", "Light rain", "Patchy light drizzle":
		impact *= 1.02
	}

	if c.TemperatureC < 7 || c.TemperatureC > 35 {
		impact *= 1.03
	}

	return impact, note
}
