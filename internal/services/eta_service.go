package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/utils"
)

const defaultOSRMBaseURL = "http://router.project-osrm.org"

// ETAService asks an OSRM server for the driving route between two points.
type ETAService struct {
	BaseURL   string
	Client    *http.Client
	RequestID string
}

type ETAResult struct {
	DistanceKm   float64 `json:"distanceKm"`
	ETAMinutes   int     `json:"etaMinutes"`
	ETAFormatted string  `json:"etaFormatted"`
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

func (s ETAService) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (s ETAService) baseURL() string {
	if b := strings.TrimRight(strings.TrimSpace(s.BaseURL), "/"); b != "" {
		return b
	}
	return defaultOSRMBaseURL
}

// Estimate returns distance and driving time from (depLat, depLng) to (arrLat, arrLng).
func (s ETAService) Estimate(ctx context.Context, depLat, depLng, arrLat, arrLng float64) (ETAResult, error) {
	for _, c := range []struct {
		field string
		v     float64
		limit float64
	}{
		{"lat1", depLat, 90}, {"lng1", depLng, 180}, {"lat2", arrLat, 90}, {"lng2", arrLng, 180},
	} {
		if math.IsNaN(c.v) || math.Abs(c.v) > c.limit {
			return ETAResult{}, domain.ValidationError{Field: c.field, Msg: "out of range"}
		}
	}

	// OSRM takes lng,lat pairs
	url := fmt.Sprintf("%s/route/v1/driving/%g,%g;%g,%g?overview=false",
		s.baseURL(), depLng, depLat, arrLng, arrLat)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ETAResult{}, domain.InternalError{Msg: "eta request failed", Err: err}
	}
	resp, err := s.client().Do(req)
	if err != nil {
		return ETAResult{}, domain.InternalError{Msg: "routing service unavailable", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ETAResult{}, domain.InternalError{Msg: "routing service unavailable", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return ETAResult{}, domain.InternalError{Msg: "routing service unavailable", Err: fmt.Errorf("osrm status %d", resp.StatusCode)}
	}

	var parsed osrmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ETAResult{}, domain.InternalError{Msg: "routing service returned bad payload", Err: err}
	}
	if len(parsed.Routes) == 0 {
		return ETAResult{}, domain.NotFoundError{Resource: "route"}
	}

	route := parsed.Routes[0]
	minutes := int(math.Round(route.Duration / 60))
	out := ETAResult{
		DistanceKm:   route.Distance / 1000,
		ETAMinutes:   minutes,
		ETAFormatted: utils.FormatDuration(minutes),
	}
	utils.LogEvent(s.RequestID, "misc", "eta", "ok", "distance_km", fmt.Sprintf("%.2f", out.DistanceKm), "minutes", minutes)
	return out, nil
}
