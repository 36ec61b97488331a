package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusKm is the mean radius used by every distance computation.
const EarthRadiusKm = 6371.0

// boxMarginDeg widens bounding boxes so float rounding never drops a point that the
// exact distance check would keep.
const boxMarginDeg = 1e-6

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// SphericalDistanceKm returns the great-circle distance between two points using the
// spherical law of cosines.
func SphericalDistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dLambda := toRadians(lng2 - lng1)

	c := math.Sin(phi1)*math.Sin(phi2) + math.Cos(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	// rounding can push identical points slightly past 1
	c = math.Max(-1, math.Min(1, c))
	return EarthRadiusKm * math.Acos(c)
}

// Box is a lat/lng rectangle enclosing a circle on the sphere.
type Box struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
	AnyLng bool
}

// BoundingBox returns a rectangle containing every point within radiusKm of
// (lat, lng). When the circle reaches a pole or crosses the antimeridian the
// longitude bounds are dropped (AnyLng).
func BoundingBox(lat, lng, radiusKm float64) Box {
	r := radiusKm / EarthRadiusKm
	if r >= math.Pi {
		return Box{MinLat: -90, MaxLat: 90, MinLng: -180, MaxLng: 180, AnyLng: true}
	}

	dLat := toDegrees(r)
	box := Box{
		MinLat: lat - dLat - boxMarginDeg,
		MaxLat: lat + dLat + boxMarginDeg,
		MinLng: -180,
		MaxLng: 180,
		AnyLng: true,
	}
	if box.MinLat <= -90 || box.MaxLat >= 90 {
		box.MinLat = math.Max(box.MinLat, -90)
		box.MaxLat = math.Min(box.MaxLat, 90)
		return box
	}

	ratio := math.Sin(r) / math.Cos(toRadians(lat))
	if ratio >= 1 {
		return box
	}
	dLng := toDegrees(math.Asin(ratio))
	minLng := lng - dLng - boxMarginDeg
	maxLng := lng + dLng + boxMarginDeg
	if minLng < -180 || maxLng > 180 {
		return box
	}
	box.MinLng = minLng
	box.MaxLng = maxLng
	box.AnyLng = false
	return box
}

// ParseNumber parses a decimal string, rejecting NaN and infinities.
func ParseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return v, nil
}

// ParseLatLng parses a coordinate pair and checks its range.
func ParseLatLng(lat, lng string) (float64, float64, error) {
	la, err := ParseNumber(lat)
	if err != nil {
		return 0, 0, fmt.Errorf("latitude: %w", err)
	}
	lo, err := ParseNumber(lng)
	if err != nil {
		return 0, 0, fmt.Errorf("longitude: %w", err)
	}
	if la < -90 || la > 90 {
		return 0, 0, fmt.Errorf("latitude out of range")
	}
	if lo < -180 || lo > 180 {
		return 0, 0, fmt.Errorf("longitude out of range")
	}
	return la, lo, nil
}
