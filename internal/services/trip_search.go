package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"rideshare/internal/domain"
	"rideshare/internal/domain/models"
	"rideshare/internal/repositories"
	"rideshare/internal/utils"
)

// DefaultSearchRadiusKm applies when a coordinate search omits radius.
const DefaultSearchRadiusKm = 10.0

// SearchTripsQuery holds the raw query parameters; nil means the parameter was absent.
type SearchTripsQuery struct {
	UserID         *string
	DestinationLat *string
	DestinationLng *string
	ArrivalLat     *string
	ArrivalLng     *string
	Radius         *string
}

type geoPoint struct {
	Lat float64
	Lng float64
}

// tripSearch is a validated SearchTripsQuery.
type tripSearch struct {
	UserID      *int64
	Destination *geoPoint
	Arrival     *geoPoint
	RadiusKm    float64
}

func (s tripSearch) hasLocation() bool {
	return s.Destination != nil || s.Arrival != nil
}

func parseFloatField(raw *string, field string) (*float64, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := utils.ParseNumber(*raw)
	if err != nil {
		return nil, domain.ValidationError{Field: field, Msg: "must be a valid number", Err: err}
	}
	return &v, nil
}

type coordField struct {
	raw   *string
	name  string
	limit float64
	dst   **float64
}

// validate checks a query before anything touches the store.
func (q SearchTripsQuery) validate() (tripSearch, error) {
	hasDestLat, hasDestLng := q.DestinationLat != nil, q.DestinationLng != nil
	hasArrLat, hasArrLng := q.ArrivalLat != nil, q.ArrivalLng != nil
	hasDest := hasDestLat && hasDestLng
	hasArr := hasArrLat && hasArrLng

	if q.UserID == nil && !hasDest && !hasArr {
		return tripSearch{}, domain.ValidationError{Msg: "provide user_id or destination and/or arrival coordinates"}
	}
	if hasDestLat != hasDestLng {
		return tripSearch{}, domain.ValidationError{Field: "destination", Msg: "destination_lat and destination_lng must be provided together"}
	}
	if hasArrLat != hasArrLng {
		return tripSearch{}, domain.ValidationError{Field: "arrival", Msg: "arrival_lat and arrival_lng must be provided together"}
	}

	var out tripSearch
	var destLat, destLng, arrLat, arrLng *float64
	fields := []coordField{
		{q.DestinationLat, "destination_lat", 90, &destLat},
		{q.DestinationLng, "destination_lng", 180, &destLng},
		{q.ArrivalLat, "arrival_lat", 90, &arrLat},
		{q.ArrivalLng, "arrival_lng", 180, &arrLng},
	}
	for _, f := range fields {
		v, err := parseFloatField(f.raw, f.name)
		if err != nil {
			return tripSearch{}, err
		}
		if v != nil && math.Abs(*v) > f.limit {
			return tripSearch{}, domain.ValidationError{Field: f.name, Msg: fmt.Sprintf("must be between -%g and %g", f.limit, f.limit)}
		}
		*f.dst = v
	}

	if q.UserID != nil {
		id, err := strconv.ParseInt(strings.TrimSpace(*q.UserID), 10, 64)
		if err != nil {
			return tripSearch{}, domain.ValidationError{Field: "user_id", Msg: "must be a valid number", Err: err}
		}
		out.UserID = &id
	}

	radius, err := parseFloatField(q.Radius, "radius")
	if err != nil {
		return tripSearch{}, err
	}

	if destLat != nil && destLng != nil {
		out.Destination = &geoPoint{Lat: *destLat, Lng: *destLng}
	}
	if arrLat != nil && arrLng != nil {
		out.Arrival = &geoPoint{Lat: *arrLat, Lng: *arrLng}
	}

	if out.hasLocation() {
		out.RadiusKm = DefaultSearchRadiusKm
		if radius != nil {
			out.RadiusKm = *radius
		}
		if out.RadiusKm <= 0 {
			return tripSearch{}, domain.ValidationError{Field: "radius", Msg: "must be greater than 0"}
		}
	}
	return out, nil
}

// TripSearchService finds trips by owner and/or proximity of their endpoints.
type TripSearchService struct {
	TripRepo  repositories.TripRepository
	RequestID string
}

// Search returns every trip matching all supplied filters. With coordinate filters
// the result is ordered by ascending distance (the smaller of the two when both are
// given); otherwise trips keep id order.
func (s TripSearchService) Search(ctx context.Context, q SearchTripsQuery) ([]models.TripMatch, error) {
	search, err := q.validate()
	if err != nil {
		return nil, err
	}

	filter := models.TripFilter{UserID: search.UserID}
	if p := search.Destination; p != nil {
		filter.Boxes = append(filter.Boxes, toCoordBox(models.DeparturePoint, utils.BoundingBox(p.Lat, p.Lng, search.RadiusKm)))
	}
	if p := search.Arrival; p != nil {
		filter.Boxes = append(filter.Boxes, toCoordBox(models.ArrivalPoint, utils.BoundingBox(p.Lat, p.Lng, search.RadiusKm)))
	}

	trips, err := s.TripRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.InternalError{Msg: "trip search failed", Err: err}
	}

	matches := make([]models.TripMatch, 0, len(trips))
	for _, t := range trips {
		m, ok := matchTrip(t, search)
		if ok {
			matches = append(matches, m)
		}
	}

	if search.hasLocation() {
		sort.SliceStable(matches, func(i, j int) bool {
			di, dj := rankDistance(matches[i]), rankDistance(matches[j])
			if di != dj {
				return di < dj
			}
			return matches[i].ID < matches[j].ID
		})
	}

	utils.LogEvent(s.RequestID, "trips", "search", "ok", "candidates", len(trips), "matches", len(matches))
	return matches, nil
}

// matchTrip applies the exact radius checks. Trips whose stored coordinates do not
// parse can never satisfy a distance constraint.
func matchTrip(t models.Trip, search tripSearch) (models.TripMatch, bool) {
	m := models.TripMatch{Trip: t}
	if p := search.Destination; p != nil {
		lat, lng, err := utils.ParseLatLng(t.DepLat, t.DepLng)
		if err != nil {
			return m, false
		}
		d := utils.SphericalDistanceKm(p.Lat, p.Lng, lat, lng)
		if d > search.RadiusKm {
			return m, false
		}
		m.DestinationDistanceKm = &d
	}
	if p := search.Arrival; p != nil {
		lat, lng, err := utils.ParseLatLng(t.ArrLat, t.ArrLng)
		if err != nil {
			return m, false
		}
		d := utils.SphericalDistanceKm(p.Lat, p.Lng, lat, lng)
		if d > search.RadiusKm {
			return m, false
		}
		m.ArrivalDistanceKm = &d
	}
	return m, true
}

func rankDistance(m models.TripMatch) float64 {
	switch {
	case m.DestinationDistanceKm != nil && m.ArrivalDistanceKm != nil:
		return math.Min(*m.DestinationDistanceKm, *m.ArrivalDistanceKm)
	case m.DestinationDistanceKm != nil:
		return *m.DestinationDistanceKm
	case m.ArrivalDistanceKm != nil:
		return *m.ArrivalDistanceKm
	default:
		return 0
	}
}

func toCoordBox(p models.TripPoint, b utils.Box) models.CoordBox {
	return models.CoordBox{
		Point:  p,
		MinLat: b.MinLat,
		MaxLat: b.MaxLat,
		MinLng: b.MinLng,
		MaxLng: b.MaxLng,
		AnyLng: b.AnyLng,
	}
}
