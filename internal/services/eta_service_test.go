package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"rideshare/internal/domain"
)

func TestETAServiceEstimate(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":32500,"duration":3900}]}`))
	}))
	defer srv.Close()

	svc := ETAService{BaseURL: srv.URL, Client: srv.Client()}
	res, err := svc.Estimate(context.Background(), 52.406822, -1.519693, 52.486244, -1.890401)
	if err != nil {
		t.Fatalf("Estimate error: %v", err)
	}
	if gotPath != "/route/v1/driving/-1.519693,52.406822;-1.890401,52.486244" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if res.DistanceKm != 32.5 || res.ETAMinutes != 65 || res.ETAFormatted != "1h 5m" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestETAServiceNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
	}))
	defer srv.Close()

	svc := ETAService{BaseURL: srv.URL, Client: srv.Client()}
	if _, err := svc.Estimate(context.Background(), 0, 0, 1, 1); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestETAServiceUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := ETAService{BaseURL: srv.URL, Client: srv.Client()}
	if _, err := svc.Estimate(context.Background(), 0, 0, 1, 1); !domain.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestETAServiceRejectsBadCoordinates(t *testing.T) {
	svc := ETAService{BaseURL: "http://unused.invalid"}
	if _, err := svc.Estimate(context.Background(), 95, 0, 1, 1); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
