package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"media-library/internal/startup"
)

func TestHealthCheck(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(New(store, &fakeProvider{}, fakeFormats{{Name: "admin"}}))

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != statusHealthy || !resp.Ready || resp.Formats != 1 || resp.Database != "ok" {
		t.Errorf("unexpected response %+v", resp)
	}

	store.pingErr = errors.New("database is locked")
	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("degraded status = %d", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != statusDegraded || resp.Ready || resp.Database != "database is locked" {
		t.Errorf("unexpected degraded response %+v", resp)
	}
}

func TestLivenessCheck(t *testing.T) {
	router := newTestRouter(New(newFakeStore(), &fakeProvider{}, fakeFormats{}))

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/livez", nil))
	if rec.Code != http.StatusOK || rec.Body.Len() == 0 {
		t.Errorf("GET status = %d, body %q", rec.Code, rec.Body.String())
	}

	rec = do(t, router, httptest.NewRequest(http.MethodHead, "/livez", nil))
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("HEAD status = %d, body %q", rec.Code, rec.Body.String())
	}
}

func TestReadinessCheck(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(New(store, &fakeProvider{}, fakeFormats{}))

	if rec := do(t, router, httptest.NewRequest(http.MethodGet, "/readyz", nil)); rec.Code != http.StatusOK {
		t.Errorf("ready status = %d", rec.Code)
	}
	store.pingErr = errors.New("closed")
	if rec := do(t, router, httptest.NewRequest(http.MethodGet, "/readyz", nil)); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("not ready status = %d", rec.Code)
	}
}

func TestGetVersion(t *testing.T) {
	router := newTestRouter(New(newFakeStore(), &fakeProvider{}, fakeFormats{}))
	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/version", nil))

	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q", cc)
	}
	var info startup.BuildInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info.Version != startup.Version {
		t.Errorf("Version = %q, want %q", info.Version, startup.Version)
	}
}
