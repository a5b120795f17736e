package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/ride-ledger/internal/ledger"
	"github.com/example/ride-ledger/internal/stream"
)

func newTestServer() (*Server, *time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	core := ledger.New(ledger.WithClock(func() time.Time { return now }))
	s := NewServer(Deps{Core: core, Stream: stream.NewRegistry(logger), Logger: logger})
	return s, &now
}

func do(t *testing.T, s *Server, method, path, principal string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if principal != "" {
		req.Header.Set("X-Principal", principal)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestRideLifecycleOverHTTP(t *testing.T) {
	s, now := newTestServer()

	w := do(t, s, "POST", "/api/v1/rides", "owner", map[string]any{
		"start_place":    "A",
		"destination":    "B",
		"date":           now.Add(time.Hour),
		"price_per_seat": 10,
		"total_seats":    3,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var created struct {
		RideID uint64 `json:"ride_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	ridePath := fmt.Sprintf("/api/v1/rides/%d", created.RideID)

	if w := do(t, s, "POST", ridePath+"/reservations", "alice", map[string]any{"seats": 2, "payment": 20}); w.Code != http.StatusNoContent {
		t.Fatalf("reserve: expected 204, got %d (%s)", w.Code, w.Body.String())
	}
	// only 1 seat left
	if w := do(t, s, "POST", ridePath+"/reservations", "bob", map[string]any{"seats": 2, "payment": 20}); w.Code != http.StatusConflict {
		t.Fatalf("overbook: expected 409, got %d", w.Code)
	}
	if w := do(t, s, "POST", ridePath+"/reservations", "bob", map[string]any{"seats": 1, "payment": 15}); w.Code != http.StatusBadRequest {
		t.Fatalf("payment mismatch: expected 400, got %d", w.Code)
	}

	if w := do(t, s, "POST", ridePath+"/cancel", "alice", nil); w.Code != http.StatusForbidden {
		t.Fatalf("cancel by non-owner: expected 403, got %d", w.Code)
	}
	if w := do(t, s, "POST", ridePath+"/cancel", "owner", nil); w.Code != http.StatusNoContent {
		t.Fatalf("cancel: expected 204, got %d (%s)", w.Code, w.Body.String())
	}

	w = do(t, s, "GET", ridePath, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	var ride struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ride); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ride.State != "cancelled" {
		t.Fatalf("expected cancelled, got %s", ride.State)
	}
}

func TestFinishAndRateOverHTTP(t *testing.T) {
	s, now := newTestServer()

	w := do(t, s, "POST", "/api/v1/rides", "owner", map[string]any{
		"start_place": "A", "destination": "B",
		"date": now.Add(time.Hour), "price_per_seat": 10, "total_seats": 3,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}
	if w := do(t, s, "POST", "/api/v1/rides/0/reservations", "alice", map[string]any{"seats": 2, "payment": 20}); w.Code != http.StatusNoContent {
		t.Fatalf("reserve: expected 204, got %d", w.Code)
	}

	if w := do(t, s, "POST", "/api/v1/rides/0/finish", "owner", nil); w.Code != http.StatusConflict {
		t.Fatalf("finish before date: expected 409, got %d", w.Code)
	}
	*now = now.Add(2 * time.Hour)
	if w := do(t, s, "POST", "/api/v1/rides/0/finish", "owner", nil); w.Code != http.StatusNoContent {
		t.Fatalf("finish: expected 204, got %d (%s)", w.Code, w.Body.String())
	}

	if w := do(t, s, "GET", "/api/v1/ratings/owner", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("no ratings yet: expected 404, got %d", w.Code)
	}
	if w := do(t, s, "POST", "/api/v1/rides/0/ratings", "alice", map[string]any{"stars": 4}); w.Code != http.StatusNoContent {
		t.Fatalf("rate: expected 204, got %d (%s)", w.Code, w.Body.String())
	}
	if w := do(t, s, "POST", "/api/v1/rides/0/ratings", "alice", map[string]any{"stars": 4}); w.Code != http.StatusConflict {
		t.Fatalf("second rating: expected 409, got %d", w.Code)
	}

	w = do(t, s, "GET", "/api/v1/ratings/owner", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("average: expected 200, got %d", w.Code)
	}
	var avg struct {
		AverageX100 int64 `json:"average_x100"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &avg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if avg.AverageX100 != 400 {
		t.Fatalf("expected 400, got %d", avg.AverageX100)
	}
}

func TestMissingPrincipalRejected(t *testing.T) {
	s, now := newTestServer()
	w := do(t, s, "POST", "/api/v1/rides", "", map[string]any{
		"start_place": "A", "destination": "B",
		"date": now.Add(time.Hour), "price_per_seat": 10, "total_seats": 3,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListRidesWindowing(t *testing.T) {
	s, now := newTestServer()
	for i := 0; i < 5; i++ {
		w := do(t, s, "POST", "/api/v1/rides", "owner", map[string]any{
			"start_place": "A", "destination": "B",
			"date": now.Add(time.Hour), "price_per_seat": 10, "total_seats": 3,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create %d: got %d", i, w.Code)
		}
	}
	w := do(t, s, "GET", "/api/v1/rides?offset=1&limit=2", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var out struct {
		Total int `json:"total"`
		Rides []struct {
			ID uint64 `json:"id"`
		} `json:"rides"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Total != 5 || len(out.Rides) != 2 || out.Rides[0].ID != 1 {
		t.Fatalf("unexpected window: %+v", out)
	}
}
