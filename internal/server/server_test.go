package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lazypower/rapport/internal/engine"
	"github.com/lazypower/rapport/internal/relationship"
	"github.com/lazypower/rapport/internal/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, engine.New(db), "test")
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, "GET", "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["db"] != true {
		t.Errorf("db = %v, want true", resp["db"])
	}
}

func TestEnsureAndGetRelationship(t *testing.T) {
	s := testServer(t)

	// Missing pair 404s on plain GET.
	rec := doRequest(t, s, "GET", "/api/relationships/user-1/nova", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 before create", rec.Code)
	}

	// PUT creates.
	rec = doRequest(t, s, "PUT", "/api/relationships/user-1/nova", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var snap relationship.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.UserID != "user-1" || snap.CharacterID != "nova" {
		t.Errorf("pair = %s/%s, want user-1/nova", snap.UserID, snap.CharacterID)
	}
	if snap.Tier != relationship.TierAcquaintance {
		t.Errorf("tier = %s, want acquaintance", snap.Tier)
	}

	// GET now finds it.
	rec = doRequest(t, s, "GET", "/api/relationships/user-1/nova", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 after create", rec.Code)
	}
}

func TestApplyEvent(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, "POST", "/api/relationships/user-1/nova/events",
		`{"source":"chat","event_type":"positive","sentiment":"positive","intensity":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var snap relationship.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Score != 3.5 {
		t.Errorf("score = %v, want 3.5", snap.Score)
	}
	if snap.TotalInteractions != 1 {
		t.Errorf("total_interactions = %d, want 1", snap.TotalInteractions)
	}
}

func TestApplyEventValidation(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, "POST", "/api/relationships/user-1/nova/events",
		`{"event_type":"positive","sentiment":"positive","intensity":99}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for out-of-range intensity", rec.Code)
	}

	rec = doRequest(t, s, "POST", "/api/relationships/user-1/nova/events", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for bad json", rec.Code)
	}
}

func TestListEventsAndInsights(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, "POST", "/api/relationships/user-1/nova/events",
		`{"event_type":"positive","sentiment":"positive","intensity":6,"user_mood":"happy","action_type":"shares news"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("apply event: %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, "GET", "/api/relationships/user-1/nova/events", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list events: %d", rec.Code)
	}
	var events struct {
		Events []store.EventLogEntry `json:"events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events.Events) != 1 {
		t.Errorf("events = %d, want 1", len(events.Events))
	}

	rec = doRequest(t, s, "GET", "/api/relationships/user-1/nova/insights", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list insights: %d", rec.Code)
	}
	var insights struct {
		Insights []store.PatternInsight `json:"insights"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &insights); err != nil {
		t.Fatalf("decode insights: %v", err)
	}
	if len(insights.Insights) != 1 {
		t.Errorf("insights = %d, want 1", len(insights.Insights))
	}
	if insights.Insights[0].Key != "happy_shares_news" {
		t.Errorf("key = %q, want happy_shares_news", insights.Insights[0].Key)
	}
}

func TestHandleContext(t *testing.T) {
	s := testServer(t)

	doRequest(t, s, "POST", "/api/relationships/user-1/nova/events",
		`{"event_type":"positive","sentiment":"positive","intensity":8}`)

	rec := doRequest(t, s, "GET", "/api/relationships/user-1/nova/context", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp["context"], "acquaintance") {
		t.Errorf("context missing tier: %q", resp["context"])
	}
	if !strings.Contains(resp["context"], "early") {
		t.Errorf("context missing familiarity stage: %q", resp["context"])
	}
}

func TestRunDecay(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, "POST", "/api/decay/run", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["decayed"] != 0 {
		t.Errorf("decayed = %d, want 0 on an empty store", resp["decayed"])
	}
}
