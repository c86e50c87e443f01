package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"echoguard/internal/analysis"
	"echoguard/internal/records"
	"echoguard/internal/sentiment"
)

type countingNotifier struct {
	calls int
}

func (n *countingNotifier) Notify(_ context.Context, _ records.Record) error {
	n.calls++
	return nil
}

type testEnv struct {
	handler  http.Handler
	repo     *records.FileRepository
	notifier *countingNotifier
	path     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	p := filepath.Join(t.TempDir(), "emotions.json")
	repo, err := records.NewFileRepository(p)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	n := &countingNotifier{}
	svc := analysis.NewService(sentiment.NewLexiconClassifier(), repo, n)
	srv := New(svc, ":0", "")
	srv.now = func() time.Time { return time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC) }
	return &testEnv{handler: srv.Handler(), repo: repo, notifier: n, path: p}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to parse JSON response: %v (%s)", err, rr.Body.String())
	}
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/health", "/api/health"} {
		rr := env.do(t, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: got %d", path, rr.Code)
		}
		body := decode(t, rr)
		if body["status"] != "healthy" || body["message"] == "" || body["timestamp"] != "2025-08-01T12:00:00Z" {
			t.Fatalf("%s: unexpected body %v", path, body)
		}
	}
}

func TestAnalyze_Happy(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/analyze", `{"text": "I am so happy today"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	var resp AnalyzeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Data.Emotion != records.EmotionHappy || resp.Data.IsCrisis {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Analysis.Emotion != resp.Data.Emotion || resp.CrisisAlertSent {
		t.Fatalf("analysis summary mismatch: %+v", resp)
	}
	if env.notifier.calls != 0 {
		t.Fatalf("notifier should not be called")
	}
}

func TestAnalyze_Crisis(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/api/analyze", `{"text": "I want to kill myself"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	var resp AnalyzeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Data.IsCrisis || !resp.Analysis.IsCrisis || !resp.CrisisAlertSent {
		t.Fatalf("expected crisis response: %+v", resp)
	}
	if env.notifier.calls != 1 {
		t.Fatalf("want 1 notification, got %d", env.notifier.calls)
	}
	stored, err := env.repo.LoadAll()
	if err != nil || len(stored) != 1 || !stored[0].IsCrisis {
		t.Fatalf("record not persisted as crisis: %+v %v", stored, err)
	}
	if stored[0] != resp.Data {
		t.Fatalf("response differs from stored record: %+v vs %+v", resp.Data, stored[0])
	}
}

func TestAnalyze_LegacyMockTextField(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/api/analyze", `{"mockText": "great news"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
}

func TestAnalyze_NoText(t *testing.T) {
	env := newTestEnv(t)
	for _, body := range []string{`{"text": "   "}`, `{}`, `not json`} {
		rr := env.do(t, http.MethodPost, "/analyze", body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%q: want 400, got %d", body, rr.Code)
		}
		if got := decode(t, rr)["error"]; got != "No text provided" {
			t.Fatalf("%q: unexpected error %v", body, got)
		}
	}
	if _, err := os.Stat(env.path); !os.IsNotExist(err) {
		t.Fatalf("store should not be created by rejected requests")
	}
}

func TestAnalyze_StorageFailure(t *testing.T) {
	env := newTestEnv(t)
	if err := os.WriteFile(env.path, []byte("[broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rr := env.do(t, http.MethodPost, "/analyze", `{"text": "hello"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", rr.Code)
	}
	if got := decode(t, rr)["error"]; got != "Internal server error" {
		t.Fatalf("unexpected error %v", got)
	}
}

func TestListRecords(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/records", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	body := decode(t, rr)
	data, ok := body["data"].([]interface{})
	if !ok || len(data) != 0 || body["success"] != true {
		t.Fatalf("want empty list, got %v", body)
	}

	env.do(t, http.MethodPost, "/analyze", `{"text": "first"}`)
	env.do(t, http.MethodPost, "/analyze", `{"text": "second"}`)

	rr = env.do(t, http.MethodGet, "/api/emotions", "")
	data = decode(t, rr)["data"].([]interface{})
	if len(data) != 2 {
		t.Fatalf("want 2 records, got %d", len(data))
	}
	if data[0].(map[string]interface{})["text"] != "first" {
		t.Fatalf("records out of order: %v", data)
	}
}

func TestDeleteRecord(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodDelete, "/records/abc", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("want 404 without store, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/analyze", `{"text": "keep me"}`)
	var resp AnalyzeResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)

	rr = env.do(t, http.MethodDelete, "/records/unknown", "")
	if rr.Code != http.StatusOK || decode(t, rr)["success"] != true {
		t.Fatalf("deleting unknown id should succeed, got %d", rr.Code)
	}
	stored, _ := env.repo.LoadAll()
	if len(stored) != 1 {
		t.Fatalf("store changed: %+v", stored)
	}

	rr = env.do(t, http.MethodDelete, "/api/emotions/"+resp.Data.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete: got %d", rr.Code)
	}
	stored, _ = env.repo.LoadAll()
	if len(stored) != 0 {
		t.Fatalf("record not deleted: %+v", stored)
	}

	// an emptied store still exists, so no 404
	rr = env.do(t, http.MethodDelete, "/records/abc", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("want 200 on empty store, got %d", rr.Code)
	}
}

func TestGetRecord(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/records/missing", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("want 404 for unknown id, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/analyze", `{"text": "a good day"}`)
	var resp AnalyzeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode analyze: %v", err)
	}

	for _, path := range []string{"/records/", "/api/emotions/"} {
		rr = env.do(t, http.MethodGet, path+resp.Data.ID, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: got %d", path, rr.Code)
		}
		var body struct {
			Success bool           `json:"success"`
			Data    records.Record `json:"data"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !body.Success || body.Data != resp.Data {
			t.Fatalf("%s: got %+v, want %+v", path, body.Data, resp.Data)
		}
	}
}

func TestStatsAndTrend(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/analyze", `{"text": "happy"}`)

	rr := env.do(t, http.MethodGet, "/stats?date=not-a-date", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodGet, "/stats?date=2000-01-01", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("stats: got %d", rr.Code)
	}
	data := decode(t, rr)["data"].(map[string]interface{})
	if data["date"] != "2000-01-01" || data["total_records"] != float64(0) {
		t.Fatalf("unexpected stats %v", data)
	}

	rr = env.do(t, http.MethodGet, "/api/stats/trend?days=3", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("trend: got %d", rr.Code)
	}
	points := decode(t, rr)["data"].([]interface{})
	if len(points) != 3 {
		t.Fatalf("want 3 points, got %d", len(points))
	}

	rr = env.do(t, http.MethodGet, "/stats/trend?days=0", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rr.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodOptions, "/analyze", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}
