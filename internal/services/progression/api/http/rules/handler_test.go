package rules

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/louisbranch/d100/internal/services/progression/domain/attribute"
	progressionrules "github.com/louisbranch/d100/internal/services/progression/domain/rules"
)

func newTestMux(t *testing.T) http.Handler {
	t.Helper()
	repo, err := progressionrules.Default()
	if err != nil {
		t.Fatalf("default rules: %v", err)
	}
	mux, err := NewMux(repo)
	if err != nil {
		t.Fatalf("new mux: %v", err)
	}
	return mux
}

func TestGetRules(t *testing.T) {
	mux := newTestMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, RulesPath, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}
	if rec.Header().Get("X-D100-Request-ID") == "" {
		t.Fatal("expected request id header")
	}

	var body struct {
		Version      string         `json:"version"`
		Base         map[string]int `json:"base"`
		Cost         map[string]int `json:"cost"`
		PenaltyRules struct {
			Thresholds  []int     `json:"thresholds"`
			Multipliers []float64 `json:"multipliers"`
		} `json:"penaltyRules"`
		LevelRules struct {
			BaseXP     int `json:"baseXP"`
			XPPerLevel int `json:"xpPerLevel"`
		} `json:"levelRules"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Version != "d100-rules.v1" {
		t.Fatalf("version = %q", body.Version)
	}
	if len(body.Base) != 71 || len(body.Cost) != 71 {
		t.Fatalf("base/cost sizes = %d/%d, want 71", len(body.Base), len(body.Cost))
	}
	if body.Base["Language Own"] != 50 || body.Cost["SPOT"] != 250 {
		t.Fatalf("unexpected values: Language Own=%d SPOT=%d", body.Base["Language Own"], body.Cost["SPOT"])
	}
	if len(body.PenaltyRules.Thresholds) != 5 || body.PenaltyRules.Multipliers[0] != 1.5 {
		t.Fatalf("penalty = %+v", body.PenaltyRules)
	}
	if body.LevelRules.BaseXP != 100000 || body.LevelRules.XPPerLevel != 10000 {
		t.Fatalf("level = %+v", body.LevelRules)
	}
}

func TestGetRulesNotModified(t *testing.T) {
	mux := newTestMux(t)
	first := httptest.NewRecorder()
	mux.ServeHTTP(first, httptest.NewRequest(http.MethodGet, RulesPath, nil))
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected etag header")
	}

	for _, header := range []string{etag, "W/" + etag, `"stale", ` + etag} {
		req := httptest.NewRequest(http.MethodGet, RulesPath, nil)
		req.Header.Set("If-None-Match", header)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotModified {
			t.Fatalf("If-None-Match %s: status = %d, want %d", header, rec.Code, http.StatusNotModified)
		}
	}
}

func TestETagTracksRulesBodyNotVersion(t *testing.T) {
	def, err := progressionrules.Default()
	if err != nil {
		t.Fatalf("default rules: %v", err)
	}
	spec := def.Get()
	spec.Cost[attribute.STA]++
	patched, err := progressionrules.NewRepository(spec)
	if err != nil {
		t.Fatalf("patched rules: %v", err)
	}
	if patched.Version() != def.Version() {
		t.Fatalf("versions differ: %q vs %q", patched.Version(), def.Version())
	}

	original, err := NewHandler(def)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	corrected, err := NewHandler(patched)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	first := httptest.NewRecorder()
	original.ServeHTTP(first, httptest.NewRequest(http.MethodGet, RulesPath, nil))
	staleETag := first.Header().Get("ETag")

	req := httptest.NewRequest(http.MethodGet, RulesPath, nil)
	req.Header.Set("If-None-Match", staleETag)
	rec := httptest.NewRecorder()
	corrected.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d for corrected rules", rec.Code, http.StatusOK)
	}
	if rec.Header().Get("ETag") == staleETag {
		t.Fatalf("etag %s reused across different rules", staleETag)
	}
	if !strings.Contains(rec.Body.String(), `"STA":141`) {
		t.Fatalf("body does not carry corrected STA cost: %s", rec.Body.String())
	}
}

func TestRulesRejectsOtherMethods(t *testing.T) {
	mux := newTestMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, RulesPath, nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHealth(t *testing.T) {
	mux := newTestMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
