// Package rules serves the active progression rules over HTTP so clients can
// run the same cost curve as the server.
package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/louisbranch/d100/internal/platform/httpx"
	progressionrules "github.com/louisbranch/d100/internal/services/progression/domain/rules"
)

const (
	// RulesPath serves the rules contract.
	RulesPath = "/api/rules"
	// HealthPath reports liveness.
	HealthPath = "/healthz"
)

// Handler renders one rules repository. The body is encoded once because the
// repository never changes.
type Handler struct {
	body []byte
	etag string
}

// NewHandler encodes repo for serving.
func NewHandler(repo *progressionrules.Repository) (*Handler, error) {
	body, err := json.Marshal(repo.Get())
	if err != nil {
		return nil, err
	}
	return &Handler{
		body: body,
		etag: bodyETag(body),
	}, nil
}

// bodyETag derives a strong validator from the encoded rules, so two files
// sharing a version string still revalidate separately.
func bodyETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func matchesETag(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// ServeHTTP writes the rules JSON, honoring If-None-Match.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("ETag", h.etag)
	w.Header().Set("Cache-Control", "public, max-age=300")
	if match := r.Header.Get("If-None-Match"); match != "" && matchesETag(match, h.etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.body); err != nil {
		log.Printf("write rules response: %v", err)
	}
}

// NewMux routes the rules and health endpoints with request-id and panic
// middleware.
func NewMux(repo *progressionrules.Repository) (http.Handler, error) {
	handler, err := NewHandler(repo)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("GET "+RulesPath, handler)
	mux.HandleFunc("GET "+HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return httpx.Chain(mux, httpx.RecoverPanic(), httpx.RequestID(nil)), nil
}
