package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-dashboard/internal/middleware"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

// readJSON decodes a bounded request body into v.
func readJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

// userKey names the caller's per-user state. Unauthenticated callers share
// the anonymous slot.
func userKey(r *http.Request) string {
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		return claims.Username
	}
	return ""
}

// Page is one page of a filtered listing.
type Page[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
}

// paginate slices items using the page and perPage query parameters.
// perPage falls back to the default, and page 0 or a bad value means page 1.
func paginate[T any](r *http.Request, items []T, defaultPerPage int) Page[T] {
	perPage := queryInt(r, "perPage", defaultPerPage)
	if perPage <= 0 {
		perPage = len(items)
	}
	page := max(queryInt(r, "page", 1), 1)

	// Compare in page units so huge values cannot overflow the offset.
	start := len(items)
	if perPage > 0 && page-1 <= (len(items)-1)/perPage {
		start = (page - 1) * perPage
	}
	end := start + min(perPage, len(items)-start)
	out := items[start:end]
	if out == nil {
		out = []T{}
	}
	return Page[T]{Items: out, Total: len(items), Page: page, PerPage: perPage}
}

func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return n
}

func descending(r *http.Request) bool {
	return r.URL.Query().Get("order") == "desc"
}
