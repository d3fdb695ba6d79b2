package fleet

import (
	"strings"

	"github.com/ukydev/fleet-dashboard/internal/models"
)

// SearchResult is one hit in the global search overlay.
type SearchResult struct {
	Kind     string `json:"kind"` // "vehicle", "agreement", "page"
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	URL      string `json:"url"`
}

type page struct {
	title, url, keywords string
}

var pages = []page{
	{"Operations", "/operations", "vehicles workshop vor stages workflows"},
	{"Agreements", "/agreements", "rental contracts customers drivers"},
	{"Financials", "/financials", "invoices purchase orders buybacks penalties"},
	{"Documents", "/documents", "files insurance accreditation"},
	{"Communications", "/communications", "email calls inbox"},
	{"Reports", "/reports", "export csv pdf"},
	{"Settings", "/settings", "preferences thresholds notifications"},
}

// Search matches the query against vehicles, agreements and pages.
// An empty query returns no results. Each kind is capped at limit hits.
func Search(s models.Snapshot, query string, limit int) []SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = 5
	}
	contains := func(fields ...string) bool {
		return matchesQuery(fields, q)
	}

	results := make([]SearchResult, 0)
	n := 0
	for _, v := range s.Vehicles {
		if n == limit {
			break
		}
		if contains(v.Registration, v.VIN, v.Model, v.ID) {
			results = append(results, SearchResult{
				Kind:     "vehicle",
				ID:       v.ID,
				Title:    v.Registration,
				Subtitle: v.Model + " · " + v.Location,
				URL:      "/operations?vehicle=" + v.ID,
			})
			n++
		}
	}

	n = 0
	for _, a := range s.Agreements {
		if n == limit {
			break
		}
		if contains(a.AgreementID, a.Customer, a.Driver.Name) {
			results = append(results, SearchResult{
				Kind:     "agreement",
				ID:       a.ID,
				Title:    a.AgreementID,
				Subtitle: a.Customer + " · " + string(a.Stage),
				URL:      "/agreements?id=" + a.AgreementID,
			})
			n++
		}
	}

	n = 0
	for _, p := range pages {
		if n == limit {
			break
		}
		if contains(p.title, p.keywords) {
			results = append(results, SearchResult{Kind: "page", ID: p.url, Title: p.title, URL: p.url})
			n++
		}
	}
	return results
}
