package fleet

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ukydev/fleet-dashboard/internal/models"
)

// Predicate reports whether a record passes one filter dimension.
type Predicate[T any] func(T) bool

// Spec composes a single-pass filter and optional sort over records of type T.
type Spec[T any] struct {
	// Query is matched case-insensitively as a substring of any SearchFields value.
	Query        string
	SearchFields func(T) []string
	// Filters are AND-combined.
	Filters []Predicate[T]
	Sort    *Sort[T]
}

// SortKind selects how sort keys are compared.
type SortKind int

const (
	SortString SortKind = iota
	SortNumber
	SortTime
)

// Sort orders records by a single field.
type Sort[T any] struct {
	Kind       SortKind
	String     func(T) string
	Number     func(T) float64
	Time       func(T) models.Timestamp
	Descending bool
}

// ByString sorts by a string field using en-GB collation.
func ByString[T any](field func(T) string, descending bool) *Sort[T] {
	return &Sort[T]{Kind: SortString, String: field, Descending: descending}
}

// ByNumber sorts by a numeric field.
func ByNumber[T any](field func(T) float64, descending bool) *Sort[T] {
	return &Sort[T]{Kind: SortNumber, Number: field, Descending: descending}
}

// ByTime sorts by a timestamp; unreadable timestamps sort as the epoch.
func ByTime[T any](field func(T) models.Timestamp, descending bool) *Sort[T] {
	return &Sort[T]{Kind: SortTime, Time: field, Descending: descending}
}

// IsAll reports whether a categorical selection is the identity filter.
func IsAll(selected string) bool {
	s := strings.TrimSpace(selected)
	return s == "" || strings.EqualFold(s, "all")
}

// Category keeps records whose field equals the selection, ignoring case.
// "all", "All" and the empty string keep everything.
func Category[T any](selected string, field func(T) string) Predicate[T] {
	if IsAll(selected) {
		return nil
	}
	want := strings.TrimSpace(selected)
	return func(r T) bool {
		return strings.EqualFold(field(r), want)
	}
}

// DateBucket is a relative date window.
type DateBucket string

const (
	BucketAll     DateBucket = "all"
	BucketToday   DateBucket = "today"
	BucketWeek    DateBucket = "week"
	BucketMonth   DateBucket = "month"
	BucketQuarter DateBucket = "quarter"
	BucketYear    DateBucket = "year"
)

// Since returns the start of the bucket window relative to now.
func (b DateBucket) Since(now time.Time) (time.Time, bool) {
	switch b {
	case BucketToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case BucketWeek:
		return now.AddDate(0, 0, -7), true
	case BucketMonth:
		return now.AddDate(0, -1, 0), true
	case BucketQuarter:
		return now.AddDate(0, -3, 0), true
	case BucketYear:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// InDateRange keeps records whose timestamp falls within the bucket ending at now.
// Records with unreadable timestamps are dropped unless the bucket is "all".
func InDateRange[T any](bucket DateBucket, now time.Time, field func(T) models.Timestamp) Predicate[T] {
	since, ok := bucket.Since(now)
	if !ok {
		return nil
	}
	return func(r T) bool {
		t, valid := field(r).Valid()
		return valid && !t.Before(since) && !t.After(now)
	}
}

// Apply filters and sorts records. The input is never modified and the
// result is stable: identical inputs always produce identical output.
func Apply[T any](records []T, spec Spec[T]) []T {
	query := strings.ToLower(strings.TrimSpace(spec.Query))
	out := make([]T, 0, len(records))
	for _, r := range records {
		if query != "" && spec.SearchFields != nil && !matchesQuery(spec.SearchFields(r), query) {
			continue
		}
		if !passesAll(r, spec.Filters) {
			continue
		}
		out = append(out, r)
	}
	if spec.Sort != nil {
		sortRecords(out, spec.Sort)
	}
	return out
}

func matchesQuery(fields []string, query string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

func passesAll[T any](r T, filters []Predicate[T]) bool {
	for _, p := range filters {
		if p != nil && !p(r) {
			return false
		}
	}
	return true
}

func sortRecords[T any](records []T, s *Sort[T]) {
	var compare func(a, b T) int
	switch s.Kind {
	case SortNumber:
		compare = func(a, b T) int { return cmp.Compare(s.Number(a), s.Number(b)) }
	case SortTime:
		compare = func(a, b T) int { return cmp.Compare(unixMilli(s.Time(a)), unixMilli(s.Time(b))) }
	default:
		col := collate.New(language.BritishEnglish)
		compare = func(a, b T) int { return col.CompareString(s.String(a), s.String(b)) }
	}
	if s.Descending {
		asc := compare
		compare = func(a, b T) int { return asc(b, a) }
	}
	slices.SortStableFunc(records, compare)
}

func unixMilli(ts models.Timestamp) int64 {
	t, ok := ts.Valid()
	if !ok {
		return 0
	}
	return t.UnixMilli()
}
