package fleet

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/ukydev/fleet-dashboard/internal/models"
)

type item struct {
	Name  string
	Group string
	Score float64
	At    models.Timestamp
}

func items() []item {
	return []item{
		{"zebra", "b", 3, models.TS(testNow.Add(-2 * time.Hour))},
		{"Apple", "a", 1, models.TS(testNow.Add(-48 * time.Hour))},
		{"éclair", "a", 2, "garbage"},
		{"banana", "B", 2, models.TS(testNow.Add(-400 * 24 * time.Hour))},
	}
}

func names(rows []item) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func byName(r item) string { return r.Name }

func TestApply_QueryIsCaseInsensitiveAcrossFields(t *testing.T) {
	spec := Spec[item]{
		Query:        "AN",
		SearchFields: func(r item) []string { return []string{r.Name, r.Group} },
	}
	assert.Equal(t, []string{"banana"}, names(Apply(items(), spec)))

	spec.Query = "   "
	assert.Len(t, Apply(items(), spec), 4)
}

func TestApply_CategoriesAreAndCombined(t *testing.T) {
	for _, all := range []string{"all", "All", ""} {
		spec := Spec[item]{Filters: []Predicate[item]{Category(all, func(r item) string { return r.Group })}}
		assert.Len(t, Apply(items(), spec), 4, "%q is the identity filter", all)
	}

	spec := Spec[item]{Filters: []Predicate[item]{
		Category("b", func(r item) string { return r.Group }),
		func(r item) bool { return r.Score >= 3 },
	}}
	assert.Equal(t, []string{"zebra"}, names(Apply(items(), spec)))
}

func TestApply_Sorts(t *testing.T) {
	asc := Apply(items(), Spec[item]{Sort: ByString(byName, false)})
	assert.Equal(t, []string{"Apple", "banana", "éclair", "zebra"}, names(asc))

	desc := Apply(items(), Spec[item]{Sort: ByString(byName, true)})
	assert.Equal(t, []string{"zebra", "éclair", "banana", "Apple"}, names(desc))

	byScore := Apply(items(), Spec[item]{Sort: ByNumber(func(r item) float64 { return r.Score }, false)})
	assert.Equal(t, []string{"Apple", "éclair", "banana", "zebra"}, names(byScore), "ties keep input order")

	byTime := Apply(items(), Spec[item]{Sort: ByTime(func(r item) models.Timestamp { return r.At }, false)})
	assert.Equal(t, []string{"éclair", "banana", "Apple", "zebra"}, names(byTime), "unreadable dates sort first")
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	in := items()
	before := names(in)
	Apply(in, Spec[item]{Sort: ByString(byName, true)})
	assert.Equal(t, before, names(in))
}

func TestApply_Idempotent(t *testing.T) {
	spec := Spec[item]{
		Query:        "a",
		SearchFields: func(r item) []string { return []string{r.Name} },
		Filters:      []Predicate[item]{Category("all", func(r item) string { return r.Group })},
		Sort:         ByNumber(func(r item) float64 { return r.Score }, true),
	}
	first := Apply(items(), spec)
	second := Apply(items(), spec)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated filter differs (-first +second):\n%s", diff)
	}
}

func TestInDateRange(t *testing.T) {
	field := func(r item) models.Timestamp { return r.At }

	assert.Nil(t, InDateRange(BucketAll, testNow, field))

	week := Apply(items(), Spec[item]{Filters: []Predicate[item]{InDateRange(BucketWeek, testNow, field)}})
	assert.Equal(t, []string{"zebra", "Apple"}, names(week))

	today := Apply(items(), Spec[item]{Filters: []Predicate[item]{InDateRange(BucketToday, testNow, field)}})
	assert.Equal(t, []string{"zebra"}, names(today))

	year := Apply(items(), Spec[item]{Filters: []Predicate[item]{InDateRange(BucketYear, testNow, field)}})
	assert.Equal(t, []string{"zebra", "Apple"}, names(year))
}

func TestMemo(t *testing.T) {
	var m Memo[string, int]
	calls := 0
	compute := func() []int { calls++; return []int{calls} }

	assert.Equal(t, []int{1}, m.Get(1, "q", compute))
	assert.Equal(t, []int{1}, m.Get(1, "q", compute))
	assert.Equal(t, 1, calls)

	assert.Equal(t, []int{2}, m.Get(1, "other", compute))
	assert.Equal(t, []int{3}, m.Get(2, "other", compute))

	m.Reset()
	assert.Equal(t, []int{4}, m.Get(2, "other", compute))
}
