package places

import (
	"reflect"
	"testing"
)

func TestMergeOverwriteLaw(t *testing.T) {
	radius := 500
	openNow := true
	limit := 10
	turns := []SearchFilters{
		{Query: "pizza"},
		{Radius: &radius},
		{Query: "sushi", OpenNow: &openNow},
		{Limit: &limit},
	}

	// Folding turn by turn must equal the accumulated expectation: later
	// non-null fields win, everything else is kept.
	var acc SearchFilters
	for _, turn := range turns {
		acc = acc.Merge(turn)
	}

	if acc.Query != "sushi" {
		t.Errorf("query = %q, later value must win", acc.Query)
	}
	if acc.Radius == nil || *acc.Radius != 500 {
		t.Errorf("radius lost across turns: %+v", acc.Radius)
	}
	if acc.OpenNow == nil || !*acc.OpenNow {
		t.Errorf("open_now lost: %+v", acc.OpenNow)
	}
	if acc.Limit == nil || *acc.Limit != 10 {
		t.Errorf("limit lost: %+v", acc.Limit)
	}
}

func TestMergeEmptyIsIdentity(t *testing.T) {
	radius := 800
	f := SearchFilters{Query: "coffee", Radius: &radius}
	if got := f.Merge(SearchFilters{}); !reflect.DeepEqual(got, f) {
		t.Errorf("merging an empty parse changed filters: %+v", got)
	}
}

func TestSortByRatingDistance(t *testing.T) {
	r := func(v float64) *float64 { return &v }
	results := []PlaceResult{
		{ID: "far-good", Rating: r(9), DistanceM: 900},
		{ID: "unrated", DistanceM: 100},
		{ID: "near-good", Rating: r(9), DistanceM: 300},
		{ID: "near-ok", Rating: r(7), DistanceM: 50},
	}
	SortByRatingDistance(results)

	want := []string{"near-good", "far-good", "near-ok", "unrated"}
	for i, id := range want {
		if results[i].ID != id {
			t.Fatalf("position %d = %s, want %s (full: %v)", i, results[i].ID, id, results)
		}
	}
}

func TestDescribeListsOnlySetFields(t *testing.T) {
	radius := 500
	f := SearchFilters{Query: "pizza", Radius: &radius}
	got := f.Describe()
	if len(got) != 2 {
		t.Fatalf("Describe() = %v, want 2 entries", got)
	}
	if got[0] != "query: pizza" || got[1] != "radius: 500m" {
		t.Errorf("Describe() = %v", got)
	}
}
