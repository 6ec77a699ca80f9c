// README: Place search filter set and result records.
package places

import "strconv"

// SearchFilters is the accumulated filter set for one search conversation.
// Pointer fields distinguish "not set" from a zero value, which is what the
// merge-overwrite rule below relies on.
type SearchFilters struct {
	Query       string `json:"query,omitempty"`
	OpenNow     *bool  `json:"open_now,omitempty"`
	Radius      *int   `json:"radius,omitempty"`
	Limit       *int   `json:"limit,omitempty"`
	CategoryIDs string `json:"fsq_category_ids,omitempty"`
	MinPrice    *int   `json:"min_price,omitempty"`
	MaxPrice    *int   `json:"max_price,omitempty"`
}

// Merge folds o onto f: every field o actually carries overwrites the
// value in f, everything else is kept. Merging is a left-fold, so applying
// parses turn by turn accumulates filters across the refine loop.
func (f SearchFilters) Merge(o SearchFilters) SearchFilters {
	out := f
	if o.Query != "" {
		out.Query = o.Query
	}
	if o.OpenNow != nil {
		out.OpenNow = o.OpenNow
	}
	if o.Radius != nil {
		out.Radius = o.Radius
	}
	if o.Limit != nil {
		out.Limit = o.Limit
	}
	if o.CategoryIDs != "" {
		out.CategoryIDs = o.CategoryIDs
	}
	if o.MinPrice != nil {
		out.MinPrice = o.MinPrice
	}
	if o.MaxPrice != nil {
		out.MaxPrice = o.MaxPrice
	}
	return out
}

// Describe lists the set fields as "key: value" pairs for prompt context.
func (f SearchFilters) Describe() []string {
	var parts []string
	add := func(k, v string) { parts = append(parts, k+": "+v) }
	if f.Query != "" {
		add("query", f.Query)
	}
	if f.OpenNow != nil && *f.OpenNow {
		add("open now", "true")
	}
	if f.Radius != nil {
		add("radius", strconv.Itoa(*f.Radius)+"m")
	}
	if f.Limit != nil {
		add("limit", strconv.Itoa(*f.Limit))
	}
	if f.CategoryIDs != "" {
		add("categories", f.CategoryIDs)
	}
	if f.MinPrice != nil {
		add("minimum price", strconv.Itoa(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		add("maximum price", strconv.Itoa(*f.MaxPrice))
	}
	return parts
}

// Location is a latitude/longitude pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PlaceResult is one search hit, already flattened from the API response.
// Rating is 0-10, Price 1-4; pointers are nil when the API omitted them.
type PlaceResult struct {
	ID        string   `json:"fsq_place_id"`
	Name      string   `json:"name"`
	DistanceM int      `json:"distance"`
	Rating    *float64 `json:"rating,omitempty"`
	Price     *int     `json:"price,omitempty"`
	OpenNow   *bool    `json:"open_now,omitempty"`
	ImageURL  string   `json:"image_url,omitempty"`
}

// SortByRatingDistance orders results by rating descending, then distance
// ascending; results without a rating sort last. This is the deterministic
// fallback when LLM re-ranking is unavailable or malformed.
func SortByRatingDistance(results []PlaceResult) {
	// insertion sort, small N
	less := func(a, b PlaceResult) bool {
		switch {
		case a.Rating != nil && b.Rating == nil:
			return true
		case a.Rating == nil && b.Rating != nil:
			return false
		case a.Rating != nil && b.Rating != nil && *a.Rating != *b.Rating:
			return *a.Rating > *b.Rating
		default:
			return a.DistanceM < b.DistanceM
		}
	}
	for i := 1; i < len(results); i++ {
		key := results[i]
		j := i - 1
		for j >= 0 && less(key, results[j]) {
			results[j+1] = results[j]
			j--
		}
		results[j+1] = key
	}
}
