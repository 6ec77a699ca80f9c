// README: Typed results produced by the structured parsing calls.
package ai

import "placepilot/internal/places"

// SearchFilterResult is the parse of one free-text search turn. Filters
// carries only the fields the turn actually mentioned; the caller merges
// it onto the accumulated set.
type SearchFilterResult struct {
	Filters places.SearchFilters

	// Price is a single user-given price value ("price 2"); it expands to
	// both bounds in NormalizedFilters.
	Price *int

	// SearchNow is set when the user asked to see results immediately.
	SearchNow bool

	IsValid     bool
	Explanation string
}

// NormalizedFilters applies the single-price rule: one numeric price value
// sets both min_price and max_price to that value.
func (r SearchFilterResult) NormalizedFilters() places.SearchFilters {
	f := r.Filters
	if r.Price != nil {
		p := *r.Price
		f.MinPrice = &p
		f.MaxPrice = &p
	}
	return f
}

// ContactInfo is the parse of a free-text contact line. Fields the user
// did not provide are empty strings.
type ContactInfo struct {
	IsValid     bool   `json:"is_valid"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	Email       string `json:"email"`
	FacebookURL string `json:"facebookUrl"`
	Instagram   string `json:"instagram"`
	Twitter     string `json:"twitter"`
	Explanation string `json:"explanation"`
}

// HoursInfo is the human-readable normalization of free-text hours.
type HoursInfo struct {
	IsValid         bool   `json:"is_valid"`
	NormalizedHours string `json:"normalized_hours"`
	Explanation     string `json:"explanation"`
}

// HoursAPIResult is the machine hours string for the suggest endpoint,
// e.g. "1,0900,1800;2,0900,1800".
type HoursAPIResult struct {
	IsValid     bool   `json:"is_valid"`
	Hours       string `json:"hours"`
	Explanation string `json:"explanation"`
}

// AddressInfo is the component breakdown of a free-text address.
type AddressInfo struct {
	IsValid     bool   `json:"is_valid"`
	Address     string `json:"address"`
	Locality    string `json:"locality"`
	Region      string `json:"region"`
	Postcode    string `json:"postcode"`
	CountryCode string `json:"country_code"`
	Explanation string `json:"explanation"`
}

// Coordinates is a parsed "lat,lng" pair. Range validation stays with the
// caller: parser validity alone never admits out-of-range values.
type Coordinates struct {
	IsValid   bool    `json:"is_valid"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RefineIntent is the two-way classification after showing results.
type RefineIntent string

const (
	IntentEnd    RefineIntent = "end"
	IntentRefine RefineIntent = "refine"
)
