// README: Static category and attribute lookup tables for the contribution wizard.
package places

import (
	"sort"
	"strings"
)

// categoryIDs maps a lowercase category name to its Foursquare category id.
// Matching is case-insensitive; names not in this table are rejected.
var categoryIDs = map[string]string{
	"restaurant":    "4d4b7105d754a06374d81259",
	"coffee shop":   "4bf58dd8d48988d1e0931735",
	"cafe":          "4bf58dd8d48988d16d941735",
	"bar":           "4bf58dd8d48988d116941735",
	"hotel":         "4bf58dd8d48988d1fa931735",
	"shop":          "4bf58dd8d48988d1f9941735",
	"retail store":  "4bf58dd8d48988d1f9941735",
	"bakery":        "4bf58dd8d48988d16a941735",
	"pizzeria":      "4bf58dd8d48988d1ca941735",
	"arcade":        "4bf58dd8d48988d1e1931735",
	"museum":        "4bf58dd8d48988d181941735",
	"park":          "4bf58dd8d48988d163941735",
	"gym":           "4bf58dd8d48988d175941735",
	"pharmacy":      "4bf58dd8d48988d10f951735",
	"entertainment": "4d4b7104d754a06370d81259",
	"services":      "4d4b7105d754a06375d81259",
}

// ResolveCategories maps user-supplied category names to ids. All names
// must resolve: if any name is unknown the whole set is rejected and the
// unknown names are returned for the re-prompt.
func ResolveCategories(names []string) (ids []string, unknown []string) {
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if id, ok := categoryIDs[key]; ok {
			ids = append(ids, id)
		} else {
			unknown = append(unknown, strings.TrimSpace(name))
		}
	}
	if len(unknown) > 0 {
		return nil, unknown
	}
	return ids, nil
}

// CategoryNames returns the known names, sorted for stable prompts.
func CategoryNames() []string {
	names := make([]string, 0, len(categoryIDs))
	for name := range categoryIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// attributeTokens maps the keyboard labels of the attributes step to the
// tokens the suggest endpoint accepts. Labels outside this table are
// dropped silently.
var attributeTokens = map[string]string{
	"ATM":             "atm",
	"Reservations":    "reservations",
	"Delivery":        "delivery",
	"Parking":         "parking",
	"Outdoor Seating": "outdoor_seating",
	"Restroom":        "restroom",
	"Credit Cards":    "credit_cards",
	"WiFi":            "wifi",
}

// AttributeToken resolves one keyboard label; ok is false for unknown labels.
func AttributeToken(label string) (string, bool) {
	tok, ok := attributeTokens[strings.TrimSpace(label)]
	return tok, ok
}

// AttributeLabels returns the labels in keyboard order.
func AttributeLabels() []string {
	return []string{
		"ATM", "Reservations",
		"Delivery", "Parking",
		"Outdoor Seating", "Restroom",
		"Credit Cards", "WiFi",
	}
}

// AllDayHours is the machine hours string for the "Open 24/7" shortcut:
// seven day entries, midnight to midnight, no parser involved.
const AllDayHours = "1,0000,2400;2,0000,2400;3,0000,2400;4,0000,2400;5,0000,2400;6,0000,2400;7,0000,2400"
