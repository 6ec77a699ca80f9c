// README: Human-readable result rendering and the list-view deep link.
package places

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// FormatResults renders the result list as the chat message body. The
// header is supplied by the caller (LLM-generated, so its phrasing is
// opaque); the per-place lines are deterministic. Output is Telegram HTML.
func FormatResults(header string, results []PlaceResult) string {
	lines := make([]string, 0, len(results))
	for _, p := range results {
		lines = append(lines, formatPlace(p))
	}
	body := strings.Join(lines, "\n\n")
	if header == "" {
		return body
	}
	return header + "\n\n" + body
}

func formatPlace(p PlaceResult) string {
	rating := "N/A"
	if p.Rating != nil {
		rating = fmt.Sprintf("%g/10 ⭐", *p.Rating)
	}
	price := "N/A"
	if p.Price != nil && *p.Price >= 1 && *p.Price <= 4 {
		price = "<b>" + strings.Repeat("$", *p.Price) + "</b>"
	}
	status := "N/A"
	if p.OpenNow != nil {
		if *p.OpenNow {
			status = "<b>Open Now</b>"
		} else {
			status = "<b>Currently Closed!</b>"
		}
	}
	return fmt.Sprintf("<b>%s</b>\nRating: %s\nPricing: %s\nStatus: %s\nDistance: %dm away",
		p.Name, rating, price, status, p.DistanceM)
}

// DeepLink serializes the result list to base64url JSON and embeds it as
// the data parameter of the external list-view URL.
func DeepLink(baseURL string, results []PlaceResult) (string, error) {
	payload, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("deep link payload: %w", err)
	}
	encoded := base64.URLEncoding.EncodeToString(payload)
	return fmt.Sprintf("%s/?data=%s", strings.TrimRight(baseURL, "/"), encoded), nil
}

// DecodeDeepLink reverses DeepLink's data parameter for the list view page.
func DecodeDeepLink(data string) ([]PlaceResult, error) {
	raw, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("deep link payload: %w", err)
	}
	var results []PlaceResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("deep link payload: %w", err)
	}
	return results, nil
}
