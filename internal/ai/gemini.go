// README: Gemini-backed Provider implementation; one prompt/schema pair per parsing task.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"placepilot/internal/places"
)

// GeminiProvider implements Provider using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client

	// parseModel is forced to JSON output for the structured calls;
	// chatModel produces the freeform conversational one-liners.
	parseModel *genai.GenerativeModel
	chatModel  *genai.GenerativeModel
}

func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	parseModel := client.GenerativeModel("gemini-2.0-flash")
	parseModel.ResponseMIMEType = "application/json"
	parseModel.SetTemperature(0.2)

	chatModel := client.GenerativeModel("gemini-2.0-flash")
	chatModel.SetTemperature(1.0)

	return &GeminiProvider{client: client, parseModel: parseModel, chatModel: chatModel}, nil
}

func (p *GeminiProvider) Close() {
	p.client.Close()
}

func (p *GeminiProvider) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini generation: no candidates")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}

type searchFilterWire struct {
	Query       string `json:"query"`
	OpenNow     *bool  `json:"open_now"`
	Radius      *int   `json:"radius"`
	Limit       *int   `json:"limit"`
	CategoryIDs string `json:"fsq_category_ids"`
	Price       *int   `json:"price"`
	MinPrice    *int   `json:"min_price"`
	MaxPrice    *int   `json:"max_price"`
	SearchNow   bool   `json:"search_now"`
	Explanation string `json:"explanation"`
}

func (p *GeminiProvider) ParseSearchFilters(ctx context.Context, text string, current places.SearchFilters) (SearchFilterResult, error) {
	currentJSON, _ := json.Marshal(current)
	prompt := fmt.Sprintf(`The user is searching for places using natural language.
Extract only the core search keyword (e.g. 'burger' from "I'm looking for a great burger joint near me!").
Do not include words like 'place', 'joint', 'restaurant', 'shop'. Only the essential food or place type.
Also parse any additional filters the user provides (open now, radius in meters, result limit, price).
If a field is not mentioned, omit it or use null.
min_price and max_price are integers from 1 (most affordable) to 4 (most expensive).
If the user gives exactly one numeric price value, put it in "price" and leave min_price/max_price null.
Here are the current search parameters (if any): %s
Only report fields the user's new message mentions; do not repeat current values.
If the message indicates they want to see results now ('search now', 'show me the results', "that's it", 'done'), set "search_now" to true, otherwise false.

Return JSON: {"query": "", "open_now": null, "radius": null, "limit": null, "fsq_category_ids": "", "price": null, "min_price": null, "max_price": null, "search_now": false, "explanation": ""}

User input: %s`, currentJSON, text)

	fallback := SearchFilterResult{
		Filters:     places.SearchFilters{Query: strings.TrimSpace(text)},
		Explanation: "could not parse the request; using the whole input as the query",
	}

	raw, err := p.generate(ctx, p.parseModel, prompt)
	if err != nil {
		return fallback, nil
	}
	var wire searchFilterWire
	if err := unmarshalResponse(raw, &wire); err != nil {
		return fallback, nil
	}
	return SearchFilterResult{
		Filters: places.SearchFilters{
			Query:       strings.TrimSpace(wire.Query),
			OpenNow:     wire.OpenNow,
			Radius:      wire.Radius,
			Limit:       wire.Limit,
			CategoryIDs: wire.CategoryIDs,
			MinPrice:    wire.MinPrice,
			MaxPrice:    wire.MaxPrice,
		},
		Price:       wire.Price,
		SearchNow:   wire.SearchNow,
		IsValid:     true,
		Explanation: wire.Explanation,
	}, nil
}

func (p *GeminiProvider) ParseContactInfo(ctx context.Context, text string) (ContactInfo, error) {
	prompt := fmt.Sprintf(`The user is entering contact details (phone, website, email, social profiles) in a single string, in any order, with any separators.
1. Parse out "phone", "website", "email", "facebookUrl", "instagram" and "twitter". Output an empty string for anything not provided.
2. If the input is incomplete or you can't identify any field, set "is_valid" to false. The checks can be very basic.

Return JSON: {"is_valid": true, "phone": "", "website": "", "email": "", "facebookUrl": "", "instagram": "", "twitter": "", "explanation": ""}

User input: %s`, text)

	var out ContactInfo
	raw, err := p.generate(ctx, p.parseModel, prompt)
	if err != nil {
		return ContactInfo{}, err
	}
	if err := unmarshalResponse(raw, &out); err != nil {
		return ContactInfo{}, err
	}
	return out, nil
}

func (p *GeminiProvider) ParseHours(ctx context.Context, text string) (HoursInfo, error) {
	prompt := fmt.Sprintf(`The user is entering operating hours in free text, e.g. "Mon-Sat 9am to 6pm" or "M-F 10-2AM", with any separators or day abbreviations.
1. Parse out a consistent operating-hours format, e.g. "Mon-Sat 9:00 AM - 6:00 PM".
2. If you cannot confidently parse it or the input is ambiguous, set is_valid to false and explain why.

Return JSON: {"is_valid": true, "normalized_hours": "", "explanation": ""}

User input: %s`, text)

	var out HoursInfo
	raw, err := p.generate(ctx, p.parseModel, prompt)
	if err != nil {
		return HoursInfo{}, err
	}
	if err := unmarshalResponse(raw, &out); err != nil {
		return HoursInfo{}, err
	}
	return out, nil
}

func (p *GeminiProvider) ParseHoursToAPI(ctx context.Context, text string) (HoursAPIResult, error) {
	prompt := fmt.Sprintf(`Convert the user's free-text operating hours into the places API hours string.
Format: semicolon-separated day entries "D,HHMM,HHMM" where D is 1 (Monday) through 7 (Sunday) and times are 24-hour, e.g. "Mon-Fri 9am-6pm" becomes "1,0900,1800;2,0900,1800;3,0900,1800;4,0900,1800;5,0900,1800".
If you cannot confidently convert the input, set is_valid to false and explain why, leaving "hours" empty.

Return JSON: {"is_valid": true, "hours": "", "explanation": ""}

User input: %s`, text)

	var out HoursAPIResult
	raw, err := p.generate(ctx, p.parseModel, prompt)
	if err != nil {
		return HoursAPIResult{}, err
	}
	if err := unmarshalResponse(raw, &out); err != nil {
		return HoursAPIResult{}, err
	}
	return out, nil
}

func (p *GeminiProvider) ParseAddress(ctx context.Context, text string) (AddressInfo, error) {
	prompt := fmt.Sprintf(`The user is entering a postal address in free text.
Break it into components: "address" (street line), "locality" (city), "region" (state/province), "postcode" and "country_code" (2-letter code, e.g. US, IN).
Infer the country code from the city or region when it is unambiguous.
If you cannot parse the address confidently, or no country can be determined, set is_valid to false and explain.

Return JSON: {"is_valid": true, "address": "", "locality": "", "region": "", "postcode": "", "country_code": "", "explanation": ""}

User input: %s`, text)

	var out AddressInfo
	raw, err := p.generate(ctx, p.parseModel, prompt)
	if err != nil {
		return AddressInfo{}, err
	}
	if err := unmarshalResponse(raw, &out); err != nil {
		return AddressInfo{}, err
	}
	return out, nil
}

func (p *GeminiProvider) ParseCoordinates(ctx context.Context, text string) (Coordinates, error) {
	prompt := fmt.Sprintf(`The user is entering geographic coordinates as "latitude,longitude", possibly with extra words or different separators.
Extract the decimal latitude and longitude. If no coordinate pair can be identified, set is_valid to false.

Return JSON: {"is_valid": true, "latitude": 0.0, "longitude": 0.0}

User input: %s`, text)

	var out Coordinates
	raw, err := p.generate(ctx, p.parseModel, prompt)
	if err != nil {
		return Coordinates{}, err
	}
	if err := unmarshalResponse(raw, &out); err != nil {
		return Coordinates{}, err
	}
	return out, nil
}

func (p *GeminiProvider) ClassifyRefineIntent(ctx context.Context, text string) (RefineIntent, error) {
	prompt := fmt.Sprintf(`The user is interacting with a place search assistant. They just saw a list of results and were prompted to add more filters or say 'no' to finish.
Classify the user's message as either:
- 'end' (they want to stop, are satisfied, or say things like 'no', "that's all", "I'm done", 'stop')
- 'refine' (they want to add more filters, change the search, or anything else)
Only reply with 'end' or 'refine'.

User message: %s`, text)

	raw, err := p.generate(ctx, p.chatModel, prompt)
	if err != nil {
		// Unclear reads as refine; the query handler copes with anything.
		return IntentRefine, nil
	}
	if strings.Contains(strings.ToLower(raw), "end") {
		return IntentEnd, nil
	}
	return IntentRefine, nil
}

func (p *GeminiProvider) ExtractCategoryNames(ctx context.Context, text string) ([]string, error) {
	prompt := fmt.Sprintf(`The user is describing the category of a place in free text, possibly several categories at once ("it's a cozy arcade bar").
Extract the candidate category names as short noun phrases.

Return JSON: {"categories": ["..."]}

User input: %s`, text)

	raw, err := p.generate(ctx, p.parseModel, prompt)
	if err != nil {
		return splitList(text), nil
	}
	var wire struct {
		Categories []string `json:"categories"`
	}
	if err := unmarshalResponse(raw, &wire); err != nil || len(wire.Categories) == 0 {
		return splitList(text), nil
	}
	return wire.Categories, nil
}

func (p *GeminiProvider) ResultsHeader(ctx context.Context, filters places.SearchFilters) (string, error) {
	applied := "none"
	if parts := filters.Describe(); len(parts) > 0 {
		applied = strings.Join(parts, ", ")
	}
	query := filters.Query
	if query == "" {
		query = "unknown"
	}
	prompt := fmt.Sprintf(`You are a friendly assistant helping a user search for places. The user is about to see a list of results for their search.
The main search keyword is: %s.
The user has set these filters: %s.
Write a single, catchy, human-like one-liner to introduce the results. Make it specific to the query if possible. If the query is missing, use a generic but still friendly intro. Do not use emojis. Keep it short and engaging.`, query, applied)

	raw, err := p.generate(ctx, p.chatModel, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

func (p *GeminiProvider) RefinePrompt(ctx context.Context, filters places.SearchFilters) (string, error) {
	set := "none yet"
	if parts := filters.Describe(); len(parts) > 0 {
		set = strings.Join(parts, ", ")
	}
	var missing []string
	if filters.Radius == nil {
		missing = append(missing, "distance")
	}
	if filters.OpenNow == nil {
		missing = append(missing, "open now")
	}
	if filters.MinPrice == nil {
		missing = append(missing, "minimum price")
	}
	if filters.MaxPrice == nil {
		missing = append(missing, "maximum price")
	}
	prompt := fmt.Sprintf(`You are a friendly assistant helping a user search for places. The user has already set these filters: %s.
The following filters are still missing: %s.
In a natural, conversational way, suggest that they can add any of these missing filters to narrow down the results, or say 'no' to finish. Do not use a robotic or templated tone. Keep it short and friendly. Don't use any emojis.`, set, strings.Join(missing, ", "))

	raw, err := p.generate(ctx, p.chatModel, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

func (p *GeminiProvider) RankResults(ctx context.Context, query string, results []places.PlaceResult) ([]string, error) {
	type entry struct {
		ID        string   `json:"id"`
		Name      string   `json:"name"`
		Rating    *float64 `json:"rating,omitempty"`
		DistanceM int      `json:"distance_m"`
		Price     *int     `json:"price,omitempty"`
	}
	entries := make([]entry, 0, len(results))
	for _, r := range results {
		entries = append(entries, entry{ID: r.ID, Name: r.Name, Rating: r.Rating, DistanceM: r.DistanceM, Price: r.Price})
	}
	payload, _ := json.Marshal(entries)
	prompt := fmt.Sprintf(`Reorder these place search results for the query %q, best recommendation first. Balance rating against distance; a slightly lower rating nearby can beat a higher rating far away.

Results: %s

Return JSON: {"order": ["id", "id", ...]} listing every id exactly once.`, query, payload)

	raw, err := p.generate(ctx, p.parseModel, prompt)
	if err != nil {
		return nil, err
	}
	var wire struct {
		Order []string `json:"order"`
	}
	if err := unmarshalResponse(raw, &wire); err != nil {
		return nil, err
	}
	return wire.Order, nil
}

func splitList(text string) []string {
	var out []string
	for _, part := range strings.Split(strings.ReplaceAll(text, ";", ","), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
