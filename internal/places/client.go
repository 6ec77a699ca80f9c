// README: HTTP client for the places search, photo and suggest-place endpoints.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultSearchURL  = "https://places-api.foursquare.com/places/search"
	defaultPhotoBase  = "https://api.foursquare.com/v3/places"
	defaultSuggestURL = "https://places-api.foursquare.com/places/suggest"

	apiVersion  = "2025-02-05"
	resultField = "fsq_place_id,name,distance,hours,price,rating"

	defaultLimit = 5
	photoWidth   = 300
)

// Client talks to the places API. All calls are plain request/response;
// the photo lookup is best-effort and never fails a search.
type Client struct {
	hc         *http.Client
	apiKey     string
	searchURL  string
	photoBase  string
	suggestURL string
}

func NewClient(apiKey string) *Client {
	return &Client{
		hc:         &http.Client{Timeout: 15 * time.Second},
		apiKey:     apiKey,
		searchURL:  defaultSearchURL,
		photoBase:  defaultPhotoBase,
		suggestURL: defaultSuggestURL,
	}
}

type searchResponse struct {
	Results []struct {
		ID       string   `json:"fsq_place_id"`
		Name     string   `json:"name"`
		Distance int      `json:"distance"`
		Rating   *float64 `json:"rating"`
		Price    *int     `json:"price"`
		Hours    *struct {
			OpenNow *bool `json:"open_now"`
		} `json:"hours"`
	} `json:"results"`
}

// Search runs a place search around loc with the given filters. Only set
// filter fields become query parameters; the result limit defaults to 5.
// Each hit gets a best-effort image URL from the photo endpoint.
func (c *Client) Search(ctx context.Context, loc Location, f SearchFilters) ([]PlaceResult, error) {
	q := url.Values{}
	q.Set("ll", fmt.Sprintf("%f,%f", loc.Latitude, loc.Longitude))
	q.Set("fields", resultField)
	if f.Query != "" {
		q.Set("query", f.Query)
	}
	limit := defaultLimit
	if f.Limit != nil && *f.Limit > 0 {
		limit = *f.Limit
	}
	q.Set("limit", strconv.Itoa(limit))
	if f.OpenNow != nil && *f.OpenNow {
		q.Set("open_now", "true")
	}
	if f.Radius != nil {
		q.Set("radius", strconv.Itoa(*f.Radius))
	}
	if f.CategoryIDs != "" {
		q.Set("fsq_category_ids", f.CategoryIDs)
	}
	if f.MinPrice != nil {
		q.Set("min_price", strconv.Itoa(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		q.Set("max_price", strconv.Itoa(*f.MaxPrice))
	}

	var resp searchResponse
	if err := c.getJSON(ctx, c.searchURL+"?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("places search: %w", err)
	}

	results := make([]PlaceResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		p := PlaceResult{
			ID:        r.ID,
			Name:      r.Name,
			DistanceM: r.Distance,
			Rating:    r.Rating,
			Price:     r.Price,
		}
		if r.Hours != nil {
			p.OpenNow = r.Hours.OpenNow
		}
		if p.ID != "" {
			p.ImageURL = c.firstPhotoURL(ctx, p.ID)
		}
		results = append(results, p)
	}
	return results, nil
}

type photoDescriptor struct {
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// firstPhotoURL fetches the first photo for a place and formats it to the
// target width, preserving aspect ratio. Any failure returns "".
func (c *Client) firstPhotoURL(ctx context.Context, placeID string) string {
	var photos []photoDescriptor
	if err := c.getJSON(ctx, fmt.Sprintf("%s/%s/photos?limit=5", c.photoBase, placeID), &photos); err != nil {
		slog.Debug("photo lookup failed", "module", "places", "place_id", placeID, "error", err)
		return ""
	}
	if len(photos) == 0 {
		return ""
	}
	return photoURL(photos[0], photoWidth)
}

// photoURL builds prefix + "WxH" + suffix for the target width, with the
// height scaled to keep the original aspect ratio.
func photoURL(p photoDescriptor, targetW int) string {
	if p.Prefix == "" || p.Suffix == "" {
		return ""
	}
	targetH := 225
	if p.Width > 0 && p.Height > 0 {
		targetH = int(float64(targetW) / float64(p.Width) * float64(p.Height))
	}
	return fmt.Sprintf("%s%dx%d%s", p.Prefix, targetW, targetH, p.Suffix)
}

// Suggestion is the sanitized input for a suggest-place submission, already
// reduced to the values the endpoint accepts.
type Suggestion struct {
	Name        string
	CategoryIDs []string
	Address     string
	Locality    string
	Region      string
	Postcode    string
	CountryCode string
	Latitude    *float64
	Longitude   *float64
	IsPrivate   *bool
	Tel         string
	Website     string
	Email       string
	FacebookURL string
	Instagram   string
	Twitter     string
	Hours       string
	Attributes  []string
	DryRun      bool
}

// BuildSuggestParams turns a Suggestion into the outbound parameter map.
// Only whitelisted keys appear, empty values are dropped entirely, and
// booleans serialize as lowercase string literals.
func BuildSuggestParams(s Suggestion) map[string]string {
	params := map[string]string{}
	put := func(k, v string) {
		if v != "" {
			params[k] = v
		}
	}
	put("name", s.Name)
	put("categories", strings.Join(s.CategoryIDs, ","))
	put("address", s.Address)
	put("locality", s.Locality)
	put("region", s.Region)
	put("postcode", s.Postcode)
	put("country_code", s.CountryCode)
	if s.Latitude != nil {
		put("latitude", strconv.FormatFloat(*s.Latitude, 'f', -1, 64))
	}
	if s.Longitude != nil {
		put("longitude", strconv.FormatFloat(*s.Longitude, 'f', -1, 64))
	}
	if s.IsPrivate != nil {
		put("isPrivatePlace", strconv.FormatBool(*s.IsPrivate))
	}
	put("tel", s.Tel)
	put("website", s.Website)
	put("email", s.Email)
	put("facebookUrl", s.FacebookURL)
	put("instagram", s.Instagram)
	put("twitter", s.Twitter)
	put("hours", s.Hours)
	put("attributes", strings.Join(s.Attributes, ","))
	if s.DryRun {
		put("dry_run", "true")
	}
	return params
}

// Submit sends the suggest-place request. The returned error carries the
// raw response detail for logging; callers show users a generic message.
func (c *Client) Submit(ctx context.Context, s Suggestion) error {
	form := url.Values{}
	for k, v := range BuildSuggestParams(s) {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.suggestURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("suggest place: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setAuth(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("suggest place: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("suggest place: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	c.setAuth(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) setAuth(req *http.Request) {
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-Places-Api-Version", apiVersion)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}
