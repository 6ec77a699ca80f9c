package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func intp(v int) *int           { return &v }
func boolp(v bool) *bool        { return &v }
func floatp(v float64) *float64 { return &v }

func newTestClient(search, photo, suggest string) *Client {
	c := NewClient("test-key")
	c.searchURL = search
	c.photoBase = photo
	c.suggestURL = suggest
	return c
}

func TestSearchBuildsQueryParams(t *testing.T) {
	var got url.Values
	searchSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if v := r.Header.Get("X-Places-Api-Version"); v != apiVersion {
			t.Errorf("version header = %q", v)
		}
		w.Write([]byte(`{"results": []}`))
	}))
	defer searchSrv.Close()

	c := newTestClient(searchSrv.URL, "", "")
	f := SearchFilters{
		Query:       "pizza",
		OpenNow:     boolp(true),
		Radius:      intp(800),
		CategoryIDs: "4d4b7105d754a06374d81259",
		MinPrice:    intp(1),
		MaxPrice:    intp(2),
	}
	if _, err := c.Search(context.Background(), Location{Latitude: 40, Longitude: -74}, f); err != nil {
		t.Fatalf("Search: %v", err)
	}

	want := map[string]string{
		"ll":               "40.000000,-74.000000",
		"query":            "pizza",
		"open_now":         "true",
		"radius":           "800",
		"fsq_category_ids": "4d4b7105d754a06374d81259",
		"min_price":        "1",
		"max_price":        "2",
		"limit":            "5", // default applied
		"fields":           resultField,
	}
	for k, v := range want {
		if got.Get(k) != v {
			t.Errorf("param %s = %q, want %q", k, got.Get(k), v)
		}
	}
}

func TestSearchOmitsUnsetFilters(t *testing.T) {
	var got url.Values
	searchSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(`{"results": []}`))
	}))
	defer searchSrv.Close()

	c := newTestClient(searchSrv.URL, "", "")
	if _, err := c.Search(context.Background(), Location{}, SearchFilters{}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, k := range []string{"query", "open_now", "radius", "fsq_category_ids", "min_price", "max_price"} {
		if got.Has(k) {
			t.Errorf("unset filter %s was sent as %q", k, got.Get(k))
		}
	}
}

func TestSearchPhotoLookupDegrades(t *testing.T) {
	searchSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [
			{"fsq_place_id": "a", "name": "Lombardi's", "distance": 200, "rating": 9.1, "price": 2, "hours": {"open_now": true}},
			{"fsq_place_id": "b", "name": "Ray's", "distance": 500}
		]}`))
	}))
	defer searchSrv.Close()

	photoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/a/") {
			w.Write([]byte(`[{"prefix": "https://img/", "suffix": "/p.jpg", "width": 600, "height": 400}]`))
			return
		}
		// The second place's photo endpoint fails outright.
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer photoSrv.Close()

	c := newTestClient(searchSrv.URL, photoSrv.URL, "")
	results, err := c.Search(context.Background(), Location{Latitude: 40, Longitude: -74}, SearchFilters{Query: "pizza"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	// 600x400 scaled to width 300 keeps the 3:2 ratio.
	if results[0].ImageURL != "https://img/300x200/p.jpg" {
		t.Errorf("image url = %q", results[0].ImageURL)
	}
	if results[1].ImageURL != "" {
		t.Errorf("failed photo lookup should leave image empty, got %q", results[1].ImageURL)
	}
	if results[0].OpenNow == nil || !*results[0].OpenNow {
		t.Errorf("open_now not flattened: %+v", results[0])
	}
}

func TestPhotoURLFallbackHeight(t *testing.T) {
	got := photoURL(photoDescriptor{Prefix: "https://img/", Suffix: "/p.jpg"}, 300)
	if got != "https://img/300x225/p.jpg" {
		t.Errorf("photoURL = %q", got)
	}
	if photoURL(photoDescriptor{}, 300) != "" {
		t.Error("empty descriptor should produce no URL")
	}
}

func TestBuildSuggestParamsWhitelist(t *testing.T) {
	s := Suggestion{
		Name:        "Pixel Palace",
		CategoryIDs: []string{"4bf58dd8d48988d1e1931735"},
		Address:     "12 Main St",
		CountryCode: "US",
		Latitude:    floatp(40.5),
		Longitude:   floatp(-74.25),
		IsPrivate:   boolp(false),
		Tel:         "+1 555 0100",
		Hours:       AllDayHours,
		Attributes:  []string{"wifi", "parking"},
		DryRun:      true,
	}
	params := BuildSuggestParams(s)

	whitelist := map[string]bool{
		"name": true, "categories": true, "address": true, "locality": true,
		"region": true, "postcode": true, "country_code": true,
		"latitude": true, "longitude": true, "isPrivatePlace": true,
		"tel": true, "website": true, "email": true, "facebookUrl": true,
		"instagram": true, "twitter": true, "hours": true, "attributes": true,
		"dry_run": true,
	}
	for k, v := range params {
		if !whitelist[k] {
			t.Errorf("non-whitelisted key %q in params", k)
		}
		if v == "" {
			t.Errorf("empty value for %q survived", k)
		}
	}
	if params["isPrivatePlace"] != "false" {
		t.Errorf("isPrivatePlace = %q, want lowercase false", params["isPrivatePlace"])
	}
	if params["dry_run"] != "true" {
		t.Errorf("dry_run = %q", params["dry_run"])
	}
	if params["latitude"] != "40.5" || params["longitude"] != "-74.25" {
		t.Errorf("coordinates serialized as %q, %q", params["latitude"], params["longitude"])
	}
	if _, ok := params["locality"]; ok {
		t.Error("empty locality should be dropped")
	}
	if params["attributes"] != "wifi,parking" {
		t.Errorf("attributes = %q", params["attributes"])
	}
}

func TestSubmitSendsForm(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		r.ParseForm()
		form = r.PostForm
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	c := newTestClient("", "", srv.URL)
	if err := c.Submit(context.Background(), Suggestion{Name: "Pixel Palace", DryRun: true}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if form.Get("name") != "Pixel Palace" || form.Get("dry_run") != "true" {
		t.Errorf("form = %v", form)
	}
}

func TestSubmitNon2xxIncludesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient("", "", srv.URL)
	err := c.Submit(context.Background(), Suggestion{Name: "Pixel Palace"})
	if err == nil {
		t.Fatal("expected error for 403")
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error lacks detail for logs: %v", err)
	}
}
