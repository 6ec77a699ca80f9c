package ai

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare object",
			in:   `{"is_valid": true}`,
			want: `{"is_valid": true}`,
		},
		{
			name: "fenced with language tag",
			in:   "```json\n{\"is_valid\": true}\n```",
			want: `{"is_valid": true}`,
		},
		{
			name: "fenced without language tag",
			in:   "```\n[1, 2]\n```",
			want: `[1, 2]`,
		},
		{
			name: "prose around object",
			in:   `Sure, here you go: {"query": "burger"} Hope that helps!`,
			want: `{"query": "burger"}`,
		},
		{
			name: "prose around array",
			in:   `The order is ["a", "b"].`,
			want: `["a", "b"]`,
		},
		{
			name: "no json at all",
			in:   "I cannot help with that.",
			want: "I cannot help with that.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUnmarshalResponse(t *testing.T) {
	var out ContactInfo
	raw := "```json\n{\"is_valid\": true, \"phone\": \"+1 555 0100\"}\n```"
	if err := unmarshalResponse(raw, &out); err != nil {
		t.Fatalf("unmarshalResponse: %v", err)
	}
	if !out.IsValid || out.Phone != "+1 555 0100" {
		t.Errorf("got %+v", out)
	}

	if err := unmarshalResponse("not json", &out); err == nil {
		t.Error("expected error for non-JSON response")
	}
}

func TestNormalizedFilters(t *testing.T) {
	two := 2
	r := SearchFilterResult{Price: &two}
	f := r.NormalizedFilters()
	if f.MinPrice == nil || f.MaxPrice == nil || *f.MinPrice != 2 || *f.MaxPrice != 2 {
		t.Errorf("single price did not expand to both bounds: %+v", f)
	}

	one, three := 1, 3
	r = SearchFilterResult{}
	r.Filters.MinPrice = &one
	r.Filters.MaxPrice = &three
	f = r.NormalizedFilters()
	if *f.MinPrice != 1 || *f.MaxPrice != 3 {
		t.Errorf("explicit bounds were altered: %+v", f)
	}
}
