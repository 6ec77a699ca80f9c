package places

import "testing"

func TestResolveCategories(t *testing.T) {
	tests := []struct {
		name        string
		in          []string
		wantIDs     int
		wantUnknown []string
	}{
		{"single known", []string{"arcade"}, 1, nil},
		{"case insensitive", []string{"ARCADE", "Bar"}, 2, nil},
		{"one unknown rejects the whole set", []string{"arcade", "not-a-real-category"}, 0, []string{"not-a-real-category"}},
		{"all unknown", []string{"spaceship"}, 0, []string{"spaceship"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, unknown := ResolveCategories(tt.in)
			if len(ids) != tt.wantIDs {
				t.Errorf("ids = %v, want %d entries", ids, tt.wantIDs)
			}
			if len(unknown) != len(tt.wantUnknown) {
				t.Fatalf("unknown = %v, want %v", unknown, tt.wantUnknown)
			}
			for i := range unknown {
				if unknown[i] != tt.wantUnknown[i] {
					t.Errorf("unknown[%d] = %q, want %q", i, unknown[i], tt.wantUnknown[i])
				}
			}
		})
	}
}

func TestAttributeToken(t *testing.T) {
	if tok, ok := AttributeToken("Outdoor Seating"); !ok || tok != "outdoor_seating" {
		t.Errorf("Outdoor Seating -> %q, %v", tok, ok)
	}
	if tok, ok := AttributeToken(" WiFi "); !ok || tok != "wifi" {
		t.Errorf("padded label -> %q, %v", tok, ok)
	}
	if _, ok := AttributeToken("Helipad"); ok {
		t.Error("unknown label resolved")
	}
}

func TestAllDayHoursCoversWholeWeek(t *testing.T) {
	want := "1,0000,2400;2,0000,2400;3,0000,2400;4,0000,2400;5,0000,2400;6,0000,2400;7,0000,2400"
	if AllDayHours != want {
		t.Errorf("AllDayHours = %q", AllDayHours)
	}
}
