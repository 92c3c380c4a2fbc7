package model

import (
	"errors"
	"testing"
)

func TestAttractionIDFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "standard review URL",
			url:  "https://example.com/Attraction_Review-g294306-d311289-Reviews-Cerro_Alegre.html",
			want: "311289",
		},
		{
			name: "paginated review URL",
			url:  "https://example.com/Attraction_Review-g294306-d311289-Reviews-or20-Cerro_Alegre.html",
			want: "311289",
		},
		{
			name: "no id segment",
			url:  "https://example.com/Attractions-g294306-Activities.html",
			want: "",
		},
		{
			name: "empty",
			url:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := AttractionIDFromURL(tt.url); got != tt.want {
				t.Errorf("AttractionIDFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestAttractionValidate(t *testing.T) {
	t.Parallel()

	valid := Attraction{
		ID:       "311289",
		RegionID: "valparaiso",
		Name:     "Cerro Alegre",
		URL:      "https://example.com/Attraction_Review-g294306-d311289-Reviews-Cerro_Alegre.html",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() on valid attraction: %v", err)
	}

	for name, mutate := range map[string]func(*Attraction){
		"missing id":     func(a *Attraction) { a.ID = "" },
		"missing region": func(a *Attraction) { a.RegionID = "" },
		"missing name":   func(a *Attraction) { a.Name = "  " },
		"missing url":    func(a *Attraction) { a.URL = "" },
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			a := valid
			mutate(&a)
			if err := a.Validate(); !errors.Is(err, ErrInvalidAttraction) {
				t.Errorf("Validate() error = %v, want ErrInvalidAttraction", err)
			}
		})
	}
}

func TestRegionValidate(t *testing.T) {
	t.Parallel()

	valid := Region{ID: "valparaiso", Name: "Valparaíso", ListingURL: "https://example.com/Attractions-g294306.html"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() on valid region: %v", err)
	}

	for name, r := range map[string]Region{
		"empty id":     {Name: "X", ListingURL: "https://example.com/"},
		"uppercase id": {ID: "Valparaiso", Name: "X", ListingURL: "https://example.com/"},
		"spaces in id": {ID: "el litoral", Name: "X", ListingURL: "https://example.com/"},
		"no name":      {ID: "valparaiso", ListingURL: "https://example.com/"},
		"relative url": {ID: "valparaiso", Name: "X", ListingURL: "/Attractions-g294306.html"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if err := r.Validate(); !errors.Is(err, ErrInvalidRegion) {
				t.Errorf("Validate() error = %v, want ErrInvalidRegion", err)
			}
		})
	}
}
