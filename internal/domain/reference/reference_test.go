package reference

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Refs
	}{
		{
			name:  "distributor number",
			query: "How to install part PS11752778?",
			want:  Refs{Distributor: "PS11752778", Manufacturer: "PS11752778"},
		},
		{
			name:  "manufacturer number only",
			query: "Is W10321304 compatible?",
			want:  Refs{Manufacturer: "W10321304"},
		},
		{
			name:  "both, first of each wins",
			query: "Does WPW10321304 replace PS11752778 or PS999?",
			want:  Refs{Distributor: "PS11752778", Manufacturer: "WPW10321304"},
		},
		{
			name:  "model number",
			query: "Is this part compatible with model WDT780SAEM1?",
			want:  Refs{Manufacturer: "WDT780SAEM1"},
		},
		{
			name:  "nothing",
			query: "My Whirlpool dishwasher is leaking. What should I do?",
			want:  Refs{},
		},
		{
			name:  "lowercase is ignored",
			query: "part ps11752778",
			want:  Refs{},
		},
		{
			name:  "short code ignored",
			query: "PS12 ABCD",
			want:  Refs{Distributor: "PS12"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.query)
			if got != tt.want {
				t.Errorf("Detect(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
			if got.Any() != (tt.want != Refs{}) {
				t.Errorf("Any() = %v", got.Any())
			}
		})
	}
}
