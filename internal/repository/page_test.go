package repository

import "testing"

func TestPage_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Page
		want Page
	}{
		{name: "zero value", in: Page{}, want: Page{Number: 1, Limit: DefaultPageLimit}},
		{name: "over max", in: Page{Number: 3, Limit: 500}, want: Page{Number: 3, Limit: MaxPageLimit}},
		{name: "negative page", in: Page{Number: -2, Limit: 5}, want: Page{Number: 1, Limit: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPage_OffsetAndPages(t *testing.T) {
	p := Page{Number: 3, Limit: 10}
	if p.Offset() != 20 {
		t.Errorf("Offset() = %d, want 20", p.Offset())
	}
	if got := p.Pages(21); got != 3 {
		t.Errorf("Pages(21) = %d, want 3", got)
	}
	if got := p.Pages(0); got != 0 {
		t.Errorf("Pages(0) = %d, want 0", got)
	}
}
