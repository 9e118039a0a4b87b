package models

import "testing"

func TestParseWordCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1,234", 1234},
		{"", 0},
		{"abc", 0},
		{"  42 ", 42},
		{"5,000", 5000},
		{"12", 12},
	}
	for _, c := range cases {
		if got := ParseWordCount(c.in); got != c.want {
			t.Errorf("ParseWordCount(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFromValuesPadsShortRows(t *testing.T) {
	r := FromValues([]string{"2025-01-02 10:00:00", "Standup"}, 2)
	if r.Title != "Standup" || r.Category != "" || r.SheetLink != "" {
		t.Fatalf("short row not padded: %+v", r)
	}
	if r.RowNumber != 2 {
		t.Fatalf("row number = %d, want 2", r.RowNumber)
	}
	vals := r.Values()
	if len(vals) != NumColumns {
		t.Fatalf("Values length = %d, want %d", len(vals), NumColumns)
	}
}

func TestFromValuesIgnoresExtraColumns(t *testing.T) {
	cells := []string{"ts", "t", "c", "f", "d", "9", "dl", "sl", "extra"}
	r := FromValues(cells, 5)
	if r.SheetLink != "sl" {
		t.Fatalf("sheet link = %q, want sl", r.SheetLink)
	}
	if len(r.Extra) != 1 || r.Extra[0] != "extra" {
		t.Fatalf("extra cells not preserved: %v", r.Extra)
	}
	if got := r.Values(); len(got) != NumColumns+1 {
		t.Fatalf("Values dropped extra cells: %v", got)
	}
}
