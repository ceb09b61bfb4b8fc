package utils

import "testing"

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10", 10, true},
		{" 12,5 ", 12.5, true},
		{"1 500", 1500, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"-3", -3, true},
	}
	for _, tc := range cases {
		got, ok := ParseDecimal(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseDecimal(%q) = %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFormatDecimal(t *testing.T) {
	if got := FormatDecimal(nil); got != "" {
		t.Fatalf("nil: got %q", got)
	}
	v := 12.5
	if got := FormatDecimal(&v); got != "12.5" {
		t.Fatalf("got %q", got)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(10.005 + 0.001); got != 10.01 {
		t.Fatalf("got %v", got)
	}
	if got := Round2(2299.999); got != 2300 {
		t.Fatalf("got %v", got)
	}
}

type testLine struct {
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

type patchDTO struct {
	Name  *string     `json:"name"`
	Price *float64    `json:"price"`
	Skip  *string     `json:"-"`
	Plain string      `json:"plain"`
	Lines *[]testLine `json:"lines"`
	Count *int        `json:"count,omitempty"`
}

func TestNormalizeAndUpdates(t *testing.T) {
	name := "  Oil change "
	price := 12.346
	skip := "x"
	lines := []testLine{{Title: " filter ", Price: 1.004}}
	dto := patchDTO{Name: &name, Price: &price, Skip: &skip, Plain: "  a ", Lines: &lines}
	Normalize(&dto)

	if dto.Plain != "a" || (*dto.Lines)[0].Title != "filter" || (*dto.Lines)[0].Price != 1 {
		t.Fatalf("not normalized: %+v %+v", dto, *dto.Lines)
	}
	if dto.Count != nil {
		t.Fatal("nil pointer was touched")
	}

	got := Updates(&dto, map[string]string{"price": "unit_price"})
	if len(got) != 3 {
		t.Fatalf("expected 3 keys, got %v", got)
	}
	if got["name"] != "Oil change" {
		t.Fatalf("name = %v", got["name"])
	}
	if got["unit_price"] != 12.35 {
		t.Fatalf("unit_price = %v", got["unit_price"])
	}
	if _, ok := got["plain"]; ok {
		t.Fatal("plain fields are not part of a partial update")
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[float64]string{0: "0.00", 1500: "1500.00", 12.345: "12.35", -0.001: "0.00"}
	for in, want := range cases {
		if got := FormatMoney(in); got != want {
			t.Errorf("FormatMoney(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestQueryLimit(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"7", 7},
		{"x", 20},
		{"-1", 20},
		{"0", 20},
		{"", 20},
		{"500", 100},
	}
	for _, tc := range cases {
		if got := QueryLimit(tc.raw, 20, 100); got != tc.want {
			t.Errorf("QueryLimit(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}
