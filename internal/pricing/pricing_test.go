package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestComputeWeightedPrice(t *testing.T) {
	cases := []struct {
		name   string
		weight string
		ppu    string
		want   string
	}{
		{name: "scenario", weight: "2.2", ppu: "4.50", want: "9.9"},
		{name: "half rounds up", weight: "0.125", ppu: "1", want: "0.13"},
		{name: "below half rounds down", weight: "0.124", ppu: "1", want: "0.12"},
		{name: "three decimal weight", weight: "1.235", ppu: "3.99", want: "4.93"},
		{name: "free product", weight: "1.5", ppu: "0", want: "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := dec(t, tc.weight)
			got, ok := ComputeWeightedPrice(&w, dec(t, tc.ppu))
			if !ok {
				t.Fatalf("expected valid price")
			}
			if !got.Equal(dec(t, tc.want)) {
				t.Fatalf("expected %s got %s", tc.want, got)
			}
			if got.StringFixed(2) != dec(t, tc.want).StringFixed(2) {
				t.Fatalf("unexpected fixed rendering %s", got.StringFixed(2))
			}
		})
	}
}

func TestComputeWeightedPriceInvalid(t *testing.T) {
	ppu := dec(t, "4.50")
	if _, ok := ComputeWeightedPrice(nil, ppu); ok {
		t.Fatalf("nil weight must be invalid")
	}
	for _, raw := range []string{"0", "-1.2", "0.000"} {
		w := dec(t, raw)
		if _, ok := ComputeWeightedPrice(&w, ppu); ok {
			t.Fatalf("weight %s must be invalid", raw)
		}
	}
}

func TestComputeWeightedPriceMatchesRounding(t *testing.T) {
	ppu := dec(t, "7.33")
	for i := 1; i <= 500; i++ {
		w := decimal.New(int64(i), -3)
		got, ok := ComputeWeightedPrice(&w, ppu)
		if !ok {
			t.Fatalf("weight %s rejected", w)
		}
		want := w.Mul(ppu).Round(2)
		if !got.Equal(want) {
			t.Fatalf("weight %s expected %s got %s", w, want, got)
		}
	}
}

func TestParseWeight(t *testing.T) {
	if _, ok := ParseWeight("abc"); ok {
		t.Fatalf("non-numeric input must be rejected")
	}
	if _, ok := ParseWeight("  "); ok {
		t.Fatalf("blank input must be rejected")
	}
	w, ok := ParseWeight(" 2.2 ")
	if !ok || !w.Equal(dec(t, "2.2")) {
		t.Fatalf("expected 2.2 got %v ok=%v", w, ok)
	}
}

func TestLineTotal(t *testing.T) {
	calc := dec(t, "9.90")
	if got := LineTotal(&calc, dec(t, "100"), 3); !got.Equal(calc) {
		t.Fatalf("calculated price must win, got %s", got)
	}
	if got := LineTotal(nil, dec(t, "2.50"), 3); !got.Equal(dec(t, "7.5")) {
		t.Fatalf("expected 7.50 got %s", got)
	}
}

func TestNormalizeWeight(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"0.1234", "0.123", true},
		{"0.0005", "0.001", true},
		{"2.2", "2.2", true},
		{"9999999.999", "9999999.999", true},
		{"0.0004", "", false},
		{"0", "", false},
		{"-1", "", false},
		{"9999999.9995", "", false},
		{"10000000", "", false},
	}
	for _, c := range cases {
		in := dec(t, c.in)
		got, ok := NormalizeWeight(&in)
		if ok != c.ok {
			t.Fatalf("%s: ok=%v want %v", c.in, ok, c.ok)
		}
		if ok && !got.Equal(dec(t, c.want)) {
			t.Fatalf("%s: got %s want %s", c.in, got, c.want)
		}
	}
	if _, ok := NormalizeWeight(nil); ok {
		t.Fatalf("nil weight must be rejected")
	}
}
