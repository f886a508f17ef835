package financials

import (
	"math"
	"reflect"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestPercentChange(t *testing.T) {
	if got := PercentChange(f(110), f(100)); got == nil || math.Abs(*got-10) > 1e-9 {
		t.Fatalf("expected 10, got %v", got)
	}
	if PercentChange(f(0), f(100)) != nil {
		t.Fatalf("expected nil when current is zero")
	}
	if PercentChange(f(100), f(0)) != nil {
		t.Fatalf("expected nil when previous is zero")
	}
	if PercentChange(nil, f(1)) != nil || PercentChange(f(1), nil) != nil {
		t.Fatalf("expected nil for unknown operand")
	}
}

func TestMarginsAndRatios(t *testing.T) {
	if got := Margin(f(45), f(180)); got == nil || *got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}
	if Margin(f(0), f(1)) != nil {
		t.Fatalf("expected nil margin for zero value")
	}

	if got := MarginChange(f(30), f(0)); got == nil || *got != 30 {
		t.Fatalf("expected zero margin to be a valid operand, got %v", got)
	}
	if MarginChange(nil, f(1)) != nil {
		t.Fatalf("expected nil margin change")
	}

	if got := Ratio(f(3), f(2)); got == nil || *got != 1.5 {
		t.Fatalf("expected 1.5, got %v", got)
	}
	if Ratio(f(3), f(0)) != nil {
		t.Fatalf("expected nil ratio for zero divisor")
	}

	if got := NetCash(f(30), f(100)); got == nil || *got != -70 {
		t.Fatalf("expected -70, got %v", got)
	}
	if NetCash(f(30), nil) != nil {
		t.Fatalf("expected nil net cash")
	}
}

func TestScaleSeries(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []int
	}{
		{"empty", nil, []int{}},
		{"constant", []float64{5, 5, 5}, []int{27, 27, 27}},
		{"linear", []float64{1, 2, 3}, []int{12, 27, 42}},
		{"rounded", []float64{0, 1, 3}, []int{12, 22, 42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sparkline(tt.values); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildSeries(t *testing.T) {
	got := BuildSeries([]Point{{Date: "2021-09-25", Value: 1}, {Date: "2022-09-24", Value: 2}})
	if !reflect.DeepEqual(got.Labels, []string{"2021", "2022"}) || !reflect.DeepEqual(got.Values, []float64{1, 2}) {
		t.Fatalf("unexpected series %+v", got)
	}
	if YearLabel("") != "" {
		t.Fatalf("expected empty label")
	}
}

func TestFormatCompactCurrency(t *testing.T) {
	tests := []struct {
		in   *float64
		want string
	}{
		{nil, "—"},
		{f(1_500_000_000), "$2B"},
		{f(391_035_000_000), "$391B"},
		{f(2_890_000_000_000), "$2.9T"},
		{f(950_400_000), "$950M"},
		{f(1234.4), "$1,234"},
		{f(-1234), "-$1,234"},
		{f(-50_000_000_000), "$-50B"},
		{f(math.NaN()), "—"},
	}
	for _, tt := range tests {
		if got := FormatCompactCurrency(tt.in); got != tt.want {
			t.Errorf("FormatCompactCurrency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercentAndRatio(t *testing.T) {
	if got := FormatPercent(f(12.34)); got != "+12.3%" {
		t.Fatalf("got %q", got)
	}
	if got := FormatPercent(f(-2.25)); got != "-2.3%" {
		t.Fatalf("got %q", got)
	}
	if got := FormatPercent(f(0)); got != "+0.0%" {
		t.Fatalf("got %q", got)
	}
	if FormatPercent(nil) != Placeholder || FormatPercent(f(math.NaN())) != Placeholder {
		t.Fatalf("expected placeholder")
	}
	if got := FormatRatio(f(1.234)); got != "1.23x" {
		t.Fatalf("got %q", got)
	}
	if FormatRatio(nil) != Placeholder {
		t.Fatalf("expected placeholder")
	}
}

func TestFormatMoneyAndMarketCap(t *testing.T) {
	if got := FormatMoney(186.22); got != "$186.22" {
		t.Fatalf("got %q", got)
	}
	if got := FormatMoney(1234567.5); got != "$1,234,567.50" {
		t.Fatalf("got %q", got)
	}

	tests := []struct {
		in   float64
		want string
	}{
		{2_890_000_000_000, "$2.89T"},
		{412_500_000_000, "$412.5B"},
		{12_300_000, "$12M"},
	}
	for _, tt := range tests {
		got, ok := FormatMarketCap(f(tt.in))
		if !ok || got != tt.want {
			t.Errorf("FormatMarketCap(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, ok := FormatMarketCap(nil); ok {
		t.Fatalf("expected no market cap for nil")
	}
}

func TestFormatDayChange(t *testing.T) {
	if got, ok := FormatDayChange(f(100), f(1), f(1.234)); !ok || got != "+1.23% today" {
		t.Fatalf("expected percent to win, got %q", got)
	}
	if got, ok := FormatDayChange(f(99), f(-1), nil); !ok || got != "-1.00% today" {
		t.Fatalf("expected derived percent, got %q", got)
	}
	if _, ok := FormatDayChange(nil, f(1), f(1)); ok {
		t.Fatalf("expected no value without price")
	}
	if _, ok := FormatDayChange(f(100), nil, nil); ok {
		t.Fatalf("expected no value without change or percent")
	}
}

func TestParsePercent(t *testing.T) {
	tests := map[string]struct {
		want float64
		ok   bool
	}{
		"(+1.23%)": {1.23, true},
		"-0.6%":    {-0.6, true},
		"4":        {4, true},
		"":         {0, false},
		"n/a":      {0, false},
	}
	for in, tt := range tests {
		got, ok := ParsePercent(in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParsePercent(%q) = %v, %v", in, got, ok)
		}
	}
}

func TestFormatDateTime(t *testing.T) {
	tests := map[string]string{
		"2025-01-02 15:04:05":         "Jan 2, 2025, 3:04 PM",
		"2025-01-02T15:04:05.123Z":    "Jan 2, 2025, 3:04 PM",
		"2025-01-02 15:04:05.5+00:00": "Jan 2, 2025, 3:04 PM",
		"not a date":                  "not a date",
		"":                            "",
	}
	for in, want := range tests {
		if got := FormatDateTime(in); got != want {
			t.Errorf("FormatDateTime(%q) = %q, want %q", in, got, want)
		}
	}
}
