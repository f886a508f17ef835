package financials

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Placeholder is shown wherever a value is unknown.
const Placeholder = "—"

const (
	trillion = 1_000_000_000_000
	billion  = 1_000_000_000
	million  = 1_000_000
)

var (
	usd          = money.GetCurrency(money.USD)
	wholeDollars = money.NewFormatter(0, ".", ",", "$", "$1")
)

// FormatCompactCurrency renders large amounts as $1.2T, $391B or $950M
// and smaller ones as whole dollars.
func FormatCompactCurrency(v *float64) string {
	if !finite(v) {
		return Placeholder
	}
	abs := math.Abs(*v)
	switch {
	case abs >= trillion:
		return "$" + fixed(*v/trillion, 1) + "T"
	case abs >= billion:
		return "$" + fixed(*v/billion, 0) + "B"
	case abs >= million:
		return "$" + fixed(*v/million, 0) + "M"
	}
	return wholeDollars.Format(decimal.NewFromFloat(*v).Round(0).IntPart())
}

// FormatPercent renders a signed percentage with one decimal.
func FormatPercent(v *float64) string {
	if !finite(v) {
		return Placeholder
	}
	return signed(*v) + fixed(*v, 1) + "%"
}

// FormatRatio renders a multiple such as 1.23x.
func FormatRatio(v *float64) string {
	if !finite(v) {
		return Placeholder
	}
	return fixed(*v, 2) + "x"
}

// FormatMoney renders a USD amount with cents, e.g. $1,234.56.
func FormatMoney(v float64) string {
	if !finite(&v) {
		return Placeholder
	}
	cents := decimal.NewFromFloat(v).Round(int32(usd.Fraction)).Shift(int32(usd.Fraction))
	return usd.Formatter().Format(cents.IntPart())
}

// FormatMarketCap renders a market capitalisation. ok is false when v is nil.
func FormatMarketCap(v *float64) (string, bool) {
	if !finite(v) {
		return "", false
	}
	abs := math.Abs(*v)
	switch {
	case abs >= trillion:
		return "$" + fixed(*v/trillion, 2) + "T", true
	case abs >= billion:
		return "$" + fixed(*v/billion, 1) + "B", true
	case abs >= million:
		return "$" + fixed(*v/million, 0) + "M", true
	}
	return FormatMoney(*v), true
}

// FormatDayChange renders a quote's daily move as "+1.23% today". The
// percentage is used when present, otherwise it is derived from change
// and price. ok is false when neither yields a value.
func FormatDayChange(price, change, percent *float64) (string, bool) {
	if !finite(price) {
		return "", false
	}
	if finite(percent) {
		return signed(*percent) + fixed(*percent, 2) + "% today", true
	}
	if finite(change) && *price != 0 && *price != *change {
		p := *change / (*price - *change) * 100
		return signed(p) + fixed(p, 2) + "% today", true
	}
	return "", false
}

// ParsePercent reads strings such as "1.5", "+2.1%" or "(-0.6%)".
func ParsePercent(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '(', ')', '%':
			return -1
		}
		return r
	}, s)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDateTime renders a stored timestamp as "Jan 2, 2025, 3:04 PM" in
// UTC. Unparseable input is returned unchanged.
func FormatDateTime(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FormatTime(t)
		}
	}
	return s
}

// FormatTime renders t like FormatDateTime.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("Jan 2, 2006, 3:04 PM")
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func signed(v float64) string {
	if v >= 0 {
		return "+"
	}
	return ""
}
