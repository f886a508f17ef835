// Package financials derives display metrics from statement rows. Every
// function treats a nil operand as "unknown" and propagates nil rather
// than guessing.
package financials

// PercentChange is the growth from prev to cur in percent. It is nil when
// either side is unknown or zero.
func PercentChange(cur, prev *float64) *float64 {
	if isBlank(cur) || isBlank(prev) {
		return nil
	}
	v := (*cur - *prev) / *prev * 100
	return &v
}

// Margin is value as a percentage of total, nil when either is unknown or zero.
func Margin(value, total *float64) *float64 {
	if isBlank(value) || isBlank(total) {
		return nil
	}
	v := *value / *total * 100
	return &v
}

// MarginChange is the difference of two margins in percentage points.
// Zero margins are valid here.
func MarginChange(cur, prev *float64) *float64 {
	if cur == nil || prev == nil {
		return nil
	}
	v := *cur - *prev
	return &v
}

// Ratio divides value by divisor, nil when either is unknown or zero.
func Ratio(value, divisor *float64) *float64 {
	if isBlank(value) || isBlank(divisor) {
		return nil
	}
	v := *value / *divisor
	return &v
}

// NetCash is cash minus debt. Zero is a known value for both.
func NetCash(cash, debt *float64) *float64 {
	if cash == nil || debt == nil {
		return nil
	}
	v := *cash - *debt
	return &v
}

func isBlank(v *float64) bool {
	return v == nil || *v == 0
}
