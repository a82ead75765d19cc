package process

import (
	"strconv"
	"strings"
)

// Color bounds accepted by ParseColor, in Kelvin.
const (
	MinColor = 1000
	MaxColor = 25000
)

// ParseColor normalizes a Kelvin value such as "3400" or "3400K".
func ParseColor(s string) (string, bool) {
	s = strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(s)), "K")
	n, err := strconv.Atoi(s)
	if err != nil || n < MinColor || n > MaxColor {
		return "", false
	}
	return strconv.Itoa(n), true
}

// StepColor returns color moved by delta Kelvin, clamped to the accepted range.
func StepColor(color string, delta int) string {
	n, err := strconv.Atoi(color)
	if err != nil {
		n, _ = strconv.Atoi(DefaultColor)
	}
	n += delta
	if n < MinColor {
		n = MinColor
	}
	if n > MaxColor {
		n = MaxColor
	}
	return strconv.Itoa(n)
}
