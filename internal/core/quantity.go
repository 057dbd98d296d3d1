package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// MaxQuantity is the ceiling for every counted field.
const MaxQuantity = 999

// ClampQuantity bounds n to [0, MaxQuantity].
func ClampQuantity(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxQuantity {
		return MaxQuantity
	}
	return n
}

// ParseQuantity converts form input to a clamped quantity.
//
// Integers are taken as-is, decimals are truncated toward zero and
// anything else (empty, letters, NaN, Inf) becomes 0. Numbers too large
// for a float64 clamp by sign:
//
//	ParseQuantity("12")    -> 12
//	ParseQuantity(" 3.9 ") -> 3
//	ParseQuantity("abc")   -> 0
//	ParseQuantity("-4")    -> 0
//	ParseQuantity("5000")  -> 999
//	ParseQuantity("1e400") -> 999
func ParseQuantity(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return ClampQuantity(n)
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		// f is ±Inf or ±0 here
		if f > 0 {
			return MaxQuantity
		}
		return 0
	case err != nil, math.IsNaN(f), math.IsInf(f, 0):
		return 0
	}
	if f >= MaxQuantity {
		return MaxQuantity
	}
	if f <= 0 {
		return 0
	}
	return ClampQuantity(int(f))
}
