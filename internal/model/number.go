package model

import "strconv"

// Number is an integer field of an event record. Valid is false when the
// field carried no leading digits at all ("not-a-number").
type Number struct {
	Value int64
	Valid bool
}

// Int returns a valid Number.
func Int(v int64) Number { return Number{Value: v, Valid: true} }

// NaN is the invalid Number.
var NaN = Number{}

// Truthy reports whether n is a nonzero number.
func (n Number) Truthy() bool {
	return n.Valid && n.Value != 0
}

func (n Number) String() string {
	if !n.Valid {
		return "NaN"
	}
	return strconv.FormatInt(n.Value, 10)
}

// ParseNumber reads a base-10 integer the lenient way the device tooling
// always has: leading whitespace and an optional sign are skipped, then
// digits are consumed up to the first non-digit. "12abc" is 12, "abc" is NaN.
func ParseNumber(s string) Number {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	start := i
	var v int64
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		d := int64(s[i] - '0')
		// saturate instead of wrapping; such values never match a table key
		if v > (1<<63-1-d)/10 {
			v = 1<<63 - 1
		} else {
			v = v*10 + d
		}
		i++
	}
	if i == start {
		return NaN
	}
	if neg {
		v = -v
	}
	return Int(v)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
