package core

import (
	"strconv"
	"strings"
)

// Amount is a decimal currency value as the server sends it: a string like
// "12.50". The server is authoritative for all money math; the client only
// parses amounts for display and ratio calculations, so a plain float is
// acceptable on this side of the boundary.
type Amount string

// Float parses the amount for display. Empty or malformed values parse to 0
// rather than erroring; the UI shows "0" for missing allowance fields.
func (a Amount) Float() float64 {
	s := strings.TrimSpace(string(a))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// IsZero reports whether the amount is empty or parses to 0
func (a Amount) IsZero() bool {
	return a.Float() == 0
}

// String returns the raw server representation, "0" when empty
func (a Amount) String() string {
	if strings.TrimSpace(string(a)) == "" {
		return "0"
	}
	return string(a)
}
