package notification

import (
	"math"
	"strconv"
)

// Days is a day count carried in notification metadata. Any JSON number
// decodes, including 0.0 or 2.5. Values that are not numbers decode as
// unknown instead of failing the whole payload.
type Days struct {
	value float64
	known bool
}

// DaysOf returns a known day count
func DaysOf(n int) Days {
	return Days{value: float64(n), known: true}
}

// Known reports whether a numeric value was present
func (d Days) Known() bool {
	return d.known
}

// Whole returns the count when it is a whole number
func (d Days) Whole() (int, bool) {
	if !d.known || d.value != math.Trunc(d.value) || math.Abs(d.value) > math.MaxInt32 {
		return 0, false
	}
	return int(d.value), true
}

// Is reports whether the count equals n exactly
func (d Days) Is(n int) bool {
	return d.known && d.value == float64(n)
}

func (d Days) String() string {
	return strconv.FormatFloat(d.value, 'f', -1, 64)
}

// MarshalJSON writes the count as a JSON number, or null when unknown
func (d Days) MarshalJSON() ([]byte, error) {
	if !d.known {
		return []byte("null"), nil
	}
	return []byte(d.String()), nil
}

// UnmarshalJSON accepts any JSON number. Strings, booleans and other values
// leave the count unknown.
func (d *Days) UnmarshalJSON(b []byte) error {
	*d = Days{}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	*d = Days{value: v, known: true}
	return nil
}
