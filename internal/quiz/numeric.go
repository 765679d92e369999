package quiz

import (
	"fmt"
	"strconv"
	"strings"
)

// NumericKind distinguishes exact and range numerical answers.
type NumericKind int

const (
	ExactAnswer NumericKind = iota
	RangeAnswer
)

func (k NumericKind) String() string {
	if k == RangeAnswer {
		return "range_answer"
	}
	return "exact_answer"
}

// Numeric is a numerical answer as a center value and tolerance.
type Numeric struct {
	Kind   NumericKind
	Exact  float64
	Margin float64
}

// ParseNumeric reads a numerical answer value. Text holding a hyphen that
// is not its first character is a range "low-high", converted to its
// midpoint with half the width as margin. Anything else must be a single
// number with zero margin.
//
// A negative lower bound ("-5-10") starts with a hyphen, so it is read as a
// single number and fails; callers fall back to an exact zero.
func ParseNumeric(text string) (Numeric, error) {
	text = strings.TrimSpace(text)
	if strings.Contains(text, "-") && !strings.HasPrefix(text, "-") {
		parts := strings.Split(text, "-")
		low, errLow := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		high, errHigh := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errLow != nil || errHigh != nil {
			return Numeric{}, fmt.Errorf("invalid numerical range %q", text)
		}
		return Numeric{Kind: RangeAnswer, Exact: (low + high) / 2, Margin: (high - low) / 2}, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Numeric{}, fmt.Errorf("invalid numerical answer %q", text)
	}
	return Numeric{Kind: ExactAnswer, Exact: v}, nil
}
