package unitecon

import (
	"fmt"
	"strconv"
	"strings"
)

// DimensionsExample is shown to users next to dimension errors.
const DimensionsExample = "13x263x202"

// Dimensions is a package size in millimeters.
type Dimensions struct {
	Length int
	Width  int
	Height int
}

// VolumeLiters converts the package volume from cubic millimeters to liters.
func (d Dimensions) VolumeLiters() float64 {
	return float64(d.Length) * float64(d.Width) * float64(d.Height) / 1_000_000
}

// DimensionParseError reports a dimension string that is not three positive integers.
type DimensionParseError struct {
	Raw    string
	Reason string
}

func (e *DimensionParseError) Error() string {
	return fmt.Sprintf("invalid dimensions %q: %s; use the format %s", e.Raw, e.Reason, DimensionsExample)
}

// ParseDimensions parses "LxWxH" in millimeters. The separator is case-insensitive.
func ParseDimensions(raw string) (Dimensions, error) {
	tokens := strings.Split(strings.ToLower(raw), "x")
	if len(tokens) != 3 {
		return Dimensions{}, &DimensionParseError{Raw: raw, Reason: fmt.Sprintf("expected 3 values, got %d", len(tokens))}
	}

	values := make([]int, 0, 3)
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		value, err := strconv.ParseInt(token, 10, 32)
		if err != nil {
			return Dimensions{}, &DimensionParseError{Raw: raw, Reason: fmt.Sprintf("%q is not an integer", token)}
		}
		if value <= 0 {
			return Dimensions{}, &DimensionParseError{Raw: raw, Reason: fmt.Sprintf("%d must be greater than 0", value)}
		}
		values = append(values, int(value))
	}

	return Dimensions{Length: values[0], Width: values[1], Height: values[2]}, nil
}
