package schema

import (
	"strconv"
	"strings"
	"time"
)

var (
	dateFormats = []string{
		"2006-01-02",
		"01-02-2006",
		"01-02-06",
		"01/02/2006",
		"01/02/06",
		"1/2/06",
	}

	dateTimeFormats = []string{
		"2006-01-02 15:04",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05Z07:00",
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999",
	}
)

// ParseBool parses the textual boolean forms accepted by strconv, except the
// bare digits 0 and 1, which are numbers.
func ParseBool(s string) (bool, bool) {
	s = strings.TrimSpace(s)
	if s == "0" || s == "1" {
		return false, false
	}

	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}

	return b, true
}

// ParseDate parses a date without a time component and returns the layout
// that matched.
func ParseDate(s string) (time.Time, string, bool) {
	s = strings.TrimSpace(s)

	for _, layout := range dateFormats {
		if v, err := time.Parse(layout, s); err == nil {
			return v, layout, true
		}
	}

	return time.Time{}, "", false
}

// ParseDateTime parses a date with a time component and returns the layout
// that matched.
func ParseDateTime(s string) (time.Time, string, bool) {
	s = strings.TrimSpace(s)

	for _, layout := range dateTimeFormats {
		if v, err := time.Parse(layout, s); err == nil {
			return v, layout, true
		}
	}

	return time.Time{}, "", false
}

// ParseTime tries date layouts first, then date-time layouts.
func ParseTime(s string) (time.Time, string, bool) {
	if t, layout, ok := ParseDate(s); ok {
		return t, layout, true
	}
	return ParseDateTime(s)
}

func ParseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func ParseInt(s string) (int64, bool) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// ToFloat converts a raw value to a float. Strings are parsed.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case string:
		return ParseFloat(x)
	}
	return 0, false
}

// ToBool converts a raw value to a boolean. Strings are parsed, and the
// numbers 0 and 1 are accepted.
func ToBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		switch strings.TrimSpace(x) {
		case "0":
			return false, true
		case "1":
			return true, true
		}
		return ParseBool(x)
	}
	if f, ok := ToFloat(v); ok && (f == 0 || f == 1) {
		return f == 1, true
	}
	return false, false
}

// ToTime converts a raw value to a time. For strings the matched layout is
// returned as well; it is empty for time.Time values.
func ToTime(v any) (time.Time, string, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, "", true
	case string:
		return ParseTime(x)
	}
	return time.Time{}, "", false
}
