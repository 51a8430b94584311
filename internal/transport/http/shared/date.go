package shared

import "time"

// dateFormats are tried in order. Work dates (attendance days, deadlines,
// leave boundaries) usually arrive as plain dates; full timestamps come from
// API clients.
var dateFormats = []string{time.RFC3339, time.DateOnly}

// ParseDate accepts RFC3339 or YYYY-MM-DD. An empty value parses to the zero
// time so optional fields need no special casing at call sites.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	var err error
	for _, format := range dateFormats {
		var parsed time.Time
		if parsed, err = time.Parse(format, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, err
}
