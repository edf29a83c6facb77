package ratelimit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Quota allows Limit requests per Window.
type Quota struct {
	Limit  int
	Window time.Duration
}

var units = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
}

// ParseQuota accepts "3 per minute", "3/minute" and "100 per 2 hours".
func ParseQuota(s string) (Quota, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	var countPart, periodPart string
	if before, after, ok := strings.Cut(raw, " per "); ok {
		countPart, periodPart = before, after
	} else if before, after, ok := strings.Cut(raw, "/"); ok {
		countPart, periodPart = before, after
	} else {
		return Quota{}, fmt.Errorf("invalid quota %q: expected \"N per unit\"", s)
	}

	limit, err := strconv.Atoi(strings.TrimSpace(countPart))
	if err != nil || limit < 1 {
		return Quota{}, fmt.Errorf("invalid quota %q: count must be a positive integer", s)
	}

	fields := strings.Fields(periodPart)
	multiplier := 1
	switch len(fields) {
	case 1:
	case 2:
		multiplier, err = strconv.Atoi(fields[0])
		if err != nil || multiplier < 1 {
			return Quota{}, fmt.Errorf("invalid quota %q: bad period multiplier", s)
		}
		fields = fields[1:]
	default:
		return Quota{}, fmt.Errorf("invalid quota %q: bad period", s)
	}

	unit, ok := units[strings.TrimSuffix(fields[0], "s")]
	if !ok {
		return Quota{}, fmt.Errorf("invalid quota %q: unknown unit %q", s, fields[0])
	}
	return Quota{Limit: limit, Window: time.Duration(multiplier) * unit}, nil
}

// MustParseQuota is ParseQuota for constant inputs.
func MustParseQuota(s string) Quota {
	q, err := ParseQuota(s)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Quota) String() string {
	return fmt.Sprintf("%d per %s", q.Limit, q.Window)
}
