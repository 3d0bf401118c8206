package period

import (
	"fmt"
	"time"
)

// Granularity is the width of a trend bucket.
type Granularity string

const (
	Daily   Granularity = "day"
	Monthly Granularity = "month"
)

// ParseGranularity validates s, defaulting to Daily when empty.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case "", Daily:
		return Daily, nil
	case Monthly:
		return Monthly, nil
	}
	return "", fmt.Errorf("unsupported granularity %q", s)
}

// Bucket is one closed [From, To] slice of a range.
type Bucket struct {
	Label string
	Range
}

// Buckets splits a bounded range into consecutive closed buckets. Month
// buckets are clipped to the range at both ends.
func (r Range) Buckets(g Granularity) ([]Bucket, error) {
	if r.From.IsZero() || r.To.IsZero() {
		return nil, ErrUnbounded
	}

	var buckets []Bucket
	switch g {
	case Daily:
		if r.Days() > MaxBuckets {
			return nil, ErrTooManyBuckets
		}
		for d := r.From; !d.After(r.To); d = d.AddDate(0, 0, 1) {
			buckets = append(buckets, Bucket{Label: d.Format(time.DateOnly), Range: Range{From: d, To: d}})
		}
	case Monthly:
		for start := r.From; !start.After(r.To); {
			m := Month(start)
			end := m.To
			if end.After(r.To) {
				end = r.To
			}
			buckets = append(buckets, Bucket{Label: start.Format("2006-01"), Range: Range{From: start, To: end}})
			if len(buckets) > MaxBuckets {
				return nil, ErrTooManyBuckets
			}
			start = m.To.AddDate(0, 0, 1)
		}
	default:
		return nil, fmt.Errorf("unsupported granularity %q", g)
	}
	return buckets, nil
}
