package timerange

import (
	"fmt"
	"time"
)

// TimeRange is a half-open interval [Start, End): the end instant is excluded,
// so a range ending exactly when another starts does not overlap it.
type TimeRange struct {
	Start time.Time `json:"start" db:"start_time"`
	End   time.Time `json:"end"   db:"end_time"`
}

// New builds a validated range.
func New(start, end time.Time) (TimeRange, error) {
	r := TimeRange{Start: start, End: end}

	return r, r.Validate()
}

// Validate enforces the start < end invariant.
func (r TimeRange) Validate() error {
	if !r.Start.Before(r.End) {
		return fmt.Errorf("time range start (%s) must be before end (%s)", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
	}

	return nil
}

// Overlaps reports whether the two half-open intervals intersect.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether t falls within the interval.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Duration returns End - Start.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Equal reports instant-level equality of both endpoints.
func (r TimeRange) Equal(other TimeRange) bool {
	return r.Start.Equal(other.Start) && r.End.Equal(other.End)
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}
