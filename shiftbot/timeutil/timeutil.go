// Package timeutil resolves instants to business-local calendar dates.
//
// Timezone handling is deliberately a small policy table of fixed UTC
// offsets rather than full tz-database support: the deployments this
// serves pin a single business timezone and DST is not a concern there.
package timeutil

import (
	"fmt"
	"time"
)

// DateLayout is the canonical calendar-date format used as the partition
// key for clock-ins, sales and quiz rotation.
const DateLayout = "2006-01-02"

// Clock abstracts wall-clock time so services can be tested at fixed instants.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Resolver converts instants into calendar dates for a configured set of
// timezone identifiers. Unrecognized identifiers resolve as UTC.
type Resolver struct {
	offsets map[string]int
}

// NewResolver builds a Resolver from a {timezone id -> UTC offset minutes}
// policy table.
func NewResolver(offsets map[string]int) *Resolver {
	table := make(map[string]int, len(offsets))
	for tz, minutes := range offsets {
		table[tz] = minutes
	}
	return &Resolver{offsets: table}
}

// Offset returns the fixed UTC offset for tz, zero when unknown.
func (r *Resolver) Offset(tz string) time.Duration {
	return time.Duration(r.offsets[tz]) * time.Minute
}

// LocalDate returns the calendar date of t in tz as YYYY-MM-DD.
func (r *Resolver) LocalDate(t time.Time, tz string) string {
	return t.UTC().Add(r.Offset(tz)).Format(DateLayout)
}

// DaysBetween returns the number of calendar days from one date to another,
// negative when to precedes from.
func (r *Resolver) DaysBetween(from, to string) (int, error) {
	start, err := time.Parse(DateLayout, from)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", from, err)
	}
	end, err := time.Parse(DateLayout, to)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", to, err)
	}
	return int(end.Sub(start).Hours() / 24), nil
}
