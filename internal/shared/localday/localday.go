package localday

import "time"

// Helpers for attributing stored timestamps to a user-local calendar day.
// Session timestamps are persisted in one fixed storage zone, but day
// boundaries must follow the user's IANA timezone, so every "is this
// today?" question is a convert-then-compare, never a naive date cut.

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayWindow returns the [start, end) instants covering now's calendar day
// in loc. end is the next calendar midnight, not start+24h, so DST
// transition days keep their real length.
func DayWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := now.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return start, end
}

// SameLocalDay reports whether a and b fall on the same calendar date when
// both are viewed in loc.
func SameLocalDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// LocalDate collapses t to midnight of its calendar day in loc. Useful as
// a map key when bucketing per-day aggregates.
func LocalDate(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc)
}
