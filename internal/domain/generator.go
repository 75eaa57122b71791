package domain

import "cloud.google.com/go/civil"

// SlotGenerator derives the free slots of one availability window on one date.
// now is the instant of the request, read once by the caller.
type SlotGenerator interface {
	Generate(date civil.Date, windowStart, windowEnd civil.Time, bookedStarts []civil.Time, now civil.DateTime) []Slot
}

// HourlyGenerator emits back-to-back one-hour slots starting at the window
// start. A trailing partial hour is dropped.
type HourlyGenerator struct{}

var _ SlotGenerator = HourlyGenerator{}

func (HourlyGenerator) Generate(date civil.Date, windowStart, windowEnd civil.Time, bookedStarts []civil.Time, now civil.DateTime) []Slot {
	out := make([]Slot, 0, 8)

	// Invalid times stand in for an absent window bound.
	if !windowStart.IsValid() || !windowEnd.IsValid() {
		return out
	}
	start := SinceMidnight(windowStart)
	end := SinceMidnight(windowEnd)
	if start >= end {
		return out
	}

	booked := make(map[civil.Time]struct{}, len(bookedStarts))
	for _, b := range bookedStarts {
		booked[b] = struct{}{}
	}

	today := date == now.Date
	nowOffset := SinceMidnight(now.Time)

	for cand := start; cand+SlotDuration <= end; cand += SlotDuration {
		candStart := TimeAt(cand)
		if _, ok := booked[candStart]; ok {
			continue
		}
		// Slots that already started, or start exactly now, are gone.
		if today && cand <= nowOffset {
			continue
		}
		out = append(out, Slot{
			Date:  date,
			Start: candStart,
			End:   TimeAt(cand + SlotDuration),
		})
	}

	return out
}

// CandidateCount is the number of slots a window yields before any exclusion.
func CandidateCount(windowStart, windowEnd civil.Time) int {
	span := SinceMidnight(windowEnd) - SinceMidnight(windowStart)
	if span <= 0 {
		return 0
	}
	return int(span / SlotDuration)
}
