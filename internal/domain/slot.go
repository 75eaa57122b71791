package domain

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
)

// SlotDuration is the fixed length of every bookable slot.
const SlotDuration = time.Hour

// Slot is a one-hour interval on a calendar date. It is used both for free
// candidates computed on the fly and for the interval an appointment occupies.
type Slot struct {
	Date  civil.Date
	Start civil.Time
	End   civil.Time
}

func NewSlot(date civil.Date, start civil.Time) Slot {
	return Slot{Date: date, Start: start, End: AddToTime(start, SlotDuration)}
}

func (s Slot) Equal(o Slot) bool {
	return s.Date == o.Date && s.Start == o.Start && s.End == o.End
}

func (s Slot) Before(o Slot) bool {
	if s.Date != o.Date {
		return s.Date.Before(o.Date)
	}
	return SinceMidnight(s.Start) < SinceMidnight(o.Start)
}

// SortSlots orders slots ascending by (date, start).
func SortSlots(slots []Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Before(slots[j])
	})
}

// SinceMidnight returns the offset of t from 00:00.
func SinceMidnight(t civil.Time) time.Duration {
	return time.Duration(t.Hour)*time.Hour +
		time.Duration(t.Minute)*time.Minute +
		time.Duration(t.Second)*time.Second +
		time.Duration(t.Nanosecond)
}

// TimeAt is the inverse of SinceMidnight. d must lie within a single day.
func TimeAt(d time.Duration) civil.Time {
	return civil.Time{
		Hour:       int(d / time.Hour),
		Minute:     int(d % time.Hour / time.Minute),
		Second:     int(d % time.Minute / time.Second),
		Nanosecond: int(d % time.Second),
	}
}

// AddToTime adds d to a wall-clock time without wrapping past midnight;
// callers are expected to check that the result still fits in the day.
func AddToTime(t civil.Time, d time.Duration) civil.Time {
	return TimeAt(SinceMidnight(t) + d)
}

// MinuteOfDay and TimeOfMinute are the storage encoding for slot starts.
func MinuteOfDay(t civil.Time) int {
	return t.Hour*60 + t.Minute
}

func TimeOfMinute(m int) civil.Time {
	return civil.Time{Hour: m / 60, Minute: m % 60}
}
