package calendar

import (
	"testing"
	"time"
)

func dailyCalendar(start time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func sameDates(a, b []time.Time) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func TestParseInterval(t *testing.T) {
	if iv, err := ParseInterval(""); err != nil || !iv.IsZero() {
		t.Errorf("expected identity interval for empty string, got %+v err=%v", iv, err)
	}
	if iv, err := ParseInterval("3"); err != nil || iv.Days != 3 {
		t.Errorf("expected Days=3, got %+v err=%v", iv, err)
	}
	if iv, err := ParseInterval("weekly"); err != nil || iv.Name != "weekly" {
		t.Errorf("expected weekly interval, got %+v err=%v", iv, err)
	}
	if _, err := ParseInterval("0"); err == nil {
		t.Error("expected error for non-positive integer interval")
	}
	if _, err := ParseInterval("fortnightly"); err == nil {
		t.Error("expected error for unknown interval name")
	}
}

func TestResample_Identity(t *testing.T) {
	cal := dailyCalendar(d(2024, 1, 1), 5)
	out := Resample(cal, Interval{}, AnchorStart)
	if !sameDates(out, cal) {
		t.Errorf("identity resample changed the calendar: %v", out)
	}
}

func TestResample_ThreeDayBuckets(t *testing.T) {
	cal := dailyCalendar(d(2024, 1, 1), 10)

	out := Resample(cal, Interval{Days: 3}, AnchorStart)
	want := []time.Time{d(2024, 1, 1), d(2024, 1, 4), d(2024, 1, 7), d(2024, 1, 10)}
	if !sameDates(out, want) {
		t.Errorf("expected bucket starts %v, got %v", want, out)
	}

	out = Resample(cal, Interval{Days: 3}, AnchorEnd)
	want = []time.Time{d(2024, 1, 3), d(2024, 1, 6), d(2024, 1, 9), d(2024, 1, 10)}
	if !sameDates(out, want) {
		t.Errorf("expected bucket ends %v, got %v", want, out)
	}
}

func TestResample_Weekly(t *testing.T) {
	// 2024-01-01 is a Monday; two ISO weeks
	cal := dailyCalendar(d(2024, 1, 1), 14)

	out := Resample(cal, Interval{Name: "weekly"}, AnchorStart)
	want := []time.Time{d(2024, 1, 1), d(2024, 1, 8)}
	if !sameDates(out, want) {
		t.Errorf("expected weekly starts %v, got %v", want, out)
	}

	out = Resample(cal, Interval{Name: "weekly"}, AnchorEnd)
	want = []time.Time{d(2024, 1, 7), d(2024, 1, 14)}
	if !sameDates(out, want) {
		t.Errorf("expected weekly ends %v, got %v", want, out)
	}
}

func TestResample_Monthly(t *testing.T) {
	cal := []time.Time{
		d(2024, 1, 2), d(2024, 1, 15), d(2024, 1, 31),
		d(2024, 2, 1), d(2024, 2, 29),
		d(2024, 3, 4),
	}
	out := Resample(cal, Interval{Name: "monthly"}, AnchorEnd)
	want := []time.Time{d(2024, 1, 31), d(2024, 2, 29), d(2024, 3, 4)}
	if !sameDates(out, want) {
		t.Errorf("expected month ends %v, got %v", want, out)
	}
}

func TestResample_Empty(t *testing.T) {
	out := Resample(nil, Interval{Days: 3}, AnchorStart)
	if len(out) != 0 {
		t.Errorf("expected empty output for empty calendar, got %v", out)
	}
}
