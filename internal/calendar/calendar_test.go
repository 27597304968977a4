package calendar

import (
	"errors"
	"testing"
	"time"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestAlign_DedupeSortFilter(t *testing.T) {
	raw := []time.Time{
		d(2024, 1, 5),
		d(2024, 1, 3),
		d(2024, 1, 3), // duplicate
		d(2024, 1, 1),
		d(2023, 12, 31), // before start
		d(2024, 1, 10),  // after end
	}

	cal, err := Align(raw, d(2024, 1, 1), d(2024, 1, 5))
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	want := []time.Time{d(2024, 1, 1), d(2024, 1, 3), d(2024, 1, 5)}
	if len(cal) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(cal))
	}
	for i := range want {
		if !cal[i].Equal(want[i]) {
			t.Errorf("index %d: expected %v, got %v", i, want[i], cal[i])
		}
	}
	for i := 1; i < len(cal); i++ {
		if !cal[i].After(cal[i-1]) {
			t.Errorf("calendar not strictly increasing at index %d", i)
		}
	}
}

func TestAlign_InvalidRange(t *testing.T) {
	_, err := Align([]time.Time{d(2024, 1, 1)}, d(2024, 2, 1), d(2024, 1, 1))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestAlign_EmptyCalendar(t *testing.T) {
	_, err := Align([]time.Time{d(2023, 1, 1)}, d(2024, 1, 1), d(2024, 12, 31))
	if !errors.Is(err, ErrEmptyCalendar) {
		t.Fatalf("expected ErrEmptyCalendar, got %v", err)
	}
}

func TestInferPeriod(t *testing.T) {
	daily := []time.Time{d(2024, 1, 1), d(2024, 1, 2), d(2024, 1, 3), d(2024, 1, 5)}
	if p, ok := InferPeriod(daily); !ok || p != PeriodDaily {
		t.Errorf("expected (D, true), got (%s, %v)", p, ok)
	}

	monthly := []time.Time{d(2024, 1, 31), d(2024, 2, 29), d(2024, 3, 29)}
	if p, ok := InferPeriod(monthly); !ok || p != PeriodMonthly {
		t.Errorf("expected (M, true), got (%s, %v)", p, ok)
	}

	quarterly := []time.Time{d(2024, 1, 1), d(2024, 4, 1), d(2024, 7, 1)}
	if p, ok := InferPeriod(quarterly); !ok || p != PeriodQuarterly {
		t.Errorf("expected (Q, true), got (%s, %v)", p, ok)
	}

	yearly := []time.Time{d(2022, 1, 1), d(2023, 1, 1), d(2024, 1, 1)}
	if p, ok := InferPeriod(yearly); !ok || p != PeriodYearly {
		t.Errorf("expected (Y, true), got (%s, %v)", p, ok)
	}

	mixed := []time.Time{d(2024, 1, 1), d(2024, 1, 2), d(2024, 3, 1)}
	if p, ok := InferPeriod(mixed); ok || p != PeriodUnknown {
		t.Errorf("expected (Unknown, false) for irregular spacing, got (%s, %v)", p, ok)
	}

	if p, ok := InferPeriod([]time.Time{d(2024, 1, 1)}); ok || p != PeriodUnknown {
		t.Errorf("expected (Unknown, false) for single date, got (%s, %v)", p, ok)
	}
}
