package calendar

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	// ErrInvalidRange 表示开始日期晚于结束日期。
	ErrInvalidRange = errors.New("calendar: 开始日期晚于结束日期")
	// ErrEmptyCalendar 表示过滤后没有任何交易日期。
	ErrEmptyCalendar = errors.New("calendar: 日期范围内没有交易日")
)

// Align 构建交易日历：去重、升序排序，并截取 [start, end] 闭区间。
// 输入允许乱序与重复。区间非法或截取为空时返回错误，
// 而不是静默产出空结果。
func Align(raw []time.Time, start, end time.Time) ([]time.Time, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: start=%s end=%s", ErrInvalidRange,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	out := make([]time.Time, 0, len(raw))
	seen := make(map[int64]struct{}, len(raw))
	for _, d := range raw {
		if d.Before(start) || d.After(end) {
			continue
		}
		key := d.UnixNano()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: [%s, %s]", ErrEmptyCalendar,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return out, nil
}

// Period 表示评价频率。
type Period string

const (
	PeriodDaily     Period = "D"
	PeriodMonthly   Period = "M"
	PeriodQuarterly Period = "Q"
	PeriodYearly    Period = "Y"
	PeriodUnknown   Period = "Unknown"
)

// InferPeriod 依据日历间距推断评价频率。间距不规则时返回
// (PeriodUnknown, false)，这是信息性降级而非错误。
func InferPeriod(cal []time.Time) (Period, bool) {
	if len(cal) < 2 {
		return PeriodUnknown, false
	}

	classify := func(days float64) Period {
		switch {
		case days >= 1 && days <= 4:
			// 日频，容忍周末与假日缺口
			return PeriodDaily
		case days >= 28 && days <= 31:
			return PeriodMonthly
		case days >= 89 && days <= 92:
			return PeriodQuarterly
		case days >= 365 && days <= 366:
			return PeriodYearly
		default:
			return PeriodUnknown
		}
	}

	first := classify(cal[1].Sub(cal[0]).Hours() / 24)
	if first == PeriodUnknown {
		return PeriodUnknown, false
	}
	for i := 2; i < len(cal); i++ {
		days := cal[i].Sub(cal[i-1]).Hours() / 24
		if classify(days) != first {
			return PeriodUnknown, false
		}
	}
	return first, true
}
