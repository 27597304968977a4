package calendar

import (
	"fmt"
	"strconv"
	"time"
)

// Anchor 指定每个重采样桶内取首个还是末个日期。
type Anchor string

const (
	AnchorStart Anchor = "start"
	AnchorEnd   Anchor = "end"
)

// Interval 表示调仓频率：命名频率、按天的整数间隔，或零值表示不重采样。
type Interval struct {
	Name string // minutely|daily|weekly|monthly|quarterly|half_yearly|yearly
	Days int    // 正整数，按自然日分桶
}

// IsZero 表示恒等重采样（保持原日历）。
func (iv Interval) IsZero() bool {
	return iv.Name == "" && iv.Days == 0
}

var namedIntervals = map[string]struct{}{
	"minutely": {}, "daily": {}, "weekly": {}, "monthly": {},
	"quarterly": {}, "half_yearly": {}, "yearly": {},
}

// ParseInterval 解析配置中的 frequency_interval 字段。
// 空串表示不重采样；纯数字按天数解释；其余必须是命名频率。
func ParseInterval(s string) (Interval, error) {
	if s == "" {
		return Interval{}, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return Interval{}, fmt.Errorf("calendar: 整数频率间隔必须为正, 得到 %d", n)
		}
		return Interval{Days: n}, nil
	}
	if _, ok := namedIntervals[s]; !ok {
		return Interval{}, fmt.Errorf("calendar: 未知的频率间隔 %q", s)
	}
	return Interval{Name: s}, nil
}

// Resample 将日历压缩为调仓日期序列。interval 为零值时原样返回；
// anchor 决定每个桶内选首个(start)还是末个(end)日期；结果已去重。
func Resample(cal []time.Time, interval Interval, anchor Anchor) []time.Time {
	if interval.IsZero() || len(cal) == 0 {
		out := make([]time.Time, len(cal))
		copy(out, cal)
		return out
	}

	bucketOf := bucketFunc(interval, cal[0])

	// 桶按日历顺序出现，只需跟踪当前桶的首末日期
	var out []time.Time
	curKey := bucketOf(cal[0])
	curStart, curEnd := cal[0], cal[0]
	flush := func() {
		pick := curStart
		if anchor == AnchorEnd {
			pick = curEnd
		}
		if len(out) == 0 || !out[len(out)-1].Equal(pick) {
			out = append(out, pick)
		}
	}
	for _, d := range cal[1:] {
		key := bucketOf(d)
		if key != curKey {
			flush()
			curKey = key
			curStart = d
		}
		curEnd = d
	}
	flush()
	return out
}

func bucketFunc(interval Interval, origin time.Time) func(time.Time) int64 {
	if interval.Days > 0 {
		n := int64(interval.Days)
		return func(d time.Time) int64 {
			days := int64(d.Sub(origin).Hours() / 24)
			return days / n
		}
	}
	switch interval.Name {
	case "minutely":
		return func(d time.Time) int64 { return d.Truncate(time.Minute).Unix() }
	case "daily":
		return func(d time.Time) int64 {
			y, m, dd := d.Date()
			return int64(y)*10000 + int64(m)*100 + int64(dd)
		}
	case "weekly":
		return func(d time.Time) int64 {
			y, w := d.ISOWeek()
			return int64(y)*100 + int64(w)
		}
	case "monthly":
		return func(d time.Time) int64 {
			y, m, _ := d.Date()
			return int64(y)*100 + int64(m)
		}
	case "quarterly":
		return func(d time.Time) int64 {
			y, m, _ := d.Date()
			return int64(y)*10 + int64(m-1)/3
		}
	case "half_yearly":
		return func(d time.Time) int64 {
			y, m, _ := d.Date()
			return int64(y)*10 + int64(m-1)/6
		}
	case "yearly":
		return func(d time.Time) int64 {
			y, _, _ := d.Date()
			return int64(y)
		}
	default:
		// ParseInterval 已经拦截了未知名称
		return func(d time.Time) int64 { return d.UnixNano() }
	}
}
