package report

import (
	"errors"
	"fmt"
	"math"
	"time"

	"tabtrack/internal/event"
)

type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

var (
	ErrNoData        = errors.New("no data available for the selected period")
	ErrUnknownPeriod = errors.New("unknown report period")
)

// Bucket caps; the oldest bucket is dropped once exceeded.
const (
	maxDailyBuckets   = 366
	maxWeeklyBuckets  = 104
	maxMonthlyBuckets = 36
)

func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case Daily, Weekly, Monthly:
		return Period(s), nil
	}
	return "", fmt.Errorf("%w: %q (valid: daily, weekly, monthly)", ErrUnknownPeriod, s)
}

// Count is one sub-bucket: hour of day for daily buckets, weekday (0=Sunday) for weekly,
// day of month for monthly.
type Count struct {
	Key   int `json:"key"`
	Count int `json:"count"`
}

// Bucket holds the counters for one day, ISO week or month. Sub keeps first-seen order.
type Bucket struct {
	Key           string  `json:"key"`
	TotalSwitches int     `json:"totalSwitches"`
	Sub           []Count `json:"sub"`
}

func (b *Bucket) inc(sub int) {
	b.TotalSwitches++
	for i := range b.Sub {
		if b.Sub[i].Key == sub {
			b.Sub[i].Count++
			return
		}
	}
	b.Sub = append(b.Sub, Count{Key: sub, Count: 1})
}

// Aggregator maintains switching buckets incrementally; it is never rebuilt from the log.
// Buckets are kept in creation order.
type Aggregator struct {
	Daily   []*Bucket `json:"daily"`
	Weekly  []*Bucket `json:"weekly"`
	Monthly []*Bucket `json:"monthly"`
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Record counts e in the day, week and month buckets of its own timestamp.
func (a *Aggregator) Record(e event.SwitchEvent) {
	ts := e.Timestamp
	a.Daily = bump(a.Daily, DayKey(ts), ts.Hour(), maxDailyBuckets)
	a.Weekly = bump(a.Weekly, WeekKey(ts), int(ts.Weekday()), maxWeeklyBuckets)
	a.Monthly = bump(a.Monthly, MonthKey(ts), ts.Day(), maxMonthlyBuckets)
}

func bump(buckets []*Bucket, key string, sub, limit int) []*Bucket {
	for i := len(buckets) - 1; i >= 0; i-- {
		if buckets[i].Key == key {
			buckets[i].inc(sub)
			return buckets
		}
	}
	b := &Bucket{Key: key}
	b.inc(sub)
	buckets = append(buckets, b)
	if over := len(buckets) - limit; over > 0 {
		buckets = buckets[over:]
	}
	return buckets
}

// Bucket returns the bucket for key, or nil.
func (a *Aggregator) Bucket(p Period, key string) *Bucket {
	for _, b := range a.buckets(p) {
		if b.Key == key {
			return b
		}
	}
	return nil
}

func (a *Aggregator) buckets(p Period) []*Bucket {
	switch p {
	case Daily:
		return a.Daily
	case Weekly:
		return a.Weekly
	case Monthly:
		return a.Monthly
	}
	return nil
}

func (a *Aggregator) Reset() {
	a.Daily, a.Weekly, a.Monthly = nil, nil, nil
}

type Report struct {
	Period                 Period  `json:"period"`
	Bucket                 string  `json:"bucket"`
	TotalSwitches          int     `json:"totalSwitches"`
	AverageSwitchesPerHour float64 `json:"averageSwitchesPerHour"`
	PeakSwitchingPeriod    string  `json:"peakSwitchingPeriod"`
}

var weekdayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Generate summarizes the most recently created bucket of period p.
func (a *Aggregator) Generate(p Period) (Report, error) {
	if _, err := ParsePeriod(string(p)); err != nil {
		return Report{}, err
	}
	buckets := a.buckets(p)
	if len(buckets) == 0 {
		return Report{}, ErrNoData
	}
	latest := buckets[len(buckets)-1]

	hours := 24
	if p != Daily {
		hours = len(latest.Sub) * 24
	}
	avg := 0.0
	if hours > 0 {
		avg = math.Round(float64(latest.TotalSwitches)/float64(hours)*100) / 100
	}

	peak := Count{Key: -1}
	for _, c := range latest.Sub {
		if c.Count > peak.Count {
			peak = c
		}
	}

	r := Report{
		Period:                 p,
		Bucket:                 latest.Key,
		TotalSwitches:          latest.TotalSwitches,
		AverageSwitchesPerHour: avg,
	}
	if peak.Key >= 0 {
		switch p {
		case Daily:
			r.PeakSwitchingPeriod = fmt.Sprintf("%d:00", peak.Key)
		case Weekly:
			r.PeakSwitchingPeriod = weekdayNames[peak.Key]
		case Monthly:
			r.PeakSwitchingPeriod = fmt.Sprintf("Day %d", peak.Key)
		}
	}
	return r, nil
}

func DayKey(t time.Time) string { return t.Format("2006-01-02") }

func MonthKey(t time.Time) string { return t.Format("2006-01") }

// WeekKey is the ISO-8601 year and week, e.g. 2026-W07.
func WeekKey(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", y, w)
}
