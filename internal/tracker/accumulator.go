package tracker

import (
	"context"
	"log"
	"time"

	"tabtrack/internal/history"
	"tabtrack/internal/report"
)

// flush commits time elapsed since the reference timestamps and rebases them to now.
// Calling it twice at the same instant adds nothing the second time.
func (e *Engine) flush(ctx context.Context, now time.Time) {
	if !e.state.IsTracking || e.state.Paused || e.state.TrackingStartTime == nil {
		return
	}
	// The period of now decides where the delta goes.
	e.rollover(ctx, now)

	elapsed := nonNegative(now.Sub(*e.state.TrackingStartTime))
	e.state.CurrentSessionTime += elapsed
	e.state.TotalTimeTracked += elapsed
	e.state.TodayTime += elapsed
	e.state.WeekTime += elapsed
	start := now
	e.state.TrackingStartTime = &start
	e.mark(keyCurrentSessionTime, keyTotalTimeTracked, keyTodayTime, keyWeekTime, keyTrackingStartTime)

	spent := nonNegative(now.Sub(e.focus.DomainStartTime))
	e.focus.DomainStartTime = now
	e.mark(keyCurrentFocus)
	if spent == 0 {
		return
	}
	if e.focus.Domain != "" {
		rec := e.record(e.focus.Domain)
		rec.TimeSpent += spent
		rec.LastAccessed = now
		e.categoryTimes[rec.Category] += spent
		e.mark(keyTabData, keyCategoryTimes)
	}
	if e.focus.WindowID > 0 {
		w, ok := e.windows[e.focus.WindowID]
		if !ok {
			w = &WindowRecord{WindowID: e.focus.WindowID}
			e.windows[e.focus.WindowID] = w
		}
		w.TimeSpent += spent
		e.mark(keyWindowData)
	}
}

// rollover resets todayTime and weekTime when now is in a later day or week than the one
// they were accumulated in. The finished day goes to the archive.
func (e *Engine) rollover(ctx context.Context, now time.Time) {
	day := report.DayKey(now)
	if e.state.LastDay != day {
		if e.state.LastDay != "" {
			e.archiveDay(ctx, e.state.LastDay)
			e.state.TodayTime = 0
			e.mark(keyTodayTime)
		}
		e.state.LastDay = day
		e.mark(keyTrackingMeta)
	}
	week := weekKey(now, e.opts.WeekStart)
	if e.state.LastWeek != week {
		if e.state.LastWeek != "" {
			e.state.WeekTime = 0
			e.mark(keyWeekTime)
		}
		e.state.LastWeek = week
		e.mark(keyTrackingMeta)
	}
}

func (e *Engine) archiveDay(ctx context.Context, day string) {
	if e.archive == nil {
		return
	}
	summary := e.daySummary(day)
	if err := e.archive.SaveDay(ctx, summary); err != nil {
		log.Printf("Warning: failed to archive day %s: %v", day, err)
		return
	}
	log.Printf("Archived %s: %s tracked, %d switches", day, e.state.TodayTime.Round(time.Second), summary.Switches)
}

// TodaySummary describes the day in progress the way finished days are archived.
func (e *Engine) TodaySummary() history.DaySummary {
	return e.daySummary(e.state.LastDay)
}

func (e *Engine) daySummary(day string) history.DaySummary {
	summary := history.DaySummary{
		Day:            day,
		TrackedSeconds: int64(e.state.TodayTime / time.Second),
		SessionID:      e.state.SessionID,
	}
	if b := e.reports.Bucket(report.Daily, day); b != nil {
		summary.Switches = b.TotalSwitches
	}
	return summary
}

// weekKey names the week containing t by the date of its first day.
func weekKey(t time.Time, start time.Weekday) string {
	back := (int(t.Weekday()) - int(start) + 7) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-back, 0, 0, 0, 0, t.Location()).Format("2006-01-02")
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
