package app

import (
	"errors"
	"fmt"
	"log"

	"tabtrack/internal/ipc"
	"tabtrack/internal/report"
	"tabtrack/internal/tracker"
)

// dispatch runs one request against the engine. It must only be called from loop.
func (a *App) dispatch(req ipc.Request) (resp ipc.Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Error: recovered from panic handling %T: %v", req, r)
			resp = ipc.Fail(errors.New("internal error, see daemon log"))
		}
	}()

	switch r := req.(type) {
	case ipc.Ping:
		return ipc.OK("pong", nil)
	case ipc.StartTracking:
		return a.handleStart()
	case ipc.StopTracking:
		return a.handleStop()
	case ipc.GetTrackingStatus:
		return ipc.OK("", statusData(a.engine.Status()))
	case ipc.GetTrackingTimes:
		return a.handleTimes()
	case ipc.GetSwitchingReport:
		return a.handleReport(r)
	case ipc.UpdateCategory:
		return a.handleUpdateCategory(r)
	case ipc.GetAllDomainTimes:
		return a.handleAllDomainTimes()
	case ipc.AddCategory:
		return a.handleAddCategory(r)
	case ipc.GetCategories:
		return a.handleCategories()
	case ipc.GetCategoryTimes:
		return a.handleCategoryTimes()
	case ipc.GetFocusScore:
		return ipc.OK("", ipc.FocusScoreData{FocusScore: a.engine.FocusScore()})
	case ipc.GetHistory:
		return a.handleHistory(r)
	case ipc.GetRecentSwitches:
		return ipc.OK("", ipc.RecentSwitchesData{Switches: a.engine.RecentSwitches(r.Limit)})
	case ipc.RestartAll:
		return a.handleRestartAll()
	case ipc.Signal:
		a.engine.HandleSignal(a.ctx, r.Signal)
		return ipc.OK("", nil)
	}
	return ipc.Fail(fmt.Errorf("%w: %T", ipc.ErrUnknownCommand, req))
}

func (a *App) handleStart() ipc.Response {
	if err := a.engine.Start(a.ctx); err != nil {
		return ipc.Fail(err)
	}
	return ipc.OK("Tracking started", statusData(a.engine.Status()))
}

func (a *App) handleStop() ipc.Response {
	session, err := a.engine.Stop(a.ctx)
	if err != nil {
		return ipc.Fail(err)
	}
	return ipc.OK(fmt.Sprintf("Tracking stopped after %s", formatDuration(session)), nil)
}

func (a *App) handleTimes() ipc.Response {
	t := a.engine.Times()
	domainTimes := make(map[string]int64, len(t.DomainTimes))
	for d, spent := range t.DomainTimes {
		domainTimes[d] = ipc.Millis(spent)
	}
	windows := a.engine.Windows()
	windowTimes := make(map[int]int64, len(windows))
	for _, w := range windows {
		windowTimes[w.WindowID] = ipc.Millis(w.TimeSpent)
	}
	return ipc.OK("", ipc.TimesData{
		CurrentSessionTime: ipc.Millis(t.CurrentSessionTime),
		TodayTime:          ipc.Millis(t.TodayTime),
		WeekTime:           ipc.Millis(t.WeekTime),
		DomainTimes:        domainTimes,
		WindowTimes:        windowTimes,
	})
}

func (a *App) handleReport(r ipc.GetSwitchingReport) ipc.Response {
	period, err := report.ParsePeriod(r.Period)
	if err != nil {
		return ipc.Fail(err)
	}
	rep, err := a.engine.SwitchingReport(period)
	if err != nil {
		return ipc.Fail(err)
	}
	return ipc.OK("", ipc.ReportData{
		Period:                 string(rep.Period),
		Bucket:                 rep.Bucket,
		TotalSwitches:          rep.TotalSwitches,
		AverageSwitchesPerHour: rep.AverageSwitchesPerHour,
		PeakSwitchingPeriod:    rep.PeakSwitchingPeriod,
	})
}

func (a *App) handleUpdateCategory(r ipc.UpdateCategory) ipc.Response {
	domain, err := a.engine.UpdateDomainCategory(a.ctx, r.Domain, r.Category)
	if err != nil {
		return ipc.Fail(err)
	}
	return ipc.OK(fmt.Sprintf("Category for %s set to %s", domain, r.Category), nil)
}

func (a *App) handleAllDomainTimes() ipc.Response {
	domains := a.engine.Domains()
	all := make(map[string]ipc.DomainTime, len(domains))
	for _, rec := range domains {
		all[rec.Domain] = ipc.DomainTime{
			Domain:       rec.Domain,
			TimeSpent:    ipc.Millis(rec.TimeSpent),
			Visits:       rec.Visits,
			Category:     rec.Category,
			LastAccessed: rec.LastAccessed,
		}
	}
	return ipc.OK("", ipc.AllDomainTimesData{AllDomainTimes: all})
}

func (a *App) handleAddCategory(r ipc.AddCategory) ipc.Response {
	created, err := a.engine.AddCategory(a.ctx, r.Name, r.Patterns...)
	if err != nil {
		return ipc.Fail(err)
	}
	if created {
		return ipc.OK(fmt.Sprintf("Category %s added", r.Name), nil)
	}
	return ipc.OK(fmt.Sprintf("Category %s updated", r.Name), nil)
}

func (a *App) handleCategories() ipc.Response {
	cats := a.engine.Categories()
	data := ipc.CategoriesData{
		Categories: make([]ipc.Category, len(cats)),
		Overrides:  a.engine.CategoryOverrides(),
	}
	for i, c := range cats {
		data.Categories[i] = ipc.Category{Name: c.Name, Patterns: c.Patterns}
	}
	return ipc.OK("", data)
}

func (a *App) handleCategoryTimes() ipc.Response {
	times := a.engine.CategoryTimes()
	out := make(map[string]int64, len(times))
	for c, d := range times {
		out[c] = ipc.Millis(d)
	}
	return ipc.OK("", ipc.CategoryTimesData{CategoryTimes: out})
}

// handleHistory returns archived days plus the day in progress, oldest first.
func (a *App) handleHistory(r ipc.GetHistory) ipc.Response {
	today := a.engine.TodaySummary()
	var days []ipc.DayData
	if a.history != nil {
		since := a.clock.Now().AddDate(0, 0, -(r.Days - 1))
		archived, err := a.history.Days(a.ctx, report.DayKey(since))
		if err != nil {
			return ipc.Fail(err)
		}
		for _, d := range archived {
			if d.Day == today.Day {
				continue
			}
			days = append(days, ipc.DayData{Day: d.Day, TrackedSeconds: d.TrackedSeconds, Switches: d.Switches})
		}
	}
	days = append(days, ipc.DayData{Day: today.Day, TrackedSeconds: today.TrackedSeconds, Switches: today.Switches})
	return ipc.OK("", ipc.HistoryData{Days: days})
}

func (a *App) handleRestartAll() ipc.Response {
	if err := a.engine.RestartAll(a.ctx); err != nil {
		// The in-memory reset already happened.
		log.Printf("Warning: restart incomplete: %v", err)
		return ipc.OK("All tracking data has been reset (some data could not be removed from disk)", nil)
	}
	return ipc.OK("All tracking data has been reset", nil)
}

func statusData(s tracker.StatusSnapshot) ipc.StatusData {
	return ipc.StatusData{
		IsTracking:         s.IsTracking,
		Paused:             s.Paused,
		State:              string(s.Status),
		TrackingStartTime:  s.TrackingStartTime,
		SessionID:          s.SessionID,
		CurrentSessionTime: ipc.Millis(s.CurrentSessionTime),
		TodayTime:          ipc.Millis(s.TodayTime),
		WeekTime:           ipc.Millis(s.WeekTime),
		TotalTimeTracked:   ipc.Millis(s.TotalTimeTracked),
		CurrentDomain:      s.CurrentDomain,
		PendingWrites:      s.PendingWrites,
	}
}
