package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"tabtrack/internal/ipc"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#874BFD")).
			Width(22)

	trackingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	stoppedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1)
)

func box(title string, lines ...string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		append([]string{titleStyle.Render(title), ""}, lines...)...))
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

func millis(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(time.Second).String()
}

func renderStatus(s ipc.StatusData) string {
	var state string
	switch s.State {
	case "tracking":
		state = trackingStyle.Render("● tracking")
	case "paused":
		state = pausedStyle.Render("⏸ paused")
	default:
		state = stoppedStyle.Render("■ stopped")
	}
	lines := []string{row("State", state)}
	if s.TrackingStartTime != nil {
		lines = append(lines, row("Started", s.TrackingStartTime.Local().Format("2006-01-02 15:04:05")))
	}
	if s.CurrentDomain != "" {
		lines = append(lines, row("Current domain", s.CurrentDomain))
	}
	lines = append(lines,
		row("Session", millis(s.CurrentSessionTime)),
		row("Today", millis(s.TodayTime)),
		row("This week", millis(s.WeekTime)),
		row("All time", millis(s.TotalTimeTracked)),
	)
	if s.PendingWrites > 0 {
		lines = append(lines, row("Unsaved keys", errorStyle.Render(fmt.Sprint(s.PendingWrites))))
	}
	return box("Tracking Status", lines...)
}

type domainMillis struct {
	domain string
	ms     int64
}

func sortedMillis(m map[string]int64) []domainMillis {
	out := make([]domainMillis, 0, len(m))
	for d, ms := range m {
		out = append(out, domainMillis{d, ms})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ms != out[j].ms {
			return out[i].ms > out[j].ms
		}
		return out[i].domain < out[j].domain
	})
	return out
}

func renderTimes(t ipc.TimesData) string {
	lines := []string{
		row("Session", millis(t.CurrentSessionTime)),
		row("Today", millis(t.TodayTime)),
		row("This week", millis(t.WeekTime)),
	}
	if len(t.DomainTimes) > 0 {
		lines = append(lines, "")
		for _, dm := range sortedMillis(t.DomainTimes) {
			lines = append(lines, row(dm.domain, millis(dm.ms)))
		}
	}
	if len(t.WindowTimes) > 0 {
		ids := make([]int, 0, len(t.WindowTimes))
		for id := range t.WindowTimes {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		lines = append(lines, "", dimStyle.Render("Windows"))
		for _, id := range ids {
			lines = append(lines, row(fmt.Sprintf("window %d", id), millis(t.WindowTimes[id])))
		}
	}
	return box("Tracked Time", lines...)
}

func renderDomains(d ipc.AllDomainTimesData) string {
	if len(d.AllDomainTimes) == 0 {
		return dimStyle.Render("No domains tracked yet.")
	}
	recs := make([]ipc.DomainTime, 0, len(d.AllDomainTimes))
	for _, rec := range d.AllDomainTimes {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].TimeSpent != recs[j].TimeSpent {
			return recs[i].TimeSpent > recs[j].TimeSpent
		}
		return recs[i].Domain < recs[j].Domain
	})
	lines := make([]string, 0, len(recs))
	for _, rec := range recs {
		lines = append(lines, row(rec.Domain, fmt.Sprintf("%-10s %4d visits  %s",
			millis(rec.TimeSpent), rec.Visits, dimStyle.Render(rec.Category))))
	}
	return box("Domains", lines...)
}

func renderReport(r ipc.ReportData) string {
	return box(fmt.Sprintf("Switching Report (%s, %s)", r.Period, r.Bucket),
		row("Total switches", fmt.Sprint(r.TotalSwitches)),
		row("Average per hour", fmt.Sprintf("%.2f", r.AverageSwitchesPerHour)),
		row("Peak period", r.PeakSwitchingPeriod),
	)
}

func renderFocus(f ipc.FocusScoreData) string {
	style := trackingStyle
	switch {
	case f.FocusScore < 40:
		style = stoppedStyle
	case f.FocusScore < 70:
		style = pausedStyle
	}
	const width = 20
	filled := f.FocusScore * width / 100
	bar := style.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
	return box("Focus Score", fmt.Sprintf("%s %s", bar, style.Render(fmt.Sprintf("%d/100", f.FocusScore))))
}

func renderHistory(h ipc.HistoryData) string {
	lines := make([]string, 0, len(h.Days))
	for _, d := range h.Days {
		spent := time.Duration(d.TrackedSeconds) * time.Second
		lines = append(lines, row(d.Day, fmt.Sprintf("%-10s %4d switches", spent.String(), d.Switches)))
	}
	return box("History", lines...)
}

func renderCategories(c ipc.CategoriesData) string {
	lines := make([]string, 0, len(c.Categories)+len(c.Overrides)+2)
	for _, cat := range c.Categories {
		lines = append(lines, row(cat.Name, strings.Join(cat.Patterns, ", ")))
	}
	if len(c.Overrides) > 0 {
		lines = append(lines, "", dimStyle.Render("Overrides"))
		domains := make([]string, 0, len(c.Overrides))
		for d := range c.Overrides {
			domains = append(domains, d)
		}
		sort.Strings(domains)
		for _, d := range domains {
			lines = append(lines, row(d, c.Overrides[d]))
		}
	}
	return box("Categories", lines...)
}

func renderCategoryTimes(c ipc.CategoryTimesData) string {
	if len(c.CategoryTimes) == 0 {
		return dimStyle.Render("No category time recorded yet.")
	}
	lines := make([]string, 0, len(c.CategoryTimes))
	for _, cm := range sortedMillis(c.CategoryTimes) {
		lines = append(lines, row(cm.domain, millis(cm.ms)))
	}
	return box("Time per Category", lines...)
}

func renderSwitches(s ipc.RecentSwitchesData) string {
	if len(s.Switches) == 0 {
		return dimStyle.Render("No switches recorded yet.")
	}
	lines := make([]string, 0, len(s.Switches))
	for _, e := range s.Switches {
		lines = append(lines, row(e.Timestamp.Local().Format("01-02 15:04:05"),
			fmt.Sprintf("%-6s %d -> %d  %s", e.Type, e.FromID, e.ToID, e.Domain)))
	}
	return box("Recent Switches", lines...)
}
