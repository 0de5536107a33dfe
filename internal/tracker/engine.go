package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"tabtrack/internal/classifier"
	"tabtrack/internal/event"
	"tabtrack/internal/eventlog"
	"tabtrack/internal/history"
	"tabtrack/internal/idle"
	"tabtrack/internal/platform/clock"
	"tabtrack/internal/report"
	"tabtrack/internal/storage"
)

const workCategory = "Work"

// Archiver receives data that leaves the live state: finished days and pruned switch events.
type Archiver interface {
	SaveDay(ctx context.Context, d history.DaySummary) error
	ArchiveSwitches(ctx context.Context, events []event.SwitchEvent) error
	Clear(ctx context.Context) error
}

type Options struct {
	InactivityTimeout time.Duration
	LogRetention      int
	WeekStart         time.Weekday
	// Categories seeds the category map when the store has none.
	Categories *classifier.CategoryMap
}

// Engine is the tracking state machine. It is not safe for concurrent use: a single goroutine
// owns it and every mutation is written through to the store before the call returns.
type Engine struct {
	opts    Options
	clock   clock.Clock
	store   storage.Storage
	archive Archiver
	idle    *idle.Monitor

	state         TrackingState
	domains       map[string]*DomainRecord
	windows       map[int]*WindowRecord
	categoryTimes map[string]time.Duration
	categories    *classifier.CategoryMap
	switches      *eventlog.Log
	reports       *report.Aggregator
	focus         Focus
	focusScore    int
	scoredAt      time.Time

	pending map[string]struct{}
}

// New creates an engine. notify is called from the inactivity timer goroutine and must hand
// the expiry back to whoever owns the engine. archive may be nil.
func New(opts Options, clk clock.Clock, store storage.Storage, archive Archiver, notify func(event.InactivityExpired)) *Engine {
	if opts.LogRetention < 1 {
		opts.LogRetention = eventlog.DefaultRetention
	}
	return &Engine{
		opts:          opts,
		clock:         clk,
		store:         store,
		archive:       archive,
		idle:          idle.NewMonitor(clk, opts.InactivityTimeout, notify),
		domains:       make(map[string]*DomainRecord),
		windows:       make(map[int]*WindowRecord),
		categoryTimes: make(map[string]time.Duration),
		categories:    classifier.NewCategoryMap(),
		switches:      eventlog.New(opts.LogRetention),
		reports:       report.NewAggregator(),
		focusScore:    100,
		pending:       make(map[string]struct{}),
	}
}

// Init restores state from the store and seeds defaults for missing keys.
func (e *Engine) Init(ctx context.Context) error {
	missing, err := e.load(ctx)
	if err != nil {
		return err
	}
	now := e.clock.Now()

	if _, ok := missing[keyCategories]; ok {
		if e.opts.Categories != nil {
			e.categories = e.opts.Categories
		} else {
			e.categories = classifier.DefaultCategories()
		}
	}
	for k := range missing {
		e.mark(k)
	}

	if e.state.IsTracking {
		// Offline time is never counted.
		start := now
		e.state.TrackingStartTime = &start
		e.focus.DomainStartTime = now
		if e.state.SessionID == "" {
			e.state.SessionID = uuid.NewString()
		}
		if !e.state.Paused {
			e.idle.Arm()
		}
		e.mark(keyTrackingStartTime, keyTrackingMeta, keyCurrentFocus)
		log.Printf("Resuming tracking session %s after restart", e.state.SessionID)
	} else {
		e.state.TrackingStartTime = nil
		e.state.Paused = false
	}
	e.rollover(ctx, now)
	e.scoreFocus(now)
	e.persist(ctx)
	return nil
}

// HandleSignal applies a browser or internal signal.
func (e *Engine) HandleSignal(ctx context.Context, sig event.Signal) {
	switch s := sig.(type) {
	case event.Tick:
		e.Tick(ctx)
	case event.TabActivated:
		e.Switch(ctx, s.TabID, s.WindowID, s.URL)
	case event.TabUpdated:
		if s.Complete && s.Active {
			e.Switch(ctx, s.TabID, s.WindowID, s.URL)
		}
	case event.WindowFocusChanged:
		if s.WindowID == event.WindowNone {
			e.blur(ctx)
			return
		}
		e.Switch(ctx, s.TabID, s.WindowID, s.URL)
	case event.IdleStateChanged:
		e.apply(ctx, e.idle.OnIdleState(s.State, e.idleStatus()), "idle state "+string(s.State))
	case event.ActivityDetected:
		e.apply(ctx, e.idle.OnActivity(e.idleStatus()), "activity")
	case event.InactivityExpired:
		e.apply(ctx, e.idle.OnExpired(s, e.idleStatus()), "inactivity timeout")
	default:
		log.Printf("Warning: unhandled signal %T", sig)
	}
}

// Tick flushes elapsed time and checks for a day or week change.
func (e *Engine) Tick(ctx context.Context) {
	now := e.clock.Now()
	e.rollover(ctx, now)
	e.flush(ctx, now)
	if now.Sub(e.scoredAt) >= time.Minute {
		e.scoreFocus(now)
	}
	e.persist(ctx)
}

// Start moves Stopped to Tracking and begins a new session.
func (e *Engine) Start(ctx context.Context) error {
	if e.state.IsTracking {
		return ErrAlreadyTracking
	}
	now := e.clock.Now()
	e.rollover(ctx, now)
	start := now
	e.state.IsTracking = true
	e.state.Paused = false
	e.state.TrackingStartTime = &start
	e.state.CurrentSessionTime = 0
	e.state.SessionID = uuid.NewString()
	e.focus.DomainStartTime = now
	e.idle.Arm()
	e.mark(keyIsTracking, keyTrackingStartTime, keyCurrentSessionTime, keyTrackingMeta, keyCurrentFocus)
	e.persist(ctx)
	log.Printf("Tracking started, session %s", e.state.SessionID)
	return nil
}

// Stop flushes and moves Tracking or Paused to Stopped. It returns the length of the
// session that just ended.
func (e *Engine) Stop(ctx context.Context) (time.Duration, error) {
	if !e.state.IsTracking {
		return 0, ErrNotTracking
	}
	now := e.clock.Now()
	e.flush(ctx, now)
	e.idle.Cancel()
	session := e.state.CurrentSessionTime
	e.state.IsTracking = false
	e.state.Paused = false
	e.state.TrackingStartTime = nil
	e.state.CurrentSessionTime = 0
	e.mark(keyIsTracking, keyTrackingStartTime, keyCurrentSessionTime, keyTrackingMeta)
	e.scoreFocus(now)
	e.persist(ctx)
	log.Printf("Tracking stopped, session %s lasted %s", e.state.SessionID, session.Round(time.Second))
	return session, nil
}

// Switch records focus moving to tabID in windowID showing rawURL.
func (e *Engine) Switch(ctx context.Context, tabID, windowID int, rawURL string) {
	if rawURL == "" {
		return
	}
	domain, err := classifier.RootDomain(rawURL)
	if err != nil {
		log.Printf("Warning: %v, using raw value as domain", err)
	}
	if domain == "" {
		return
	}
	now := e.clock.Now()
	e.flush(ctx, now)

	prev := e.focus
	e.focus.TabID = tabID
	e.focus.WindowID = windowID
	e.mark(keyCurrentFocus)
	if domain == prev.Domain {
		e.persist(ctx)
		return
	}

	ev := event.SwitchEvent{
		Type:      event.SwitchTypeTab,
		FromID:    prev.TabID,
		ToID:      tabID,
		Domain:    domain,
		SessionID: e.state.SessionID,
		Timestamp: now,
	}
	if prev.WindowID != 0 && prev.WindowID != windowID {
		ev.Type = event.SwitchTypeWindow
		ev.FromID = prev.WindowID
		ev.ToID = windowID
	}
	e.recordSwitch(ctx, ev)

	e.focus.Domain = domain
	e.focus.DomainStartTime = now
	rec := e.record(domain)
	rec.Visits++
	rec.LastAccessed = now
	e.mark(keyTabData)
	e.scoreFocus(now)
	e.persist(ctx)
}

// blur handles the browser losing focus. The session clock keeps running but no domain
// accrues time until a window regains focus.
func (e *Engine) blur(ctx context.Context) {
	now := e.clock.Now()
	e.flush(ctx, now)
	e.focus = Focus{WindowID: event.WindowNone, DomainStartTime: now}
	e.mark(keyCurrentFocus)
	e.persist(ctx)
}

func (e *Engine) recordSwitch(ctx context.Context, ev event.SwitchEvent) {
	pruned := e.switches.Append(ev)
	e.reports.Record(ev)
	e.mark(keySwitchEvents, keySwitchingReports)
	if len(pruned) > 0 && e.archive != nil {
		if err := e.archive.ArchiveSwitches(ctx, pruned); err != nil {
			log.Printf("Warning: failed to archive %d switch events: %v", len(pruned), err)
		}
	}
}

func (e *Engine) record(domain string) *DomainRecord {
	rec, ok := e.domains[domain]
	if !ok {
		rec = &DomainRecord{Domain: domain, Category: e.categories.ClassifyDomain(domain)}
		e.domains[domain] = rec
	}
	return rec
}

func (e *Engine) idleStatus() idle.Status {
	return idle.Status{Tracking: e.state.IsTracking, Paused: e.state.Paused}
}

func (e *Engine) apply(ctx context.Context, action idle.Action, reason string) {
	now := e.clock.Now()
	switch action {
	case idle.Pause:
		if !e.state.IsTracking || e.state.Paused {
			return
		}
		e.flush(ctx, now)
		e.state.Paused = true
		e.mark(keyTrackingMeta)
		log.Printf("Tracking paused (%s)", reason)
	case idle.Resume:
		if !e.state.IsTracking || !e.state.Paused {
			return
		}
		start := now
		e.state.Paused = false
		e.state.TrackingStartTime = &start
		e.focus.DomainStartTime = now
		e.mark(keyTrackingMeta, keyTrackingStartTime, keyCurrentFocus)
		log.Printf("Tracking resumed (%s)", reason)
	default:
		return
	}
	e.persist(ctx)
}

// Shutdown flushes outstanding time and stops the inactivity timer. Tracking intent is kept so
// the next start resumes the session.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.flush(ctx, e.clock.Now())
	e.idle.Cancel()
	e.persist(ctx)
	if n := len(e.pending); n > 0 {
		return fmt.Errorf("%w: %d keys not saved", ErrStorageWrite, n)
	}
	return nil
}

// RestartAll wipes accumulated totals, records, the switch log, reports and the archive.
// Categories are kept.
func (e *Engine) RestartAll(ctx context.Context) error {
	now := e.clock.Now()
	e.idle.Cancel()
	e.state = TrackingState{
		LastDay:  report.DayKey(now),
		LastWeek: weekKey(now, e.opts.WeekStart),
	}
	e.domains = make(map[string]*DomainRecord)
	e.windows = make(map[int]*WindowRecord)
	e.categoryTimes = make(map[string]time.Duration)
	e.switches.Reset()
	e.reports.Reset()
	e.focus.DomainStartTime = now
	e.focusScore = 100
	e.scoredAt = now
	for _, k := range allKeys {
		e.mark(k)
	}
	var errs []error
	if e.archive != nil {
		if err := e.archive.Clear(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to clear history: %w", err))
		}
	}
	if err := e.persist(ctx); err != nil {
		errs = append(errs, err)
	}
	log.Printf("All tracking data reset")
	return errors.Join(errs...)
}

func (e *Engine) Status() StatusSnapshot {
	s := StatusSnapshot{
		Status:             e.state.Status(),
		IsTracking:         e.state.IsTracking,
		Paused:             e.state.Paused,
		SessionID:          e.state.SessionID,
		CurrentSessionTime: e.state.CurrentSessionTime,
		TotalTimeTracked:   e.state.TotalTimeTracked,
		TodayTime:          e.state.TodayTime,
		WeekTime:           e.state.WeekTime,
		CurrentDomain:      e.focus.Domain,
		PendingWrites:      len(e.pending),
	}
	if e.state.TrackingStartTime != nil {
		t := *e.state.TrackingStartTime
		s.TrackingStartTime = &t
	}
	return s
}

func (e *Engine) Times() TimesSnapshot {
	domainTimes := make(map[string]time.Duration, len(e.domains))
	for d, rec := range e.domains {
		domainTimes[d] = rec.TimeSpent
	}
	return TimesSnapshot{
		CurrentSessionTime: e.state.CurrentSessionTime,
		TodayTime:          e.state.TodayTime,
		WeekTime:           e.state.WeekTime,
		DomainTimes:        domainTimes,
	}
}

// Domains returns copies of all domain records, most time first.
func (e *Engine) Domains() []DomainRecord {
	out := make([]DomainRecord, 0, len(e.domains))
	for _, rec := range e.domains {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TimeSpent != out[j].TimeSpent {
			return out[i].TimeSpent > out[j].TimeSpent
		}
		return out[i].Domain < out[j].Domain
	})
	return out
}

func (e *Engine) Windows() []WindowRecord {
	out := make([]WindowRecord, 0, len(e.windows))
	for _, rec := range e.windows {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WindowID < out[j].WindowID })
	return out
}

func (e *Engine) SwitchingReport(p report.Period) (report.Report, error) {
	return e.reports.Generate(p)
}

// RecentSwitches returns up to limit of the newest switch events, oldest first.
// A limit below 1 returns the whole retained log.
func (e *Engine) RecentSwitches(limit int) []event.SwitchEvent {
	events := e.switches.Events()
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events
}

// UpdateDomainCategory reassigns a domain (or the domain of a URL). Only that domain's record
// changes; time already attributed to its previous category stays there.
func (e *Engine) UpdateDomainCategory(ctx context.Context, domainOrURL, category string) (string, error) {
	if category == "" {
		return "", ErrEmptyCategory
	}
	domain, err := classifier.RootDomain(domainOrURL)
	if err != nil {
		// Bare domains have no scheme and land here. Anything still unparseable keeps the
		// raw key that Switch would record it under.
		if d, err := classifier.RootDomain("https://" + domainOrURL); err == nil {
			domain = d
		}
	}
	if domain == "" {
		return "", ErrEmptyDomain
	}
	e.categories.SetOverride(domain, category)
	e.mark(keyCategories)
	if rec, ok := e.domains[domain]; ok {
		rec.Category = category
		e.mark(keyTabData)
	}
	e.persist(ctx)
	return domain, nil
}

// AddCategory creates a category or merges patterns into an existing one. It reports whether
// the category is new.
func (e *Engine) AddCategory(ctx context.Context, name string, patterns ...string) (bool, error) {
	if name == "" {
		return false, ErrEmptyCategory
	}
	created := e.categories.Add(name, patterns...)
	e.mark(keyCategories)
	e.persist(ctx)
	return created, nil
}

func (e *Engine) Categories() []classifier.Category {
	return e.categories.Categories()
}

func (e *Engine) CategoryOverrides() map[string]string {
	return e.categories.Overrides()
}

// CategoryTimes returns time accumulated per category at the moment it was spent.
func (e *Engine) CategoryTimes() map[string]time.Duration {
	out := make(map[string]time.Duration, len(e.categoryTimes))
	for k, v := range e.categoryTimes {
		out[k] = v
	}
	return out
}

func (e *Engine) FocusScore() int {
	return e.focusScore
}

func (e *Engine) scoreFocus(now time.Time) {
	var work, total time.Duration
	for _, rec := range e.domains {
		total += rec.TimeSpent
		if rec.Category == workCategory {
			work += rec.TimeSpent
		}
	}
	score := report.FocusScore(work, total, e.switches.Len())
	e.scoredAt = now
	if score != e.focusScore {
		e.focusScore = score
		e.mark(keyFocusScore)
	}
}
