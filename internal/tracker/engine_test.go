package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabtrack/internal/classifier"
	"tabtrack/internal/event"
	"tabtrack/internal/history"
	"tabtrack/internal/platform/clock"
	"tabtrack/internal/report"
	"tabtrack/internal/storage/memory"
)

// Wednesday
var t0 = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

type fakeArchive struct {
	days     []history.DaySummary
	switches []event.SwitchEvent
	cleared  int
}

func (a *fakeArchive) SaveDay(_ context.Context, d history.DaySummary) error {
	a.days = append(a.days, d)
	return nil
}

func (a *fakeArchive) ArchiveSwitches(_ context.Context, events []event.SwitchEvent) error {
	a.switches = append(a.switches, events...)
	return nil
}

func (a *fakeArchive) Clear(context.Context) error {
	a.cleared++
	a.days = nil
	a.switches = nil
	return nil
}

type harness struct {
	engine  *Engine
	clock   *clock.Fake
	store   *memory.Store
	archive *fakeArchive
	expired []event.InactivityExpired
}

func newHarness(t *testing.T, start time.Time, opts Options) *harness {
	t.Helper()
	h := &harness{
		clock:   clock.NewFake(start),
		store:   memory.New(),
		archive: &fakeArchive{},
	}
	h.engine = h.build(t, opts)
	return h
}

// build creates an engine over the harness store, as a restarted daemon would.
func (h *harness) build(t *testing.T, opts Options) *Engine {
	t.Helper()
	e := New(opts, h.clock, h.store, h.archive, func(ev event.InactivityExpired) {
		h.expired = append(h.expired, ev)
	})
	require.NoError(t, e.Init(context.Background()))
	return e
}

func (h *harness) tick(d time.Duration) {
	h.clock.Advance(d)
	h.engine.HandleSignal(context.Background(), event.Tick{})
}

func (h *harness) deliverExpired() {
	for _, ev := range h.expired {
		h.engine.HandleSignal(context.Background(), ev)
	}
	h.expired = nil
}

func TestInitSeedsDefaults(t *testing.T) {
	h := newHarness(t, t0, Options{})

	s := h.engine.Status()
	assert.Equal(t, StatusStopped, s.Status)
	assert.Nil(t, s.TrackingStartTime)
	assert.Equal(t, []string{"Work", "Social", "News", "Entertainment"}, names(h.engine.Categories()))
	assert.Empty(t, h.engine.PendingKeys())

	raw, ok := h.store.Raw(keyIsTracking)
	require.True(t, ok)
	assert.Equal(t, "false", string(raw))
	_, ok = h.store.Raw(keyTabData)
	assert.True(t, ok)
}

func TestInitUsesConfiguredCategories(t *testing.T) {
	cats := classifier.NewCategoryMap()
	cats.Add("Dev", "golang.org")
	h := newHarness(t, t0, Options{Categories: cats})
	assert.Equal(t, []string{"Dev"}, names(h.engine.Categories()))
}

func TestSessionTimeExcludesPausedIntervals(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	require.NoError(t, h.engine.Start(ctx))
	h.tick(10 * time.Second)
	h.tick(5 * time.Second)

	h.engine.HandleSignal(ctx, event.IdleStateChanged{State: event.IdleIdle})
	assert.Equal(t, StatusPaused, h.engine.Status().Status)
	h.tick(time.Minute)
	assert.Equal(t, 15*time.Second, h.engine.Status().CurrentSessionTime)

	h.engine.HandleSignal(ctx, event.ActivityDetected{})
	assert.Equal(t, StatusTracking, h.engine.Status().Status)
	h.clock.Advance(7 * time.Second)

	session, err := h.engine.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, 22*time.Second, session)

	s := h.engine.Status()
	assert.Equal(t, StatusStopped, s.Status)
	assert.Nil(t, s.TrackingStartTime)
	assert.Zero(t, s.CurrentSessionTime)
	assert.Equal(t, 22*time.Second, s.TotalTimeTracked)
	assert.Equal(t, 22*time.Second, s.TodayTime)
	assert.Equal(t, 22*time.Second, s.WeekTime)
}

func TestStopTwice(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	require.NoError(t, h.engine.Start(ctx))
	h.tick(time.Minute)
	_, err := h.engine.Stop(ctx)
	require.NoError(t, err)
	before := h.engine.Status()

	h.clock.Advance(time.Minute)
	_, err = h.engine.Stop(ctx)
	assert.True(t, errors.Is(err, ErrNotTracking))
	assert.Equal(t, before, h.engine.Status())
}

func TestStartTwice(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	require.NoError(t, h.engine.Start(ctx))
	id := h.engine.Status().SessionID
	assert.NotEmpty(t, id)

	h.clock.Advance(time.Second)
	assert.True(t, errors.Is(h.engine.Start(ctx), ErrAlreadyTracking))
	assert.Equal(t, id, h.engine.Status().SessionID)
	assert.Equal(t, t0, *h.engine.Status().TrackingStartTime)
}

func TestFlushIsIdempotent(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	require.NoError(t, h.engine.Start(ctx))
	h.clock.Advance(3 * time.Second)
	h.engine.Tick(ctx)
	h.engine.Tick(ctx)
	assert.Equal(t, 3*time.Second, h.engine.Status().CurrentSessionTime)
}

func TestSwitchFlushesOutgoingDomain(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	require.NoError(t, h.engine.Start(ctx))
	h.engine.HandleSignal(ctx, event.TabActivated{TabID: 1, WindowID: 1, URL: "https://github.com/golang/go"})
	h.clock.Advance(30 * time.Second)
	h.engine.HandleSignal(ctx, event.TabActivated{TabID: 2, WindowID: 1, URL: "https://www.bbc.com/news"})
	h.tick(10 * time.Second)

	times := h.engine.Times()
	assert.Equal(t, 30*time.Second, times.DomainTimes["github.com"])
	assert.Equal(t, 10*time.Second, times.DomainTimes["www.bbc.com"])
	assert.Equal(t, 40*time.Second, times.CurrentSessionTime)

	domains := h.engine.Domains()
	require.Len(t, domains, 2)
	assert.Equal(t, "github.com", domains[0].Domain)
	assert.Equal(t, "Work", domains[0].Category)
	assert.Equal(t, 1, domains[0].Visits)
	assert.Equal(t, "News", domains[1].Category)

	switches := h.engine.RecentSwitches(0)
	require.Len(t, switches, 2)
	assert.Equal(t, event.SwitchTypeTab, switches[1].Type)
	assert.Equal(t, 1, switches[1].FromID)
	assert.Equal(t, 2, switches[1].ToID)
	assert.Equal(t, "www.bbc.com", switches[1].Domain)
	assert.Equal(t, h.engine.Status().SessionID, switches[1].SessionID)

	windows := h.engine.Windows()
	require.Len(t, windows, 1)
	assert.Equal(t, 40*time.Second, windows[0].TimeSpent)
}

func TestSameDomainSwitchOnlyUpdatesFocus(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	h.engine.HandleSignal(ctx, event.TabActivated{TabID: 1, WindowID: 1, URL: "https://github.com/a"})
	h.engine.HandleSignal(ctx, event.TabActivated{TabID: 2, WindowID: 1, URL: "https://github.com/b"})
	h.engine.HandleSignal(ctx, event.TabUpdated{TabID: 2, WindowID: 1, URL: "https://github.com/c", Complete: true, Active: true})

	assert.Len(t, h.engine.RecentSwitches(0), 1)
	assert.Equal(t, 1, h.engine.Domains()[0].Visits)
}

func TestIncompleteTabUpdateIgnored(t *testing.T) {
	h := newHarness(t, t0, Options{})
	h.engine.HandleSignal(context.Background(), event.TabUpdated{TabID: 1, WindowID: 1, URL: "https://github.com", Active: true})
	assert.Empty(t, h.engine.Domains())
}

func TestWindowSwitchType(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	h.engine.HandleSignal(ctx, event.WindowFocusChanged{WindowID: 1, TabID: 10, URL: "https://github.com"})
	h.engine.HandleSignal(ctx, event.WindowFocusChanged{WindowID: 2, TabID: 20, URL: "https://youtube.com"})

	switches := h.engine.RecentSwitches(0)
	require.Len(t, switches, 2)
	assert.Equal(t, event.SwitchTypeWindow, switches[1].Type)
	assert.Equal(t, 1, switches[1].FromID)
	assert.Equal(t, 2, switches[1].ToID)

	last := h.engine.RecentSwitches(1)
	require.Len(t, last, 1)
	assert.Equal(t, "youtube.com", last[0].Domain)
	assert.Len(t, h.engine.RecentSwitches(10), 2)
}

func TestBrowserBlurStopsDomainTime(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	require.NoError(t, h.engine.Start(ctx))
	h.engine.HandleSignal(ctx, event.TabActivated{TabID: 1, WindowID: 1, URL: "https://github.com"})
	h.clock.Advance(10 * time.Second)
	h.engine.HandleSignal(ctx, event.WindowFocusChanged{WindowID: event.WindowNone})
	assert.Empty(t, h.engine.Status().CurrentDomain)
	h.tick(20 * time.Second)

	times := h.engine.Times()
	assert.Equal(t, 10*time.Second, times.DomainTimes["github.com"])
	assert.Equal(t, 30*time.Second, times.CurrentSessionTime)
}

func TestDayRollover(t *testing.T) {
	h := newHarness(t, time.Date(2026, 3, 4, 23, 59, 0, 0, time.UTC), Options{})
	ctx := context.Background()

	require.NoError(t, h.engine.Start(ctx))
	h.tick(50 * time.Second)
	assert.Equal(t, 50*time.Second, h.engine.Status().TodayTime)

	h.tick(20 * time.Second)
	s := h.engine.Status()
	assert.Equal(t, 20*time.Second, s.TodayTime)
	assert.Equal(t, 70*time.Second, s.WeekTime)
	assert.Equal(t, 70*time.Second, s.TotalTimeTracked)

	require.Len(t, h.archive.days, 1)
	assert.Equal(t, "2026-03-04", h.archive.days[0].Day)
	assert.Equal(t, int64(50), h.archive.days[0].TrackedSeconds)
}

func TestDayRolloverWhileStopped(t *testing.T) {
	h := newHarness(t, time.Date(2026, 3, 4, 23, 0, 0, 0, time.UTC), Options{})
	ctx := context.Background()

	require.NoError(t, h.engine.Start(ctx))
	h.tick(time.Minute)
	_, err := h.engine.Stop(ctx)
	require.NoError(t, err)

	h.tick(2 * time.Hour)
	assert.Zero(t, h.engine.Status().TodayTime)
	assert.Len(t, h.archive.days, 1)
}

func TestWeekRollover(t *testing.T) {
	sunday := time.Date(2026, 3, 8, 23, 59, 50, 0, time.UTC)

	h := newHarness(t, sunday, Options{WeekStart: time.Monday})
	require.NoError(t, h.engine.Start(context.Background()))
	h.tick(5 * time.Second)
	h.tick(20 * time.Second)
	assert.Equal(t, 20*time.Second, h.engine.Status().WeekTime)

	h = newHarness(t, sunday, Options{WeekStart: time.Sunday})
	require.NoError(t, h.engine.Start(context.Background()))
	h.tick(5 * time.Second)
	h.tick(20 * time.Second)
	assert.Equal(t, 25*time.Second, h.engine.Status().WeekTime)
}

func TestInactivityPausesOnceAndRebasesOnResume(t *testing.T) {
	h := newHarness(t, t0, Options{InactivityTimeout: 5 * time.Minute})
	ctx := context.Background()

	require.NoError(t, h.engine.Start(ctx))
	h.clock.Advance(5 * time.Minute)
	require.Len(t, h.expired, 1)
	exp := h.expired[0]
	h.deliverExpired()
	assert.Equal(t, StatusPaused, h.engine.Status().Status)
	assert.Equal(t, 5*time.Minute, h.engine.Status().CurrentSessionTime)

	// A duplicate delivery and a coarse idle signal change nothing.
	h.engine.HandleSignal(ctx, exp)
	h.engine.HandleSignal(ctx, event.IdleStateChanged{State: event.IdleLocked})
	h.tick(2 * time.Minute)
	assert.Equal(t, 5*time.Minute, h.engine.Status().CurrentSessionTime)

	h.engine.HandleSignal(ctx, event.ActivityDetected{})
	s := h.engine.Status()
	assert.Equal(t, StatusTracking, s.Status)
	require.NotNil(t, s.TrackingStartTime)
	assert.Equal(t, h.clock.Now(), *s.TrackingStartTime)

	h.clock.Advance(10 * time.Second)
	session, err := h.engine.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute+10*time.Second, session)
	assert.Zero(t, h.clock.Pending())
}

func TestActivityRearmsSingleTimer(t *testing.T) {
	h := newHarness(t, t0, Options{InactivityTimeout: 5 * time.Minute})
	ctx := context.Background()

	require.NoError(t, h.engine.Start(ctx))
	for i := 0; i < 5; i++ {
		h.clock.Advance(time.Minute)
		h.engine.HandleSignal(ctx, event.ActivityDetected{})
	}
	assert.Equal(t, 1, h.clock.Pending())
	assert.Empty(t, h.expired)

	// An expiry from an earlier arm is stale.
	h.engine.HandleSignal(ctx, event.InactivityExpired{Generation: 1})
	assert.Equal(t, StatusTracking, h.engine.Status().Status)
}

func TestActivityWhileStoppedDoesNothing(t *testing.T) {
	h := newHarness(t, t0, Options{})
	h.engine.HandleSignal(context.Background(), event.ActivityDetected{})
	assert.Equal(t, StatusStopped, h.engine.Status().Status)
	assert.Zero(t, h.clock.Pending())
}

func TestRestartAll(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	require.NoError(t, h.engine.Start(ctx))
	h.engine.HandleSignal(ctx, event.TabActivated{TabID: 1, WindowID: 1, URL: "https://github.com"})
	h.tick(time.Minute)

	require.NoError(t, h.engine.RestartAll(ctx))

	assert.Empty(t, h.engine.Domains())
	assert.Empty(t, h.engine.Times().DomainTimes)
	assert.Empty(t, h.engine.CategoryTimes())
	assert.Empty(t, h.engine.RecentSwitches(0))
	s := h.engine.Status()
	assert.False(t, s.IsTracking)
	assert.Nil(t, s.TrackingStartTime)
	assert.Zero(t, s.TotalTimeTracked)
	assert.Equal(t, 1, h.archive.cleared)
	assert.Zero(t, h.clock.Pending())
	_, err := h.engine.SwitchingReport(report.Daily)
	assert.True(t, errors.Is(err, report.ErrNoData))
	assert.NotEmpty(t, h.engine.Categories())

	raw, ok := h.store.Raw(keyTabData)
	require.True(t, ok)
	assert.Equal(t, "{}", string(raw))
}

func TestCategoryReassignmentIsNotRetroactive(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	require.NoError(t, h.engine.Start(ctx))
	h.engine.HandleSignal(ctx, event.TabActivated{TabID: 1, WindowID: 1, URL: "https://github.com"})
	h.tick(30 * time.Second)
	h.engine.HandleSignal(ctx, event.TabActivated{TabID: 2, WindowID: 1, URL: "https://youtube.com"})
	h.tick(5 * time.Second)

	domain, err := h.engine.UpdateDomainCategory(ctx, "github.com", "Entertainment")
	require.NoError(t, err)
	assert.Equal(t, "github.com", domain)

	h.engine.HandleSignal(ctx, event.TabActivated{TabID: 1, WindowID: 1, URL: "https://github.com"})
	h.tick(10 * time.Second)

	byDomain := map[string]DomainRecord{}
	for _, rec := range h.engine.Domains() {
		byDomain[rec.Domain] = rec
	}
	assert.Equal(t, "Entertainment", byDomain["github.com"].Category)
	assert.Equal(t, "Entertainment", byDomain["youtube.com"].Category)

	ct := h.engine.CategoryTimes()
	assert.Equal(t, 30*time.Second, ct["Work"])
	assert.Equal(t, 15*time.Second, ct["Entertainment"])
}

func TestUpdateCategoryAcceptsURL(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	domain, err := h.engine.UpdateDomainCategory(ctx, "https://News.ycombinator.com/item?id=1", "Reading")
	require.NoError(t, err)
	assert.Equal(t, "news.ycombinator.com", domain)
	assert.Equal(t, "Reading", h.engine.CategoryOverrides()["news.ycombinator.com"])
	assert.Contains(t, names(h.engine.Categories()), "Reading")

	_, err = h.engine.UpdateDomainCategory(ctx, "github.com", "")
	assert.True(t, errors.Is(err, ErrEmptyCategory))
}

func TestUpdateCategoryOfUnvisitedDomain(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	domain, err := h.engine.UpdateDomainCategory(ctx, "example.com", "Work")
	require.NoError(t, err)
	assert.Equal(t, "example.com", domain)
	assert.Empty(t, h.engine.Domains())

	h.engine.HandleSignal(ctx, event.TabActivated{TabID: 1, WindowID: 1, URL: "https://example.com/a"})
	domains := h.engine.Domains()
	require.Len(t, domains, 1)
	assert.Equal(t, "Work", domains[0].Category)
	assert.Equal(t, 1, domains[0].Visits)
}

func TestUpdateCategoryOfUnparseableValue(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	domain, err := h.engine.UpdateDomainCategory(ctx, "not a url", "Work")
	require.NoError(t, err)
	assert.Equal(t, "not a url", domain)
	assert.Empty(t, h.engine.Domains())

	h.engine.HandleSignal(ctx, event.TabActivated{TabID: 1, WindowID: 1, URL: "not a url"})
	domains := h.engine.Domains()
	require.Len(t, domains, 1)
	assert.Equal(t, "not a url", domains[0].Domain)
	assert.Equal(t, "Work", domains[0].Category)
}

func TestAddCategoryClassifiesNewDomains(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	created, err := h.engine.AddCategory(ctx, "Dev", "golang.org")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = h.engine.AddCategory(ctx, "Dev", "go.dev")
	require.NoError(t, err)
	assert.False(t, created)

	h.engine.HandleSignal(ctx, event.TabActivated{TabID: 1, WindowID: 1, URL: "https://pkg.go.dev/fmt"})
	assert.Equal(t, "Dev", h.engine.Domains()[0].Category)

	_, err = h.engine.AddCategory(ctx, "")
	assert.True(t, errors.Is(err, ErrEmptyCategory))
}

func TestInvalidURLUsesRawDomain(t *testing.T) {
	h := newHarness(t, t0, Options{})
	h.engine.HandleSignal(context.Background(), event.TabActivated{TabID: 1, WindowID: 1, URL: "not a url"})
	domains := h.engine.Domains()
	require.Len(t, domains, 1)
	assert.Equal(t, "not a url", domains[0].Domain)
	assert.Equal(t, classifier.Uncategorized, domains[0].Category)
}

func TestSwitchingReport(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	urls := []string{"https://github.com", "https://bbc.com", "https://youtube.com"}
	at := []time.Duration{0, 30 * time.Minute, 5 * time.Hour}
	for i, u := range urls {
		h.clock.Set(t0.Add(at[i]))
		h.engine.HandleSignal(ctx, event.TabActivated{TabID: i + 1, WindowID: 1, URL: u})
	}

	r, err := h.engine.SwitchingReport(report.Daily)
	require.NoError(t, err)
	assert.Equal(t, 3, r.TotalSwitches)
	assert.Equal(t, "9:00", r.PeakSwitchingPeriod)
}

func TestPrunedSwitchesAreArchived(t *testing.T) {
	h := newHarness(t, t0, Options{LogRetention: 2})
	ctx := context.Background()

	for i, u := range []string{"https://a.com", "https://b.com", "https://c.com"} {
		h.engine.HandleSignal(ctx, event.TabActivated{TabID: i + 1, WindowID: 1, URL: u})
	}
	assert.Len(t, h.engine.RecentSwitches(0), 2)
	require.Len(t, h.archive.switches, 1)
	assert.Equal(t, "a.com", h.archive.switches[0].Domain)
}

func TestStorageFailureRetriedOnNextMutation(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	h.store.FailWrites(true)
	require.NoError(t, h.engine.Start(ctx))
	assert.True(t, h.engine.Status().IsTracking)
	assert.Contains(t, h.engine.PendingKeys(), keyIsTracking)

	raw, _ := h.store.Raw(keyIsTracking)
	assert.Equal(t, "false", string(raw))

	h.store.FailWrites(false)
	h.tick(time.Second)
	assert.Empty(t, h.engine.PendingKeys())
	raw, _ = h.store.Raw(keyIsTracking)
	assert.Equal(t, "true", string(raw))
}

func TestShutdownReportsUnsavedKeys(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	require.NoError(t, h.engine.Start(ctx))
	h.clock.Advance(time.Second)
	h.store.FailWrites(true)
	assert.True(t, errors.Is(h.engine.Shutdown(ctx), ErrStorageWrite))
}

func TestRestartRebasesTrackingStart(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	require.NoError(t, h.engine.Start(ctx))
	h.engine.HandleSignal(ctx, event.TabActivated{TabID: 1, WindowID: 1, URL: "https://github.com"})
	h.tick(10 * time.Second)
	session := h.engine.Status().SessionID

	// The process is down for an hour.
	h.clock.Set(h.clock.Now().Add(time.Hour))
	h.engine = h.build(t, Options{})

	s := h.engine.Status()
	assert.True(t, s.IsTracking)
	assert.Equal(t, session, s.SessionID)
	require.NotNil(t, s.TrackingStartTime)
	assert.Equal(t, h.clock.Now(), *s.TrackingStartTime)
	assert.Equal(t, 10*time.Second, s.CurrentSessionTime)
	assert.Equal(t, "github.com", s.CurrentDomain)

	h.tick(5 * time.Second)
	assert.Equal(t, 15*time.Second, h.engine.Status().CurrentSessionTime)
	assert.Equal(t, 15*time.Second, h.engine.Times().DomainTimes["github.com"])
	assert.Len(t, h.engine.RecentSwitches(0), 1)
}

func TestClockMovingBackwardsAddsNothing(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()

	require.NoError(t, h.engine.Start(ctx))
	h.clock.Set(t0.Add(-time.Minute))
	h.engine.Tick(ctx)
	assert.Zero(t, h.engine.Status().CurrentSessionTime)
}

func TestFocusScore(t *testing.T) {
	h := newHarness(t, t0, Options{})
	ctx := context.Background()
	assert.Equal(t, 100, h.engine.FocusScore())

	require.NoError(t, h.engine.Start(ctx))
	h.engine.HandleSignal(ctx, event.TabActivated{TabID: 1, WindowID: 1, URL: "https://github.com"})
	h.clock.Advance(10 * time.Minute)
	h.engine.HandleSignal(ctx, event.TabActivated{TabID: 2, WindowID: 1, URL: "https://youtube.com"})
	h.clock.Advance(10 * time.Minute)
	_, err := h.engine.Stop(ctx)
	require.NoError(t, err)

	// half the time on work, 2 switches over 20 minutes
	assert.Equal(t, 49, h.engine.FocusScore())
}

func names(cats []classifier.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.Name
	}
	return out
}
