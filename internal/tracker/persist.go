package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"tabtrack/internal/classifier"
	"tabtrack/internal/event"
	"tabtrack/internal/report"
)

// Store keys. Each holds the full JSON value of one piece of state.
const (
	keyTabData            = "tabData"
	keyWindowData         = "windowData"
	keyIsTracking         = "isTracking"
	keyTrackingStartTime  = "trackingStartTime"
	keyCurrentSessionTime = "currentSessionTime"
	keyTodayTime          = "todayTime"
	keyWeekTime           = "weekTime"
	keyTotalTimeTracked   = "totalTimeTracked"
	keyTrackingMeta       = "trackingMeta"
	keySwitchEvents       = "switchEvents"
	keySwitchingReports   = "switchingReports"
	keyCategories         = "categories"
	keyCategoryTimes      = "categoryTimes"
	keyFocusScore         = "focusScore"
	keyCurrentFocus       = "currentFocus"
)

var allKeys = []string{
	keyTabData, keyWindowData, keyIsTracking, keyTrackingStartTime, keyCurrentSessionTime,
	keyTodayTime, keyWeekTime, keyTotalTimeTracked, keyTrackingMeta, keySwitchEvents,
	keySwitchingReports, keyCategories, keyCategoryTimes, keyFocusScore, keyCurrentFocus,
}

type trackingMeta struct {
	Paused    bool   `json:"paused"`
	SessionID string `json:"sessionId,omitempty"`
	LastDay   string `json:"lastDay"`
	LastWeek  string `json:"lastWeek"`
}

func (e *Engine) mark(keys ...string) {
	for _, k := range keys {
		e.pending[k] = struct{}{}
	}
}

// persist writes every pending key with a single Set. On failure the keys stay pending and
// go out with the next mutation.
func (e *Engine) persist(ctx context.Context) error {
	if len(e.pending) == 0 {
		return nil
	}
	items := make(map[string][]byte, len(e.pending))
	for k := range e.pending {
		v, err := e.encode(k)
		if err != nil {
			log.Printf("Warning: failed to encode %s: %v", k, err)
			delete(e.pending, k)
			continue
		}
		items[k] = v
	}
	if err := e.store.Set(ctx, items); err != nil {
		log.Printf("Warning: failed to save %d keys, will retry on next change: %v", len(items), err)
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	clear(e.pending)
	return nil
}

// PendingKeys lists keys whose last write failed, sorted.
func (e *Engine) PendingKeys() []string {
	keys := make([]string, 0, len(e.pending))
	for k := range e.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *Engine) encode(key string) ([]byte, error) {
	switch key {
	case keyTabData:
		return json.Marshal(e.domains)
	case keyWindowData:
		return json.Marshal(e.windows)
	case keyIsTracking:
		return json.Marshal(e.state.IsTracking)
	case keyTrackingStartTime:
		return json.Marshal(e.state.TrackingStartTime)
	case keyCurrentSessionTime:
		return json.Marshal(e.state.CurrentSessionTime)
	case keyTodayTime:
		return json.Marshal(e.state.TodayTime)
	case keyWeekTime:
		return json.Marshal(e.state.WeekTime)
	case keyTotalTimeTracked:
		return json.Marshal(e.state.TotalTimeTracked)
	case keyTrackingMeta:
		return json.Marshal(trackingMeta{
			Paused:    e.state.Paused,
			SessionID: e.state.SessionID,
			LastDay:   e.state.LastDay,
			LastWeek:  e.state.LastWeek,
		})
	case keySwitchEvents:
		return json.Marshal(e.switches.Events())
	case keySwitchingReports:
		return json.Marshal(e.reports)
	case keyCategories:
		return json.Marshal(e.categories)
	case keyCategoryTimes:
		return json.Marshal(e.categoryTimes)
	case keyFocusScore:
		return json.Marshal(e.focusScore)
	case keyCurrentFocus:
		return json.Marshal(e.focus)
	}
	return nil, fmt.Errorf("unknown key %q", key)
}

// load reads every key and returns the set of keys the store did not have.
func (e *Engine) load(ctx context.Context) (map[string]struct{}, error) {
	data, err := e.store.Get(ctx, allKeys...)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	missing := make(map[string]struct{})
	for _, k := range allKeys {
		raw, ok := data[k]
		if !ok {
			missing[k] = struct{}{}
			continue
		}
		if err := e.decode(k, raw); err != nil {
			log.Printf("Warning: discarding unreadable %s: %v", k, err)
			missing[k] = struct{}{}
		}
	}
	return missing, nil
}

func (e *Engine) decode(key string, raw []byte) error {
	switch key {
	case keyTabData:
		domains := make(map[string]*DomainRecord)
		if err := json.Unmarshal(raw, &domains); err != nil {
			return err
		}
		if domains == nil {
			domains = make(map[string]*DomainRecord)
		}
		e.domains = domains
	case keyWindowData:
		windows := make(map[int]*WindowRecord)
		if err := json.Unmarshal(raw, &windows); err != nil {
			return err
		}
		if windows == nil {
			windows = make(map[int]*WindowRecord)
		}
		e.windows = windows
	case keyIsTracking:
		return json.Unmarshal(raw, &e.state.IsTracking)
	case keyTrackingStartTime:
		var t *time.Time
		if err := json.Unmarshal(raw, &t); err != nil {
			return err
		}
		e.state.TrackingStartTime = t
	case keyCurrentSessionTime:
		return json.Unmarshal(raw, &e.state.CurrentSessionTime)
	case keyTodayTime:
		return json.Unmarshal(raw, &e.state.TodayTime)
	case keyWeekTime:
		return json.Unmarshal(raw, &e.state.WeekTime)
	case keyTotalTimeTracked:
		return json.Unmarshal(raw, &e.state.TotalTimeTracked)
	case keyTrackingMeta:
		var m trackingMeta
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		e.state.Paused = m.Paused
		e.state.SessionID = m.SessionID
		e.state.LastDay = m.LastDay
		e.state.LastWeek = m.LastWeek
	case keySwitchEvents:
		var events []event.SwitchEvent
		if err := json.Unmarshal(raw, &events); err != nil {
			return err
		}
		e.switches.Restore(events)
	case keySwitchingReports:
		agg := report.NewAggregator()
		if err := json.Unmarshal(raw, agg); err != nil {
			return err
		}
		e.reports = agg
	case keyCategories:
		m := classifier.NewCategoryMap()
		if err := json.Unmarshal(raw, m); err != nil {
			return err
		}
		e.categories = m
	case keyCategoryTimes:
		times := make(map[string]time.Duration)
		if err := json.Unmarshal(raw, &times); err != nil {
			return err
		}
		if times == nil {
			times = make(map[string]time.Duration)
		}
		e.categoryTimes = times
	case keyFocusScore:
		return json.Unmarshal(raw, &e.focusScore)
	case keyCurrentFocus:
		return json.Unmarshal(raw, &e.focus)
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}
