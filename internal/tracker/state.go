package tracker

import (
	"errors"
	"time"
)

type Status string

const (
	StatusStopped  Status = "stopped"
	StatusTracking Status = "tracking"
	StatusPaused   Status = "paused"
)

var (
	ErrAlreadyTracking = errors.New("tracking is already active")
	ErrNotTracking     = errors.New("tracking is not active")
	ErrStorageWrite    = errors.New("storage write failure")
	ErrEmptyCategory   = errors.New("category name is required")
	ErrEmptyDomain     = errors.New("domain is required")
)

// TrackingState holds the session clock and the cumulative counters.
// TrackingStartTime is non-nil exactly when IsTracking is true. While paused it is kept
// but flushes are suspended, and it is rebased on resume.
type TrackingState struct {
	IsTracking         bool          `json:"isTracking"`
	Paused             bool          `json:"paused"`
	TrackingStartTime  *time.Time    `json:"trackingStartTime"`
	SessionID          string        `json:"sessionId,omitempty"`
	CurrentSessionTime time.Duration `json:"currentSessionTime"`
	TotalTimeTracked   time.Duration `json:"totalTimeTracked"`
	TodayTime          time.Duration `json:"todayTime"`
	WeekTime           time.Duration `json:"weekTime"`
	// LastDay and LastWeek are the period keys the today/week counters belong to.
	LastDay  string `json:"lastDay"`
	LastWeek string `json:"lastWeek"`
}

func (s TrackingState) Status() Status {
	switch {
	case !s.IsTracking:
		return StatusStopped
	case s.Paused:
		return StatusPaused
	}
	return StatusTracking
}

// DomainRecord accumulates time for one root domain.
type DomainRecord struct {
	Domain       string        `json:"domain"`
	TimeSpent    time.Duration `json:"timeSpent"`
	Visits       int           `json:"visits"`
	Category     string        `json:"category"`
	LastAccessed time.Time     `json:"lastAccessed"`
}

type WindowRecord struct {
	WindowID  int           `json:"windowId"`
	TimeSpent time.Duration `json:"timeSpent"`
}

// Focus is the currently focused tab. Domain is empty when no browser window has focus.
type Focus struct {
	TabID           int       `json:"tabId"`
	WindowID        int       `json:"windowId"`
	Domain          string    `json:"domain"`
	DomainStartTime time.Time `json:"domainStartTime"`
}

// StatusSnapshot is a read-only view of the tracking state.
type StatusSnapshot struct {
	Status             Status
	IsTracking         bool
	Paused             bool
	TrackingStartTime  *time.Time
	SessionID          string
	CurrentSessionTime time.Duration
	TotalTimeTracked   time.Duration
	TodayTime          time.Duration
	WeekTime           time.Duration
	CurrentDomain      string
	PendingWrites      int
}

type TimesSnapshot struct {
	CurrentSessionTime time.Duration
	TodayTime          time.Duration
	WeekTime           time.Duration
	DomainTimes        map[string]time.Duration
}
