package event

import "time"

type SwitchType string

const (
	SwitchTypeTab    SwitchType = "tab"
	SwitchTypeWindow SwitchType = "window"
)

// WindowNone is reported when no browser window has focus.
const WindowNone = -1

// SwitchEvent records one focus transition between tabs or windows.
type SwitchEvent struct {
	Type      SwitchType `json:"type"`
	FromID    int        `json:"fromId"`
	ToID      int        `json:"toId"`
	Domain    string     `json:"domain"`
	SessionID string     `json:"sessionId,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// IdleState is the coarse OS/browser idle state.
type IdleState string

const (
	IdleActive IdleState = "active"
	IdleIdle   IdleState = "idle"
	IdleLocked IdleState = "locked"
)

func (s IdleState) Valid() bool {
	return s == IdleActive || s == IdleIdle || s == IdleLocked
}

// Signal is anything the tracking loop reacts to besides commands.
type Signal interface {
	signal()
}

// Browser-originated signals

type TabActivated struct {
	TabID    int    `json:"tabId"`
	WindowID int    `json:"windowId"`
	URL      string `json:"url"`
}

// TabUpdated only matters once the page finished loading in the active tab.
type TabUpdated struct {
	TabID    int    `json:"tabId"`
	WindowID int    `json:"windowId"`
	URL      string `json:"url"`
	Complete bool   `json:"complete"`
	Active   bool   `json:"active"`
}

// WindowFocusChanged carries the active tab of the newly focused window.
// WindowID == WindowNone means the browser lost focus.
type WindowFocusChanged struct {
	WindowID int    `json:"windowId"`
	TabID    int    `json:"tabId"`
	URL      string `json:"url"`
}

type IdleStateChanged struct {
	State IdleState `json:"state"`
}

// ActivityDetected is a fine-grained input signal (pointer, key, scroll, click).
type ActivityDetected struct{}

// Internal signals

type Tick struct{}

// InactivityExpired is posted by the inactivity timer; Generation identifies which arm fired.
type InactivityExpired struct {
	Generation uint64
}

func (TabActivated) signal()       {}
func (TabUpdated) signal()         {}
func (WindowFocusChanged) signal() {}
func (IdleStateChanged) signal()   {}
func (ActivityDetected) signal()   {}
func (Tick) signal()               {}
func (InactivityExpired) signal()  {}
