package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tabtrack/internal/event"
)

const DefaultSocketPath = "/tmp/tabtrack.sock"

// Command represents a command sent over the socket
type Command struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// NewCommand encodes args (which may be nil) into a command.
func NewCommand(name string, args any) (Command, error) {
	cmd := Command{Name: name}
	if args == nil {
		return cmd, nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return Command{}, fmt.Errorf("failed to encode args for %s: %w", name, err)
	}
	cmd.Args = raw
	return cmd, nil
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Response represents a response sent back over the socket
type Response struct {
	Status  Status          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// OK builds a success response. data may be nil.
func OK(message string, data any) Response {
	r := Response{Status: StatusSuccess, Message: message}
	if data == nil {
		return r
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Fail(fmt.Errorf("failed to encode response: %w", err))
	}
	r.Data = raw
	return r
}

func Fail(err error) Response {
	return Response{Status: StatusError, Message: err.Error()}
}

// Err returns the error carried by a failed response.
func (r Response) Err() error {
	if r.Status == StatusSuccess {
		return nil
	}
	if r.Message == "" {
		return errors.New("request failed")
	}
	return errors.New(r.Message)
}

// Decode unmarshals the data payload into v.
func (r Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return errors.New("response has no data")
	}
	return json.Unmarshal(r.Data, v)
}

// --- Command Names (Constants) ---

const (
	CmdStartTracking        = "startTracking"
	CmdStopTracking         = "stopTracking"
	CmdGetTrackingStatus    = "getTrackingStatus"
	CmdGetTrackingTimes     = "getTrackingTimes"
	CmdGetSwitchingReport   = "getSwitchingReport"
	CmdUpdateURLCategory    = "updateURLCategory"
	CmdUpdateDomainCategory = "updateDomainCategory"
	CmdGetAllDomainTimes    = "getAllDomainTimes"
	CmdAddCategory          = "addCategory"
	CmdGetCategories        = "getCategories"
	CmdGetCategoryTimes     = "getCategoryTimes"
	CmdGetFocusScore        = "getFocusScore"
	CmdGetHistory           = "getHistory"
	CmdGetRecentSwitches    = "getRecentSwitches"
	CmdRestartAll           = "restartAll"
	CmdPing                 = "ping" // Simple health check

	// Browser signals, relayed by the extension bridge.
	CmdActivityDetected   = "activityDetected"
	CmdTabActivated       = "tabActivated"
	CmdTabUpdated         = "tabUpdated"
	CmdWindowFocusChanged = "windowFocusChanged"
	CmdIdleStateChanged   = "idleStateChanged"
)

// --- Command Argument Structs ---

type SwitchingReportArgs struct {
	Period string `json:"period"`
}

// CategoryArgs updates one domain. URL may be given instead of Domain.
type CategoryArgs struct {
	Domain   string `json:"domain,omitempty"`
	URL      string `json:"url,omitempty"`
	Category string `json:"category"`
}

type AddCategoryArgs struct {
	Category string   `json:"category"`
	Patterns []string `json:"patterns,omitempty"`
}

type HistoryArgs struct {
	Days int `json:"days"`
}

type RecentSwitchesArgs struct {
	Limit int `json:"limit"`
}

// --- Response Data ---
// Durations are milliseconds.

type StatusData struct {
	IsTracking         bool       `json:"isTracking"`
	Paused             bool       `json:"paused"`
	State              string     `json:"state"`
	TrackingStartTime  *time.Time `json:"trackingStartTime"`
	SessionID          string     `json:"sessionId,omitempty"`
	CurrentSessionTime int64      `json:"currentSessionTime"`
	TodayTime          int64      `json:"todayTime"`
	WeekTime           int64      `json:"weekTime"`
	TotalTimeTracked   int64      `json:"totalTimeTracked"`
	CurrentDomain      string     `json:"currentDomain,omitempty"`
	PendingWrites      int        `json:"pendingWrites,omitempty"`
}

type TimesData struct {
	CurrentSessionTime int64            `json:"currentSessionTime"`
	TodayTime          int64            `json:"todayTime"`
	WeekTime           int64            `json:"weekTime"`
	DomainTimes        map[string]int64 `json:"domainTimes"`
	WindowTimes        map[int]int64    `json:"windowTimes"`
}

type DomainTime struct {
	Domain       string    `json:"domain"`
	TimeSpent    int64     `json:"timeSpent"`
	Visits       int       `json:"visits"`
	Category     string    `json:"category"`
	LastAccessed time.Time `json:"lastAccessed"`
}

type AllDomainTimesData struct {
	AllDomainTimes map[string]DomainTime `json:"allDomainTimes"`
}

type ReportData struct {
	Period                 string  `json:"period"`
	Bucket                 string  `json:"bucket"`
	TotalSwitches          int     `json:"totalSwitches"`
	AverageSwitchesPerHour float64 `json:"averageSwitchesPerHour"`
	PeakSwitchingPeriod    string  `json:"peakSwitchingPeriod"`
}

type Category struct {
	Name     string   `json:"name"`
	Patterns []string `json:"patterns"`
}

type CategoriesData struct {
	Categories []Category        `json:"categories"`
	Overrides  map[string]string `json:"overrides,omitempty"`
}

type CategoryTimesData struct {
	CategoryTimes map[string]int64 `json:"categoryTimes"`
}

type FocusScoreData struct {
	FocusScore int `json:"focusScore"`
}

type DayData struct {
	Day            string `json:"day"`
	TrackedSeconds int64  `json:"trackedSeconds"`
	Switches       int    `json:"switches"`
}

type HistoryData struct {
	Days []DayData `json:"days"`
}

type RecentSwitchesData struct {
	Switches []event.SwitchEvent `json:"switches"`
}

// Millis converts a duration to the wire representation.
func Millis(d time.Duration) int64 {
	return d.Milliseconds()
}
