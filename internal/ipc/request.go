package ipc

import (
	"encoding/json"
	"errors"
	"fmt"

	"tabtrack/internal/event"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidArgs    = errors.New("invalid arguments")
)

// Request is a decoded command. The set of implementations is closed; the daemon handles
// each one in its own handler.
type Request interface {
	request()
}

type StartTracking struct{}

type StopTracking struct{}

type GetTrackingStatus struct{}

type GetTrackingTimes struct{}

type GetSwitchingReport struct{ Period string }

type UpdateCategory struct {
	Domain   string // domain or URL
	Category string
}

type GetAllDomainTimes struct{}

type AddCategory struct {
	Name     string
	Patterns []string
}

type GetCategories struct{}

type GetCategoryTimes struct{}

type GetFocusScore struct{}

type GetHistory struct{ Days int }

type GetRecentSwitches struct{ Limit int }

type RestartAll struct{}

type Ping struct{}

// Signal wraps a fire-and-forget browser signal.
type Signal struct{ Signal event.Signal }

func (StartTracking) request()      {}
func (StopTracking) request()       {}
func (GetTrackingStatus) request()  {}
func (GetTrackingTimes) request()   {}
func (GetSwitchingReport) request() {}
func (UpdateCategory) request()     {}
func (GetAllDomainTimes) request()  {}
func (AddCategory) request()        {}
func (GetCategories) request()      {}
func (GetCategoryTimes) request()   {}
func (GetFocusScore) request()      {}
func (GetHistory) request()         {}
func (GetRecentSwitches) request()  {}
func (RestartAll) request()         {}
func (Ping) request()               {}
func (Signal) request()             {}

const (
	defaultHistoryDays    = 7
	defaultRecentSwitches = 10
)

// Decode validates a wire command and turns it into a Request.
func Decode(cmd Command) (Request, error) {
	switch cmd.Name {
	case CmdPing:
		return Ping{}, nil
	case CmdStartTracking:
		return StartTracking{}, nil
	case CmdStopTracking:
		return StopTracking{}, nil
	case CmdGetTrackingStatus:
		return GetTrackingStatus{}, nil
	case CmdGetTrackingTimes:
		return GetTrackingTimes{}, nil
	case CmdGetAllDomainTimes:
		return GetAllDomainTimes{}, nil
	case CmdGetCategories:
		return GetCategories{}, nil
	case CmdGetCategoryTimes:
		return GetCategoryTimes{}, nil
	case CmdGetFocusScore:
		return GetFocusScore{}, nil
	case CmdRestartAll:
		return RestartAll{}, nil

	case CmdGetSwitchingReport:
		var args SwitchingReportArgs
		if err := unmarshalArgs(cmd, &args); err != nil {
			return nil, err
		}
		if args.Period == "" {
			args.Period = "daily"
		}
		return GetSwitchingReport{Period: args.Period}, nil

	case CmdUpdateURLCategory, CmdUpdateDomainCategory:
		var args CategoryArgs
		if err := unmarshalArgs(cmd, &args); err != nil {
			return nil, err
		}
		target := args.Domain
		if target == "" {
			target = args.URL
		}
		if target == "" || args.Category == "" {
			return nil, fmt.Errorf("%w for %s: domain and category are required", ErrInvalidArgs, cmd.Name)
		}
		return UpdateCategory{Domain: target, Category: args.Category}, nil

	case CmdAddCategory:
		var args AddCategoryArgs
		if err := unmarshalArgs(cmd, &args); err != nil {
			return nil, err
		}
		if args.Category == "" {
			return nil, fmt.Errorf("%w for %s: category is required", ErrInvalidArgs, cmd.Name)
		}
		return AddCategory{Name: args.Category, Patterns: args.Patterns}, nil

	case CmdGetHistory:
		var args HistoryArgs
		if err := unmarshalArgs(cmd, &args); err != nil {
			return nil, err
		}
		if args.Days <= 0 {
			args.Days = defaultHistoryDays
		}
		return GetHistory{Days: args.Days}, nil

	case CmdGetRecentSwitches:
		var args RecentSwitchesArgs
		if err := unmarshalArgs(cmd, &args); err != nil {
			return nil, err
		}
		if args.Limit <= 0 {
			args.Limit = defaultRecentSwitches
		}
		return GetRecentSwitches{Limit: args.Limit}, nil

	case CmdActivityDetected:
		return Signal{Signal: event.ActivityDetected{}}, nil

	case CmdTabActivated:
		var s event.TabActivated
		if err := unmarshalArgs(cmd, &s); err != nil {
			return nil, err
		}
		return Signal{Signal: s}, nil

	case CmdTabUpdated:
		var s event.TabUpdated
		if err := unmarshalArgs(cmd, &s); err != nil {
			return nil, err
		}
		return Signal{Signal: s}, nil

	case CmdWindowFocusChanged:
		var s event.WindowFocusChanged
		if err := unmarshalArgs(cmd, &s); err != nil {
			return nil, err
		}
		return Signal{Signal: s}, nil

	case CmdIdleStateChanged:
		var s event.IdleStateChanged
		if err := unmarshalArgs(cmd, &s); err != nil {
			return nil, err
		}
		if !s.State.Valid() {
			return nil, fmt.Errorf("%w for %s: unknown idle state %q", ErrInvalidArgs, cmd.Name, s.State)
		}
		return Signal{Signal: s}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Name)
}

func unmarshalArgs(cmd Command, v any) error {
	if len(cmd.Args) == 0 {
		return nil
	}
	if err := json.Unmarshal(cmd.Args, v); err != nil {
		return fmt.Errorf("%w for %s: %v", ErrInvalidArgs, cmd.Name, err)
	}
	return nil
}
