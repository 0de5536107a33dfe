package eventlog

import "tabtrack/internal/event"

const DefaultRetention = 200

// Log is the append-only switch log. Only the newest retention entries are kept.
type Log struct {
	retention int
	events    []event.SwitchEvent
}

func New(retention int) *Log {
	if retention < 1 {
		retention = DefaultRetention
	}
	return &Log{retention: retention}
}

// Append adds e and returns the entries pruned to stay within retention, oldest first.
func (l *Log) Append(e event.SwitchEvent) []event.SwitchEvent {
	l.events = append(l.events, e)
	over := len(l.events) - l.retention
	if over <= 0 {
		return nil
	}
	pruned := make([]event.SwitchEvent, over)
	copy(pruned, l.events[:over])
	l.events = append(l.events[:0], l.events[over:]...)
	return pruned
}

// Restore replaces the contents, keeping the newest entries when over retention.
func (l *Log) Restore(events []event.SwitchEvent) {
	if over := len(events) - l.retention; over > 0 {
		events = events[over:]
	}
	l.events = append([]event.SwitchEvent(nil), events...)
}

func (l *Log) Events() []event.SwitchEvent {
	return append([]event.SwitchEvent(nil), l.events...)
}

func (l *Log) Len() int { return len(l.events) }

func (l *Log) Reset() { l.events = nil }
