package collector

import (
	"context"
	"time"

	"tabtrack/internal/event"
)

// Collector feeds desktop-level signals to the tracking loop.
type Collector interface {
	Start(ctx context.Context, interval time.Duration, output chan<- event.Signal) error
	Stop() error
}
