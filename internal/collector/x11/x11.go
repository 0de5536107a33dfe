package x11

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"

	"tabtrack/internal/event"
)

type windowInfo struct {
	Class string
	Title string
}

// X11Collector polls the active window. Leaving the browser for another application is
// reported as WindowFocusChanged{WindowID: WindowNone}; any focus change counts as activity.
type X11Collector struct {
	X              *xgbutil.XUtil
	browserClasses []string
	lastFocus      windowInfo
	inBrowser      bool
	stopChan       chan struct{}
}

func NewX11Collector(browserClasses []string) (*X11Collector, error) {
	X, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	// Check if EWMH is supported (needed for _NET_ACTIVE_WINDOW, _NET_WM_NAME)
	if _, err := ewmh.CurrentDesktopGet(X); err != nil {
		log.Printf("Warning: EWMH potentially not supported by Window Manager: %v", err)
	}

	return &X11Collector{
		X:              X,
		browserClasses: browserClasses,
		stopChan:       make(chan struct{}),
	}, nil
}

func (c *X11Collector) getActiveWindowInfo() (windowInfo, error) {
	activeWinID, err := ewmh.ActiveWindowGet(c.X)
	if err != nil {
		return windowInfo{}, fmt.Errorf("could not get active window ID: %w", err)
	}

	if activeWinID == 0 {
		return windowInfo{}, nil // No window focused
	}

	// Get window title (_NET_WM_NAME preferred, fallback to WM_NAME)
	title, err := ewmh.WmNameGet(c.X, activeWinID)
	if err != nil || title == "" {
		title, _ = icccm.WmNameGet(c.X, activeWinID)
	}

	// WM_CLASS identifies the application
	class := ""
	if hints, err := icccm.WmClassGet(c.X, activeWinID); err == nil && hints != nil {
		class = hints.Class
	}

	return windowInfo{Class: class, Title: title}, nil
}

func (c *X11Collector) Start(ctx context.Context, interval time.Duration, output chan<- event.Signal) error {
	log.Printf("Starting X11 collector (interval: %s, browsers: %v)", interval, c.browserClasses)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Sometimes immediately after start, WM might not report correctly, try a few times
	for i := 0; i < 3; i++ {
		initial, err := c.getActiveWindowInfo()
		if err == nil {
			c.lastFocus = initial
			c.inBrowser = IsBrowser(initial.Class, c.browserClasses)
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("X11 collector stopping due to context cancellation.")
			return ctx.Err()
		case <-c.stopChan:
			log.Println("X11 collector stopping.")
			return nil
		case <-ticker.C:
			current, err := c.getActiveWindowInfo()
			if err != nil {
				continue
			}
			if current == c.lastFocus {
				continue
			}
			signals := c.observe(current)
			for _, sig := range signals {
				select {
				case output <- sig:
				case <-ctx.Done():
					return ctx.Err()
				case <-c.stopChan:
					return nil
				}
			}
		}
	}
}

// observe records a focus change and returns the signals it implies.
func (c *X11Collector) observe(current windowInfo) []event.Signal {
	browser := IsBrowser(current.Class, c.browserClasses)
	signals := []event.Signal{event.ActivityDetected{}}
	if c.inBrowser && !browser {
		log.Printf("Browser lost focus to '%s' (%s)", current.Class, Truncate(current.Title, 50))
		signals = append(signals, event.WindowFocusChanged{WindowID: event.WindowNone})
	}
	c.lastFocus = current
	c.inBrowser = browser
	return signals
}

func (c *X11Collector) Stop() error {
	log.Println("Sending stop signal to X11 collector.")
	close(c.stopChan)
	return nil
}

// IsBrowser reports whether a WM_CLASS belongs to one of the configured browsers.
func IsBrowser(class string, browserClasses []string) bool {
	class = strings.ToLower(class)
	if class == "" {
		return false
	}
	for _, b := range browserClasses {
		if strings.Contains(class, strings.ToLower(b)) {
			return true
		}
	}
	return false
}

func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	// Try to truncate at a space if possible near the end
	if idx := strings.LastIndex(s[:maxLen-3], " "); idx > maxLen/2 {
		return s[:idx] + "..."
	}
	return s[:maxLen-3] + "..."
}
