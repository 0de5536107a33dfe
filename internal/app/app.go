package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"tabtrack/internal/collector"
	"tabtrack/internal/collector/x11"
	"tabtrack/internal/config"
	"tabtrack/internal/event"
	"tabtrack/internal/history"
	"tabtrack/internal/ipc"
	"tabtrack/internal/platform/clock"
	"tabtrack/internal/storage"
	"tabtrack/internal/storage/memory"
	"tabtrack/internal/tracker"

	sqlitestore "tabtrack/internal/storage/sqlite"
)

const (
	requestTimeout = 5 * time.Second
	shutdownWait   = 5 * time.Second
)

type request struct {
	req   ipc.Request
	reply chan ipc.Response
}

type App struct {
	cfg     *config.Config
	storage storage.Storage
	history *history.Store
	clock   clock.Clock
	engine  *tracker.Engine
	x11Col  collector.Collector
	// --- Socket Handling ---
	socketPath string
	listener   *net.UnixListener

	// Everything that touches the engine goes through these and is handled by loop.
	requests chan request
	signals  chan event.Signal

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	shutdownWait time.Duration
	abandoned    bool // stop gave up waiting; the loop may still own the engine
}

// NewApp opens the stores named by cfg. With ephemeral set, state lives in memory and no
// history is kept.
func NewApp(cfg *config.Config, ephemeral bool) (*App, error) {
	var store storage.Storage
	var hist *history.Store
	if ephemeral {
		log.Println("Ephemeral mode: state is kept in memory only")
		store = memory.New()
	} else {
		store = sqlitestore.NewSQLiteStore(cfg.DatabasePath)
		var err error
		hist, err = history.Open(cfg.HistoryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
	}

	a, err := newApp(cfg, store, hist, clock.SystemClock{})
	if err != nil {
		if hist != nil {
			hist.Close()
		}
		return nil, err
	}

	if cfg.DesktopFocus {
		x11Col, x11Err := x11.NewX11Collector(cfg.BrowserClasses)
		if x11Err != nil {
			log.Printf("Warning: Failed to initialize X11 collector: %v. Desktop focus tracking disabled.", x11Err)
		} else {
			a.x11Col = x11Col
		}
	}
	return a, nil
}

func newApp(cfg *config.Config, store storage.Storage, hist *history.Store, clk clock.Clock) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		cfg:          cfg,
		storage:      store,
		history:      hist,
		clock:        clk,
		socketPath:   cfg.SocketPath,
		requests:     make(chan request),
		signals:      make(chan event.Signal, 100),
		shutdownWait: shutdownWait,
		ctx:          ctx,
		cancel:       cancel,
	}

	if err := a.storage.Init(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	categories, err := cfg.Categories()
	if err != nil {
		log.Printf("Warning: Failed to load categories file %s: %v. Using defaults.", cfg.CategoriesFile, err)
		categories = nil
	}

	var archive tracker.Archiver
	if hist != nil {
		archive = hist
	}
	a.engine = tracker.New(tracker.Options{
		InactivityTimeout: cfg.InactivityTimeout(),
		LogRetention:      cfg.SwitchLogRetention,
		WeekStart:         cfg.FirstWeekday(),
		Categories:        categories,
	}, clk, store, archive, a.postExpired)

	if err := a.engine.Init(ctx); err != nil {
		cancel()
		a.storage.Close()
		return nil, fmt.Errorf("failed to restore tracking state: %w", err)
	}
	return a, nil
}

// postExpired runs on the inactivity timer goroutine.
func (a *App) postExpired(e event.InactivityExpired) {
	select {
	case a.signals <- e:
	case <-a.ctx.Done():
	}
}

// setupSocket checks for existing socket and creates the listener
func (a *App) setupSocket() error {
	// Check if socket file exists and try connecting
	if _, err := os.Stat(a.socketPath); err == nil {
		conn, err := net.DialTimeout("unix", a.socketPath, 1*time.Second)
		if err == nil {
			// Connection successful - another instance is likely running
			conn.Close()
			return fmt.Errorf("socket %s already active, another instance might be running", a.socketPath)
		}
		log.Printf("Stale socket file found at %s, removing.", a.socketPath)
		if err := os.Remove(a.socketPath); err != nil {
			return fmt.Errorf("failed to remove stale socket file %s: %w", a.socketPath, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("error checking socket file %s: %w", a.socketPath, err)
	}

	addr, err := net.ResolveUnixAddr("unix", a.socketPath)
	if err != nil {
		return fmt.Errorf("failed to resolve unix addr %s: %w", a.socketPath, err)
	}

	listener, err := net.ListenUnix("unix", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on socket %s: %w", a.socketPath, err)
	}

	// Browsing history is private to the user.
	if err := os.Chmod(a.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set permissions on socket %s: %w", a.socketPath, err)
	}

	a.listener = listener
	log.Printf("Listening for commands on %s", a.socketPath)
	return nil
}

// listenForCommands accepts connections and handles them
func (a *App) listenForCommands() {
	defer a.wg.Done()
	defer log.Println("Socket command listener stopped.")

	if a.listener == nil {
		log.Println("Error: Socket listener not initialized.")
		return
	}

	for {
		conn, err := a.listener.AcceptUnix()
		if err != nil {
			select {
			case <-a.ctx.Done():
				return // Expected error on shutdown
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("Failed to accept connection: %v", err)
			time.Sleep(100 * time.Millisecond) // Small delay before retrying
			continue
		}
		a.wg.Add(1)
		go a.handleConnection(conn)
	}
}

// handleConnection reads command, processes it, and sends response
func (a *App) handleConnection(conn *net.UnixConn) {
	defer conn.Close()
	defer a.wg.Done()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	var cmd ipc.Command
	if err := decoder.Decode(&cmd); err != nil {
		if err != io.EOF {
			log.Printf("Failed to decode command: %v", err)
		}
		_ = encoder.Encode(ipc.Fail(fmt.Errorf("failed to decode command: %w", err)))
		return
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Now().Add(requestTimeout + time.Second))

	response := a.processCommand(cmd)

	if err := encoder.Encode(response); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// processCommand validates the command and hands it to the loop. Every command gets exactly
// one response.
func (a *App) processCommand(cmd ipc.Command) ipc.Response {
	req, err := ipc.Decode(cmd)
	if err != nil {
		log.Printf("Rejected command %q: %v", cmd.Name, err)
		return ipc.Fail(err)
	}
	if _, ok := req.(ipc.Signal); !ok {
		log.Printf("Received command: %s", cmd.Name)
	}
	return a.submit(req)
}

func (a *App) submit(req ipc.Request) ipc.Response {
	r := request{req: req, reply: make(chan ipc.Response, 1)}
	timeout := time.NewTimer(requestTimeout)
	defer timeout.Stop()

	select {
	case a.requests <- r:
	case <-a.ctx.Done():
		return ipc.Fail(errors.New("daemon is shutting down"))
	case <-timeout.C:
		return ipc.Fail(errors.New("timeout waiting for the tracking loop"))
	}
	// Once accepted the loop always replies.
	return <-r.reply
}

// loop owns the engine. Ticks, collector signals, timer expiries and commands are handled
// one at a time.
func (a *App) loop() {
	defer a.wg.Done()
	defer log.Println("Tracking loop stopped.")

	ticker := time.NewTicker(a.cfg.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.handleSignal(event.Tick{})
		case sig := <-a.signals:
			a.handleSignal(sig)
		case r := <-a.requests:
			r.reply <- a.dispatch(r.req)
		}
	}
}

func (a *App) handleSignal(sig event.Signal) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Error: recovered from panic handling %T: %v", sig, r)
		}
	}()
	a.engine.HandleSignal(a.ctx, sig)
}

// start brings up the socket, the loop and the collectors.
func (a *App) start() error {
	if err := a.setupSocket(); err != nil {
		return err
	}

	a.wg.Add(1)
	go a.loop()

	if a.x11Col != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			log.Println("Launching X11 collector goroutine")
			err := a.x11Col.Start(a.ctx, a.cfg.TickInterval(), a.signals)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("X11 collector error: %v", err)
			}
			log.Println("X11 collector goroutine finished.")
		}()
	}

	a.wg.Add(1)
	go a.listenForCommands()
	return nil
}

func (a *App) Run() error {
	defer a.cleanup()

	log.Println("Starting tabtrack daemon...")
	if a.x11Col == nil {
		log.Println("X11 focus monitoring: DISABLED")
	} else {
		log.Println("X11 focus monitoring: ENABLED")
	}

	if err := a.start(); err != nil {
		return fmt.Errorf("failed to set up socket: %w", err)
	}
	a.handleSignals()

	log.Println("tabtrack daemon running. Send commands via tabtrack-cli or socket.")
	<-a.ctx.Done()

	log.Println("Shutdown signal received, waiting for components...")
	a.stop()
	log.Println("tabtrack daemon finished.")
	return nil
}

// stop closes the listener and waits for the goroutines started by start.
func (a *App) stop() {
	a.cancel()
	if a.listener != nil {
		log.Println("Closing command socket listener...")
		if err := a.listener.Close(); err != nil {
			log.Printf("Error closing socket listener: %v", err)
		}
	}
	if a.x11Col != nil {
		if err := a.x11Col.Stop(); err != nil {
			log.Printf("Error stopping X11 collector: %v", err)
		}
	}

	waitChan := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(waitChan)
	}()

	select {
	case <-waitChan:
		log.Println("All application goroutines finished.")
	case <-time.After(a.shutdownWait):
		log.Println("Warning: Timeout waiting for application goroutines to stop.")
		a.abandoned = true
	}
}

func (a *App) handleSignals() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v. Initiating shutdown...", sig)
		a.cancel()
	}()
}

// cleanup runs after the loop has exited, so it may use the engine directly. When stop timed
// out the engine is left alone and the last completed write stands.
func (a *App) cleanup() {
	log.Println("Running cleanup...")

	if a.abandoned {
		log.Println("Warning: Tracking loop still running, skipping final save.")
	} else {
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer saveCancel()
		if err := a.engine.Shutdown(saveCtx); err != nil {
			log.Printf("Warning: Failed to save final state: %v", err)
		}
	}

	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			log.Printf("Error closing history: %v", err)
		}
	}

	if _, err := os.Stat(a.socketPath); err == nil {
		log.Printf("Removing socket file: %s", a.socketPath)
		if err := os.Remove(a.socketPath); err != nil {
			log.Printf("Warning: Failed to remove socket file %s: %v", a.socketPath, err)
		}
	}

	log.Println("Cleanup finished.")
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
