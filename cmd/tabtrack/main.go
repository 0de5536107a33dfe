package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sevlyar/go-daemon"

	"tabtrack/internal/app"
	"tabtrack/internal/config"
)

var (
	// Define command-line flags
	configPath = flag.String("c", "", "Path to configuration file (e.g., config.yaml). Defaults to ./config.yaml, ~/.config/tabtrack/config.yaml, /etc/tabtrack/config.yaml")
	logPath    = flag.String("log", "", "Path to log file (optional, defaults to stderr)")
	daemonize  = flag.Bool("d", false, "Run in the background (requires -log)")
	pidPath    = flag.String("pid", "tabtrack.pid", "PID file used with -d")
	ephemeral  = flag.Bool("ephemeral", false, "Keep tracking state in memory only; nothing is written to disk")
)

// setupLogging configures the log output destination.
func setupLogging(logFilePath string) (*os.File, error) {
	if logFilePath == "" {
		log.SetOutput(os.Stderr) // Default: log to standard error
		log.Println("Logging to stderr")
		return nil, nil
	}

	// Ensure the directory for the log file exists
	dir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	// Open the log file for appending, create if it doesn't exist
	file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", logFilePath, err)
	}

	log.SetOutput(file)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile) // Add microsecond and file/line info
	log.Printf("Logging to file: %s", logFilePath)
	return file, nil
}

func main() {
	flag.Parse()

	if *daemonize {
		if *logPath == "" {
			fmt.Fprintln(os.Stderr, "Error: -d requires -log, a detached daemon has no stderr")
			os.Exit(2)
		}
		cntxt := &daemon.Context{
			PidFileName: *pidPath,
			PidFilePerm: 0644,
			WorkDir:     ".",
			Umask:       027,
		}
		child, err := cntxt.Reborn()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to daemonize: %v\n", err)
			os.Exit(1)
		}
		if child != nil {
			fmt.Printf("tabtrack daemon started (pid %d)\n", child.Pid)
			return
		}
		defer cntxt.Release()
	}

	logFile, logErr := setupLogging(*logPath)
	if logErr != nil {
		// If file logging fails, log the error to stderr and continue logging to stderr
		fmt.Fprintf(os.Stderr, "Error setting up file logging: %v. Logging to stderr instead.\n", logErr)
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	// Uses viper which checks env vars and config files (./, ~/.config/tabtrack/, /etc/tabtrack/)
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	application, err := app.NewApp(cfg, *ephemeral)
	if err != nil {
		log.Fatalf("FATAL: Failed to create application: %v", err)
	}

	// Blocks until SIGINT/SIGTERM.
	if err := application.Run(); err != nil {
		log.Fatalf("FATAL: Application exited with error: %v", err)
	}

	log.Println("tabtrack finished successfully.")
}
