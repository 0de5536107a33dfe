package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"tabtrack/internal/classifier"
	"tabtrack/internal/ipc"
)

const (
	minTickSeconds = 1
	maxTickSeconds = 5
)

type Config struct {
	DatabasePath             string   `mapstructure:"database_path"`
	HistoryPath              string   `mapstructure:"history_path"`
	SocketPath               string   `mapstructure:"socket_path"`
	TickIntervalSeconds      int      `mapstructure:"tick_interval_seconds"`
	InactivityTimeoutSeconds int      `mapstructure:"inactivity_timeout_seconds"`
	SwitchLogRetention       int      `mapstructure:"switch_log_retention"`
	WeekStart                string   `mapstructure:"week_start"` // "monday" or "sunday"
	CategoriesFile           string   `mapstructure:"categories_file"`
	DesktopFocus             bool     `mapstructure:"desktop_focus"` // report browser focus loss from X11
	BrowserClasses           []string `mapstructure:"browser_classes"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")                 // name of config file (without extension)
		v.SetConfigType("yaml")                   // REQUIRED if the config file does not have the extension in the name
		v.AddConfigPath(".")                      // optionally look for config in the working directory
		v.AddConfigPath("$HOME/.config/tabtrack") // call multiple times to add many search paths
		v.AddConfigPath("/etc/tabtrack/")         // path to look for the config file in
	}

	v.SetEnvPrefix("TABTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // read in environment variables that match

	// Set defaults
	v.SetDefault("database_path", "tabtrack.db")
	v.SetDefault("history_path", "tabtrack-history.db")
	v.SetDefault("socket_path", ipc.DefaultSocketPath)
	v.SetDefault("tick_interval_seconds", 1)
	v.SetDefault("inactivity_timeout_seconds", 300)
	v.SetDefault("switch_log_retention", 200)
	v.SetDefault("week_start", "monday")
	v.SetDefault("categories_file", "")
	v.SetDefault("desktop_focus", false)
	v.SetDefault("browser_classes", []string{"firefox", "chromium", "google-chrome", "brave-browser"})

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error if defaults are okay
			log.Println("Config file not found, using defaults.")
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.normalize()

	log.Printf("Configuration loaded: %+v", cfg)
	return &cfg, nil
}

func (c *Config) normalize() {
	if c.TickIntervalSeconds < minTickSeconds {
		log.Printf("Warning: tick_interval_seconds too low, setting to %d", minTickSeconds)
		c.TickIntervalSeconds = minTickSeconds
	}
	if c.TickIntervalSeconds > maxTickSeconds {
		log.Printf("Warning: tick_interval_seconds too high, setting to %d", maxTickSeconds)
		c.TickIntervalSeconds = maxTickSeconds
	}
	if c.InactivityTimeoutSeconds < 1 {
		log.Println("Warning: inactivity_timeout_seconds must be positive, setting to 300")
		c.InactivityTimeoutSeconds = 300
	}
	if c.SwitchLogRetention < 1 {
		log.Println("Warning: switch_log_retention must be positive, setting to 200")
		c.SwitchLogRetention = 200
	}
	c.WeekStart = strings.ToLower(c.WeekStart)
	if c.WeekStart != "monday" && c.WeekStart != "sunday" {
		log.Printf("Warning: invalid week_start '%s', defaulting to 'monday'", c.WeekStart)
		c.WeekStart = "monday"
	}
	for i, class := range c.BrowserClasses {
		c.BrowserClasses[i] = strings.ToLower(class)
	}
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalSeconds) * time.Second
}

func (c *Config) InactivityTimeout() time.Duration {
	return time.Duration(c.InactivityTimeoutSeconds) * time.Second
}

func (c *Config) FirstWeekday() time.Weekday {
	if c.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// Categories loads categories_file. It returns nil when no file is configured.
func (c *Config) Categories() (*classifier.CategoryMap, error) {
	if c.CategoriesFile == "" {
		return nil, nil
	}
	f, err := os.Open(c.CategoriesFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return classifier.LoadYAML(f)
}
