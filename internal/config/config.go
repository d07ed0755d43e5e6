// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// DefaultDataDir is where the database and key file live unless overridden.
const DefaultDataDir = "./data"

// Options holds the configuration values for the application.
type Options struct {
	// DatabasePath is the SQLite file holding users and items.
	DatabasePath string `json:"database_path"`

	// KeyPath is the file holding the raw encryption key.
	KeyPath string `json:"key_path"`

	// LogLevel is the zap level name (debug, info, warn, error).
	LogLevel string `json:"log_level"`

	// CleanInterval is how often orphaned items are purged.
	CleanInterval time.Duration `json:"clean_interval"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// Parse parses os.Args and the environment. It exits the process on
// malformed input, matching flag.ExitOnError.
func Parse() *Options {
	opts, err := ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return opts
}

// ParseArgs builds Options from args, then overlays the JSON config file
// and finally environment variables.
func ParseArgs(args []string) (*Options, error) {
	options := &Options{}

	fs := flag.NewFlagSet("passkeeper", flag.ContinueOnError)
	fs.StringVar(&options.DatabasePath, "d", filepath.Join(DefaultDataDir, "userData.sqlite"), "path to the database file")
	fs.StringVar(&options.KeyPath, "k", filepath.Join(DefaultDataDir, "secret.key"), "path to the encryption key file")
	fs.StringVar(&options.LogLevel, "log-level", "info", "log level")
	fs.DurationVar(&options.CleanInterval, "clean-interval", time.Hour, "orphan item purge interval")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	if dbPath := os.Getenv("PASSKEEPER_DATABASE"); dbPath != "" {
		options.DatabasePath = dbPath
	}
	if keyPath := os.Getenv("PASSKEEPER_KEY_FILE"); keyPath != "" {
		options.KeyPath = keyPath
	}
	if level := os.Getenv("PASSKEEPER_LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}

	return options, nil
}
