package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const envSkyvisConfig = "SKYVIS_CONFIG"

// fileConfig is the config file read by the root command's Before hook.
var fileConfig Config

// Config represents the skyvis configuration file (~/.config/skyvis/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	// Execution
	Backend       string `yaml:"backend"`
	Workers       *int   `yaml:"workers"`
	BasisPath     string `yaml:"basis_path"`
	Interpolation string `yaml:"interpolation"`
	FitLists      *bool  `yaml:"fit_lists"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
	StoreLimit    *int   `yaml:"store_limit"`
}

func configPath() string {
	if p := strings.TrimSpace(os.Getenv(envSkyvisConfig)); p != "" {
		return filepath.Clean(p)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "skyvis", "config.yaml")
}

// LoadConfig reads the config file. A missing file yields a zero Config.
func LoadConfig() (Config, error) {
	path := configPath()
	if path == "" {
		return Config{}, nil
	}
	cfg, err := loadConfigFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	return cfg, err
}

func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyLoggingConfig applies config file defaults to the logging flags when
// they were not set on the command line.
func applyLoggingConfig(isSet func(string) bool, cfg Config) {
	if cfg.LogLevel != "" && !isSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !isSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applySimulatorConfig applies config file defaults to the executor and
// basis flags.
func applySimulatorConfig(isSet func(string) bool, cfg Config) {
	if cfg.Backend != "" && !isSet("backend") {
		backendName = cfg.Backend
	}
	if cfg.Workers != nil && !isSet("workers") {
		workers = *cfg.Workers
	}
	if cfg.BasisPath != "" && !isSet("basis") {
		basisPath = cfg.BasisPath
	}
	if cfg.Interpolation != "" && !isSet("interpolation") {
		interpolation = cfg.Interpolation
	}
	if cfg.FitLists != nil && !isSet("fit-lists") {
		fitLists = *cfg.FitLists
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(isSet func(string) bool, cfg Config, addr *string, storeLimit *int) {
	applySimulatorConfig(isSet, cfg)
	if cfg.ServerAddress != "" && !isSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.StoreLimit != nil && !isSet("store-limit") {
		*storeLimit = *cfg.StoreLimit
	}
}
