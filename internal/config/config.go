package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds connection and bootstrap parameters shared by the registry binaries.
type Config struct {
	// ServerAddress is the gRPC server address for registry connections.
	ServerAddress string `yaml:"server_addr"`
	// MetricsAddress is the optional HTTP address serving Prometheus metrics.
	MetricsAddress string `yaml:"metrics_addr,omitempty"`
	// StateFile is the path to the YAML file storing the registry snapshot.
	StateFile string `yaml:"state_file"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level of emitted log messages.
	LogLevel string `yaml:"log_level,omitempty"`
	// GenesisRegistrar is the identity seeded as the first enabled registrar.
	GenesisRegistrar string `yaml:"genesis_registrar"`
	// ExistentialDeposit is the dust threshold below which ledger balances are reaped.
	ExistentialDeposit uint64 `yaml:"existential_deposit"`
	// GenesisBalances seeds the in-process ledger.
	GenesisBalances map[string]uint64 `yaml:"genesis_balances,omitempty"`
	// EventHistory is how many recent domain events the server keeps for queries.
	EventHistory int `yaml:"event_history"`
}

const (
	// DefaultConfigFilename is the default filename for connection settings.
	DefaultConfigFilename = "registry-settings.yaml"

	// DefaultStateFilename is the default filename for the registry snapshot.
	DefaultStateFilename = "registry-state.yaml"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultEventHistory is the default number of retained domain events.
	DefaultEventHistory = 256

	// DefaultFilePermissions is the default file permission for config and state files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errGenesisRequired is returned when no genesis registrar is configured.
	errGenesisRequired = errors.New("genesis registrar must be provided")
	// errInvalidLogLevel is returned for unknown log levels.
	errInvalidLogLevel = errors.New("invalid log level")
	// errInvalidBalance is returned for genesis balances below the existential deposit.
	errInvalidBalance = errors.New("genesis balance below existential deposit")
)

// knownLogLevels mirrors the levels understood by the logger package.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownLogLevels = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "error": {}, "dpanic": {}, "panic": {}, "fatal": {},
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes Config to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting,
// filling defaults for optional ones.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.MetricsAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.MetricsAddress); err != nil {
			return fmt.Errorf("invalid metrics socket: %w", err)
		}
	}

	if strings.TrimSpace(settings.GenesisRegistrar) == "" {
		return errGenesisRequired
	}

	// Set default timeout if not specified
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	// Set default state file if not specified
	if settings.StateFile == "" {
		settings.StateFile = DefaultStateFilename
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := knownLogLevels[strings.ToLower(strings.TrimSpace(settings.LogLevel))]; !ok {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, settings.LogLevel)
	}

	if settings.EventHistory <= 0 {
		settings.EventHistory = DefaultEventHistory
	}

	for identity, balance := range settings.GenesisBalances {
		if balance == 0 || balance < settings.ExistentialDeposit {
			return fmt.Errorf("%w: %q holds %d", errInvalidBalance, identity, balance)
		}
	}

	return nil
}
