package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, format validations and defaults.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)

	// Missing socket.
	settings := new(Config)

	err := Validate(settings)
	require.ErrorIs(t, err, errServerSocketRequired)

	// Bad socket.
	settings = &Config{
		ServerAddress:    "bad:address",
		GenesisRegistrar: "root",
	}

	err = Validate(settings)
	require.Error(t, err)

	// Missing genesis registrar.
	settings = &Config{
		ServerAddress: "127.0.0.1:0",
	}

	err = Validate(settings)
	require.ErrorIs(t, err, errGenesisRequired)

	// Unknown log level.
	settings = &Config{
		ServerAddress:    "127.0.0.1:0",
		GenesisRegistrar: "root",
		LogLevel:         "chatty",
	}

	err = Validate(settings)
	require.ErrorIs(t, err, errInvalidLogLevel)

	// Dust genesis balance.
	settings = &Config{
		ServerAddress:      "127.0.0.1:0",
		GenesisRegistrar:   "root",
		ExistentialDeposit: 500,
		GenesisBalances:    map[string]uint64{"root": 10},
	}

	err = Validate(settings)
	require.ErrorIs(t, err, errInvalidBalance)

	// Okay with defaults filled in.
	settings = &Config{
		ServerAddress:    "127.0.0.1:0",
		MetricsAddress:   "127.0.0.1:0",
		GenesisRegistrar: "root",
	}

	err = Validate(settings)
	require.NoError(t, err)
	require.Equal(t, DefaultTimeout, settings.Timeout)
	require.Equal(t, DefaultStateFilename, settings.StateFile)
	require.Equal(t, DefaultLogLevel, settings.LogLevel)
	require.Equal(t, DefaultEventHistory, settings.EventHistory)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := &Config{
		ServerAddress:      "127.0.0.1:50051",
		GenesisRegistrar:   "root",
		ExistentialDeposit: 500,
		GenesisBalances:    map[string]uint64{"root": 100000},
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings.ServerAddress, loaded.ServerAddress)
	require.Equal(t, settings.GenesisRegistrar, loaded.GenesisRegistrar)
	require.Equal(t, settings.GenesisBalances, loaded.GenesisBalances)
	require.Equal(t, uint64(500), loaded.ExistentialDeposit)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.ErrorIs(t, Save(path, nil), errConfigIsNotSet)
}
