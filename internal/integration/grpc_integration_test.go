package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/ledger-registry/internal/config"
	"github.com/oshokin/ledger-registry/internal/domain/zone"
	"github.com/oshokin/ledger-registry/internal/service/client"
	"github.com/oshokin/ledger-registry/internal/service/common"
	"github.com/oshokin/ledger-registry/internal/service/server"
	"github.com/oshokin/ledger-registry/internal/service/watcher"
)

const (
	genesis  = "1"
	callTime = 3 * time.Second
)

// testServer is a registry server running in the background.
type testServer struct {
	// addr is the bound gRPC address.
	addr string
	// cfgPath is the settings file the server was started with.
	cfgPath string
	// stop cancels the server and waits for Run to return.
	stop func()
}

// writeConfig stores settings where the genesis registrar holds 100000 with a deposit of 500.
func writeConfig(t *testing.T) string {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")

	require.NoError(t, config.Save(cfgPath, &config.Config{
		ServerAddress:      "127.0.0.1:0",
		Timeout:            callTime,
		LogLevel:           "error",
		GenesisRegistrar:   genesis,
		ExistentialDeposit: 500,
		GenesisBalances:    map[string]uint64{genesis: 100000},
	}))

	return cfgPath
}

// startServer runs the registry server on a free port and waits until it listens.
func startServer(t *testing.T, cfgPath, statePath string) *testServer {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{
			ConfigPath:    cfgPath,
			ListenAddress: "127.0.0.1:0",
			StateFile:     statePath,
			Ready:         ready,
		})
	}()

	var addr string

	select {
	case addr = <-ready:
	case err := <-done:
		cancel()
		require.FailNow(t, "server exited before listening", "error: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		require.FailNow(t, "server did not start listening")
	}

	return &testServer{
		addr:    addr,
		cfgPath: cfgPath,
		stop: func() {
			cancel()
			require.NoError(t, <-done)
		},
	}
}

// dial connects a client to srv.
func dial(t *testing.T, srv *testServer) *common.Client {
	t.Helper()

	c, err := common.Dial(context.Background(), srv.addr, common.WithCallTimeout(callTime))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

// TestGRPC_RegistryScenario exercises accounts, zones and reaping against the real server.
func TestGRPC_RegistryScenario(t *testing.T) {
	t.Parallel()

	statePath := filepath.Join(t.TempDir(), "state.yaml")
	srv := startServer(t, writeConfig(t), statePath)

	defer srv.stop()

	c := dial(t, srv)
	ctx := context.Background()

	// Genesis registrar promotes a second registrar.
	added, err := c.AddAccount(ctx, genesis, "2", "registrar")
	require.NoError(t, err)
	require.Len(t, added.Events, 1)
	require.Equal(t, "account_created", added.Events[0].Kind)

	// Standard accounts cannot mutate.
	_, err = c.AddAccount(ctx, genesis, "3", "standard")
	require.NoError(t, err)

	_, err = c.AddAccount(ctx, "3", "4", "standard")
	require.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = c.DisableAccount(ctx, "2", "2")
	require.Equal(t, codes.FailedPrecondition, status.Code(err))

	// Zones get sequential ids.
	box := zone.NewBox(zone.NewPoint[uint32](0, 0, 0), zone.NewPoint[uint32](10, 10, 10))

	first, err := c.AddZone(ctx, "2", "red", box)
	require.NoError(t, err)
	require.Equal(t, uint32(0), first.ZoneID)

	second, err := c.AddZone(ctx, genesis, "", box)
	require.NoError(t, err)
	require.Equal(t, uint32(1), second.ZoneID)

	got, err := c.GetZone(ctx, 1, "green")
	require.NoError(t, err)
	require.True(t, got.Matches)

	_, err = c.GetZone(ctx, 5, "")
	require.Equal(t, codes.NotFound, status.Code(err))

	total, err := c.TotalBoxes(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(2), total)

	// Spending everything reaps the registrar and disables it.
	_, err = c.Transfer(ctx, genesis, "2", 10000)
	require.NoError(t, err)

	reaped, err := c.Transfer(ctx, "2", "3", 10000)
	require.NoError(t, err)
	require.True(t, reaped.Reaped)
	require.Len(t, reaped.Events, 1)
	require.Equal(t, "reaped", reaped.Events[0].Reason)

	account, err := c.GetAccount(ctx, "2", "registrar")
	require.NoError(t, err)
	require.False(t, account.Enabled)
	require.True(t, account.HasRole)

	_, err = c.AddZone(ctx, "2", "red", box)
	require.Equal(t, codes.PermissionDenied, status.Code(err))

	balance, err := c.BalanceOf(ctx, "3")
	require.NoError(t, err)
	require.Equal(t, uint64(10000), balance)

	_, err = c.Transfer(ctx, "3", "5", 10)
	require.Equal(t, codes.FailedPrecondition, status.Code(err))

	events, err := c.Events(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 6)

	// Verify state was persisted to disk.
	_, err = os.Stat(statePath)
	require.NoError(t, err)
}

// TestGRPC_RestoresSnapshot restarts the server on the same state file.
func TestGRPC_RestoresSnapshot(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t)
	statePath := filepath.Join(t.TempDir(), "state.yaml")
	ctx := context.Background()

	srv := startServer(t, cfgPath, statePath)
	c := dial(t, srv)

	_, err := c.AddAccount(ctx, genesis, "2", "standard")
	require.NoError(t, err)

	_, err = c.AddZone(ctx, genesis, "parent", zone.NewBox(zone.NewPoint[uint32](1, 1, 1), zone.NewPoint[uint32](2, 2, 2)))
	require.NoError(t, err)

	_, err = c.DisableAccount(ctx, genesis, "2")
	require.NoError(t, err)

	srv.stop()

	srv = startServer(t, cfgPath, statePath)
	defer srv.stop()

	c = dial(t, srv)

	account, err := c.GetAccount(ctx, "2", "")
	require.NoError(t, err)
	require.Equal(t, "standard", account.Role)
	require.False(t, account.Enabled)

	z, err := c.GetZone(ctx, 0, "parent")
	require.NoError(t, err)
	require.True(t, z.Matches)

	total, err := c.TotalBoxes(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(1), total)

	// The event history starts empty after a restore.
	events, err := c.Events(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, events)
}

// TestCtl_Operations runs registry-ctl operations against a live server.
func TestCtl_Operations(t *testing.T) {
	t.Parallel()

	srv := startServer(t, writeConfig(t), filepath.Join(t.TempDir(), "state.yaml"))
	defer srv.stop()

	var out bytes.Buffer

	opts := &client.Options{
		ConfigPath:    srv.cfgPath,
		ServerAddress: srv.addr,
		Caller:        genesis,
		Output:        &out,
	}
	ctx := context.Background()

	require.NoError(t, client.Run(ctx, opts, client.AddAccount("2", "standard")))
	require.Contains(t, out.String(), "account_created identity=2 role=standard")

	out.Reset()
	require.NoError(t, client.Run(ctx, opts, client.GetAccount("2", "registrar")))
	require.Contains(t, out.String(), "2 standard enabled since")
	require.Contains(t, out.String(), "is registrar: false")

	out.Reset()
	box := zone.NewBox(zone.NewPoint[uint32](1, 2, 3), zone.NewPoint[uint32](4, 5, 6))
	require.NoError(t, client.Run(ctx, opts, client.AddZone("red", box)))
	require.Contains(t, out.String(), "zone 0 created")

	out.Reset()
	require.NoError(t, client.Run(ctx, opts, client.GetZone(0, "")))
	require.Equal(t, "zone 0 red (1, 2, 3)-(4, 5, 6)\n", out.String())

	out.Reset()
	require.NoError(t, client.Run(ctx, opts, client.Balance("")))
	require.Equal(t, "1: 100000\n", out.String())

	out.Reset()
	require.NoError(t, client.Run(ctx, opts, client.DisableAccount("2")))
	require.NoError(t, client.Run(ctx, opts, client.DisableAccount("2")))
	require.Contains(t, out.String(), "reason=explicit")
	require.Contains(t, out.String(), "account 2 was already disabled")

	err := client.Run(ctx, opts, client.DisableAccount("1"))
	require.Equal(t, codes.FailedPrecondition, status.Code(err))
}

// TestWatcher_FollowsEvents polls a live server and prints each event once.
func TestWatcher_FollowsEvents(t *testing.T) {
	t.Parallel()

	srv := startServer(t, writeConfig(t), filepath.Join(t.TempDir(), "state.yaml"))
	defer srv.stop()

	c := dial(t, srv)

	_, err := c.AddAccount(context.Background(), genesis, "2", "standard")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	defer cancel()

	var out bytes.Buffer

	err = watcher.Run(ctx, &watcher.Options{
		ConfigPath:    srv.cfgPath,
		ServerAddress: srv.addr,
		PollInterval:  50 * time.Millisecond,
		AfterSeq:      1,
		Output:        &out,
	})
	require.NoError(t, err)

	require.Equal(t, "#2 account_created identity=2 role=standard\n", out.String())
	require.Equal(t, 1, strings.Count(out.String(), "account_created"))
}
