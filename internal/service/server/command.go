package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	api "github.com/oshokin/ledger-registry/internal/api/grpc/registry"
	"github.com/oshokin/ledger-registry/internal/clock"
	"github.com/oshokin/ledger-registry/internal/config"
	"github.com/oshokin/ledger-registry/internal/domain/account"
	"github.com/oshokin/ledger-registry/internal/ledger"
	"github.com/oshokin/ledger-registry/internal/logger"
	"github.com/oshokin/ledger-registry/internal/metrics"
	repository "github.com/oshokin/ledger-registry/internal/repository/snapshot"
)

// Options controls the registry-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateFile overrides the snapshot path from the settings.
	StateFile string
	// Ready, when set, receives the bound gRPC address once the server listens.
	Ready chan<- string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// metricsShutdownTimeout bounds the graceful stop of the metrics endpoint.
const metricsShutdownTimeout = 5 * time.Second

// Run starts the gRPC server and blocks until context is canceled or server stops.
// Loads configuration first, then determines listen address from config or override.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "registry-server")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err = logger.Configure(settings.LogLevel); err != nil {
		return err
	}

	stateFile := settings.StateFile
	if opts.StateFile != "" {
		stateFile = opts.StateFile
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	balanceEngine, err := newLedger(settings)
	if err != nil {
		return fmt.Errorf("initialise ledger: %w", err)
	}

	registryMetrics := metrics.New()
	snapshots := repository.NewFileRepository[Coord](stateFile)

	svc, err := newService(ctx, &dependencies{
		clock:        clock.NewSystem(),
		genesis:      account.Identity(settings.GenesisRegistrar),
		ledger:       balanceEngine,
		repo:         snapshots,
		metrics:      registryMetrics,
		eventHistory: settings.EventHistory,
	})
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(api.LoggingInterceptor(ctx)))
	api.RegisterRegistryServer(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "Registry server listening",
		"listen_address", lis.Addr().String(),
		"state_file", snapshots.Path(),
		"genesis_registrar", settings.GenesisRegistrar,
		"existential_deposit", balanceEngine.ExistentialDeposit())

	if opts.Ready != nil {
		opts.Ready <- lis.Addr().String()
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()

		return nil
	})

	if settings.MetricsAddress != "" {
		startMetrics(ctx, groupCtx, group, settings.MetricsAddress, registryMetrics)
	}

	if err := group.Wait(); err != nil {
		return err
	}

	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// startMetrics serves Prometheus metrics until groupCtx is done.
func startMetrics(ctx, groupCtx context.Context, group *errgroup.Group, address string, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	httpServer := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: metricsShutdownTimeout,
	}

	group.Go(func() error {
		logger.InfoKV(ctx, "Metrics endpoint listening", "metrics_address", address)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve metrics: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsShutdownTimeout)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	})
}

// newLedger builds the in-process balance engine from the settings.
func newLedger(settings *config.Config) (*ledger.Memory, error) {
	genesis := make(map[account.Identity]ledger.Amount, len(settings.GenesisBalances))
	for identity, balance := range settings.GenesisBalances {
		genesis[account.Identity(identity)] = balance
	}

	return ledger.NewMemory(settings.ExistentialDeposit, genesis)
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
// Returns appropriate listen address (e.g., ":8080" for port-only binding).
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return ":" + port, nil
}
