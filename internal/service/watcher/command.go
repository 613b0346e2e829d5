package watcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/ledger-registry/internal/config"
	"github.com/oshokin/ledger-registry/internal/logger"
	"github.com/oshokin/ledger-registry/internal/service/client"
	"github.com/oshokin/ledger-registry/internal/service/common"
)

// Options controls the watcher polling behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional gRPC server address override.
	ServerAddress string
	// PollInterval defines the interval between event history checks.
	PollInterval time.Duration
	// AfterSeq skips events up to and including this sequence number.
	AfterSeq uint64
	// Output receives the events, os.Stdout if nil.
	Output io.Writer
}

// DefaultPollInterval defines the polling interval when none is given.
const DefaultPollInterval = 2 * time.Second

// Run polls the event history and prints new events until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "registry-watcher")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	c, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	defer func() {
		_ = c.Close()
	}()

	logger.InfoKV(ctx, "Following registry events", "server_address", serverAddress, "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := opts.AfterSeq

	for {
		last, err = poll(ctx, c, out, last)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			logger.ErrorKV(ctx, "Poll events failed", "error", err)
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
		}
	}
}

// poll prints the events newer than last and returns the highest sequence seen.
func poll(ctx context.Context, c *common.Client, out io.Writer, last uint64) (uint64, error) {
	events, err := c.Events(ctx, last)
	if err != nil {
		return last, err
	}

	for _, e := range events {
		if _, err := fmt.Fprintln(out, client.FormatEvent(e)); err != nil {
			return last, fmt.Errorf("write output: %w", err)
		}

		last = max(last, e.Seq)
	}

	return last, nil
}
