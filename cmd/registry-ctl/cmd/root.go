package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/ledger-registry/internal/config"
	"github.com/oshokin/ledger-registry/internal/domain/zone"
	"github.com/oshokin/ledger-registry/internal/service/client"
	"github.com/oshokin/ledger-registry/internal/service/watcher"
	"github.com/oshokin/ledger-registry/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the server address from the configuration.
	serverAddress string
	// caller is the identity performing the operation.
	caller string
	// checkRole asks account get to check a role as well.
	checkRole string
	// checkType asks zone get to compare a zone type as well.
	checkType string
	// zoneType is the type of a new zone.
	zoneType string
	// afterSeq filters events by sequence number.
	afterSeq uint64
	// follow keeps polling for new events.
	follow bool
	// pollInterval is the delay between polls when following.
	pollInterval time.Duration

	// rootCmd represents the base command for operating the registry.
	rootCmd = &cobra.Command{
		Use:   "registry-ctl",
		Short: "Operate the ledger registry server.",
		Long: `Manages accounts and zones on a running registry-server.

Mutations are performed on behalf of the caller given with --as, or
username@hostname when it is omitted. Only enabled registrars may add or
disable accounts and catalog zones.`,
		SilenceUsage: true,
	}

	accountCmd = &cobra.Command{
		Use:   "account",
		Short: "Manage accounts.",
	}

	accountAddCmd = &cobra.Command{
		Use:   "add <identity> <registrar|standard>",
		Short: "Create or overwrite an account.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(client.AddAccount(args[0], args[1]))
		},
	}

	accountDisableCmd = &cobra.Command{
		Use:   "disable <identity>",
		Short: "Disable an account.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(client.DisableAccount(args[0]))
		},
	}

	accountGetCmd = &cobra.Command{
		Use:   "get <identity>",
		Short: "Show an account with its age.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(client.GetAccount(args[0], checkRole))
		},
	}

	zoneCmd = &cobra.Command{
		Use:   "zone",
		Short: "Manage zones.",
	}

	zoneAddCmd = &cobra.Command{
		Use:   "add <x1,y1,z1> <x2,y2,z2>",
		Short: "Catalog a zone spanned by two corners.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			point1, err := client.ParsePoint(args[0])
			if err != nil {
				return err
			}

			point2, err := client.ParsePoint(args[1])
			if err != nil {
				return err
			}

			return run(client.AddZone(zoneType, zone.NewBox(point1, point2)))
		},
	}

	zoneGetCmd = &cobra.Command{
		Use:   "get <zone-id>",
		Short: "Show a zone.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid zone id %q: %w", args[0], err)
			}

			return run(client.GetZone(uint32(id), checkType))
		},
	}

	zoneTotalCmd = &cobra.Command{
		Use:   "total",
		Short: "Show the number of catalogued zones.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(client.TotalBoxes())
		},
	}

	transferCmd = &cobra.Command{
		Use:   "transfer <to> <amount>",
		Short: "Transfer funds of the caller on the ledger.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			amount, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			return run(client.Transfer(args[0], amount))
		},
	}

	balanceCmd = &cobra.Command{
		Use:   "balance [identity]",
		Short: "Show a ledger balance, the caller's by default.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var identity string
			if len(args) > 0 {
				identity = args[0]
			}

			return run(client.Balance(identity))
		},
	}

	eventsCmd = &cobra.Command{
		Use:   "events",
		Short: "Show recent registry events.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if !follow {
				return run(client.Events(afterSeq))
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return watcher.Run(ctx, &watcher.Options{
				ConfigPath:    cfgPath,
				ServerAddress: serverAddress,
				PollInterval:  pollInterval,
				AfterSeq:      afterSeq,
			})
		},
	}
)

// run performs op with a signal-aware context.
func run(op client.Operation) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return client.Run(ctx, &client.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
		Caller:        caller,
	}, op)
}

// Execute runs the registry-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&serverAddress, "server", "", "server address overriding server_addr")
	rootCmd.PersistentFlags().StringVar(&caller, "as", "", "caller identity (default username@hostname)")

	accountGetCmd.Flags().StringVar(&checkRole, "role", "", "also check whether the account holds this role")
	zoneAddCmd.Flags().StringVarP(&zoneType, "type", "t", zone.DefaultType.String(), "zone type: red, green or parent")
	zoneGetCmd.Flags().StringVar(&checkType, "type", "", "also check whether the zone has this type")
	eventsCmd.Flags().Uint64Var(&afterSeq, "after", 0, "only show events with a greater sequence number")
	eventsCmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep polling for new events")
	eventsCmd.Flags().DurationVar(&pollInterval, "interval", watcher.DefaultPollInterval, "poll interval when following")

	accountCmd.AddCommand(accountAddCmd, accountDisableCmd, accountGetCmd)
	zoneCmd.AddCommand(zoneAddCmd, zoneGetCmd, zoneTotalCmd)
	rootCmd.AddCommand(accountCmd, zoneCmd, transferCmd, balanceCmd, eventsCmd)
}
