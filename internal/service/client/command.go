package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	api "github.com/oshokin/ledger-registry/internal/api/grpc/registry"
	"github.com/oshokin/ledger-registry/internal/config"
	"github.com/oshokin/ledger-registry/internal/domain/zone"
	"github.com/oshokin/ledger-registry/internal/logger"
	"github.com/oshokin/ledger-registry/internal/service/common"
)

// Options configures the connection of registry-ctl operations.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string

	// Caller is the identity performing mutations, username@hostname if empty.
	Caller string

	// Output receives the results, os.Stdout if nil.
	Output io.Writer
}

// Session is a connected registry client bound to a caller.
type Session struct {
	// Client is the connected registry client.
	Client *common.Client
	// Caller is the resolved caller identity.
	Caller string

	out io.Writer
}

// Operation is one registry-ctl action.
type Operation func(ctx context.Context, s *Session) error

// errInvalidPoint is returned for malformed point arguments.
var errInvalidPoint = errors.New("point must have the form x,y,z")

// Run connects to the registry server and performs op.
func Run(ctx context.Context, opts *Options, op Operation) error {
	ctx = logger.WithName(ctx, "registry-ctl")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	caller, err := common.ResolveIdentity(opts.Caller)
	if err != nil {
		return err
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	logger.DebugKV(ctx, "Calling registry server", "server_address", serverAddress, "caller", caller)

	return op(ctx, &Session{Client: client, Caller: caller, out: out})
}

// AddAccount creates or overwrites the account of target.
func AddAccount(target, role string) Operation {
	return func(ctx context.Context, s *Session) error {
		resp, err := s.Client.AddAccount(ctx, s.Caller, target, role)
		if err != nil {
			return err
		}

		return s.printEvents(resp.Events)
	}
}

// DisableAccount disables the account of target.
func DisableAccount(target string) Operation {
	return func(ctx context.Context, s *Session) error {
		resp, err := s.Client.DisableAccount(ctx, s.Caller, target)
		if err != nil {
			return err
		}

		if len(resp.Events) == 0 {
			return s.println(fmt.Sprintf("account %s was already disabled", target))
		}

		return s.printEvents(resp.Events)
	}
}

// GetAccount prints an account, checking role when it is not empty.
func GetAccount(identity, role string) Operation {
	return func(ctx context.Context, s *Session) error {
		resp, err := s.Client.GetAccount(ctx, identity, role)
		if err != nil {
			return err
		}

		return s.println(FormatAccount(resp, role))
	}
}

// AddZone catalogs a zone of zoneType spanning box.
func AddZone(zoneType string, box zone.Box3D[uint32]) Operation {
	return func(ctx context.Context, s *Session) error {
		resp, err := s.Client.AddZone(ctx, s.Caller, zoneType, box)
		if err != nil {
			return err
		}

		if err := s.println(fmt.Sprintf("zone %d created", resp.ZoneID)); err != nil {
			return err
		}

		return s.printEvents(resp.Events)
	}
}

// GetZone prints a zone, comparing zoneType when it is not empty.
func GetZone(id uint32, zoneType string) Operation {
	return func(ctx context.Context, s *Session) error {
		resp, err := s.Client.GetZone(ctx, id, zoneType)
		if err != nil {
			return err
		}

		return s.println(FormatZone(resp, zoneType))
	}
}

// TotalBoxes prints the zone counter.
func TotalBoxes() Operation {
	return func(ctx context.Context, s *Session) error {
		total, err := s.Client.TotalBoxes(ctx)
		if err != nil {
			return err
		}

		return s.println(strconv.FormatUint(uint64(total), 10))
	}
}

// Transfer moves amount from the caller to another identity.
func Transfer(to string, amount uint64) Operation {
	return func(ctx context.Context, s *Session) error {
		resp, err := s.Client.Transfer(ctx, s.Caller, to, amount)
		if err != nil {
			return err
		}

		message := fmt.Sprintf("transferred %d from %s to %s", amount, s.Caller, to)
		if resp.Reaped {
			message += " (sender reaped)"
		}

		if err := s.println(message); err != nil {
			return err
		}

		return s.printEvents(resp.Events)
	}
}

// Balance prints the ledger balance of identity, the caller when empty.
func Balance(identity string) Operation {
	return func(ctx context.Context, s *Session) error {
		if identity == "" {
			identity = s.Caller
		}

		balance, err := s.Client.BalanceOf(ctx, identity)
		if err != nil {
			return err
		}

		return s.println(fmt.Sprintf("%s: %d", identity, balance))
	}
}

// Events prints the retained events newer than afterSeq.
func Events(afterSeq uint64) Operation {
	return func(ctx context.Context, s *Session) error {
		events, err := s.Client.Events(ctx, afterSeq)
		if err != nil {
			return err
		}

		return s.printEvents(events)
	}
}

// ParsePoint parses a point written as x,y,z.
func ParsePoint(s string) (zone.Point3D[uint32], error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return zone.Point3D[uint32]{}, fmt.Errorf("%w: %q", errInvalidPoint, s)
	}

	var coords [3]uint32

	for i, part := range parts {
		value, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return zone.Point3D[uint32]{}, fmt.Errorf("%w: %q: %w", errInvalidPoint, s, err)
		}

		coords[i] = uint32(value)
	}

	return zone.NewPoint(coords[0], coords[1], coords[2]), nil
}

// FormatAccount renders an account response on one line.
func FormatAccount(resp *api.AccountResponse, role string) string {
	if resp == nil {
		return "<nil account>"
	}

	status := "disabled"
	if resp.Enabled {
		status = "enabled"
	}

	created := "<unknown>"
	if resp.CreatedAt != nil {
		created = resp.CreatedAt.AsTime().Format(time.RFC3339)
	}

	line := fmt.Sprintf("%s %s %s since %s", resp.Identity, resp.Role, status, created)

	if resp.Age != nil {
		line += fmt.Sprintf(" (age %s)", resp.Age.AsDuration())
	}

	if role != "" {
		line += fmt.Sprintf(", is %s: %t", role, resp.HasRole)
	}

	return line
}

// FormatZone renders a zone response on one line.
func FormatZone(resp *api.ZoneResponse, zoneType string) string {
	if resp == nil {
		return "<nil zone>"
	}

	line := fmt.Sprintf("zone %d %s %s-%s", resp.ZoneID, resp.Type, formatPoint(resp.Point1), formatPoint(resp.Point2))

	if zoneType != "" {
		line += fmt.Sprintf(", is %s: %t", zoneType, resp.Matches)
	}

	return line
}

// FormatEvent renders an event on one line.
func FormatEvent(e *api.Event) string {
	switch e.Kind {
	case "account_created":
		return fmt.Sprintf("#%d %s identity=%s role=%s", e.Seq, e.Kind, e.Identity, e.Role)
	case "account_disabled":
		return fmt.Sprintf("#%d %s identity=%s reason=%s", e.Seq, e.Kind, e.Identity, e.Reason)
	case "zone_created":
		return fmt.Sprintf("#%d %s zone=%d creator=%s type=%s", e.Seq, e.Kind, e.ZoneID, e.Creator, e.ZoneType)
	default:
		return fmt.Sprintf("#%d %s", e.Seq, e.Kind)
	}
}

func formatPoint(p *api.Point) string {
	if p == nil {
		return "<nil>"
	}

	return zone.NewPoint(p.X, p.Y, p.Z).String()
}

func (s *Session) printEvents(events []*api.Event) error {
	for _, e := range events {
		if err := s.println(FormatEvent(e)); err != nil {
			return err
		}
	}

	return nil
}

func (s *Session) println(line string) error {
	if _, err := fmt.Fprintln(s.out, line); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
