//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	api "github.com/oshokin/ledger-registry/internal/api/grpc/registry"
	"github.com/oshokin/ledger-registry/internal/config"
	"github.com/oshokin/ledger-registry/internal/domain/zone"
)

// Client wraps the gRPC RegistryService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the registry server.
	conn *grpc.ClientConn
	// api is the RegistryService client.
	api *api.RegistryClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errCallerRequired is returned when a mutating call has no caller identity.
	errCallerRequired = errors.New("caller identity must be provided")
)

// Dial establishes a gRPC connection to the registry server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial registry server: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewRegistryClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// AddAccount creates or overwrites the account of target with role.
func (c *Client) AddAccount(ctx context.Context, caller, target, role string) (*api.MutationResponse, error) {
	if caller == "" {
		return nil, errCallerRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.AddAccount(callCtx, &api.AddAccountRequest{Caller: caller, Target: target, Role: role})
	if err != nil {
		return nil, fmt.Errorf("add account: %w", err)
	}

	return resp, nil
}

// DisableAccount disables the account of target.
func (c *Client) DisableAccount(ctx context.Context, caller, target string) (*api.MutationResponse, error) {
	if caller == "" {
		return nil, errCallerRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.DisableAccount(callCtx, &api.DisableAccountRequest{Caller: caller, Target: target})
	if err != nil {
		return nil, fmt.Errorf("disable account: %w", err)
	}

	return resp, nil
}

// GetAccount retrieves an account; a non-empty role is checked as well.
func (c *Client) GetAccount(ctx context.Context, identity, role string) (*api.AccountResponse, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetAccount(callCtx, &api.GetAccountRequest{Identity: identity, Role: role})
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	return resp, nil
}

// AddZone catalogs a zone spanning box.
func (c *Client) AddZone(
	ctx context.Context,
	caller, zoneType string,
	box zone.Box3D[uint32],
) (*api.AddZoneResponse, error) {
	if caller == "" {
		return nil, errCallerRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	request := &api.AddZoneRequest{
		Caller: caller,
		Type:   zoneType,
		Point1: &api.Point{X: box.Point1.X, Y: box.Point1.Y, Z: box.Point1.Z},
		Point2: &api.Point{X: box.Point2.X, Y: box.Point2.Y, Z: box.Point2.Z},
	}

	resp, err := c.api.AddZone(callCtx, request)
	if err != nil {
		return nil, fmt.Errorf("add zone: %w", err)
	}

	return resp, nil
}

// GetZone retrieves a zone; a non-empty zoneType is compared as well.
func (c *Client) GetZone(ctx context.Context, id uint32, zoneType string) (*api.ZoneResponse, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetZone(callCtx, &api.GetZoneRequest{ZoneID: id, Type: zoneType})
	if err != nil {
		return nil, fmt.Errorf("get zone: %w", err)
	}

	return resp, nil
}

// TotalBoxes retrieves the zone counter.
func (c *Client) TotalBoxes(ctx context.Context) (uint32, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.TotalBoxes(callCtx, &api.TotalBoxesRequest{})
	if err != nil {
		return 0, fmt.Errorf("total boxes: %w", err)
	}

	return resp.Total, nil
}

// Transfer moves amount from caller to another identity on the ledger.
func (c *Client) Transfer(ctx context.Context, caller, to string, amount uint64) (*api.TransferResponse, error) {
	if caller == "" {
		return nil, errCallerRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Transfer(callCtx, &api.TransferRequest{Caller: caller, To: to, Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}

	return resp, nil
}

// BalanceOf retrieves the ledger balance of identity.
func (c *Client) BalanceOf(ctx context.Context, identity string) (uint64, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.BalanceOf(callCtx, &api.BalanceRequest{Identity: identity})
	if err != nil {
		return 0, fmt.Errorf("balance of: %w", err)
	}

	return resp.Balance, nil
}

// Events retrieves the retained events newer than afterSeq.
func (c *Client) Events(ctx context.Context, afterSeq uint64) ([]*api.Event, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Events(callCtx, &api.EventsRequest{AfterSeq: afterSeq})
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}

	return resp.Events, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
