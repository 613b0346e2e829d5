package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/oshokin/ledger-registry/internal/domain/account"
	"github.com/oshokin/ledger-registry/internal/domain/event"
	"github.com/oshokin/ledger-registry/internal/domain/zone"
	"github.com/oshokin/ledger-registry/internal/ledger"
	"github.com/oshokin/ledger-registry/internal/logger"
	"github.com/oshokin/ledger-registry/internal/registry"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	AddAccount(ctx context.Context, caller, target account.Identity, role account.Role) ([]event.Event, error)
	DisableAccount(ctx context.Context, caller, target account.Identity) ([]event.Event, error)
	Account(ctx context.Context, identity account.Identity) (account.Account, error)
	Age(ctx context.Context, identity account.Identity) (time.Duration, error)
	AccountIs(ctx context.Context, identity account.Identity, role account.Role) bool
	AddZone(ctx context.Context, caller account.Identity, zoneType zone.Type, box zone.Box3D[uint32]) (uint32, []event.Event, error)
	Zone(ctx context.Context, id uint32) (zone.Zone[uint32], error)
	TotalBoxes(ctx context.Context) uint32
	Transfer(ctx context.Context, caller, to account.Identity, amount ledger.Amount) (bool, []event.Event, error)
	BalanceOf(ctx context.Context, identity account.Identity) (ledger.Amount, error)
	Events(ctx context.Context, after uint64) []event.Event
}

// Server implements the RegistryService gRPC API.
type Server struct {
	// service provides the business logic for registry operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// AddAccount creates or overwrites an account.
func (s *Server) AddAccount(ctx context.Context, req *AddAccountRequest) (*MutationResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	role, ok := account.ParseRole(req.Role)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown role %q", req.Role)
	}

	events, err := s.service.AddAccount(ctx, account.Identity(req.Caller), account.Identity(req.Target), role)
	if err != nil {
		return nil, toStatus(err)
	}

	return &MutationResponse{Events: toProtoEvents(events)}, nil
}

// DisableAccount disables an account.
func (s *Server) DisableAccount(ctx context.Context, req *DisableAccountRequest) (*MutationResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	events, err := s.service.DisableAccount(ctx, account.Identity(req.Caller), account.Identity(req.Target))
	if err != nil {
		return nil, toStatus(err)
	}

	return &MutationResponse{Events: toProtoEvents(events)}, nil
}

// GetAccount returns an account, its age and optionally a role check.
// The age is left out when it cannot be computed, for instance after the
// server clock stepped back before the creation time.
func (s *Server) GetAccount(ctx context.Context, req *GetAccountRequest) (*AccountResponse, error) {
	if req == nil || req.Identity == "" {
		return nil, status.Error(codes.InvalidArgument, "identity is required")
	}

	identity := account.Identity(req.Identity)

	a, err := s.service.Account(ctx, identity)
	if err != nil {
		return nil, toStatus(err)
	}

	response := &AccountResponse{
		Identity:  string(a.Identity),
		Role:      a.Role.String(),
		Enabled:   a.Enabled,
		CreatedAt: timestamppb.New(a.CreatedAt),
	}

	age, err := s.service.Age(ctx, identity)

	switch {
	case err == nil:
		response.Age = durationpb.New(age)
	case errors.Is(err, registry.ErrInvalidData):
		logger.WarnKV(ctx, "Account age unavailable", "identity", identity, "error", err)
	default:
		return nil, toStatus(err)
	}

	if req.Role != "" {
		role, ok := account.ParseRole(req.Role)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "unknown role %q", req.Role)
		}

		response.HasRole = s.service.AccountIs(ctx, identity, role)
	}

	return response, nil
}

// AddZone catalogs a zone.
func (s *Server) AddZone(ctx context.Context, req *AddZoneRequest) (*AddZoneResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if req.Point1 == nil || req.Point2 == nil {
		return nil, status.Error(codes.InvalidArgument, "both bounding box points are required")
	}

	zoneType, ok := zone.ParseType(req.Type)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown zone type %q", req.Type)
	}

	box := zone.NewBox(toDomainPoint(req.Point1), toDomainPoint(req.Point2))

	id, events, err := s.service.AddZone(ctx, account.Identity(req.Caller), zoneType, box)
	if err != nil {
		return nil, toStatus(err)
	}

	return &AddZoneResponse{ZoneID: id, Events: toProtoEvents(events)}, nil
}

// GetZone returns a zone and optionally a type check.
func (s *Server) GetZone(ctx context.Context, req *GetZoneRequest) (*ZoneResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	z, err := s.service.Zone(ctx, req.ZoneID)
	if err != nil {
		return nil, toStatus(err)
	}

	response := &ZoneResponse{
		ZoneID: z.ID,
		Type:   z.Type.String(),
		Point1: toProtoPoint(z.BoundingBox.Point1),
		Point2: toProtoPoint(z.BoundingBox.Point2),
	}

	if req.Type != "" {
		zoneType, ok := zone.ParseType(req.Type)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "unknown zone type %q", req.Type)
		}

		response.Matches = z.Is(zoneType)
	}

	return response, nil
}

// TotalBoxes returns the zone counter.
func (s *Server) TotalBoxes(ctx context.Context, _ *TotalBoxesRequest) (*TotalBoxesResponse, error) {
	return &TotalBoxesResponse{Total: s.service.TotalBoxes(ctx)}, nil
}

// Transfer moves funds of the caller.
func (s *Server) Transfer(ctx context.Context, req *TransferRequest) (*TransferResponse, error) {
	if req == nil || req.Caller == "" || req.To == "" {
		return nil, status.Error(codes.InvalidArgument, "caller and receiver are required")
	}

	reaped, events, err := s.service.Transfer(ctx, account.Identity(req.Caller), account.Identity(req.To), req.Amount)
	if err != nil {
		return nil, toStatus(err)
	}

	return &TransferResponse{Reaped: reaped, Events: toProtoEvents(events)}, nil
}

// BalanceOf returns a ledger balance.
func (s *Server) BalanceOf(ctx context.Context, req *BalanceRequest) (*BalanceResponse, error) {
	if req == nil || req.Identity == "" {
		return nil, status.Error(codes.InvalidArgument, "identity is required")
	}

	balance, err := s.service.BalanceOf(ctx, account.Identity(req.Identity))
	if err != nil {
		return nil, toStatus(err)
	}

	return &BalanceResponse{Identity: req.Identity, Balance: balance}, nil
}

// Events returns retained domain events.
func (s *Server) Events(ctx context.Context, req *EventsRequest) (*EventsResponse, error) {
	var after uint64
	if req != nil {
		after = req.AfterSeq
	}

	return &EventsResponse{Events: toProtoEvents(s.service.Events(ctx, after))}, nil
}

// LoggingInterceptor scopes the logger of base to every call and logs failures.
func LoggingInterceptor(base context.Context) grpc.UnaryServerInterceptor {
	baseLogger := logger.FromContext(base)

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = logger.WithKV(logger.ToContext(ctx, baseLogger), "method", info.FullMethod)
		started := time.Now()

		resp, err := handler(ctx, req)
		if err != nil {
			logger.WarnKV(ctx, "Call failed", "code", status.Code(err).String(), "error", err)
		} else {
			logger.DebugKV(ctx, "Call served", "elapsed", time.Since(started))
		}

		return resp, err
	}
}

// toStatus maps registry and ledger errors onto gRPC status codes.
func toStatus(err error) error {
	var code codes.Code

	switch {
	case errors.Is(err, registry.ErrNotAuthorized):
		code = codes.PermissionDenied
	case errors.Is(err, registry.ErrInvalidAction):
		code = codes.FailedPrecondition
	case errors.Is(err, registry.ErrNotExists):
		code = codes.NotFound
	case errors.Is(err, registry.ErrInvalidData), errors.Is(err, registry.ErrNoneValue):
		code = codes.InvalidArgument
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrBelowExistentialDeposit),
		errors.Is(err, ledger.ErrInvalidAmount):
		code = codes.FailedPrecondition
	default:
		return status.Error(codes.Internal, fmt.Sprintf("registry failure: %v", err))
	}

	return status.Error(code, err.Error())
}

// toDomainPoint converts a wire Point to a domain point.
func toDomainPoint(p *Point) zone.Point3D[uint32] {
	return zone.NewPoint(p.X, p.Y, p.Z)
}

// toProtoPoint converts a domain point to a wire Point.
func toProtoPoint(p zone.Point3D[uint32]) *Point {
	return &Point{X: p.X, Y: p.Y, Z: p.Z}
}

// toProtoEvents converts domain events to their wire form.
func toProtoEvents(events []event.Event) []*Event {
	result := make([]*Event, 0, len(events))

	for _, e := range events {
		result = append(result, &Event{
			Seq:      e.Seq,
			Kind:     string(e.Kind),
			Identity: string(e.Identity),
			Role:     string(e.Role),
			Reason:   string(e.Reason),
			ZoneID:   e.ZoneID,
			Creator:  string(e.Creator),
			ZoneType: string(e.ZoneType),
		})
	}

	return result
}
