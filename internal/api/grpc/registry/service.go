package registry

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "ledgerregistry.v1.RegistryService"

// Method names of the registry service.
const (
	MethodAddAccount     = "AddAccount"
	MethodDisableAccount = "DisableAccount"
	MethodGetAccount     = "GetAccount"
	MethodAddZone        = "AddZone"
	MethodGetZone        = "GetZone"
	MethodTotalBoxes     = "TotalBoxes"
	MethodTransfer       = "Transfer"
	MethodBalanceOf      = "BalanceOf"
	MethodEvents         = "Events"
)

// RegistryServer is the server API of the registry service.
type RegistryServer interface {
	AddAccount(ctx context.Context, req *AddAccountRequest) (*MutationResponse, error)
	DisableAccount(ctx context.Context, req *DisableAccountRequest) (*MutationResponse, error)
	GetAccount(ctx context.Context, req *GetAccountRequest) (*AccountResponse, error)
	AddZone(ctx context.Context, req *AddZoneRequest) (*AddZoneResponse, error)
	GetZone(ctx context.Context, req *GetZoneRequest) (*ZoneResponse, error)
	TotalBoxes(ctx context.Context, req *TotalBoxesRequest) (*TotalBoxesResponse, error)
	Transfer(ctx context.Context, req *TransferRequest) (*TransferResponse, error)
	BalanceOf(ctx context.Context, req *BalanceRequest) (*BalanceResponse, error)
	Events(ctx context.Context, req *EventsRequest) (*EventsResponse, error)
}

// RegisterRegistryServer registers srv on s.
func RegisterRegistryServer(s grpc.ServiceRegistrar, srv RegistryServer) {
	s.RegisterService(&serviceDesc, srv)
}

//nolint:gochecknoglobals // gRPC service descriptors are package-level by convention.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RegistryServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodAddAccount, RegistryServer.AddAccount),
		unary(MethodDisableAccount, RegistryServer.DisableAccount),
		unary(MethodGetAccount, RegistryServer.GetAccount),
		unary(MethodAddZone, RegistryServer.AddZone),
		unary(MethodGetZone, RegistryServer.GetZone),
		unary(MethodTotalBoxes, RegistryServer.TotalBoxes),
		unary(MethodTransfer, RegistryServer.Transfer),
		unary(MethodBalanceOf, RegistryServer.BalanceOf),
		unary(MethodEvents, RegistryServer.Events),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ledgerregistry/v1/registry",
}

// unary builds the method descriptor of a unary call.
func unary[Req, Resp any](
	method string,
	call func(RegistryServer, context.Context, *Req) (*Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}

			server, _ := srv.(RegistryServer)

			if interceptor == nil {
				return call(server, ctx, in)
			}

			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(method),
			}

			handler := func(ctx context.Context, req any) (any, error) {
				typed, _ := req.(*Req)

				return call(server, ctx, typed)
			}

			return interceptor(ctx, in, info, handler)
		},
	}
}

// FullMethod returns the gRPC path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// RegistryClient is the client API of the registry service.
type RegistryClient struct {
	// cc is the underlying connection.
	cc grpc.ClientConnInterface
}

// NewRegistryClient returns a client calling the registry service over cc.
func NewRegistryClient(cc grpc.ClientConnInterface) *RegistryClient {
	return &RegistryClient{
		cc: cc,
	}
}

// AddAccount calls RegistryService.AddAccount.
func (c *RegistryClient) AddAccount(ctx context.Context, in *AddAccountRequest, opts ...grpc.CallOption) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, MethodAddAccount, in, opts)
}

// DisableAccount calls RegistryService.DisableAccount.
func (c *RegistryClient) DisableAccount(ctx context.Context, in *DisableAccountRequest, opts ...grpc.CallOption) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, MethodDisableAccount, in, opts)
}

// GetAccount calls RegistryService.GetAccount.
func (c *RegistryClient) GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	return invoke[AccountResponse](ctx, c.cc, MethodGetAccount, in, opts)
}

// AddZone calls RegistryService.AddZone.
func (c *RegistryClient) AddZone(ctx context.Context, in *AddZoneRequest, opts ...grpc.CallOption) (*AddZoneResponse, error) {
	return invoke[AddZoneResponse](ctx, c.cc, MethodAddZone, in, opts)
}

// GetZone calls RegistryService.GetZone.
func (c *RegistryClient) GetZone(ctx context.Context, in *GetZoneRequest, opts ...grpc.CallOption) (*ZoneResponse, error) {
	return invoke[ZoneResponse](ctx, c.cc, MethodGetZone, in, opts)
}

// TotalBoxes calls RegistryService.TotalBoxes.
func (c *RegistryClient) TotalBoxes(ctx context.Context, in *TotalBoxesRequest, opts ...grpc.CallOption) (*TotalBoxesResponse, error) {
	return invoke[TotalBoxesResponse](ctx, c.cc, MethodTotalBoxes, in, opts)
}

// Transfer calls RegistryService.Transfer.
func (c *RegistryClient) Transfer(ctx context.Context, in *TransferRequest, opts ...grpc.CallOption) (*TransferResponse, error) {
	return invoke[TransferResponse](ctx, c.cc, MethodTransfer, in, opts)
}

// BalanceOf calls RegistryService.BalanceOf.
func (c *RegistryClient) BalanceOf(ctx context.Context, in *BalanceRequest, opts ...grpc.CallOption) (*BalanceResponse, error) {
	return invoke[BalanceResponse](ctx, c.cc, MethodBalanceOf, in, opts)
}

// Events calls RegistryService.Events.
func (c *RegistryClient) Events(ctx context.Context, in *EventsRequest, opts ...grpc.CallOption) (*EventsResponse, error) {
	return invoke[EventsResponse](ctx, c.cc, MethodEvents, in, opts)
}

// invoke performs a unary call negotiating the JSON codec.
func invoke[Resp any](
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	in any,
	opts []grpc.CallOption,
) (*Resp, error) {
	out := new(Resp)

	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
