package server

import (
	"context"
	"database/sql"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/alfredjeanlab/orgwidget/internal/model"
	"github.com/alfredjeanlab/orgwidget/internal/rpc"
)

// StorefrontService is the gRPC surface of the storefront service. Every
// method takes and returns a google.protobuf.Struct holding the same JSON
// document as the matching HTTP route.
type StorefrontService interface {
	GetSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateSessionProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckUserPermission(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetOrganization(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCostCenter(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Health(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// StorefrontServiceDesc describes orgwidget.v1.StorefrontService.
var StorefrontServiceDesc = grpc.ServiceDesc{
	ServiceName: rpc.ServiceName,
	HandlerType: (*StorefrontService)(nil),
	Methods: []grpc.MethodDesc{
		unary(rpc.MethodGetSession, StorefrontService.GetSession),
		unary(rpc.MethodCreateSession, StorefrontService.CreateSession),
		unary(rpc.MethodUpdateSessionProfile, StorefrontService.UpdateSessionProfile),
		unary(rpc.MethodCheckUserPermission, StorefrontService.CheckUserPermission),
		unary(rpc.MethodGetOrganization, StorefrontService.GetOrganization),
		unary(rpc.MethodGetCostCenter, StorefrontService.GetCostCenter),
		unary(rpc.MethodHealth, StorefrontService.Health),
	},
	Metadata: "orgwidget/v1/storefront.proto",
}

type structMethod func(StorefrontService, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call structMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(StorefrontService), ctx, req.(*structpb.Struct))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: rpc.FullMethod(name)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// NewGRPCServer creates a gRPC server with standard interceptors,
// registers the StorefrontService, reflection, and returns the server ready to serve.
func NewGRPCServer(s *Server, authToken string) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			LoggingInterceptor,
			AuthInterceptor(authToken),
		),
	)

	srv.RegisterService(&StorefrontServiceDesc, &grpcService{s: s})
	reflection.Register(srv)

	return srv
}

// grpcService adapts Server's core methods to StorefrontService.
type grpcService struct {
	s *Server
}

var _ StorefrontService = (*grpcService)(nil)

func (g *grpcService) GetSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return reply(g.s.getSession(ctx, rpc.StringField(req, rpc.FieldSessionID)))
}

func (g *grpcService) CreateSession(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return reply(g.s.createSession(ctx))
}

func (g *grpcService) UpdateSessionProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := updateProfileInput{
		Email:         rpc.StringField(req, rpc.FieldEmail),
		Authenticated: rpc.BoolField(req, rpc.FieldAuthenticated),
	}
	return reply(g.s.updateSessionProfile(ctx, rpc.StringField(req, rpc.FieldSessionID), in))
}

func (g *grpcService) CheckUserPermission(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return reply(g.s.checkUserPermission(ctx, rpc.StringField(req, rpc.FieldSessionID)))
}

func (g *grpcService) GetOrganization(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return reply(g.s.storefrontOrganization(ctx, rpc.StringField(req, rpc.FieldSessionID)))
}

func (g *grpcService) GetCostCenter(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return reply(g.s.storefrontCostCenter(ctx, rpc.StringField(req, rpc.FieldSessionID)))
}

func (g *grpcService) Health(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return rpc.Encode(map[string]string{rpc.FieldStatus: "ok"})
}

// reply encodes a core method result, mapping its error to a gRPC status.
func reply(v any, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, grpcError(err)
	}
	out, err := rpc.Encode(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func grpcError(err error) error {
	var (
		ie inputError
		ve *model.ValidationError
	)
	switch {
	case errors.As(err, &ie), errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, errUnauthenticated):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, sql.ErrNoRows):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
