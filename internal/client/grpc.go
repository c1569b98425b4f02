package client

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/orgwidget/internal/model"
	"github.com/alfredjeanlab/orgwidget/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCClient implements StorefrontClient using the gRPC transport.
type GRPCClient struct {
	conn  *grpc.ClientConn
	token string
}

// NewGRPCClient connects to the given gRPC address and returns a client.
// Extra dial options (e.g. a bufconn dialer in tests) are appended.
func NewGRPCClient(addr, token string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &GRPCClient{conn: conn, token: token}, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) CreateSession(ctx context.Context) (*model.SessionSnapshot, error) {
	var snap model.SessionSnapshot
	if err := c.invoke(ctx, rpc.MethodCreateSession, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *GRPCClient) GetSession(ctx context.Context, id string) (*model.SessionSnapshot, error) {
	var snap model.SessionSnapshot
	req := map[string]any{rpc.FieldSessionID: id}
	if err := c.invoke(ctx, rpc.MethodGetSession, req, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *GRPCClient) UpdateSessionProfile(ctx context.Context, id string, r *UpdateProfileRequest) (*model.SessionSnapshot, error) {
	var snap model.SessionSnapshot
	req := map[string]any{
		rpc.FieldSessionID:     id,
		rpc.FieldEmail:         r.Email,
		rpc.FieldAuthenticated: r.Authenticated,
	}
	if err := c.invoke(ctx, rpc.MethodUpdateSessionProfile, req, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *GRPCClient) CheckUserPermission(ctx context.Context, sessionID string) (*model.Permission, error) {
	var perm model.Permission
	if err := c.invoke(ctx, rpc.MethodCheckUserPermission, sessionRequest(sessionID), &perm); err != nil {
		return nil, err
	}
	return &perm, nil
}

func (c *GRPCClient) GetOrganization(ctx context.Context, sessionID string) (*model.Organization, error) {
	var org model.Organization
	if err := c.invoke(ctx, rpc.MethodGetOrganization, sessionRequest(sessionID), &org); err != nil {
		return nil, err
	}
	return &org, nil
}

func (c *GRPCClient) GetCostCenter(ctx context.Context, sessionID string) (*model.CostCenter, error) {
	var cc model.CostCenter
	if err := c.invoke(ctx, rpc.MethodGetCostCenter, sessionRequest(sessionID), &cc); err != nil {
		return nil, err
	}
	return &cc, nil
}

func (c *GRPCClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.invoke(ctx, rpc.MethodHealth, nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func sessionRequest(sessionID string) map[string]any {
	return map[string]any{rpc.FieldSessionID: sessionID}
}

// invoke calls a unary method with a Struct request built from req and
// decodes the Struct response into result.
func (c *GRPCClient) invoke(ctx context.Context, method string, req any, result any) error {
	in, err := rpc.Encode(req)
	if err != nil {
		return err
	}
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, rpc.FullMethod(method), in, out); err != nil {
		return err
	}
	return rpc.Decode(out, result)
}
