package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "stint"
	serviceName       = "stint.plugin.v1.StintPlugin"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodHandleEvent = "/" + serviceName + "/HandleEvent"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "STINT_PLUGIN",
	MagicCookieValue: "stint",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Events  []string `json:"events"`
}

type Event struct {
	EventID    string         `json:"event_id"`
	Kind       string         `json:"kind"`
	OccurredAt string         `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

type HandleResponse struct {
	Handled bool `json:"handled"`
}

type StintPluginServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	HandleEvent(ctx context.Context, in *Event) (*HandleResponse, error)
}

type StintPluginClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	HandleEvent(ctx context.Context, in *Event) (*HandleResponse, error)
}

type stintPluginClient struct {
	conn *grpc.ClientConn
}

func NewStintPluginClient(conn *grpc.ClientConn) StintPluginClient {
	return &stintPluginClient{conn: conn}
}

func (c *stintPluginClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *stintPluginClient) HandleEvent(ctx context.Context, in *Event) (*HandleResponse, error) {
	out := &HandleResponse{}
	if err := c.conn.Invoke(ctx, methodHandleEvent, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterStintPluginServer(server grpc.ServiceRegistrar, impl StintPluginServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*StintPluginServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMetadata}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "HandleEvent",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Event{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.HandleEvent(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodHandleEvent}
					handler := func(ctx context.Context, req any) (any, error) {
						event, ok := req.(*Event)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.HandleEvent(ctx, event)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/plugin-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl StintPluginServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterStintPluginServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewStintPluginClient(conn), nil
}

func PluginMap(impl StintPluginServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
