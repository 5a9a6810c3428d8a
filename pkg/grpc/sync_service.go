package grpc

import (
	"context"
	"fmt"

	"github.com/carverauto/sensorsync/pkg/models"
	"google.golang.org/grpc"
)

// SyncServiceName is the fully qualified name of the sync service.
const SyncServiceName = "sensorsync.v1.SyncService"

const (
	submitReadingsMethod        = "/" + SyncServiceName + "/SubmitReadings"
	acknowledgeAggregatesMethod = "/" + SyncServiceName + "/AcknowledgeAggregates"
	registerSensorMethod        = "/" + SyncServiceName + "/RegisterSensor"
)

// SyncServiceServer is implemented by the collector.
type SyncServiceServer interface {
	SubmitReadings(context.Context, *models.SubmitReadingsRequest) (*models.SubmitReadingsResponse, error)
	AcknowledgeAggregates(context.Context, *models.AckRequest) (*models.AckResponse, error)
	RegisterSensor(context.Context, *models.RegisterSensorRequest) (*models.SensorMessage, error)
}

// SyncServiceDesc describes the sync service for grpc.Server.RegisterService.
// Messages are plain structs carried by the json codec.
var SyncServiceDesc = grpc.ServiceDesc{
	ServiceName: SyncServiceName,
	HandlerType: (*SyncServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SubmitReadings", Handler: submitReadingsHandler},
		{MethodName: "AcknowledgeAggregates", Handler: acknowledgeAggregatesHandler},
		{MethodName: "RegisterSensor", Handler: registerSensorHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sensorsync/v1/sync.proto",
}

// RegisterSyncServiceServer registers impl on s.
func RegisterSyncServiceServer(s *Server, impl SyncServiceServer) {
	s.RegisterService(&SyncServiceDesc, impl)
}

func submitReadingsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(models.SubmitReadingsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(SyncServiceServer).SubmitReadings(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: submitReadingsMethod}

	return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		r, ok := req.(*models.SubmitReadingsRequest)
		if !ok {
			return nil, fmt.Errorf("%w: %T", errUnexpectedMessageType, req)
		}

		return srv.(SyncServiceServer).SubmitReadings(ctx, r)
	})
}

func acknowledgeAggregatesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(models.AckRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(SyncServiceServer).AcknowledgeAggregates(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: acknowledgeAggregatesMethod}

	return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		r, ok := req.(*models.AckRequest)
		if !ok {
			return nil, fmt.Errorf("%w: %T", errUnexpectedMessageType, req)
		}

		return srv.(SyncServiceServer).AcknowledgeAggregates(ctx, r)
	})
}

func registerSensorHandler(srv interface{}, ctx context.Context, dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(models.RegisterSensorRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(SyncServiceServer).RegisterSensor(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: registerSensorMethod}

	return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		r, ok := req.(*models.RegisterSensorRequest)
		if !ok {
			return nil, fmt.Errorf("%w: %T", errUnexpectedMessageType, req)
		}

		return srv.(SyncServiceServer).RegisterSensor(ctx, r)
	})
}

// SyncServiceClient is the node side of the sync service.
type SyncServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSyncServiceClient(cc grpc.ClientConnInterface) *SyncServiceClient {
	return &SyncServiceClient{cc: cc}
}

func (c *SyncServiceClient) SubmitReadings(ctx context.Context, in *models.SubmitReadingsRequest,
	opts ...grpc.CallOption) (*models.SubmitReadingsResponse, error) {
	out := new(models.SubmitReadingsResponse)

	if err := c.cc.Invoke(ctx, submitReadingsMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *SyncServiceClient) AcknowledgeAggregates(ctx context.Context, in *models.AckRequest,
	opts ...grpc.CallOption) (*models.AckResponse, error) {
	out := new(models.AckResponse)

	if err := c.cc.Invoke(ctx, acknowledgeAggregatesMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *SyncServiceClient) RegisterSensor(ctx context.Context, in *models.RegisterSensorRequest,
	opts ...grpc.CallOption) (*models.SensorMessage, error) {
	out := new(models.SensorMessage)

	if err := c.cc.Invoke(ctx, registerSensorMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
