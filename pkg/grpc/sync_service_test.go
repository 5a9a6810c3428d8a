package grpc

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/carverauto/sensorsync/pkg/logger"
	"github.com/carverauto/sensorsync/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakeSyncServer struct {
	submitCalls   atomic.Int32
	registerCalls atomic.Int32
	failFirst     bool
	lastRequest   *models.SubmitReadingsRequest
	lastAckedIDs  []string
}

func (f *fakeSyncServer) SubmitReadings(_ context.Context, req *models.SubmitReadingsRequest) (*models.SubmitReadingsResponse, error) {
	if f.submitCalls.Add(1) == 1 && f.failFirst {
		return nil, status.Error(codes.Unavailable, "warming up")
	}

	f.lastRequest = req

	resp := &models.SubmitReadingsResponse{AcceptedIDs: []string{}}
	for _, r := range req.Readings {
		resp.AcceptedIDs = append(resp.AcceptedIDs, r.EventID)
	}

	resp.Aggregates = []models.AggregateMessage{{
		AggregateID: "a1", Value: 15, SensorID: "s1", ComputedAt: "2024-03-01T12:00:05Z",
	}}

	return resp, nil
}

func (f *fakeSyncServer) AcknowledgeAggregates(_ context.Context, req *models.AckRequest) (*models.AckResponse, error) {
	f.lastAckedIDs = req.IDs

	return &models.AckResponse{OK: true}, nil
}

func (f *fakeSyncServer) RegisterSensor(_ context.Context, req *models.RegisterSensorRequest) (*models.SensorMessage, error) {
	f.registerCalls.Add(1)

	switch req.Name {
	case "":
		return nil, status.Error(codes.InvalidArgument, "name required")
	case "panic":
		panic("handler exploded")
	case "flaky":
		return nil, status.Error(codes.Unavailable, "lost reply")
	}

	return &models.SensorMessage{ID: "s1", Type: req.Type, Name: req.Name}, nil
}

func startBufServer(t *testing.T, impl SyncServiceServer) *ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewServer("bufnet", WithLogger(logger.Discard()))
	RegisterSyncServiceServer(srv, impl)

	go func() { _ = srv.Serve(lis) }()

	t.Cleanup(func() { srv.Stop(context.Background()) })

	ctrl := gomock.NewController(t)
	provider := NewMockSecurityProvider(ctrl)
	provider.EXPECT().GetClientCredentials(gomock.Any()).
		Return(grpc.WithTransportCredentials(insecure.NewCredentials()), nil)
	provider.EXPECT().Close().Return(nil)

	client, err := NewClient(context.Background(), &ConnectionConfig{Address: "passthrough:///bufnet"},
		WithSecurityProvider(provider),
		WithClientLogger(logger.Discard()),
		WithDialOptions(grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		})),
	)
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestSyncService_RoundTrip(t *testing.T) {
	impl := &fakeSyncServer{}
	client := NewSyncServiceClient(startBufServer(t, impl).GetConnection())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.SubmitReadings(ctx, &models.SubmitReadingsRequest{
		Readings: []models.ReadingMessage{
			{EventID: "e1", Value: 10, SensorID: "s1", Timestamp: "2024-03-01T12:00:00Z"},
			{EventID: "e2", Value: 20, SensorID: "s1", Timestamp: "2024-03-01T12:00:01Z"},
		},
		SensorIDs: []string{"s1"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, resp.AcceptedIDs)
	require.Len(t, resp.Aggregates, 1)
	assert.InDelta(t, 15.0, resp.Aggregates[0].Value, 1e-9)
	assert.Equal(t, []string{"s1"}, impl.lastRequest.SensorIDs)

	ack, err := client.AcknowledgeAggregates(ctx, &models.AckRequest{IDs: []string{"a1"}})
	require.NoError(t, err)
	assert.True(t, ack.OK)
	assert.Equal(t, []string{"a1"}, impl.lastAckedIDs)

	sensor, err := client.RegisterSensor(ctx, &models.RegisterSensorRequest{Type: "temperature", Name: "greenhouse"})
	require.NoError(t, err)
	assert.Equal(t, "s1", sensor.ID)
	assert.Equal(t, "greenhouse", sensor.Name)
}

func TestSyncService_StatusCodes(t *testing.T) {
	client := NewSyncServiceClient(startBufServer(t, &fakeSyncServer{}).GetConnection())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.RegisterSensor(ctx, &models.RegisterSensorRequest{Type: "temperature"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.RegisterSensor(ctx, &models.RegisterSensorRequest{Type: "temperature", Name: "panic"})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestSyncService_RetriesUnavailable(t *testing.T) {
	impl := &fakeSyncServer{failFirst: true}
	client := NewSyncServiceClient(startBufServer(t, impl).GetConnection())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.SubmitReadings(ctx, &models.SubmitReadingsRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.AcceptedIDs)
	assert.Equal(t, int32(2), impl.submitCalls.Load())
}

func TestSyncService_RegisterSensorNotRetried(t *testing.T) {
	impl := &fakeSyncServer{}
	client := NewSyncServiceClient(startBufServer(t, impl).GetConnection())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.RegisterSensor(ctx, &models.RegisterSensorRequest{Type: "temperature", Name: "flaky"})
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Equal(t, int32(1), impl.registerCalls.Load())
}

func TestClientConn_CheckHealth(t *testing.T) {
	conn := startBufServer(t, &fakeSyncServer{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	healthy, err := conn.CheckHealth(ctx, SyncServiceName)
	require.NoError(t, err)
	assert.True(t, healthy)
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(submitReadingsMethod, status.Error(codes.Unavailable, "")))
	assert.True(t, retryable(acknowledgeAggregatesMethod, status.Error(codes.Aborted, "")))
	assert.False(t, retryable(submitReadingsMethod, status.Error(codes.ResourceExhausted, "message too large")))
	assert.False(t, retryable(submitReadingsMethod, status.Error(codes.InvalidArgument, "")))
	assert.False(t, retryable(submitReadingsMethod, status.Error(codes.Internal, "")))
	assert.False(t, retryable(registerSensorMethod, status.Error(codes.Unavailable, "")))
}
