package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/carverauto/sensorsync/pkg/collector"
	"github.com/carverauto/sensorsync/pkg/config"
	"github.com/carverauto/sensorsync/pkg/db"
	"github.com/carverauto/sensorsync/pkg/logger"
	"github.com/carverauto/sensorsync/pkg/models"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *config.CollectorConfig {
	cfg := &config.CollectorConfig{DBPath: "unused", FeedInterval: config.Duration(20 * time.Millisecond)}
	cfg.ApplyDefaults()

	return cfg
}

func newIntegrationServer(t *testing.T) (*httptest.Server, *prometheus.Registry) {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "collector.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = database.Close() })

	reg := prometheus.NewRegistry()
	svc := collector.NewServer(database, nil,
		collector.WithLogger(logger.Discard()),
		collector.WithMetrics(collector.NewMetrics(reg)))

	api := NewAPIServer(svc, testConfig(), WithLogger(logger.Discard()), WithGatherer(reg))

	ts := httptest.NewServer(api.Handler())
	t.Cleanup(func() {
		_ = api.Stop(context.Background())
		ts.Close()
	})

	return ts, reg
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestSyncOverHTTP(t *testing.T) {
	ts, _ := newIntegrationServer(t)

	req := models.SubmitReadingsRequest{Readings: []models.ReadingMessage{
		{EventID: "e1", Value: 10, Unit: "C", SensorID: "s1", Timestamp: "2024-03-01T12:00:00"},
		{EventID: "e2", Value: 20, Unit: "C", SensorID: "s1", Timestamp: "2024-03-01T12:00:01Z"},
	}}

	for attempt := 0; attempt < 2; attempt++ {
		resp := postJSON(t, ts.URL+"/sensordata", req)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out models.SubmitReadingsResponse
		decodeBody(t, resp, &out)

		assert.ElementsMatch(t, []string{"e1", "e2"}, out.AcceptedIDs)
		require.NotEmpty(t, out.Aggregates)

		for _, a := range out.Aggregates {
			assert.InDelta(t, 15.0, a.Value, 1e-9)
		}
	}

	resp := postJSON(t, ts.URL+"/sensordata", models.SubmitReadingsRequest{SensorIDs: []string{"s1"}})

	var pending models.SubmitReadingsResponse
	decodeBody(t, resp, &pending)
	require.Len(t, pending.Aggregates, 2)

	ids := []string{pending.Aggregates[0].AggregateID, pending.Aggregates[1].AggregateID, "unknown"}

	resp = postJSON(t, ts.URL+"/receivedAverages", models.AckRequest{IDs: ids})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ack models.AckResponse
	decodeBody(t, resp, &ack)
	assert.True(t, ack.OK)

	resp = postJSON(t, ts.URL+"/sensordata", models.SubmitReadingsRequest{SensorIDs: []string{"s1"}})
	decodeBody(t, resp, &pending)
	assert.Empty(t, pending.Aggregates)
}

func TestSubmitMalformed(t *testing.T) {
	ts, _ := newIntegrationServer(t)

	resp, err := http.Post(ts.URL+"/sensordata", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/sensordata", models.SubmitReadingsRequest{Readings: []models.ReadingMessage{
		{EventID: "e1", Value: 1, SensorID: "s1", Timestamp: "2024-03-01T12:00:00Z"},
		{EventID: "", Value: 1, SensorID: "s1", Timestamp: "2024-03-01T12:00:00Z"},
	}})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Nothing from the rejected batch was stored.
	resp, err = http.Get(ts.URL + "/api/sensors/s1/readings")
	require.NoError(t, err)

	var readings []models.ReadingMessage
	decodeBody(t, resp, &readings)
	assert.Empty(t, readings)
}

func TestSensorEndpoints(t *testing.T) {
	ts, _ := newIntegrationServer(t)

	resp := postJSON(t, ts.URL+"/createSensor", models.RegisterSensorRequest{Type: "humidity", Name: "cellar"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created models.SensorMessage
	decodeBody(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "cellar", created.Name)

	resp = postJSON(t, ts.URL+"/createSensor", models.RegisterSensorRequest{Type: "humidity"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err := http.Get(ts.URL + "/api/sensors/" + created.ID)
	require.NoError(t, err)

	var got models.SensorMessage
	decodeBody(t, resp, &got)
	assert.Equal(t, created, got)

	resp, err = http.Get(ts.URL + "/api/sensors/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/sensors?skip=0&limit=10")
	require.NoError(t, err)

	var sensors []models.SensorMessage
	decodeBody(t, resp, &sensors)
	assert.Equal(t, []models.SensorMessage{created}, sensors)

	resp, err = http.Get(ts.URL + "/sensors?skip=1")
	require.NoError(t, err)
	decodeBody(t, resp, &sensors)
	assert.Empty(t, sensors)

	resp, err = http.Get(ts.URL + "/sensors?limit=-1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStorageFailureIs500(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockCollectorService(ctrl)
	mockSvc.EXPECT().Sync(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: disk I/O error", collector.ErrStorage))
	mockSvc.EXPECT().Acknowledge(gomock.Any(), []string{"a1"}).
		Return(0, fmt.Errorf("%w: locked", collector.ErrStorage))

	api := NewAPIServer(mockSvc, testConfig(), WithLogger(logger.Discard()))
	ts := httptest.NewServer(api.Handler())
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/sensordata", models.SubmitReadingsRequest{})
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/receivedAverages", models.AckRequest{IDs: []string{"a1"}})
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts, _ := newIntegrationServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/sensordata", http.NoBody)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newIntegrationServer(t)

	resp := postJSON(t, ts.URL+"/sensordata", models.SubmitReadingsRequest{Readings: []models.ReadingMessage{
		{EventID: "e1", Value: 1, SensorID: "s1", Timestamp: "2024-03-01T12:00:00Z"},
	}})
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)

	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "sensorsync_collector_readings_inserted_total 1")
}

func TestLiveFeed(t *testing.T) {
	ts, _ := newIntegrationServer(t)

	resp := postJSON(t, ts.URL+"/sensordata", models.SubmitReadingsRequest{Readings: []models.ReadingMessage{
		{EventID: "e1", Value: 4, SensorID: "s1", Timestamp: models.FormatTimestamp(t0)},
		{EventID: "e2", Value: 8, SensorID: "s1", Timestamp: models.FormatTimestamp(t0.Add(time.Second))},
	}})
	resp.Body.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?sensor_id=s1"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	defer conn.Close()

	for i := 0; i < 2; i++ {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

		var frame FeedFrame
		require.NoError(t, conn.ReadJSON(&frame))

		require.Len(t, frame.Events, 2)
		assert.InDelta(t, 8.0, frame.Events[0].Value, 1e-9)
		require.Len(t, frame.Averages, 1)
		assert.InDelta(t, 6.0, frame.Averages[0].Value, 1e-9)
		assert.False(t, frame.Averages[0].Transmitted)
	}
}

func TestLiveFeedRequiresSensor(t *testing.T) {
	ts, _ := newIntegrationServer(t)

	resp, err := http.Get(ts.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStartStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := NewAPIServer(NewMockCollectorService(ctrl), testConfig(), WithLogger(logger.Discard()))

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errCh := make(chan error, 1)

	go func() { errCh <- api.Serve(context.Background(), lis) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + lis.Addr().String() + "/metrics")
		if err != nil {
			return false
		}

		resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, api.Stop(ctx))

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Stop")
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusCode(fmt.Errorf("%w: x", collector.ErrMalformedBatch)))
	assert.Equal(t, http.StatusBadRequest, statusCode(collector.ErrInvalidSensor))
	assert.Equal(t, http.StatusNotFound, statusCode(fmt.Errorf("sensor x: %w", db.ErrNotFound)))
	assert.Equal(t, http.StatusGatewayTimeout, statusCode(context.DeadlineExceeded))
	assert.Equal(t, http.StatusInternalServerError, statusCode(errors.New("boom")))
}
