package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/carverauto/sensorsync/pkg/config"
	"github.com/carverauto/sensorsync/pkg/db"
	"github.com/carverauto/sensorsync/pkg/logger"
	"github.com/carverauto/sensorsync/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	t0        = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fixedNow  = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	fixedTime = func() time.Time { return fixedNow }
)

func newTestServer(t *testing.T, cfg *config.CollectorConfig, opts ...Option) (*Server, *db.DB) {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "collector.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = database.Close() })

	opts = append([]Option{WithClock(fixedTime), WithLogger(logger.Discard())}, opts...)

	return NewServer(database, cfg, opts...), database
}

func msg(id, sensorID string, value float64, at time.Time) models.ReadingMessage {
	return models.ReadingMessage{
		EventID: id, Value: value, Unit: "C", SensorID: sensorID, Timestamp: models.FormatTimestamp(at),
	}
}

func TestSync_SubmitTwiceScenario(t *testing.T) {
	srv, database := newTestServer(t, nil)
	ctx := context.Background()

	req := &models.SubmitReadingsRequest{Readings: []models.ReadingMessage{
		msg("e1", "s1", 10, t0),
		msg("e2", "s1", 20, t0.Add(time.Second)),
	}}

	first, err := srv.Sync(ctx, req)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"e1", "e2"}, first.AcceptedIDs)
	require.Len(t, first.Aggregates, 1)
	assert.Equal(t, "s1", first.Aggregates[0].SensorID)
	assert.InDelta(t, 15.0, first.Aggregates[0].Value, 1e-9)
	assert.Equal(t, models.FormatTimestamp(fixedNow), first.Aggregates[0].ComputedAt)

	// The response was lost; the node sends the same batch again.
	second, err := srv.Sync(ctx, req)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"e1", "e2"}, second.AcceptedIDs)

	readings, err := database.RecentReadings(ctx, "s1", 100)
	require.NoError(t, err)
	assert.Len(t, readings, 2)

	// The unacknowledged aggregate is resent alongside the fresh one.
	require.Len(t, second.Aggregates, 2)

	for _, a := range second.Aggregates {
		assert.InDelta(t, 15.0, a.Value, 1e-9)
	}

	ids := []string{second.Aggregates[0].AggregateID, second.Aggregates[1].AggregateID}
	n, err := srv.Acknowledge(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pending, err := srv.PendingAggregates(ctx, []string{"s1"})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRecompute_Window(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ctx := context.Background()

	batch := make([]models.Reading, 0, 12)
	for i := 1; i <= 12; i++ {
		batch = append(batch, models.Reading{
			ID: fmt.Sprintf("r%02d", i), SensorID: "s1", Value: float64(i), ObservedAt: t0.Add(time.Duration(i) * time.Minute),
		})
	}

	// Submission order must not matter, only observation time.
	batch[0], batch[11] = batch[11], batch[0]

	_, err := srv.Ingest(ctx, batch)
	require.NoError(t, err)

	agg, err := srv.Recompute(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, agg)
	assert.InDelta(t, 7.5, agg.Value, 1e-9) // mean of 3..12
	assert.Equal(t, fixedNow, agg.ComputedAt)
	assert.False(t, agg.Transmitted)
}

func TestRecompute_FewerThanWindow(t *testing.T) {
	srv, _ := newTestServer(t, &config.CollectorConfig{WindowSize: 10})
	ctx := context.Background()

	_, err := srv.Ingest(ctx, []models.Reading{
		{ID: "a", SensorID: "s1", Value: 1, ObservedAt: t0},
		{ID: "b", SensorID: "s1", Value: 2, ObservedAt: t0.Add(time.Second)},
		{ID: "c", SensorID: "s1", Value: 6, ObservedAt: t0.Add(2 * time.Second)},
	})
	require.NoError(t, err)

	agg, err := srv.Recompute(ctx, "s1")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, agg.Value, 1e-9)
}

func TestRecompute_CustomWindow(t *testing.T) {
	srv, _ := newTestServer(t, &config.CollectorConfig{WindowSize: 2})
	ctx := context.Background()

	_, err := srv.Ingest(ctx, []models.Reading{
		{ID: "a", SensorID: "s1", Value: 100, ObservedAt: t0},
		{ID: "b", SensorID: "s1", Value: 2, ObservedAt: t0.Add(time.Second)},
		{ID: "c", SensorID: "s1", Value: 4, ObservedAt: t0.Add(2 * time.Second)},
	})
	require.NoError(t, err)

	agg, err := srv.Recompute(ctx, "s1")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, agg.Value, 1e-9)
}

func TestRecompute_NoReadings(t *testing.T) {
	srv, database := newTestServer(t, nil)
	ctx := context.Background()

	agg, err := srv.Recompute(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, agg)

	aggs, err := database.RecentAggregates(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, aggs)
}

func TestSync_SelectiveDistribution(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ctx := context.Background()

	_, err := srv.Ingest(ctx, []models.Reading{
		{ID: "x1", SensorID: "s2", Value: 50, ObservedAt: t0},
	})
	require.NoError(t, err)

	resp, err := srv.Sync(ctx, &models.SubmitReadingsRequest{Readings: []models.ReadingMessage{
		msg("e1", "s1", 10, t0),
	}})
	require.NoError(t, err)
	require.Len(t, resp.Aggregates, 1)
	assert.Equal(t, "s1", resp.Aggregates[0].SensorID)

	// An empty batch naming s2 drains s2's pending aggregates.
	resp, err = srv.Sync(ctx, &models.SubmitReadingsRequest{SensorIDs: []string{"s2"}})
	require.NoError(t, err)
	assert.Empty(t, resp.AcceptedIDs)
	require.Len(t, resp.Aggregates, 1)
	assert.Equal(t, "s2", resp.Aggregates[0].SensorID)
	assert.InDelta(t, 50.0, resp.Aggregates[0].Value, 1e-9)

	resp, err = srv.Sync(ctx, &models.SubmitReadingsRequest{})
	require.NoError(t, err)
	assert.NotNil(t, resp.AcceptedIDs)
	assert.Empty(t, resp.Aggregates)
}

func TestAcknowledge_UnknownAndRepeated(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ctx := context.Background()

	_, err := srv.Ingest(ctx, []models.Reading{{ID: "e1", SensorID: "s1", Value: 1, ObservedAt: t0}})
	require.NoError(t, err)

	pending, err := srv.PendingAggregates(ctx, []string{"s1"})
	require.NoError(t, err)
	require.Len(t, pending, 1)

	n, err := srv.Acknowledge(ctx, []string{pending[0].ID, "no-such-aggregate"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = srv.Acknowledge(ctx, []string{pending[0].ID})
	require.NoError(t, err)
	assert.Zero(t, n)

	resp, err := srv.AcknowledgeAggregates(ctx, &models.AckRequest{IDs: []string{"no-such-aggregate"}})
	require.NoError(t, err)
	assert.True(t, resp.OK)

	resp, err = srv.AcknowledgeAggregates(ctx, &models.AckRequest{})
	require.NoError(t, err)
	assert.True(t, resp.OK)
}

func TestIngest_MalformedBatchNotApplied(t *testing.T) {
	tests := []struct {
		name    string
		bad     models.Reading
		wantErr error
	}{
		{"empty id", models.Reading{SensorID: "s1", Value: 1, ObservedAt: t0}, errEmptyReadingID},
		{"empty sensor", models.Reading{ID: "e9", Value: 1, ObservedAt: t0}, errEmptySensorID},
		{"nan", models.Reading{ID: "e9", SensorID: "s1", Value: math.NaN(), ObservedAt: t0}, errNonFiniteValue},
		{"inf", models.Reading{ID: "e9", SensorID: "s1", Value: math.Inf(1), ObservedAt: t0}, errNonFiniteValue},
		{"zero time", models.Reading{ID: "e9", SensorID: "s1", Value: 1}, errMissingTime},
		{"conflicting copy", models.Reading{ID: "e1", SensorID: "s1", Value: 99, ObservedAt: t0}, errConflictingCopy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, database := newTestServer(t, nil)
			ctx := context.Background()

			_, err := srv.Ingest(ctx, []models.Reading{
				{ID: "e1", SensorID: "s1", Value: 10, ObservedAt: t0},
				tt.bad,
			})
			require.ErrorIs(t, err, ErrMalformedBatch)
			require.ErrorIs(t, err, tt.wantErr)

			readings, err := database.RecentReadings(ctx, "s1", 10)
			require.NoError(t, err)
			assert.Empty(t, readings)

			pending, err := srv.PendingAggregates(ctx, []string{"s1"})
			require.NoError(t, err)
			assert.Empty(t, pending)
		})
	}
}

func TestIngest_ExactRepeatInBatchIsFolded(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	r := models.Reading{ID: "e1", SensorID: "s1", Value: 10, ObservedAt: t0}

	result, err := srv.Ingest(context.Background(), []models.Reading{r, r})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e1"}, result.AcceptedIDs)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, []string{"s1"}, result.SensorIDs)
}

func TestSubmitReadings_StatusCodes(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ctx := context.Background()

	_, err := srv.SubmitReadings(ctx, &models.SubmitReadingsRequest{Readings: []models.ReadingMessage{
		{EventID: "e1", SensorID: "s1", Value: 1, Timestamp: "yesterday"},
	}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = srv.RegisterSensor(ctx, &models.RegisterSensorRequest{Type: "temperature"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	sensor, err := srv.RegisterSensor(ctx, &models.RegisterSensorRequest{Type: "temperature", Name: "greenhouse"})
	require.NoError(t, err)
	assert.NotEmpty(t, sensor.ID)

	got, err := srv.GetSensor(ctx, sensor.ID)
	require.NoError(t, err)
	assert.Equal(t, "greenhouse", got.Name)

	_, err = srv.GetSensor(ctx, "missing")
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestIngest_StorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	srv := NewServer(mockDB, nil, WithLogger(logger.Discard()))

	mockDB.EXPECT().InsertReadings(gomock.Any(), gomock.Len(1)).
		Return(0, fmt.Errorf("%w: disk full", db.ErrFailedToInsert))

	_, err := srv.Ingest(context.Background(), []models.Reading{{ID: "e1", SensorID: "s1", Value: 1, ObservedAt: t0}})
	require.ErrorIs(t, err, ErrStorage)
	require.ErrorIs(t, err, db.ErrFailedToInsert)
	assert.Equal(t, codes.Internal, status.Code(toStatus(err)))
}

func TestIngest_AggregateFailureSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	srv := NewServer(mockDB, nil, WithLogger(logger.Discard()), WithClock(fixedTime))

	gomock.InOrder(
		mockDB.EXPECT().InsertReadings(gomock.Any(), gomock.Any()).Return(1, nil),
		mockDB.EXPECT().RecentReadings(gomock.Any(), "s1", config.DefaultWindowSize).
			Return([]models.Reading{{ID: "e1", SensorID: "s1", Value: 4, ObservedAt: t0}}, nil),
		mockDB.EXPECT().InsertAggregate(gomock.Any(), gomock.Any()).Return(errors.New("read-only database")),
	)

	_, err := srv.Ingest(context.Background(), []models.Reading{{ID: "e1", SensorID: "s1", Value: 4, ObservedAt: t0}})
	require.ErrorIs(t, err, ErrStorage)
}

func TestIngest_SkipDuplicateAggregation(t *testing.T) {
	srv, database := newTestServer(t, &config.CollectorConfig{SkipDuplicateAggregation: true})
	ctx := context.Background()

	batch := []models.Reading{{ID: "e1", SensorID: "s1", Value: 1, ObservedAt: t0}}

	_, err := srv.Ingest(ctx, batch)
	require.NoError(t, err)

	_, err = srv.Ingest(ctx, batch)
	require.NoError(t, err)

	aggs, err := database.RecentAggregates(ctx, "s1", 10)
	require.NoError(t, err)
	assert.Len(t, aggs, 1)
}

func TestIngest_DuplicateBatchRecomputesByDefault(t *testing.T) {
	srv, database := newTestServer(t, nil)
	ctx := context.Background()

	batch := []models.Reading{{ID: "e1", SensorID: "s1", Value: 1, ObservedAt: t0}}

	for i := 0; i < 2; i++ {
		_, err := srv.Ingest(ctx, batch)
		require.NoError(t, err)
	}

	aggs, err := database.RecentAggregates(ctx, "s1", 10)
	require.NoError(t, err)
	assert.Len(t, aggs, 2)
}

func TestIngest_ConcurrentBatches(t *testing.T) {
	srv, database := newTestServer(t, nil)
	ctx := context.Background()

	const workers, batches = 6, 5

	var wg sync.WaitGroup

	errs := make(chan error, workers*batches)

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func(w int) {
			defer wg.Done()

			sensorID := fmt.Sprintf("s%d", w%2)

			for b := 0; b < batches; b++ {
				_, err := srv.Ingest(ctx, []models.Reading{{
					ID:         fmt.Sprintf("w%d-b%d", w, b),
					SensorID:   sensorID,
					Value:      float64(b),
					ObservedAt: t0.Add(time.Duration(w*batches+b) * time.Second),
				}})
				if err != nil {
					errs <- err
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	for _, sensorID := range []string{"s0", "s1"} {
		aggs, err := database.RecentAggregates(ctx, sensorID, 100)
		require.NoError(t, err)
		assert.Len(t, aggs, workers/2*batches)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	srv, _ := newTestServer(t, nil, WithMetrics(m))
	ctx := context.Background()

	batch := []models.Reading{
		{ID: "e1", SensorID: "s1", Value: 1, ObservedAt: t0},
		{ID: "e2", SensorID: "s1", Value: 2, ObservedAt: t0.Add(time.Second)},
	}

	_, err := srv.Ingest(ctx, batch)
	require.NoError(t, err)
	_, err = srv.Ingest(ctx, batch)
	require.NoError(t, err)
	_, err = srv.Ingest(ctx, []models.Reading{{ID: "", SensorID: "s1"}})
	require.Error(t, err)

	pending, err := srv.PendingAggregates(ctx, []string{"s1"})
	require.NoError(t, err)
	_, err = srv.Acknowledge(ctx, []string{pending[0].ID})
	require.NoError(t, err)

	assert.InDelta(t, 4, testutil.ToFloat64(m.ReadingsReceived), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.ReadingsInserted), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.BatchesRejected), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.AggregatesComputed), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.AggregatesDistributed), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AggregatesAcked), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.IngestDuration))
}
