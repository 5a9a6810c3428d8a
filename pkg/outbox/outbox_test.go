package outbox

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/carverauto/sensorsync/pkg/logger"
	"github.com/carverauto/sensorsync/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "outbox.db"), logger.Discard())
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func appendReading(t *testing.T, store *Store, id string, at time.Time) {
	t.Helper()

	require.NoError(t, store.Append(context.Background(), &models.Reading{
		ID: id, SensorID: "s1", Value: 21.5, Unit: "C", ObservedAt: at,
	}))
}

func TestAppendAndUntransmitted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)

	appendReading(t, store, "r2", base.Add(time.Second))
	appendReading(t, store, "r1", base)

	pending, err := store.UntransmittedReadings(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	assert.Equal(t, "r1", pending[0].ID)
	assert.Equal(t, base, pending[0].ObservedAt)
	assert.False(t, pending[0].Transmitted)

	n, err := store.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAppend_DuplicateIDFails(t *testing.T) {
	store := newTestStore(t)
	appendReading(t, store, "r1", time.Now())

	err := store.Append(context.Background(), &models.Reading{ID: "r1", SensorID: "s1", ObservedAt: time.Now()})
	require.ErrorIs(t, err, ErrStorage)
}

func TestAppend_RejectsInvalidReadings(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		reading *models.Reading
	}{
		{"nil", nil},
		{"empty id", &models.Reading{SensorID: "s1", ObservedAt: at}},
		{"empty sensor", &models.Reading{ID: "r1", ObservedAt: at}},
		{"NaN", &models.Reading{ID: "r1", SensorID: "s1", Value: math.NaN(), ObservedAt: at}},
		{"infinite", &models.Reading{ID: "r1", SensorID: "s1", Value: math.Inf(-1), ObservedAt: at}},
		{"zero time", &models.Reading{ID: "r1", SensorID: "s1"}},
		{"out of range", &models.Reading{ID: "r1", SensorID: "s1", ObservedAt: time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			ctx := context.Background()

			err := store.Append(ctx, tt.reading)
			require.ErrorIs(t, err, ErrInvalidReading)
			assert.NotErrorIs(t, err, ErrStorage)

			n, err := store.PendingCount(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestUntransmittedReadings_Limit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		appendReading(t, store, fmt.Sprintf("r%d", 4-i), base.Add(time.Duration(4-i)*time.Second))
	}

	batch, err := store.UntransmittedReadings(ctx, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "r0", batch[0].ID)
	assert.Equal(t, "r1", batch[1].ID)

	require.NoError(t, store.MarkTransmitted(ctx, []string{"r0", "r1"}))

	batch, err = store.UntransmittedReadings(ctx, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "r2", batch[0].ID)

	all, err := store.UntransmittedReadings(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMarkTransmitted_ExactIDsAndIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now()

	appendReading(t, store, "r1", base)
	appendReading(t, store, "r2", base.Add(time.Second))

	snapshot, err := store.UntransmittedReadings(ctx, 0)
	require.NoError(t, err)

	// Produced after the snapshot was taken; must survive the mark below.
	appendReading(t, store, "r3", base.Add(2*time.Second))

	ids := make([]string, 0, len(snapshot))
	for _, r := range snapshot {
		ids = append(ids, r.ID)
	}

	require.NoError(t, store.MarkTransmitted(ctx, ids))
	require.NoError(t, store.MarkTransmitted(ctx, ids))
	require.NoError(t, store.MarkTransmitted(ctx, []string{"never-existed"}))
	require.NoError(t, store.MarkTransmitted(ctx, nil))

	pending, err := store.UntransmittedReadings(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "r3", pending[0].ID)

	all, err := store.Readings(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "r3", all[0].ID)
	assert.True(t, all[1].Transmitted)
}

func TestMarkTransmitted_LargeBatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now()

	ids := make([]string, 0, 1100)

	for i := 0; i < 1100; i++ {
		id := fmt.Sprintf("r%04d", i)
		ids = append(ids, id)
		appendReading(t, store, id, base.Add(time.Duration(i)*time.Millisecond))
	}

	require.NoError(t, store.MarkTransmitted(ctx, ids))

	n, err := store.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStoreAggregates_IgnoresDuplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	aggs := []models.Aggregate{
		{ID: "a1", SensorID: "s1", Value: 15, ComputedAt: at},
		{ID: "a2", SensorID: "s1", Value: 16, ComputedAt: at.Add(time.Second)},
	}

	require.NoError(t, store.StoreAggregates(ctx, aggs))
	require.NoError(t, store.MarkAggregatesAcked(ctx, []string{"a1"}))

	// Replay of a1 with a different value must not reset its ack state or value.
	require.NoError(t, store.StoreAggregates(ctx, []models.Aggregate{
		{ID: "a1", SensorID: "s1", Value: 99, ComputedAt: at},
	}))

	unacked, err := store.UnackedAggregateIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a2"}, unacked)

	stored, err := store.Aggregates(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "a2", stored[0].ID)
	assert.InDelta(t, 15.0, stored[1].Value, 1e-9)
	assert.True(t, stored[1].Transmitted)
	assert.Equal(t, at, stored[1].ComputedAt)

	require.NoError(t, store.StoreAggregates(ctx, nil))
}

func TestSensors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SensorByName(ctx, "temperature", "greenhouse")
	require.ErrorIs(t, err, ErrSensorNotFound)
	assert.NotErrorIs(t, err, ErrStorage)

	sensor := &models.Sensor{ID: "s1", Type: "temperature", Name: "greenhouse"}
	require.NoError(t, store.SaveSensor(ctx, sensor))
	require.NoError(t, store.SaveSensor(ctx, sensor))

	got, err := store.SensorByName(ctx, "temperature", "greenhouse")
	require.NoError(t, err)
	assert.Equal(t, sensor, got)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outbox.db")

	store, err := Open(path, logger.Discard())
	require.NoError(t, err)
	appendReading(t, store, "r1", time.Now())
	require.NoError(t, store.Close())

	store, err = Open(path, logger.Discard())
	require.NoError(t, err)

	defer func() { _ = store.Close() }()

	pending, err := store.UntransmittedReadings(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "r1", pending[0].ID)
}

func TestClosedStoreReportsStorageError(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "outbox.db"), logger.Discard())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.UntransmittedReadings(context.Background(), 0)
	require.ErrorIs(t, err, ErrStorage)
}
