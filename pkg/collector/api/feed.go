package api

import (
	"context"
	"net/http"
	"time"

	"github.com/carverauto/sensorsync/pkg/models"
	"github.com/gorilla/websocket"
)

const feedWriteWait = 10 * time.Second

// liveFeed streams the newest readings and aggregates of one sensor to a
// websocket client every feed interval until the client goes away.
func (s *APIServer) liveFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sensorID := q.Get("sensor_id")
	if sensorID == "" {
		sensorID = q.Get("sensor_uuid")
	}

	if sensorID == "" {
		s.writeError(w, errMissingSensorID)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.logger.Debug("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.logger.Debug("Websocket feed opened", "sensor_id", sensorID, "remote", r.RemoteAddr)

	// Clients only read; draining keeps control frames flowing and tells us
	// when the peer closes.
	closed := make(chan struct{})

	go func() {
		defer close(closed)

		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.feedInterval)
	defer ticker.Stop()

	for {
		frame, err := s.feedFrame(r.Context(), sensorID)
		if err != nil {
			s.logger.Error("Feed query failed", "sensor_id", sensorID, "error", err)
			s.closeFeed(conn, websocket.CloseInternalServerErr, "storage error")

			return
		}

		_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))

		if err := conn.WriteJSON(frame); err != nil {
			s.logger.Debug("Websocket feed closed", "sensor_id", sensorID, "error", err)
			return
		}

		select {
		case <-ticker.C:
		case <-closed:
			return
		case <-r.Context().Done():
			s.closeFeed(conn, websocket.CloseGoingAway, "server shutting down")
			return
		case <-s.done:
			s.closeFeed(conn, websocket.CloseGoingAway, "server shutting down")
			return
		}
	}
}

func (s *APIServer) feedFrame(ctx context.Context, sensorID string) (*FeedFrame, error) {
	readings, err := s.collector.RecentReadings(ctx, sensorID, s.feedLimit)
	if err != nil {
		return nil, err
	}

	aggs, err := s.collector.RecentAggregates(ctx, sensorID, s.feedLimit)
	if err != nil {
		return nil, err
	}

	frame := &FeedFrame{
		Events:   make([]FeedEvent, 0, len(readings)),
		Averages: make([]FeedAverage, 0, len(aggs)),
	}

	for i := range readings {
		frame.Events = append(frame.Events, FeedEvent{
			Timestamp: models.FormatTimestamp(readings[i].ObservedAt),
			Value:     readings[i].Value,
		})
	}

	for i := range aggs {
		frame.Averages = append(frame.Averages, FeedAverage{
			Timestamp:   models.FormatTimestamp(aggs[i].ComputedAt),
			Value:       aggs[i].Value,
			Transmitted: aggs[i].Transmitted,
		})
	}

	return frame, nil
}

func (s *APIServer) closeFeed(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(feedWriteWait))
}
