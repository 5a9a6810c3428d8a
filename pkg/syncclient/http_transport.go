package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carverauto/sensorsync/pkg/models"
)

const (
	submitPath        = "/sensordata"
	acknowledgePath   = "/receivedAverages"
	registerPath      = "/createSensor"
	maxErrorBodyBytes = 512
)

// HTTPTransport talks to the collector's REST binding.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport targets the collector at baseURL. A bare host:port is
// treated as http://host:port.
func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}

	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (t *HTTPTransport) SubmitReadings(ctx context.Context, req *models.SubmitReadingsRequest) (*models.SubmitReadingsResponse, error) {
	var resp models.SubmitReadingsResponse
	if err := t.post(ctx, submitPath, req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (t *HTTPTransport) AcknowledgeAggregates(ctx context.Context, req *models.AckRequest) (*models.AckResponse, error) {
	var resp models.AckResponse
	if err := t.post(ctx, acknowledgePath, req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (t *HTTPTransport) RegisterSensor(ctx context.Context, req *models.RegisterSensorRequest) (*models.SensorMessage, error) {
	var resp models.SensorMessage
	if err := t.post(ctx, registerPath, req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()

	return nil
}

func (t *HTTPTransport) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: encode request: %w", ErrProtocol, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

		sentinel := ErrTransport
		if rejected(resp.StatusCode) {
			sentinel = ErrProtocol
		}

		return fmt.Errorf("%w: %w: %s %d: %s",
			sentinel, errUnexpectedStatus, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", ErrProtocol, path, err)
	}

	return nil
}

// rejected reports whether the collector refused the request itself, as
// opposed to failing to handle it right now.
func rejected(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}

	return code >= http.StatusBadRequest && code < http.StatusInternalServerError
}
