package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/sensorsync/pkg/models"
	"github.com/sosodev/duration"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWindowSize     = 10
	DefaultSyncInterval   = 15 * time.Second
	DefaultRequestTimeout = 10 * time.Second
	DefaultFeedInterval   = 2 * time.Second
	DefaultListenAddr     = ":8000"
	DefaultGrpcAddr       = ":50052"
	DefaultMaxConnections = 256
	DefaultMaxBatchSize   = 1000
)

// Duration accepts Go duration strings ("15s"), integer nanoseconds, or
// ISO-8601 durations ("PT15S").
type Duration time.Duration

func parseDurationString(s string) (Duration, error) {
	s = strings.TrimSpace(s)

	if dur, err := time.ParseDuration(s); err == nil {
		return Duration(dur), nil
	}

	iso, err := duration.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidDuration, s)
	}

	return Duration(iso.ToTimeDuration()), nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := parseDurationString(value)
		if err != nil {
			return err
		}

		*d = dur

		return nil
	default:
		return errInvalidDuration
	}
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errInvalidDuration
	}

	if node.Tag == "!!int" {
		var ns int64
		if err := node.Decode(&ns); err != nil {
			return err
		}

		*d = Duration(time.Duration(ns))

		return nil
	}

	dur, err := parseDurationString(node.Value)
	if err != nil {
		return err
	}

	*d = dur

	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// LogConfig selects the log level and output format ("text" or "json").
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// CollectorConfig represents the configuration for the collector service.
type CollectorConfig struct {
	ListenAddr               string                 `json:"listen_addr" yaml:"listen_addr"`
	GrpcAddr                 string                 `json:"grpc_addr" yaml:"grpc_addr"`
	DBPath                   string                 `json:"db_path" yaml:"db_path"`
	WindowSize               int                    `json:"window_size" yaml:"window_size"`
	SkipDuplicateAggregation bool                   `json:"skip_duplicate_aggregation" yaml:"skip_duplicate_aggregation"`
	MaxConnections           int                    `json:"max_connections" yaml:"max_connections"`
	FeedInterval             Duration               `json:"feed_interval" yaml:"feed_interval"`
	Security                 *models.SecurityConfig `json:"security" yaml:"security"`
	Logging                  LogConfig              `json:"logging" yaml:"logging"`
}

func (c *CollectorConfig) ApplyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}

	if c.GrpcAddr == "" {
		c.GrpcAddr = DefaultGrpcAddr
	}

	if c.WindowSize == 0 {
		c.WindowSize = DefaultWindowSize
	}

	if c.MaxConnections == 0 {
		c.MaxConnections = DefaultMaxConnections
	}

	if c.FeedInterval == 0 {
		c.FeedInterval = Duration(DefaultFeedInterval)
	}
}

// Validate implements config.Validator interface.
func (c *CollectorConfig) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path", errMissingField)
	}

	if c.WindowSize < 1 {
		return fmt.Errorf("%w: window_size must be positive, got %d", errInvalidValue, c.WindowSize)
	}

	if c.MaxConnections < 1 {
		return fmt.Errorf("%w: max_connections must be positive, got %d", errInvalidValue, c.MaxConnections)
	}

	return nil
}

// SensorConfig describes one simulated sensor attached to a node.
type SensorConfig struct {
	Type string `json:"type" yaml:"type"` // "temperature" or "humidity"
	Name string `json:"name" yaml:"name"`
	Unit string `json:"unit" yaml:"unit"`
	// Interval is the mean time between readings.
	Interval Duration `json:"interval" yaml:"interval"`
}

// NodeConfig represents the configuration for a sensor node.
type NodeConfig struct {
	CollectorAddress string                 `json:"collector_address" yaml:"collector_address"`
	Transport        string                 `json:"transport" yaml:"transport"` // "grpc" or "http"
	OutboxPath       string                 `json:"outbox_path" yaml:"outbox_path"`
	SyncInterval     Duration               `json:"sync_interval" yaml:"sync_interval"`
	RequestTimeout   Duration               `json:"request_timeout" yaml:"request_timeout"`
	SkipIdleCycles   bool                   `json:"skip_idle_cycles" yaml:"skip_idle_cycles"`
	MaxBatchSize     int                    `json:"max_batch_size" yaml:"max_batch_size"` // readings per request
	MetricsAddr      string                 `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
	Sensors          []SensorConfig         `json:"sensors" yaml:"sensors"`
	Security         *models.SecurityConfig `json:"security" yaml:"security"`
	Logging          LogConfig              `json:"logging" yaml:"logging"`
}

const (
	TransportGRPC = "grpc"
	TransportHTTP = "http"
)

func (c *NodeConfig) ApplyDefaults() {
	if c.Transport == "" {
		c.Transport = TransportGRPC
	}

	if c.SyncInterval == 0 {
		c.SyncInterval = Duration(DefaultSyncInterval)
	}

	if c.RequestTimeout == 0 {
		c.RequestTimeout = Duration(DefaultRequestTimeout)
	}

	if c.MaxBatchSize == 0 {
		c.MaxBatchSize = DefaultMaxBatchSize
	}

	for i := range c.Sensors {
		if c.Sensors[i].Interval == 0 {
			c.Sensors[i].Interval = Duration(2 * time.Second)
		}
	}
}

// Validate implements config.Validator interface.
func (c *NodeConfig) Validate() error {
	if c.CollectorAddress == "" {
		return fmt.Errorf("%w: collector_address", errMissingField)
	}

	if c.OutboxPath == "" {
		return fmt.Errorf("%w: outbox_path", errMissingField)
	}

	if c.Transport != TransportGRPC && c.Transport != TransportHTTP {
		return fmt.Errorf("%w: transport must be %q or %q, got %q",
			errInvalidValue, TransportGRPC, TransportHTTP, c.Transport)
	}

	// A cycle must finish before the next one is due.
	if c.RequestTimeout >= c.SyncInterval {
		return fmt.Errorf("%w: request_timeout (%v) must be shorter than sync_interval (%v)",
			errInvalidValue, time.Duration(c.RequestTimeout), time.Duration(c.SyncInterval))
	}

	if c.MaxBatchSize < 1 {
		return fmt.Errorf("%w: max_batch_size must be positive, got %d", errInvalidValue, c.MaxBatchSize)
	}

	for i, s := range c.Sensors {
		if s.Type == "" || s.Name == "" {
			return fmt.Errorf("%w: sensors[%d] needs type and name", errMissingField, i)
		}
	}

	return nil
}
