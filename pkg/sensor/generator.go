package sensor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/carverauto/sensorsync/pkg/models"
	"golang.org/x/time/rate"
)

// Sink receives generated readings. The node's outbox is one.
type Sink interface {
	Append(ctx context.Context, reading *models.Reading) error
}

// Generator appends readings for one sensor at a jittered pace averaging
// one per interval.
type Generator struct {
	sensor   models.Sensor
	profile  Profile
	state    State
	sink     Sink
	interval time.Duration
	limiter  *rate.Limiter
	rnd      *rand.Rand
	now      func() time.Time
	logger   *slog.Logger
}

type GeneratorOption func(*Generator)

func WithRand(rnd *rand.Rand) GeneratorOption {
	return func(g *Generator) {
		g.rnd = rnd
	}
}

func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a generator for sensor. unit overrides the profile's
// unit when not empty.
func NewGenerator(sensor models.Sensor, unit string, interval time.Duration, sink Sink,
	opts ...GeneratorOption) (*Generator, error) {
	profile, err := ProfileFor(sensor.Type)
	if err != nil {
		return nil, err
	}

	if unit != "" {
		profile.Unit = unit
	}

	if interval <= 0 {
		return nil, fmt.Errorf("sensor %s: %w, got %v", sensor.Name, errInvalidInterval, interval)
	}

	g := &Generator{
		sensor:   sensor,
		profile:  profile,
		state:    NewState(profile),
		sink:     sink,
		interval: interval,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		rnd:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:      time.Now,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Run generates readings until ctx is canceled. A failing sink ends the loop
// with its error.
func (g *Generator) Run(ctx context.Context) error {
	g.logger.Info("Starting sensor generator",
		"sensor_id", g.sensor.ID, "type", g.sensor.Type, "name", g.sensor.Name, "interval", g.interval)

	for {
		g.limiter.SetLimit(rate.Every(g.jitter()))

		if err := g.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return err
		}

		reading := g.Generate()

		if err := g.sink.Append(ctx, reading); err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("sensor %s: %w", g.sensor.Name, err)
		}

		g.logger.Debug("Generated reading", "sensor_id", g.sensor.ID, "value", reading.Value)
	}
}

// Generate advances the sensor once and returns the new reading.
func (g *Generator) Generate() *models.Reading {
	now := g.now()

	var value float64
	value, g.state = Next(g.profile, g.state, now, g.rnd)

	return models.NewReading(g.sensor.ID, value, g.profile.Unit, now)
}

// jitter picks the next gap uniformly from half to one and a half intervals.
func (g *Generator) jitter() time.Duration {
	return time.Duration(float64(g.interval) * (0.5 + g.rnd.Float64()))
}
