// Package sensor simulates temperature and humidity sensors on a node.
package sensor

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

const (
	TypeTemperature = "temperature"
	TypeHumidity    = "humidity"
)

var (
	errUnknownSensorType = errors.New("unknown sensor type")
	errInvalidInterval   = errors.New("interval must be positive")
)

// Profile describes how a simulated quantity behaves.
type Profile struct {
	Unit string
	// Start is the initial drifting baseline.
	Start float64
	// Amplitude of the daily sine wave; negative peaks at night.
	Amplitude float64
	// Drift bounds the random walk of the baseline per reading.
	Drift float64
	// Noise bounds the per-reading jitter added on top.
	Noise float64
	// Min and Max clip the baseline.
	Min float64
	Max float64
}

var (
	Temperature = Profile{Unit: "degree", Start: 22, Amplitude: 10, Drift: 0.05, Noise: 0.5, Min: -10, Max: 45}
	Humidity    = Profile{Unit: "percent", Start: 50, Amplitude: -10, Drift: 0.1, Noise: 1, Min: 5, Max: 95}
)

// ProfileFor returns the preset for a sensor type.
func ProfileFor(sensorType string) (Profile, error) {
	switch sensorType {
	case TypeTemperature:
		return Temperature, nil
	case TypeHumidity:
		return Humidity, nil
	default:
		return Profile{}, fmt.Errorf("%w: %q", errUnknownSensorType, sensorType)
	}
}

// State is the evolving part of one simulated sensor.
type State struct {
	Baseline float64
}

// NewState returns the initial state for p.
func NewState(p Profile) State {
	return State{Baseline: p.Start}
}

// Next produces the value observed at now and the state that follows. It has
// no side effects beyond drawing from rnd.
func Next(p Profile, s State, now time.Time, rnd *rand.Rand) (float64, State) {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayFraction := now.Sub(midnight).Seconds() / (24 * time.Hour).Seconds()

	diurnal := p.Amplitude * math.Sin(2*math.Pi*dayFraction)
	noise := uniform(rnd, p.Noise)

	next := State{Baseline: s.Baseline + uniform(rnd, p.Drift)}
	next.Baseline = math.Max(math.Min(next.Baseline, p.Max), p.Min)

	return diurnal + next.Baseline + noise, next
}

// uniform draws from [-bound, bound).
func uniform(rnd *rand.Rand, bound float64) float64 {
	return (rnd.Float64()*2 - 1) * bound
}
