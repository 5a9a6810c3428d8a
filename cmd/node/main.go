// Command node simulates a sensor node: it generates readings into a local
// outbox and syncs them with the collector.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/carverauto/sensorsync/pkg/config"
	"github.com/carverauto/sensorsync/pkg/logger"
	"github.com/carverauto/sensorsync/pkg/outbox"
	"github.com/carverauto/sensorsync/pkg/sensor"
	"github.com/carverauto/sensorsync/pkg/syncclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsShutdownTimeout = 5 * time.Second

var defaultSensors = []config.SensorConfig{
	{Type: sensor.TypeTemperature, Name: "temp_sensor", Interval: config.Duration(2 * time.Second)},
	{Type: sensor.TypeHumidity, Name: "hum_sensor", Interval: config.Duration(2 * time.Second)},
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/sensorsync/node.yaml", "Path to node config file")
	flag.Parse()

	var cfg config.NodeConfig
	if err := config.LoadAndValidate(*configPath, &cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if len(cfg.Sensors) == 0 {
		cfg.Sensors = defaultSensors
	}

	log := logger.Setup(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ob, err := outbox.Open(cfg.OutboxPath, log)
	if err != nil {
		return err
	}
	defer ob.Close()

	transport, err := syncclient.NewTransport(ctx, &cfg, log)
	if err != nil {
		return err
	}
	defer transport.Close()

	reg := prometheus.NewRegistry()
	client := syncclient.NewClient(ob, transport, &cfg,
		syncclient.WithLogger(log),
		syncclient.WithMetrics(syncclient.NewMetrics(reg)),
	)

	generators := make([]*sensor.Generator, 0, len(cfg.Sensors))

	for _, sc := range cfg.Sensors {
		// The collector must be reachable the first time a sensor is seen.
		s, err := client.EnsureSensor(ctx, sc.Type, sc.Name)
		if err != nil {
			return fmt.Errorf("failed to register sensor %s/%s: %w", sc.Type, sc.Name, err)
		}

		g, err := sensor.NewGenerator(*s, sc.Unit, time.Duration(sc.Interval), ob, sensor.WithLogger(log))
		if err != nil {
			return err
		}

		generators = append(generators, g)
	}

	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(cfg.MetricsAddr, reg, log)
		defer shutdown()
	}

	return runLoops(ctx, client, generators)
}

// runLoops runs the generators and the sync client until ctx is canceled or
// one of them fails, which stops the others.
func runLoops(ctx context.Context, client *syncclient.Client, generators []*sensor.Generator) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(generators)+1)

	var wg sync.WaitGroup

	start := func(run func(context.Context) error) {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- err

				cancel()
			}
		}()
	}

	for _, g := range generators {
		start(g.Run)
	}

	start(client.Run)

	wg.Wait()
	close(errCh)

	return <-errCh
}

func serveMetrics(addr string, reg *prometheus.Registry, log *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(ctx)
	}
}
