// Command collector runs the central sensor sync service: gRPC SyncService,
// REST binding, live feed and metrics, backed by sqlite.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/carverauto/sensorsync/pkg/collector"
	"github.com/carverauto/sensorsync/pkg/collector/api"
	"github.com/carverauto/sensorsync/pkg/config"
	"github.com/carverauto/sensorsync/pkg/db"
	"github.com/carverauto/sensorsync/pkg/grpc"
	"github.com/carverauto/sensorsync/pkg/lifecycle"
	"github.com/carverauto/sensorsync/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/sensorsync/collector.yaml", "Path to collector config file")
	flag.Parse()

	var cfg config.CollectorConfig
	if err := config.LoadAndValidate(*configPath, &cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Setup(cfg.Logging)

	database, err := db.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	server := collector.NewServer(database, &cfg,
		collector.WithLogger(log),
		collector.WithMetrics(collector.NewMetrics(reg)),
	)

	apiServer := api.NewAPIServer(server, &cfg, api.WithLogger(log), api.WithGatherer(reg))

	log.Info("Collector configured",
		"grpc_addr", cfg.GrpcAddr,
		"http_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"window_size", cfg.WindowSize)

	return lifecycle.RunServer(context.Background(), &lifecycle.ServerOptions{
		ListenAddr:  cfg.GrpcAddr,
		ServiceName: grpc.SyncServiceName,
		Service:     apiServer,
		RegisterGRPCServices: []lifecycle.GRPCServiceRegistrar{
			func(s *grpc.Server) error {
				grpc.RegisterSyncServiceServer(s, server)
				return nil
			},
		},
		Security: cfg.Security,
		Logger:   log,
	})
}
