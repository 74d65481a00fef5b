package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/vet-records/internal/app"
	"github.com/joseph-ayodele/vet-records/internal/common"
	"github.com/joseph-ayodele/vet-records/internal/core/async"
	"github.com/joseph-ayodele/vet-records/internal/ingest"
	"github.com/joseph-ayodele/vet-records/internal/repository"
	"github.com/joseph-ayodele/vet-records/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (overrides "+common.ConfigFileEnv+")")
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := repository.HealthCheck(ctx, a.DB, 2*time.Second, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}

	queue := async.NewProcessorQueue(a.Processor, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithProcessTimeout(cfg.Queue.JobTimeout),
	)

	if len(cfg.Ingest.WatchDirs) > 0 {
		events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       cfg.Ingest.WatchDirs,
			InitialScan: true,
			Debounce:    cfg.Ingest.Debounce,
		}, logger)
		if err != nil {
			logger.Error("failed to start watcher", "error", err)
			os.Exit(1)
		}
		go func() {
			for err := range errs {
				logger.Warn("ingest.watch.error", "error", err)
			}
		}()
		go ingest.Feed(ctx, events, a.Ingestor, queue, logger)
		logger.Info("watching directories", "dirs", cfg.Ingest.WatchDirs)
	}

	svc := server.NewRecordsService(server.Deps{
		Structurer:      a.Structurer,
		Records:         a.Records,
		Processor:       a.Processor,
		Queue:           queue,
		Exporter:        a.Exporter,
		Ingestor:        a.Ingestor,
		MaxDocumentSize: cfg.Ingest.MaxDocumentSize,
	}, logger)
	grpcServer, hs := server.NewGRPCServer(svc, logger)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	go func() {
		logger.Info("grpc server listening", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Queue.JobTimeout)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}
