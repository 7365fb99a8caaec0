package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/KatjaLuckLab/DMI-predictor/internal/entity"
	"github.com/KatjaLuckLab/DMI-predictor/internal/matcher"
	"github.com/KatjaLuckLab/DMI-predictor/internal/metrics"
	"github.com/KatjaLuckLab/DMI-predictor/internal/replicate"
	"github.com/KatjaLuckLab/DMI-predictor/internal/rrsd"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/config"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/logger"
)

func main() {
	var configPath string
	var grpcAddr string
	var httpAddr string
	var logLevel string

	flag.StringVar(&configPath, "config", "config/rrs.yaml", "RRS configuration file")
	flag.StringVar(&grpcAddr, "grpc-addr", ":50051", "gRPC listen address")
	flag.StringVar(&httpAddr, "http-addr", ":8080", "HTTP listen address")
	flag.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	logger.SetDefault(logger.NewFormat(cfg.LogFormat, logLevel, os.Stdout))

	loadStart := time.Now()
	store, err := entity.Load(cfg.Inputs, logger.Default)
	if err != nil {
		logger.Error("failed to load inputs", "error", err)
		os.Exit(1)
	}
	index := replicate.NewIndex(store, logger.Default)
	logger.Info("dataset loaded",
		"proteins", store.ProteinCount(),
		"dmi_types", index.MotifGroups.Len(),
		"interfaces", index.DomainGroups.Len(),
		"duration", time.Since(loadStart))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	runs := rrsd.NewRunStore()
	executor := rrsd.NewRunExecutor(runs, &rrsd.Dataset{
		Index:   index,
		Matcher: matcher.NewRegexMatcher(store),
		Options: replicate.OptionsFromConfig(cfg.Sampling),
		Metrics: metrics.DefaultRegistry(),
	})

	// Configured replicates are built at startup; a fixed seed is offset per
	// replicate so they stay independent.
	for i, label := range cfg.Replicates {
		seed := cfg.Sampling.Seed
		if seed != 0 {
			seed += int64(i)
		}
		if _, err := executor.Submit(rrsd.BuildRequest{Label: label, Seed: seed}); err != nil {
			logger.Error("failed to submit configured replicate", "label", label, "error", err)
		}
	}

	grpcServer := grpc.NewServer()
	rrsd.RegisterReferenceSetServiceServer(grpcServer, rrsd.NewReferenceSetGRPCServer(runs, executor))

	grpcLis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logger.Error("failed to listen for gRPC", "addr", grpcAddr, "error", err)
		stop()
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           rrsd.NewHTTPServer(runs, executor).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("gRPC server listening", "addr", grpcAddr)
		if err := grpcServer.Serve(grpcLis); err != nil {
			logger.Error("gRPC server error", "error", err)
			stop()
		}
	}()

	go func() {
		logger.Info("HTTP server listening", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	for _, rec := range runs.List(1000, 0, "running") {
		if _, err := executor.Stop(rec.ID); err != nil {
			logger.Warn("failed to stop run", "run_id", rec.ID, "error", err)
		}
	}
	executor.Wait()
}
