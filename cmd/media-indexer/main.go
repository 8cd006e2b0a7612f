package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"media-indexer/internal/database"
	"media-indexer/internal/exiftool"
	"media-indexer/internal/logging"
	"media-indexer/internal/metrics"
	"media-indexer/internal/scanner"
	"media-indexer/internal/startup"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()

	// Cancel the scan on SIGINT/SIGTERM; committed directories stay
	// committed, the in-flight one rolls back.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		startup.LogShutdownInitiated(sig.String())
		cancel()
	}()

	// Initialize database
	dbStart := time.Now()
	store, err := database.Open(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer store.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Locate the metadata extractor
	toolPath, err := exiftool.Find(config.ExiftoolPath)
	if err != nil {
		startup.LogFatal("Extractor error: %v", err)
	}
	startup.LogExtractorInit(toolPath)

	// Optional metrics listener for long scans
	var metricsSrv *http.Server
	var collector *metrics.Collector
	if config.MetricsEnabled {
		collector = metrics.NewCollector(store, time.Minute)
		collector.Start()

		router := mux.NewRouter()
		router.Handle("/metrics", promhttp.Handler()).Methods("GET")
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     router,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			logging.Info("Metrics listening on :%s/metrics", config.MetricsPort)
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Warn("Metrics server error: %v", err)
			}
		}()
	}

	s, err := scanner.New(store, exiftool.New(toolPath), scanner.Config{
		ScanPath:         config.ScanDir,
		StoredBase:       config.StoredBase,
		IndexerVersion:   startup.Version,
		IncludeVideos:    config.IncludeVideos,
		IncludeDocs:      config.IncludeDocs,
		IncludeAudio:     config.IncludeAudio,
		VideoTags:        config.VideoTags,
		DenylistPath:     config.DenylistPath,
		HashMode:         config.HashMode,
		MimeMode:         config.MimeMode,
		DryRun:           config.DryRun,
		ChangedOnly:      config.ChangedOnly,
		IncludeRootFiles: config.IncludeRootFiles,
		ErrorLogPath:     config.ErrorLogPath,
		Workers:          config.Workers,
	})
	if err != nil {
		startup.LogFatal("Scanner error: %v", err)
	}

	startup.LogScanStart()
	report, err := s.Run(ctx)

	shutdown(metricsSrv, collector)

	if err != nil {
		logging.Error("Scan failed: %v", err)
		return 1
	}
	logReport(report)
	if report.State == scanner.StateCancelled {
		return 130
	}
	return 0
}

func logReport(report *scanner.Report) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SCAN REPORT (%s)", report.RunID)
	logging.Info("------------------------------------------------------------")
	logging.Info("  State:       %s", report.State)
	logging.Info("  New:         %d", report.FilesNew)
	logging.Info("  Changed:     %d", report.FilesChanged)
	logging.Info("  Unchanged:   %d", report.FilesUnchanged)
	logging.Info("  Skipped:     %d", report.FilesSkipped)
	logging.Info("  Warnings:    %d", report.Warnings)
	logging.Info("  Errors:      %d", report.Errors)
	logging.Info("  Directories: %d scanned, %d skipped, %d errored",
		report.DirectoriesScanned, report.DirectoriesSkipped, report.DirectoriesErrored)
	if report.TagsPruned > 0 {
		logging.Info("  Tags pruned: %d", report.TagsPruned)
	}
	for src, count := range report.TakenSrcDistribution {
		logging.Info("  taken_src %-24s %d", src+":", count)
	}
	logging.Info("  Elapsed:     %v", report.Elapsed.Round(time.Millisecond))
}

func shutdown(metricsSrv *http.Server, collector *metrics.Collector) {
	if collector != nil {
		startup.LogShutdownStep("Stopping metrics collector")
		collector.Stop()
		startup.LogShutdownStepComplete("Metrics collector stopped")
	}
	if metricsSrv != nil {
		startup.LogShutdownStep("Stopping metrics server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown: %v", err)
		}
		startup.LogShutdownStepComplete("Metrics server stopped")
	}
	startup.LogShutdownComplete()
}
