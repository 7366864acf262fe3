package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/upwork/coursera/internal/application"
	"github.com/upwork/coursera/internal/config"
	"github.com/upwork/coursera/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	overrides, err := parseFlags(os.Args[1:])
	kingpin.FatalIfError(err, "parse flags")

	if overrides.ConfigFile == "" {
		if path, err := config.FindFile(config.DefaultFile); err == nil {
			overrides.ConfigFile = path
		}
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(logging.WithLevel(cfg.LogLevel), logging.WithEncoding(cfg.LogEncoding))
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	if overrides.ConfigFile != "" {
		logger.Debug("configuration loaded", zap.String("file", overrides.ConfigFile), zap.Strings("profiles", cfg.Profiles))
	}

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func parseFlags(args []string) (*config.CLIOverrides, error) {
	kingpinApp := kingpin.New("coursera", "Coursera service - serves the project API and logs a startup trace")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	name := kingpinApp.Flag("name", "Application name shown in the startup trace").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	contextPath := kingpinApp.Flag("context-path", "Path prefix every route is served under").String()
	keyStore := kingpinApp.Flag("key-store", "PEM file with TLS certificate and key; enables HTTPS").String()
	profiles := kingpinApp.Flag("profile", "Active profile (repeatable or comma-separated)").Strings()
	configServerStatus := kingpinApp.Flag("config-server-status", "Config server status shown in the startup trace").String()
	var apiDocsSet bool
	apiDocs := kingpinApp.Flag("api-docs", "Serve the Swagger UI").IsSetByUser(&apiDocsSet).Bool()
	logLevel := kingpinApp.Flag("log-level", "Minimum log level").Enum("debug", "info", "warn", "error")
	logEncoding := kingpinApp.Flag("log-encoding", "Log output format").Enum("json", "console")
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	if _, err := kingpinApp.Parse(args); err != nil {
		return nil, err
	}

	overrides := &config.CLIOverrides{
		ConfigFile:         *configFile,
		ApplicationName:    nonEmpty(name),
		Port:               nonEmpty(port),
		ContextPath:        nonEmpty(contextPath),
		KeyStore:           nonEmpty(keyStore),
		Profiles:           *profiles,
		ConfigServerStatus: nonEmpty(configServerStatus),
		LogLevel:           nonEmpty(logLevel),
		LogEncoding:        nonEmpty(logEncoding),
	}

	// Only an explicit --api-docs/--no-api-docs overrides file and environment settings.
	if apiDocsSet {
		overrides.APIDocsEnabled = apiDocs
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	return overrides, nil
}

func nonEmpty(value *string) *string {
	if *value == "" {
		return nil
	}
	return value
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
