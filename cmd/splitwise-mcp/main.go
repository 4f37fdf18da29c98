package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/guarzo/splitwise-mcp/common"
	"github.com/guarzo/splitwise-mcp/config"
	"github.com/guarzo/splitwise-mcp/modules/mcpserver"
	"github.com/guarzo/splitwise-mcp/modules/resolver"
	"github.com/guarzo/splitwise-mcp/modules/splitwise"
	"github.com/guarzo/splitwise-mcp/modules/tools"
)

func main() {
	envFile := flag.String("env", config.DefaultEnvFile, "dotenv file to load before reading the environment")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// stdout carries the protocol, so everything else goes to stderr
	logger, err := common.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		log.Fatalf("Logger setup: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	creds := cfg.Credentials()
	tokenSource, err := common.NewTokenSource(ctx, creds, &http.Client{Timeout: cfg.HTTPTimeout()})
	if err != nil {
		return err
	}

	userAgent := fmt.Sprintf("%s/%s", mcpserver.Name, mcpserver.Version)
	httpClient := common.NewSplitwiseHttpClient(userAgent, &http.Client{}, cfg.HTTPTimeout())
	defer httpClient.CloseIdleConnections()

	client := splitwise.NewSplitwiseClient(cfg.BaseURL, httpClient, tokenSource, common.NewAuthClient(ctx, creds), logger)
	service := splitwise.NewSplitwiseService(client, cfg.CacheTTL())
	res := resolver.NewResolver(service, cfg.MatchThreshold, cfg.ResolverCacheTTL())
	registry := tools.NewRegistry(&tools.Env{Service: service, Resolver: res})
	srv := mcpserver.NewServer(registry, logger)

	logger.WithFields(logrus.Fields{
		"base_url":  cfg.BaseURL,
		"tools":     len(registry.Definitions()),
		"threshold": cfg.MatchThreshold,
	}).Info("serving over stdio")

	errLog, closeErrLog := newErrorLog(logger)
	defer closeErrLog()
	err = srv.ServeStdio(ctx, os.Stdin, os.Stdout, errLog)

	stats := client.Stats()
	logger.WithFields(logrus.Fields{
		"total":     stats.Total,
		"success":   stats.Success,
		"not_found": stats.NotFound,
		"failed":    stats.Failed,
	}).Info("request stats")

	if err == nil || ctx.Err() != nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// newErrorLog adapts logger for the stdio transport's error output. The
// returned func releases the pipe behind it.
func newErrorLog(logger *logrus.Logger) (*log.Logger, func()) {
	w := logger.WriterLevel(logrus.ErrorLevel)
	return log.New(w, "", 0), func() { _ = w.Close() }
}
