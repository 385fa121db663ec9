package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edvin/clustertemplates/internal/api"
	"github.com/edvin/clustertemplates/internal/config"
	"github.com/edvin/clustertemplates/internal/core"
	"github.com/edvin/clustertemplates/internal/logging"
	"github.com/edvin/clustertemplates/internal/metrics"
	"github.com/edvin/clustertemplates/internal/storage"
	"github.com/edvin/clustertemplates/internal/webhook"
)

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "sign-webhook" {
		signWebhook(os.Args[2:])
		return
	}

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	output, err := logging.NewSyslogLogger(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("syslog unavailable, update output goes to stderr")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s3Client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure S3 client")
	}
	store := storage.NewS3Store(logger, s3Client, cfg.S3Bucket, cfg.S3PublicHost)
	templates := core.NewTemplateService(logger, store)

	updater := webhook.NewUpdater(logger, webhook.NewExecRunner(logger), webhook.UpdaterConfig{
		Dir:      cfg.DeployDir,
		ToolName: cfg.UpdateToolName,
		ToolURL:  cfg.UpdateToolURL,
		GitPull:  cfg.WebhookGitPull,
		Timeout:  cfg.UpdateTimeout,
	})

	srv := api.NewServer(logger, templates, updater, output, cfg)

	// The write timeout leaves room for a full dependency update.
	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.UpdateTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	servers := []*http.Server{httpServer}
	if cfg.MetricsListenAddr != "" {
		servers = append(servers, metrics.NewServer(cfg.MetricsListenAddr, api.ReadinessChecks(cfg)))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error {
			logger.Info().Str("addr", s.Addr).Msg("starting server")
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", s.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Str("addr", s.Addr).Msg("shutdown failed")
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

// signWebhook prints the signature header for a payload, for exercising the
// webhook by hand with curl.
func signWebhook(args []string) {
	fs := flag.NewFlagSet("sign-webhook", flag.ExitOnError)
	file := fs.String("file", "", "Payload file to sign (default: stdin)")
	fs.Parse(args)

	secret := os.Getenv("WEBHOOK_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "error: WEBHOOK_SECRET is required")
		fmt.Fprintln(os.Stderr, "usage: template-api sign-webhook [--file payload.json]")
		os.Exit(1)
	}

	var (
		body []byte
		err  error
	)
	if *file != "" {
		body, err = os.ReadFile(*file)
	} else {
		body, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to read payload: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: %s\n", webhook.SignatureHeader, webhook.Sign(secret, body))
}
