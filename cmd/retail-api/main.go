package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nazeru/retail-mock-api/internal/config"
	"github.com/nazeru/retail-mock-api/internal/httpapi"
	"github.com/nazeru/retail-mock-api/internal/observability"
	"github.com/nazeru/retail-mock-api/internal/retail"
	"github.com/nazeru/retail-mock-api/pkg/kafka"
	"github.com/nazeru/retail-mock-api/pkg/logging"
	"github.com/nazeru/retail-mock-api/pkg/metrics"
	"github.com/nazeru/retail-mock-api/pkg/outbox"
)

const service = "retail-api"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", service, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(service, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, shutdownTracing, err := observability.SetupTracing(ctx, cfg.OtelEndpoint, cfg.OtelAuth)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error(logging.Fields{Step: "shutdown", Err: err, Message: "tracer shutdown failed"})
		}
	}()

	events, closeEvents, err := setupEvents(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeEvents()

	svc := retail.New(retail.Options{
		Events:  events,
		Log:     log,
		Metrics: metrics.NewDomainMetrics(nil),
		Tracer:  tracer,
	})
	docs, err := httpapi.LoadDocs()
	if err != nil {
		return err
	}

	opts := httpapi.Options{
		Log:            log,
		Metrics:        metrics.NewServerMetrics("api", nil),
		MetricsHandler: metrics.Handler(),
		RequestTimeout: cfg.RequestTimeout,
	}
	if cfg.RateLimitRPS > 0 {
		opts.RateLimit = httpapi.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	handler, err := httpapi.NewHandler(cfg.Framework, httpapi.NewAPI(svc, docs), opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Log(logging.Fields{Step: "listen", Status: cfg.Framework, Message: "listening on :" + cfg.Port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Log(logging.Fields{Step: "shutdown", Message: "shutting down"})
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// setupEvents picks the event sink: the Postgres outbox (relayed to Kafka when
// brokers are set), Kafka directly, or nothing.
func setupEvents(ctx context.Context, cfg config.Config, log *logging.Logger) (retail.EventPublisher, func(), error) {
	client := kafka.NewClient(cfg.KafkaBrokers)

	if cfg.DatabaseURL != "" {
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pool, err := pgxpool.New(cctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		store := outbox.NewPGStore(pool)
		if err := store.EnsureSchema(cctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("outbox schema: %w", err)
		}
		if !client.Enabled() {
			log.Log(logging.Fields{Step: "events", Status: "outbox", Message: "no brokers configured, events stay in the outbox"})
			return outbox.NewPublisher(store, cfg.KafkaTopic), pool.Close, nil
		}

		writer := client.NewWriter("")
		relay := outbox.NewRelay(store, writer, log, cfg.OutboxPoll)
		rctx, stopRelay := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			relay.Run(rctx)
		}()
		log.Log(logging.Fields{Step: "events", Status: "outbox+kafka", Message: "outbox relay started"})
		return outbox.NewPublisher(store, cfg.KafkaTopic), func() {
			stopRelay()
			<-done
			_ = writer.Close()
			pool.Close()
		}, nil
	}

	if client.Enabled() {
		pub := kafka.NewPublisher(client.NewWriter(cfg.KafkaTopic))
		log.Log(logging.Fields{Step: "events", Status: "kafka", Message: "publishing events to " + cfg.KafkaTopic})
		return pub, func() { _ = pub.Close() }, nil
	}

	log.Log(logging.Fields{Step: "events", Status: "disabled", Message: "no event sink configured"})
	return nil, func() {}, nil
}
