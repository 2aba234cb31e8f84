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
	kafkago "github.com/segmentio/kafka-go"

	"github.com/nazeru/retail-mock-api/internal/config"
	"github.com/nazeru/retail-mock-api/pkg/kafka"
	"github.com/nazeru/retail-mock-api/pkg/logging"
	"github.com/nazeru/retail-mock-api/pkg/metrics"
	"github.com/nazeru/retail-mock-api/pkg/outbox"
)

const service = "event-tail"

const retryDelay = 2 * time.Second

type messageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
}

// inbox reports whether an event id is seen for the first time.
type inbox interface {
	Remember(ctx context.Context, eventID, eventType string) (bool, error)
}

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

	client := kafka.NewClient(cfg.KafkaBrokers)
	if !client.Enabled() {
		return errors.New("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var seen inbox
	if cfg.DatabaseURL != "" {
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := pgxpool.New(cctx, cfg.DatabaseURL)
		if err != nil {
			cancel()
			return fmt.Errorf("db connect: %w", err)
		}
		defer pool.Close()
		store := outbox.NewPGStore(pool)
		err = store.EnsureSchema(cctx)
		cancel()
		if err != nil {
			return fmt.Errorf("inbox schema: %w", err)
		}
		seen = store
	}

	m := metrics.NewConsumerMetrics(nil)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(logging.Fields{Step: "listen", Err: err, Message: "metrics server failed"})
		}
	}()

	reader := client.NewReader(cfg.KafkaTopic, cfg.KafkaGroupID)
	defer reader.Close()
	log.Log(logging.Fields{Step: "consume", Status: cfg.KafkaGroupID, Message: "tailing " + cfg.KafkaTopic})
	consume(ctx, reader, seen, log, m)

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// consume logs every event until ctx is done. With an inbox, redelivered
// events are counted as duplicates and not logged again.
func consume(ctx context.Context, r messageReader, seen inbox, log *logging.Logger, m *metrics.ConsumerMetrics) {
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error(logging.Fields{Step: "consume", Err: err, Message: "kafka read failed"})
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryDelay):
			}
			continue
		}

		ev, err := kafka.DecodeEvent(msg)
		if err != nil || ev.EventID == "" {
			if err == nil {
				err = errors.New("event without id")
			}
			m.Events.WithLabelValues("unknown", "invalid").Inc()
			log.Log(logging.Fields{Step: "decode", Status: "invalid", Err: err, Message: "event skipped"})
			continue
		}

		if seen != nil {
			first, err := seen.Remember(ctx, ev.EventID, ev.Type)
			if err != nil {
				log.Error(logging.Fields{EventID: ev.EventID, Step: "inbox", Err: err, Message: "inbox write failed"})
			} else if !first {
				m.Events.WithLabelValues(ev.Type, "duplicate").Inc()
				continue
			}
		}

		m.Events.WithLabelValues(ev.Type, "received").Inc()
		log.Log(logging.Fields{
			EventID: ev.EventID,
			Step:    ev.Type,
			Status:  "received",
			Message: ev.Subject,
		})
	}
}
