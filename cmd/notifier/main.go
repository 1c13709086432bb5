package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/reunite/internal/config"
	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/notify"
	"github.com/your-org/reunite/internal/observability"
	"github.com/your-org/reunite/internal/queue"
	"github.com/your-org/reunite/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting reunite notifier worker",
		"workers", cfg.Notify.WorkerCount,
		"locales_dir", cfg.Notify.LocalesDir,
	)

	// Connect to Postgres (for notification flags on matches)
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(context.Background()); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	// Load locale message catalogs
	catalog, err := notify.LoadCatalog(cfg.Notify.LocalesDir, cfg.Notify.DefaultLocale)
	if err != nil {
		slog.Error("load message catalogs", "error", err)
		os.Exit(1)
	}

	sender := notify.NewGatewayClient(cfg.SMS)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Publish every SMS outcome so the API can broadcast it to staff.
	onDone := func(evt models.DeliveryEvent) {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pubCancel()
		if err := producer.PublishDelivery(pubCtx, evt); err != nil {
			slog.Warn("publish delivery event", "report_id", evt.ReportID, "error", err)
		}
	}

	dispatcher := notify.NewDispatcher(catalog, sender, cfg.Notify.PublicBaseURL, onDone)

	// Create NATS consumer
	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	// Start consuming notification tasks
	err = consumer.ConsumeTasks(ctx, "notifier-workers", func(ctx context.Context, msg jetstream.Msg) error {
		var task models.NotificationTask
		if err := json.Unmarshal(msg.Data(), &task); err != nil {
			slog.Error("unmarshal notification task", "error", err)
			return nil // Don't retry on unmarshal errors
		}

		delivered := dispatcher.Dispatch(ctx, task)

		// Record the confirmation notification on the Match row.
		if task.Kind == models.TaskKindConfirmed && task.MatchID != nil && delivered > 0 {
			if err := db.MarkNotified(ctx, *task.MatchID); err != nil {
				slog.Error("mark match notified", "match_id", *task.MatchID, "error", err)
			}
		}
		return nil
	}, cfg.Notify.WorkerCount)
	if err != nil {
		slog.Error("start notification consumer", "error", err)
		os.Exit(1)
	}

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		slog.Info("notifier metrics listening", "addr", ":8082")
		if err := http.ListenAndServe(":8082", mux); err != nil {
			slog.Error("metrics server error", "error", err)
		}
	}()

	// Periodically report queue depth
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				depth, err := producer.QueueDepth(ctx)
				if err == nil {
					observability.QueueDepth.Set(float64(depth))
				}
			}
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down notifier...")
	cancel()
	time.Sleep(2 * time.Second)
	slog.Info("notifier stopped")
}
