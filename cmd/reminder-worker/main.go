package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/md-rashed-zaman/bookable/internal/notify"
	"github.com/md-rashed-zaman/bookable/internal/reminder"
	"github.com/md-rashed-zaman/bookable/internal/storage"
	"github.com/md-rashed-zaman/bookable/libs/config"
	"github.com/md-rashed-zaman/bookable/libs/db"
	"github.com/md-rashed-zaman/bookable/libs/httpx"
	"github.com/md-rashed-zaman/bookable/libs/kafkax"
	otelx "github.com/md-rashed-zaman/bookable/libs/otel"
	"github.com/md-rashed-zaman/bookable/libs/runtime"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "reminder-worker")
	port, err := config.Port("PORT", "8091")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL, db.Options{
		MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
	})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	sender, closeSender := buildSender(logger)
	defer closeSender()

	scheduler := reminder.NewScheduler(storage.NewReminderStore(pool), sender, logger, reminder.Config{
		SendTimeout: config.Duration("REMINDER_SEND_TIMEOUT", 10*time.Second),
	})

	tickEvery := config.Duration("REMINDER_TICK_INTERVAL", 5*time.Minute)
	go runTicker(ctx, scheduler, tickEvery, logger)

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if brokers := config.String("KAFKA_BROKERS", ""); brokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}
	mux := runtime.NewBaseMux(readyChecks...)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "reminder-worker")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

// buildSender picks the notification channel from the environment: kafka
// when brokers are configured, webhook when a URL is, noop otherwise.
func buildSender(logger *slog.Logger) (notify.Sender, func()) {
	if brokers := config.String("KAFKA_BROKERS", ""); brokers != "" {
		s := notify.NewKafkaSender(brokers, config.String("KAFKA_REMINDER_TOPIC", ""))
		return s, func() { _ = s.Close() }
	}
	if url := config.String("NOTIFY_WEBHOOK_URL", ""); url != "" {
		return notify.NewWebhookSender(url, config.String("NOTIFY_WEBHOOK_TOKEN", "")), func() {}
	}
	logger.Warn("no notification channel configured, reminders go nowhere")
	return notify.NewNoopSender(), func() {}
}

func runTicker(ctx context.Context, scheduler *reminder.Scheduler, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info("reminder ticker starting", "interval", every.String())
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sum := scheduler.Tick(ctx, now)
			logger.Info("reminder tick complete",
				"selected", sum.Selected,
				"sent", sum.Sent,
				"skipped", sum.Skipped,
				"failed", sum.Failed,
			)
		}
	}
}
