package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"titledoctor/features/job"
	"titledoctor/features/submit"
	"titledoctor/internal/bus"
	"titledoctor/internal/config"
	"titledoctor/internal/middleware"
	"titledoctor/internal/worker"
)

// Bus is the injected event-bus capability: NSQ in production, the
// in-process MemoryBus in tests.
type Bus interface {
	bus.Publisher
	bus.Subscriber
}

// App owns the HTTP surface and the stage subscriptions.
type App struct {
	Handler http.Handler
	cfg     *config.Config
}

// New wires the pipeline: intake handler on the HTTP side, one consumer
// per topic on the bus side. sender may be nil when the email provider
// is not configured.
func New(
	cfg *config.Config,
	store job.Store,
	eventBus Bus,
	resolver worker.ChannelResolver,
	lister worker.VideoLister,
	generator worker.TitleGenerator,
	sender worker.EmailSender,
) (*App, error) {
	timeout := cfg.UpstreamTimeout()
	locks := worker.NewJobLocks()

	// Stages
	resolverConsumer := worker.NewResolverConsumer(store, resolver, eventBus, locks, timeout)
	fetcherConsumer := worker.NewFetcherConsumer(store, lister, eventBus, locks, timeout)
	titlesConsumer := worker.NewTitlesConsumer(store, generator, eventBus, locks, timeout)
	notifierConsumer := worker.NewNotifierConsumer(store, sender, eventBus, locks, timeout)
	errNotifier := worker.NewErrorNotifierConsumer(sender, eventBus, timeout)

	subscriptions := map[string]bus.Handler{
		config.TopicSubmitted:       resolverConsumer.HandleMessage,
		config.TopicChannelResolved: fetcherConsumer.HandleMessage,
		config.TopicVideosFetched:   titlesConsumer.HandleMessage,
		config.TopicTitlesReady:     notifierConsumer.HandleMessage,
	}
	for topic, h := range subscriptions {
		if err := eventBus.Subscribe(topic, h); err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	for _, topic := range config.FailureTopics {
		if err := eventBus.Subscribe(topic, errNotifier.HandleMessage); err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}

	// Feature: Submit (intake)
	submitService := submit.NewService(store, eventBus)
	submitHandler := submit.NewHandler(submitService, cfg.StaticDir)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()
	mux.Handle("POST /submit", middleware.CorrelationID(enableCORS(submitHandler.Submit)))
	mux.Handle("OPTIONS /submit", middleware.CorrelationID(enableCORS(submitHandler.Submit)))
	mux.Handle("GET /{$}", middleware.CorrelationID(enableCORS(submitHandler.Home)))
	mux.Handle("GET /home", middleware.CorrelationID(enableCORS(submitHandler.Home)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			slog.Error("failed to write health response", "error", err)
		}
	})

	return &App{Handler: mux, cfg: cfg}, nil
}

// Run serves HTTP until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.ServerPort),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.cfg.ServerPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
