package main

import (
	"context"
	"embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nerzal/gocloak/v13"
	"github.com/jmoiron/sqlx"
	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hoseok0727-sudo/subculture/config"
	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/data/repos"
	"github.com/hoseok0727-sudo/subculture/dispatch"
	"github.com/hoseok0727-sudo/subculture/handlers"
	"github.com/hoseok0727-sudo/subculture/ingest"
	"github.com/hoseok0727-sudo/subculture/notifiers"
	"github.com/hoseok0727-sudo/subculture/scheduling"
	"github.com/hoseok0727-sudo/subculture/sources"
)

var (
	auth           *handlers.AuthHandler
	UserContextKey = "user"
)

//go:embed data/migrations/*.sql
var embedMigrations embed.FS

func main() {
	config.LoadConfig()

	opts := slog.HandlerOptions{Level: config.Config.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &opts))
	slog.SetDefault(logger)

	db, err := sqlx.Connect("postgres", config.Config.PostgresURL)
	if err != nil {
		slog.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}

	db.SetMaxOpenConns(90)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if err := data.RunMigrations(db.DB, embedMigrations); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	userRepo := repos.NewUserRepo(db)
	sourceRepo := repos.NewSourceRepo(db)
	rawRepo := repos.NewRawNoticeRepo(db)
	eventRepo := repos.NewEventRepo(db)
	ruleRepo := repos.NewRuleRepo(db)
	subRepo := repos.NewSubscriptionRepo(db)
	scheduleRepo := repos.NewScheduleRepo(db)
	deliveryRepo := repos.NewDeliveryRepo(db)
	pushRepo := repos.NewPushRepo(db)
	runRepo := repos.NewIngestRunRepo(db)

	keycloakClient := gocloak.NewClient(config.Config.KeycloakURL)
	auth = handlers.NewAuthHandler(keycloakClient)
	go auth.StartTokenTicker()

	client := &http.Client{Timeout: 30 * time.Second}
	collector := sources.NewCollector(client, logger)

	planner := scheduling.NewPlanner(eventRepo, ruleRepo, subRepo, scheduleRepo, logger)
	pipeline := ingest.NewPipeline(collector, sourceRepo, rawRepo, eventRepo, runRepo, planner, logger)

	sender := notifiers.NewSimulatedSender(logger)
	dispatcher := dispatch.NewDispatcher(scheduleRepo, deliveryRepo, userRepo, pushRepo, sender, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if config.Config.EnableDriver {
		driver := NewDriver(pipeline, dispatcher, logger)
		go driver.Start(ctx)
	}

	users := handlers.NewUserHandler(userRepo)
	sourcesHandler := handlers.NewSourceHandler(sourceRepo, pipeline)
	events := handlers.NewEventHandler(eventRepo)
	rules := handlers.NewRuleHandler(ruleRepo, planner)
	subscriptions := handlers.NewSubscriptionHandler(subRepo, pushRepo, planner)
	schedules := handlers.NewScheduleHandler(scheduleRepo, deliveryRepo)
	ingestHandler := handlers.NewIngestHandler(pipeline, runRepo)
	dispatchHandler := handlers.NewDispatchHandler(dispatcher)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /users/init", private(users.InitializeUser))

	mux.HandleFunc("POST /sources", private(sourcesHandler.CreateSource))
	mux.HandleFunc("GET /sources", private(sourcesHandler.GetSources))
	mux.HandleFunc("POST /sources/{id}/fetch", private(sourcesHandler.RunSource))

	mux.HandleFunc("GET /events", private(events.GetEvents))

	mux.HandleFunc("POST /rules", private(rules.CreateRule))
	mux.HandleFunc("GET /rules", private(rules.GetRules))
	mux.HandleFunc("DELETE /rules/{id}", private(rules.DeleteRule))

	mux.HandleFunc("PUT /subscriptions", private(subscriptions.ReplaceSubscriptions))
	mux.HandleFunc("GET /subscriptions", private(subscriptions.GetSubscriptions))
	mux.HandleFunc("POST /push-subscriptions", private(subscriptions.CreatePushSubscription))
	mux.HandleFunc("DELETE /push-subscriptions/{id}", private(subscriptions.DeletePushSubscription))

	mux.HandleFunc("GET /schedules", private(schedules.GetSchedules))
	mux.HandleFunc("GET /schedules/{id}/deliveries", private(schedules.GetDeliveries))

	mux.HandleFunc("POST /ingest/run", private(ingestHandler.RunIngest))
	mux.HandleFunc("POST /raw-notices/{id}/reparse", private(ingestHandler.Reparse))
	mux.HandleFunc("GET /ingest-runs", private(ingestHandler.GetIngestRuns))

	mux.HandleFunc("POST /dispatch/run", private(dispatchHandler.RunDispatch))

	mux.Handle("GET /metrics", promhttp.Handler())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
		if err := db.Close(); err != nil {
			slog.Error("failed to close database connection", "error", err)
		}
		os.Exit(0)
	}()

	slog.Info("Starting server on port 8080")
	err = http.ListenAndServe(":8080", withCORS(mux))
	if err != nil {
		slog.Error("failed to start server", "error", err)
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func private(handler handlers.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		result := auth.GetUser(r.Context(), authHeader)
		if result.Code != http.StatusOK {
			slog.Debug("unauthorized request", "path", r.URL.Path)
			writeResult(w, result)
			return
		}

		user := result.Body.(data.User)
		ctx := context.WithValue(r.Context(), UserContextKey, user)

		public(handler)(w, r.WithContext(ctx))
	}
}

func public(handler handlers.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts := time.Now()
		res := handler(w, r)
		elapsedMs := time.Since(ts).Milliseconds()
		slog.Debug("req", "method", r.Method, "path", r.URL.Path, "code", res.Code, "elapsed", elapsedMs)
		writeResult(w, res)
	}
}

func writeResult(w http.ResponseWriter, res handlers.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Code)
	if res.Body != nil {
		if err := json.NewEncoder(w).Encode(res.Body); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
	if res.Code == http.StatusInternalServerError {
		slog.Error("internal error", "error", res.Error.Error())
	}
}
