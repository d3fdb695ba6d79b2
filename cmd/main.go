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

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ukydev/fleet-dashboard/internal/auth"
	"github.com/ukydev/fleet-dashboard/internal/comms"
	"github.com/ukydev/fleet-dashboard/internal/config"
	"github.com/ukydev/fleet-dashboard/internal/db"
	"github.com/ukydev/fleet-dashboard/internal/fixtures"
	"github.com/ukydev/fleet-dashboard/internal/handlers"
	"github.com/ukydev/fleet-dashboard/internal/help"
	"github.com/ukydev/fleet-dashboard/internal/metrics"
	"github.com/ukydev/fleet-dashboard/internal/middleware"
	"github.com/ukydev/fleet-dashboard/internal/notify"
	"github.com/ukydev/fleet-dashboard/internal/settings"
)

const shutdownTimeout = 10 * time.Second

// stores are the persistence backends selected by DATA_SOURCE.
type stores struct {
	records  db.RecordStore
	users    db.UserCollection
	settings settings.Store
	close    func()
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.DataSource == config.SourceMongo {
		client, err := db.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return stores{}, err
		}
		database := client.Database(cfg.MongoDatabase)
		log.WithField("database", cfg.MongoDatabase).Info("Connected to MongoDB")
		return stores{
			records:  db.NewMongoRecordStore(database, cfg.RefreshInterval),
			users:    &db.MongoUserCollection{Collection: database.Collection(db.UsersCollection)},
			settings: &db.MongoSettingsStore{Collection: database.Collection(db.SettingsCollection)},
			close:    func() { disconnect(client) },
		}, nil
	}

	s := stores{
		records:  db.NewMemoryStore(fixtures.Snapshot(time.Now())),
		users:    db.NewMemoryUserCollection(),
		settings: settings.NewMemoryStore(),
		close:    func() {},
	}
	if cfg.SettingsFile != "" {
		s.settings = settings.NewFileStore(cfg.SettingsFile)
	}
	log.Info("Serving fixture records")
	return s, nil
}

func disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.WithError(err).Warn("Failed to disconnect from MongoDB")
	}
}

func openPublisher(cfg config.Config) notify.Publisher {
	if cfg.MQTTBroker == "" {
		return notify.NopPublisher{}
	}
	client, err := notify.ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientID, 10*time.Second)
	if err != nil {
		log.WithError(err).WithField("broker", cfg.MQTTBroker).Warn("MQTT unavailable, notifications will not be pushed")
		return notify.NopPublisher{}
	}
	log.WithField("broker", cfg.MQTTBroker).Info("Connected to MQTT broker")
	return notify.NewMQTTPublisher(client, cfg.MQTTTopic)
}

// newRouter mounts every route. Metrics sits innermost so it sees the
// pattern the mux matched.
func newRouter(authHandler *handlers.AuthHandler, dashboard *handlers.Dashboard, authMW *middleware.AuthMiddleware,
	limiter func(http.Handler) http.Handler, reg *metrics.Registry, logger log.FieldLogger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/auth/profile", authHandler.GetProfile)
	authHandler.RegisterAdmin(mux, authMW.RequirePermission)
	mux.Handle("GET /metrics", reg.Handler())
	dashboard.Register(mux, authMW.RequirePermission)

	return middleware.Chain(mux,
		middleware.RequestLogger(logger),
		limiter,
		authMW.Authenticate,
		middleware.Metrics(reg),
	)
}

// publishLoop pushes new notifications every interval until ctx ends.
func publishLoop(ctx context.Context, dashboard *handlers.Dashboard, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if n, err := dashboard.PublishNotifications(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Warn("Failed to publish notifications")
		} else if n > 0 {
			log.WithField("count", n).Info("Published notifications")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func run(ctx context.Context, cfg config.Config) error {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	library, err := help.Load()
	if err != nil {
		return fmt.Errorf("load help: %w", err)
	}

	publisher := openPublisher(cfg)
	defer publisher.Close()

	sessions := comms.NewSessions(cfg.FromAddress, comms.DefaultDialerConfig(), log.StandardLogger())
	defer sessions.Close()

	reg := metrics.New()
	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	authHandler := handlers.NewAuthHandler(authService, st.users, log.StandardLogger())
	if err := authHandler.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}

	dashboard := &handlers.Dashboard{
		Records:   st.records,
		Settings:  st.settings,
		Center:    notify.NewCenter(),
		Publisher: publisher,
		Sessions:  sessions,
		Help:      library,
		Metrics:   reg,
		Logger:    log.StandardLogger(),
	}

	limiter := middleware.NewRateLimitMiddleware().RateLimit(cfg.RateLimit, cfg.RateLimitWindow)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(authHandler, dashboard, middleware.NewAuthMiddleware(authService), limiter, reg, log.StandardLogger()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go publishLoop(loopCtx, dashboard, cfg.RefreshInterval)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	return server.Shutdown(shutdownCtx)
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(".env")
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	log.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}
