package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mindful-journal/journal-backend/internal/config"
	"github.com/mindful-journal/journal-backend/internal/database"
	"github.com/mindful-journal/journal-backend/internal/handlers"
	"github.com/mindful-journal/journal-backend/internal/middleware"
	"github.com/mindful-journal/journal-backend/internal/routes"
	"github.com/mindful-journal/journal-backend/internal/services"
	"github.com/mindful-journal/journal-backend/internal/store"
	"github.com/mindful-journal/journal-backend/pkg/utils"
)

const sessionSweepInterval = 10 * time.Minute

type stores struct {
	users    store.UserStore
	journals store.JournalStore
	sessions store.SessionStore
	closers  []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func main() {
	// Load env
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	logger := utils.NewLogger(cfg.Environment, cfg.LogLevel)
	if envErr != nil {
		logger.Debug("No .env file found")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to open stores: %v", err)
	}
	defer st.close()

	creds := services.NewCredentialService(st.users, nil)
	sessions := services.NewSessionService(st.sessions, st.users, cfg.SessionTTL)
	journals := services.NewJournalService(st.journals, cfg.Location)
	analytics := services.NewAnalyticsService(st.journals, cfg.Location)

	cookie := handlers.CookieConfig{
		Name:   cfg.SessionCookieName,
		Secure: cfg.IsProduction(),
	}

	extra := []func(http.Handler) http.Handler{middleware.CORS(cfg.AllowedOrigins)}
	if cfg.IsProduction() {
		extra = append(extra, middleware.ProductionSecurity(ctx, cfg.AllowedHost)...)
		logger.Info("✅ Production security enabled (security headers, host check, per-IP + login rate limiting)")
	}

	deps := routes.Deps{
		Auth:       handlers.NewAuthHandler(creds, sessions, cookie, logger),
		Journals:   handlers.NewJournalHandler(journals, logger),
		Analytics:  handlers.NewAnalyticsHandler(analytics, logger),
		Sessions:   sessions,
		CookieName: cfg.SessionCookieName,
		Log:        logger,
		Extra:      extra,
	}
	if cfg.StaticDir != "" {
		deps.Static = handlers.NewStatic(cfg.StaticDir)
		logger.WithField("dir", cfg.StaticDir).Info("✅ Serving frontend")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("🚀 Mindful Journal backend running on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// openStores connects the configured backends. Anything left on the memory
// driver lives and dies with the process.
func openStores(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*stores, error) {
	st := &stores{}
	fail := func(err error) (*stores, error) {
		st.close()
		return nil, err
	}

	switch cfg.UserStore {
	case config.DriverPostgres:
		logger.Info("Connecting to PostgreSQL...")
		db, err := database.ConnectPostgres(cfg.PostgresURI)
		if err != nil {
			return fail(err)
		}
		st.closers = append(st.closers, func() { database.DisconnectPostgres(db) })
		st.users = store.NewPostgresUserStore(db)
		logger.Info("✅ PostgreSQL user store ready")
	default:
		st.users = store.NewMemoryUserStore()
	}

	switch cfg.JournalStore {
	case config.DriverMongo:
		logger.WithField("uri", maskURI(cfg.MongoURI)).Info("Connecting to MongoDB...")
		client, db, err := database.ConnectMongo(cfg.MongoURI)
		if err != nil {
			return fail(err)
		}
		st.closers = append(st.closers, func() { database.DisconnectMongo(client) })
		journals := store.NewMongoJournalStore(db)
		if err := journals.EnsureIndexes(ctx); err != nil {
			logger.WithError(err).Warn("⚠️  failed to ensure MongoDB journal indexes")
		} else {
			logger.Info("✅ MongoDB journal indexes ensured")
		}
		st.journals = journals
	default:
		st.journals = store.NewMemoryJournalStore()
	}

	switch cfg.SessionStore {
	case config.DriverRedis:
		logger.Info("Connecting to Redis...")
		client, err := database.ConnectRedis(cfg.RedisURI)
		if err != nil {
			return fail(err)
		}
		st.closers = append(st.closers, func() { database.DisconnectRedis(client) })
		st.sessions = store.NewRedisSessionStore(client)
		logger.Info("✅ Redis session store ready")
	default:
		sessions := store.NewMemorySessionStore()
		sessions.StartSweeper(ctx, sessionSweepInterval)
		st.sessions = sessions
	}

	logger.WithFields(logrus.Fields{
		"users":    cfg.UserStore,
		"journals": cfg.JournalStore,
		"sessions": cfg.SessionStore,
	}).Info("stores configured")
	return st, nil
}

// maskURI hides the password in user:pass@host URIs.
func maskURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at == -1 {
		return uri
	}
	scheme := strings.Index(uri, "://")
	if scheme == -1 || scheme+3 > at {
		return uri
	}
	creds := uri[scheme+3 : at]
	colon := strings.Index(creds, ":")
	if colon == -1 {
		return uri
	}
	return uri[:scheme+3] + creds[:colon] + ":***" + uri[at:]
}
