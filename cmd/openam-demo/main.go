// Command openam-demo runs a small web application protected by OpenAM
// single sign-on. It wires the authentication strategy, an application
// session store, and health/metrics listeners around a couple of demo
// routes.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/alesium/go-openam/pkg/auth"
	"github.com/alesium/go-openam/pkg/config"
	"github.com/alesium/go-openam/pkg/httputil"
	"github.com/alesium/go-openam/pkg/observability"
	"github.com/alesium/go-openam/pkg/openam"
	"github.com/alesium/go-openam/pkg/session"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional, env vars override)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := observability.NewLogger(observability.ParseLogLevel(cfg.Observability.LogLevel), os.Stdout)

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
	}

	amConfig := openam.Config{
		BaseURL:     cfg.OpenAM.BaseURL,
		Realm:       cfg.OpenAM.Realm,
		CookieName:  cfg.OpenAM.CookieName,
		CallbackURL: cfg.OpenAM.CallbackURL,
		Timeout:     cfg.OpenAM.Timeout,
	}
	if cfg.OpenAM.SkipProfile {
		amConfig.SkipProfile = openam.SkipProfile(true)
	}

	client, err := openam.NewClient(amConfig, metrics)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create OpenAM client")
	}

	strategy, err := openam.New(amConfig, client, verifyProfile)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create OpenAM strategy")
	}

	store, err := newSessionStore(cfg.Session)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create session store")
	}

	mw, err := auth.NewMiddleware(auth.MiddlewareConfig{
		Strategy:      strategy,
		Sessions:      store,
		Logger:        logger,
		Metrics:       metrics,
		SessionCookie: cfg.Session.CookieName,
		TokenCookie:   cfg.OpenAM.CookieName,
		SessionTTL:    cfg.Session.TTL,
	})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create auth middleware")
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteNotFound(w, "no such route")
	})
	router.HandleFunc("/", homeHandler).Methods("GET")
	router.Handle("/login", mw.CallbackHandler()).Methods("GET")
	router.Handle("/callback", mw.CallbackHandler()).Methods("GET")
	router.Handle("/logout", mw.LogoutHandler()).Methods("GET", "POST")

	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(mw.Handler)
	protected.HandleFunc("/profile", profileHandler).Methods("GET")

	appServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthRouter := mux.NewRouter()
	healthRouter.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteSuccess(w, map[string]string{"status": "ok"})
	}).Methods("GET")
	if metrics != nil {
		healthRouter.Handle("/metrics", metrics.Handler()).Methods("GET")
	}

	healthServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthRouter,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("addr", appServer.Addr).Info("Demo server listening")
		if err := appServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logrus.WithField("addr", healthServer.Addr).Info("Health server listening")
		if err := healthServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := appServer.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Warn("App server shutdown failed")
		}
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Warn("Health server shutdown failed")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Fatal("Server failed")
	}
}

// verifyProfile accepts everyone OpenAM vouches for and surfaces the
// normalized profile as the application user. A real application would
// look the user up and apply its own policy here.
func verifyProfile(_ context.Context, _ *http.Request, token string, profile *openam.Profile) (any, openam.Info, error) {
	if profile == nil {
		// Profile fetch was skipped; identify the session by token only.
		return &openam.Profile{ID: token}, nil, nil
	}
	return profile, nil, nil
}

func newSessionStore(cfg config.SessionConfig) (session.Store, error) {
	switch cfg.Store {
	case "redis":
		return session.NewRedisStore(session.RedisConfig{
			URL: cfg.RedisURL,
			DB:  cfg.RedisDB,
		})
	default:
		return session.NewMemoryStore(), nil
	}
}

func homeHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteSuccess(w, map[string]string{
		"message": "OpenAM demo. Visit /login to sign in, /api/profile for your identity.",
	})
}

func profileHandler(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		httputil.WriteUnauthorized(w, "no active session")
		return
	}
	httputil.WriteSuccess(w, sess.Profile)
}
