package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"portal/internal/activity"
	c "portal/internal/cache"
	"portal/internal/configuration"
	apierrors "portal/internal/errors"
	h "portal/internal/helpers"
	"portal/internal/lang"
	m "portal/internal/middlewares"
	"portal/internal/models"
	"portal/internal/processor"
	"portal/internal/services"
	"portal/internal/session"
	"portal/internal/validation"
	"portal/internal/views"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// NewRouter assembles the portal: the guest-only password reset pages below
// app.base_path plus the health check.
func NewRouter(
	config models.Configuration,
	db *gorm.DB,
	cache c.ICache,
	activityLogger activity.IActivityLogger,
	eventsManager *EventsManager,
	translator lang.Translator,
	validator *validation.Engine,
) (http.Handler, error) {
	basePath := config.App.BasePath
	cookiePath := basePath
	if cookiePath == "" {
		cookiePath = "/"
	}

	flash := session.NewFlashStore(config.App.JWTSecret, cookiePath, config.App.SecureCookies)
	responder, err := views.New(flash, translator, basePath)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(m.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.App.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Accept", "Content-Type", configuration.CSRFHeaderName},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(httprate.Limit(
		configuration.GlobalRequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		h.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	broker := processor.NewPasswordBroker(
		db,
		config.App.GetBrokerConfig(),
		validator,
		eventsManager.GetPublisher(),
		activityLogger,
	)

	passwordReset := services.PasswordResetController{
		Broker:     broker,
		Views:      responder,
		Redirect:   responder,
		Translator: translator,
		BasePath:   basePath,
	}

	home := services.HomeController{Views: responder, Translator: translator}

	notFound := func(w http.ResponseWriter, r *http.Request) {
		responder.RenderError(w, r, apierrors.ErrPageNotFound)
	}

	portal := chi.NewRouter()
	portal.NotFound(notFound)
	portal.Use(m.CSRF(config.App.CSRFSecret, cookiePath, config.App.SecureCookies, responder))

	portal.Get("/", home.Show)
	portal.Group(func(guest chi.Router) {
		guest.Use(m.Guest(config.App.JWTSecret, config.App.SessionCookie, basePath))
		guest.Mount(configuration.RouteForgot, passwordReset.Routes(
			m.RateLimit(cache, config.App.RequestsPerMinute, responder),
		))
	})

	if basePath == "" {
		r.Mount("/", portal)
	} else {
		r.NotFound(notFound)
		r.Mount(basePath, portal)
	}

	return otelhttp.NewHandler(r, configuration.AppName), nil
}

// StartHTTPServer serves handler until ctx is done, then drains open
// requests.
func StartHTTPServer(ctx context.Context, config models.Configuration, handler http.Handler) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.App.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	failed := make(chan error, 1)
	go func() {
		zap.L().Info("HTTP server starting",
			zap.Int("port", config.App.Port),
			zap.String("base_path", config.App.BasePath))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case err := <-failed:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	zap.L().Info("HTTP server draining")
	return server.Shutdown(shutdownCtx)
}
