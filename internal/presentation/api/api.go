package api

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hilthontt/ridehail/internal/infrastructure/configs"
	"github.com/hilthontt/ridehail/internal/infrastructure/logging"
	"github.com/hilthontt/ridehail/internal/infrastructure/metrics"
	"github.com/hilthontt/ridehail/internal/infrastructure/ratelimiter"
	healthHandler "github.com/hilthontt/ridehail/internal/presentation/handler/health"
	ridesHandler "github.com/hilthontt/ridehail/internal/presentation/handler/rides"
	socketHandler "github.com/hilthontt/ridehail/internal/presentation/handler/socket"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 5 * time.Second
)

type Application struct {
	config        configs.Config
	ridesHandler  *ridesHandler.Handler
	healthHandler *healthHandler.Handler
	socketHandler *socketHandler.Handler
	logger        logging.Logger
	ratelimiter   ratelimiter.Limiter

	// onShutdown runs after the server stops accepting requests.
	onShutdown []func()
}

func NewApplication(
	config configs.Config,
	ridesHandler *ridesHandler.Handler,
	healthHandler *healthHandler.Handler,
	socketHandler *socketHandler.Handler,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Application{
		config:        config,
		ridesHandler:  ridesHandler,
		healthHandler: healthHandler,
		socketHandler: socketHandler,
		logger:        logger,
		ratelimiter:   ratelimiter,
	}
}

// OnShutdown registers fn to run during graceful shutdown, in order.
func (app *Application) OnShutdown(fn func()) {
	app.onShutdown = append(app.onShutdown, fn)
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(ratelimiter.PeerMiddleware)
	r.Use(middleware.RealIP)
	r.Use(app.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(app.prometheusMiddleware)
	r.Use(app.enableCors)

	r.Get("/", app.healthHandler.GetRoot)
	r.Handle("/metrics", metrics.Handler())
	r.Handle("/debug/vars", expvar.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Sockets outlive the request timeout.
	r.Get("/ws", app.socketHandler.ServeWS)
	r.Get("/socket", app.socketHandler.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Get("/health", app.healthHandler.GetHealth)

		r.Group(func(r chi.Router) {
			if app.ratelimiter != nil {
				r.Use(app.rateLimiterMiddleware)
			}

			r.Post("/rides", app.ridesHandler.CreateRideHandler)
			r.Get("/rides/{rideId}", app.ridesHandler.GetRideHandler)
			r.Post("/fare", app.ridesHandler.EstimateFareHandler)
		})
	})

	return otelhttp.NewHandler(r, app.config.Tracing.ServiceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.HTTP.Addr(),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "signal caught", map[logging.ExtraKey]any{
			"signal": s.String(),
		})

		err := srv.Shutdown(ctx)
		for _, fn := range app.onShutdown {
			fn()
		}
		shutdown <- err
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	return nil
}
