package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/Domenick1991/travelbooking/api"
	"github.com/Domenick1991/travelbooking/config"
	"github.com/Domenick1991/travelbooking/internal/middleware"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const swaggerSpec = "/swagger/travelbooking.swagger.json"

// Handlers are the api endpoints mounted under /api.
type Handlers struct {
	Session    *api.SessionHandler
	Access     *api.AccessHandler
	Flights    *api.FlightHandler
	Properties *api.PropertyHandler
	Checkout   *api.CheckoutHandler
	Account    *api.AccountHandler
	Admin      *api.AdminHandler
}

// Sessions resolves the session cookie and rejects anonymous requests.
// session.Manager implements it.
type Sessions interface {
	Middleware() gin.HandlerFunc
	RequireAuthenticated() gin.HandlerFunc
}

// Dependency is one backing service checked by /readyz.
type Dependency struct {
	Name  string
	Check func(ctx context.Context) error
}

// Run serves the HTTP API and blocks until ctx is canceled or the server
// fails.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, router http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown http server")
		}
		return nil
	}
}

// NewRouter assembles the gin engine. limiter guards login, sign-up and
// checkout.
func NewRouter(cfg *config.Config, log *zap.Logger, sessions Sessions, limiter gin.HandlerFunc, h Handlers, deps ...Dependency) *gin.Engine {
	if cfg.Log.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.RequestLogger(log),
		middleware.NewCORSMiddleware(cfg.CORS),
		sessions.Middleware(),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", readiness(log, deps))

	if cfg.HTTP.SwaggerDir != "" {
		r.Static("/swagger", cfg.HTTP.SwaggerDir)
		r.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(swaggerSpec))))
	}

	root := r.Group("/api")
	h.Access.Register(root)
	h.Flights.Register(root.Group("/flights"))
	h.Properties.Register(root.Group("/properties"))
	h.Session.Register(root.Group("/session"))

	authed := root.Group("", sessions.RequireAuthenticated())
	h.Account.Register(authed)
	h.Checkout.Register(authed.Group("/checkout", limiter))
	h.Admin.Register(authed.Group("/admin"))

	return r
}

func readiness(log *zap.Logger, deps []Dependency) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{}
		for _, p := range deps {
			if err := p.Check(ctx); err != nil {
				log.Warn("readiness check failed", zap.String("dependency", p.Name), zap.Error(err))
				checks[p.Name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[p.Name] = "ok"
		}
		c.JSON(status, gin.H{"checks": checks})
	}
}
