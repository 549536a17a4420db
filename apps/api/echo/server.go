package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/admin"
	"github.com/trezcool/shule/core/school"
)

type (
	// ServerDeps is everything a Server needs; main wires these up.
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		AdminSvc   admin.Service
		SchoolSvc  *school.Service
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	app := echo.New()
	app.HideBanner = true
	app.Logger.SetLevel(log.OFF)

	srv := &Server{
		deps:     deps,
		app:      app,
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	app.HTTPErrorHandler = srv.appHTTPErrorHandler

	app.Pre(middleware.RemoveTrailingSlash())
	if !deps.Conf.TestMode {
		app.Use(middleware.Logger())
	}
	if !deps.Conf.Debug {
		app.Use(middleware.Recover())
	}
	app.Use(middleware.CORS())

	srv.registerRoutes()
	signal.Notify(srv.shutdown, syscall.SIGINT, syscall.SIGTERM)
	return srv
}

func (s *Server) registerRoutes() {
	s.app.GET("/", s.homeHandler)
	s.app.GET("/api/health", s.healthHandler)

	registerAdminAPI(s.app, s.deps)
	registerSchoolAPI(s.app, s.deps)
}

func (s *Server) homeHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"app":   s.deps.Conf.AppName,
		"build": s.deps.Conf.Build,
	})
}

func (s *Server) healthHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Start runs the server and forwards its terminal error to Errors().
func (s *Server) Start() {
	s.errs <- s.app.Start(s.deps.Conf.Server.Addr)
}

// Errors reports the server's terminal error, if any.
func (s *Server) Errors() <-chan error { return s.errs }

// ShutdownSignal reports OS interrupt/terminate signals.
func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

// Shutdown stops the server gracefully, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// Close stops the server ungracefully.
func (s *Server) Close() error {
	return s.app.Close()
}

// ServeHTTP lets tests drive the full routing/middleware stack in-process.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}
