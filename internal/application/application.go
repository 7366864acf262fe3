package application

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/upwork/coursera/internal/api"
	"github.com/upwork/coursera/internal/config"
	"github.com/upwork/coursera/internal/docs"
	"github.com/upwork/coursera/internal/startup"
)

const docsDir = "swagger-ui/"

// App encapsulates the application dependencies and HTTP server.
type App struct {
	cfg       config.Config
	handler   *api.Handler
	router    http.Handler
	logger    *zap.Logger
	server    *http.Server
	formatter *startup.Formatter
	apiDocs   bool
	listener  net.Listener
}

// Option configures App construction.
type Option func(*App)

// WithFormatter replaces the startup trace formatter, primarily for tests.
func WithFormatter(f *startup.Formatter) Option {
	return func(a *App) {
		a.formatter = f
	}
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if err := config.ValidateContextPath(cfg.ContextPath); err != nil {
		return nil, err
	}

	apiDocs := cfg.APIDocsEnabled && docs.Available()
	if apiDocs {
		docs.Configure(cfg.ContextPath, cfg.TLSEnabled())
	}

	handler := api.NewHandler(api.Info{
		Name:               cfg.ApplicationName,
		Profiles:           cfg.Profiles,
		ConfigServerStatus: cfg.ConfigServerStatus,
		APIDocs:            apiDocs,
	})
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	server := NewServer(cfg, BuildRootHandler(cfg.ContextPath, apiRouter, apiDocs))

	if cfg.TLSEnabled() {
		// The key store is a PEM bundle holding both the certificate chain and the private key.
		cert, err := tls.LoadX509KeyPair(cfg.KeyStore, cfg.KeyStore)
		if err != nil {
			return nil, fmt.Errorf("failed to load key store %s: %w", cfg.KeyStore, err)
		}
		server.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}

	app := &App{
		cfg:       cfg,
		handler:   handler,
		router:    apiRouter,
		logger:    logger,
		server:    server,
		formatter: startup.NewFormatter(logger),
		apiDocs:   apiDocs,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app, nil
}

// BuildRootHandler mounts the API and, when withDocs is set, the Swagger UI
// under contextPath. contextPath must start and end with a slash.
func BuildRootHandler(contextPath string, apiHandler http.Handler, withDocs bool) http.Handler {
	mux := http.NewServeMux()

	if contextPath == "/" {
		mux.Handle("/api/", apiHandler)
	} else {
		mux.Handle(contextPath+"api/", http.StripPrefix(strings.TrimSuffix(contextPath, "/"), apiHandler))
	}

	if withDocs {
		mux.Handle(contextPath+docsDir, httpSwagger.Handler(httpSwagger.URL("doc.json")))
	}

	mux.Handle(contextPath, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != contextPath || !withDocs {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, contextPath+docsDir+"index.html", http.StatusFound)
	}))

	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start binds the listening socket, serves HTTP in a goroutine and logs the startup trace.
func (a *App) Start() error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}
	a.listener = ln

	go func() {
		a.logger.Info("server listening", zap.String("addr", ln.Addr().String()), zap.Bool("tls", a.cfg.TLSEnabled()))

		var err error
		if a.server.TLSConfig != nil {
			err = a.server.ServeTLS(ln, "", "")
		} else {
			err = a.server.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()

	if a.logger.Core().Enabled(zapcore.InfoLevel) {
		a.logger.Info("\n" + a.StartupTrace())
	}
	return nil
}

// StartupTrace renders the startup banner. Once started, the bound port replaces the configured one.
func (a *App) StartupTrace() string {
	props := a.cfg.Properties()
	if a.listener != nil {
		if tcp, ok := a.listener.Addr().(*net.TCPAddr); ok {
			props[startup.PropertyServerPort] = fmt.Sprint(tcp.Port)
		}
	}
	return a.formatter.Format(startup.NewSnapshot(props, a.cfg.Profiles), a.apiDocs)
}

// APIDocs reports whether the Swagger UI is served.
func (a *App) APIDocs() bool {
	return a.apiDocs
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Addr returns the bound listener address, or nil before Start.
func (a *App) Addr() net.Addr {
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}
