// Package bridge exposes a camera-preview adapter over HTTP: a method
// dispatch endpoint mirroring the plugin contract, an MJPEG preview stream
// and an orientation websocket.
package bridge

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wachiwi/camera-preview/pkg/orientation"
	"github.com/wachiwi/camera-preview/pkg/preview"
)

const sessionName = "camera-preview"

// HostControl emulates the native resize and rotation signals of the page
// hosting the preview.
type HostControl interface {
	SetViewport(width, height float64)
	SetOrientation(orientationType string, angle *int)
}

// Credentials enable the login routes. Empty Username disables auth.
type Credentials struct {
	Username      string
	Password      string
	SessionSecret string
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func WithHostControl(h HostControl) Option {
	return func(s *Server) { s.host = h }
}

func WithOrientation(m *orientation.Monitor) Option {
	return func(s *Server) { s.monitor = m }
}

func WithCredentials(c Credentials) Option {
	return func(s *Server) { s.creds = c }
}

// WithRegistry serves reg on /metrics and registers the bridge metrics on it.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithStreamInterval sets the delay between MJPEG parts.
func WithStreamInterval(d time.Duration) Option {
	return func(s *Server) { s.streamInterval = d }
}

type Server struct {
	adapter        *preview.Adapter
	logger         *slog.Logger
	host           HostControl
	monitor        *orientation.Monitor
	creds          Credentials
	registry       *prometheus.Registry
	streamInterval time.Duration

	calls    *prometheus.CounterVec
	upgrader websocket.Upgrader
	methods  map[string]method
	router   *gin.Engine
}

func New(adapter *preview.Adapter, opts ...Option) *Server {
	s := &Server{
		adapter:        adapter,
		logger:         slog.Default(),
		streamInterval: 33 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	// With login on, the nil CheckOrigin rejects cross-origin handshakes.
	if s.creds.Username == "" {
		s.upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.calls = newCallCounter(s.registry)
	s.methods = s.methodTable()
	s.router = s.routes()
	return s
}

// Handler returns the gin engine serving all routes.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.SetTrustedProxies([]string{"127.0.0.1"})

	auth := s.creds.Username != ""
	if auth {
		store := cookie.NewStore([]byte(s.creds.SessionSecret))
		store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
		r.Use(sessions.Sessions(sessionName, store))
		a := &authHandler{creds: s.creds, logger: s.logger}
		r.POST("/login", a.Login)
		r.POST("/logout", a.Logout)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"running": s.adapter.IsRunning()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	if auth {
		api.Use(AuthRequired)
	}

	api.POST("/camera/:method", s.call)
	api.GET("/camera/stream", s.stream)
	if s.monitor != nil {
		api.GET("/orientation/ws", s.orientationSocket)
	}
	if s.host != nil {
		api.POST("/host/viewport", s.setViewport)
	}
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
