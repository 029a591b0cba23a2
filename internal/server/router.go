package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/giftology/radar/internal/api"
)

// NewEngine wires the dashboard API onto a gin engine.
func NewEngine(h *api.Handler, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), cors())

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/dashboard", h.GetDashboard)
		apiGroup.GET("/tasks", h.GetTasks)
		apiGroup.GET("/tasks/:serial", h.GetTask)
		apiGroup.POST("/tasks/:serial/complete", h.CompleteTask)
		apiGroup.GET("/dov", h.GetDOV)
		apiGroup.GET("/contacts", h.GetContacts)
		apiGroup.GET("/contacts/:serial", h.GetContact)
		apiGroup.GET("/me", h.GetProfile)
		apiGroup.GET("/help/:id", h.GetHelp)
		apiGroup.POST("/feedback", h.PostFeedback)
		apiGroup.POST("/password/reset", h.ResetPassword)
		apiGroup.GET("/session", h.GetSession)
		apiGroup.POST("/session/login", h.Login)
		apiGroup.POST("/session/verify", h.Verify)
		apiGroup.POST("/session/logout", h.Logout)
		apiGroup.POST("/setup", h.PostSetup)
		apiGroup.GET("/report", h.GetReport)
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API route not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Server serves the dashboard API until stopped.
type Server struct {
	addr   string
	engine *gin.Engine
	log    *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	srv      *http.Server
}

func New(addr string, h *api.Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{addr: addr, engine: NewEngine(h, log), log: log}
}

// Listen blocks serving HTTP. It returns nil once Stop has been called.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.listener = ln
	s.srv = srv
	s.mu.Unlock()

	s.log.Info("dashboard API listening", zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr is the bound address, or "" before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop drains in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
