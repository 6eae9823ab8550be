// Package http provides the HTTP server adapter for the application layer.
// It is a thin boundary that binds requests into typed inputs and maps
// service errors onto status codes.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/atlaserp/procurement/internal/application/port"
	"github.com/atlaserp/procurement/internal/application/service"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	logger     *zap.Logger
}

// NewServer creates a new HTTP server wired to the given services.
func NewServer(
	config ServerConfig,
	requisitions *service.RequisitionService,
	budgets *service.BudgetService,
	approvers *service.ApproverService,
	attachments port.AttachmentStore,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config: config,
		router: router,
		logger: logger,
	}

	router.Use(gin.Recovery())
	router.Use(server.loggingMiddleware())

	server.setupRoutes(NewHandlers(requisitions, budgets, approvers, attachments, logger))

	return server
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(handlers *Handlers) {
	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api/v1")
	{
		requisitions := api.Group("/requisitions")
		{
			requisitions.POST("", handlers.CreateRequisition)
			requisitions.GET("", handlers.ListRequisitions)
			requisitions.GET("/:id", handlers.GetRequisition)
			requisitions.GET("/:id/history", handlers.GetRequisitionHistory)
			requisitions.PUT("/:id/items", handlers.UpdateRequisitionItems)
			requisitions.POST("/:id/submit", handlers.SubmitRequisition)
			requisitions.POST("/:id/approve", handlers.ApproveRequisition)
			requisitions.POST("/:id/reject", handlers.RejectRequisition)
			requisitions.POST("/:id/assign-buyer", handlers.AssignBuyer)
			requisitions.POST("/:id/start-purchase", handlers.StartPurchase)
			requisitions.POST("/:id/complete-purchase", handlers.CompletePurchase)
			requisitions.POST("/:id/cancel", handlers.CancelRequisition)
			requisitions.POST("/:id/budgets", handlers.CreateBudget)
			requisitions.GET("/:id/budgets", handlers.ListBudgets)
			requisitions.HEAD("/:id/attachments/:filename", handlers.CheckAttachment("requisition"))
		}

		budgets := api.Group("/budgets")
		{
			budgets.GET("/:id", handlers.GetBudget)
			budgets.PUT("/:id", handlers.UpdateBudget)
			budgets.POST("/:id/approve", handlers.ApproveBudget)
			budgets.POST("/:id/reject", handlers.RejectBudget)
			budgets.POST("/:id/return", handlers.ReturnBudget)
			budgets.POST("/:id/cancel", handlers.CancelBudget)
			budgets.PUT("/:id/delivery", handlers.UpdateBudgetDelivery)
			budgets.POST("/:id/confirm-delivery", handlers.ConfirmBudgetDelivery)
			budgets.HEAD("/:id/attachments/:filename", handlers.CheckAttachment("budget"))
		}

		approvers := api.Group("/approvers")
		{
			approvers.POST("", handlers.CreateApprover)
			approvers.GET("", handlers.ListApprovers)
			approvers.PUT("/:id/active", handlers.SetApproverActive)
		}
	}
}

// Start starts the HTTP server and blocks until the context is cancelled or
// the listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
