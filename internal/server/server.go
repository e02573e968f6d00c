// Package server exposes the services over HTTP with gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"task-manager/internal/service"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services groups the dependencies the handlers call into.
type Services struct {
	Auth       *service.AuthService
	Users      *service.UserService
	Categories *service.CategoryService
	Tasks      *service.TaskService
	Imports    *service.ImportService
	DB         Pinger
}

// Server owns the gin engine and the route table.
type Server struct {
	engine *gin.Engine
	svc    Services
}

func New(svc Services, corsOrigins []string) *Server {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	if len(corsOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     corsOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	s := &Server{engine: engine, svc: svc}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine

	r.GET("/", s.root)
	r.GET("/health", s.health)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", s.register)
		authGroup.POST("/login", s.loginForm)
		authGroup.POST("/login-json", s.loginJSON)
	}

	// Served to <img> tags, which cannot send headers.
	r.GET("/users/me/profile-picture/:filename", s.guard(true), s.profilePictureFile)

	authed := r.Group("/", s.guard(false))

	categories := authed.Group("/categories")
	{
		categories.GET("", s.listCategories)
		categories.POST("", s.createCategory)
		categories.GET("/:id", s.getCategory)
		categories.PUT("/:id", s.updateCategory)
		categories.DELETE("/:id", s.deleteCategory)
	}

	tasks := authed.Group("/tasks")
	{
		tasks.GET("", s.listTasks)
		tasks.POST("", s.createTask)
		tasks.GET("/stats/summary", s.taskStats)
		tasks.POST("/import-excel", s.importTasks)
		tasks.GET("/download-template", s.downloadTemplate)
		tasks.GET("/:id", s.getTask)
		tasks.PUT("/:id", s.updateTask)
		tasks.DELETE("/:id", s.deleteTask)
		tasks.PATCH("/:id/complete", s.completeTask)
		tasks.PATCH("/:id/incomplete", s.incompleteTask)
	}

	users := authed.Group("/users/me")
	{
		users.GET("", s.me)
		users.PUT("", s.updateMe)
		users.DELETE("", s.deleteMe)
		users.POST("/profile-picture", s.uploadProfilePicture)
		users.GET("/profile-picture", s.profilePicture)
		users.DELETE("/profile-picture", s.deleteProfilePicture)
	}
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[info] listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Task Manager API",
		"version": Version,
		"status":  "running",
	})
}

func (s *Server) health(c *gin.Context) {
	if s.svc.DB != nil {
		if err := s.svc.DB.PingContext(c.Request.Context()); err != nil {
			log.Printf("[warn] health: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "disconnected"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "connected"})
}
