package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sikseb/internal/mockapi"
	"sikseb/internal/router"
	"sikseb/pkg/config"
	"sikseb/pkg/jwt"
	"sikseb/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLogger := logger.GetLogger()
	appLogger.Info("Starting stub HR backend...")

	store, err := mockapi.NewSeededStore(mockapi.SeedOptions{
		AdminEmail:    cfg.Mock.AdminEmail,
		AdminPassword: cfg.Mock.AdminPassword,
		Employees:     8,
	})
	if err != nil {
		appLogger.Fatalf("Failed to seed data: %v", err)
	}

	gin.SetMode(cfg.Mock.Mode)

	r := router.SetupRouter(router.Deps{
		Store:  store,
		JWT:    jwt.GetJWTManager(),
		CORS:   cfg.CORS,
		Logger: appLogger.WithField("component", "mockapi"),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Mock.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	appLogger.Infof("Stub backend listening on port %s (login: %s)", cfg.Mock.Port, cfg.Mock.AdminEmail)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown: ", err)
	}
	appLogger.Info("Server exited")
}
