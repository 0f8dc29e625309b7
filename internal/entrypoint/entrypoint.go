package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/authclient/internal/auth"
	"github.com/mrlokans/authclient/internal/config"
	"github.com/mrlokans/authclient/internal/database"
	http_controllers "github.com/mrlokans/authclient/internal/http"
	"github.com/mrlokans/authclient/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -9 can't be caught, so only SIGINT and SIGTERM are handled
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Build wires the database, auth API and token sweeper. The returned
// ShutdownFunc releases everything Build started.
func Build(cfg *config.Config, version string) (*gin.Engine, ShutdownFunc, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	authService := auth.NewService(db.DB, cfg.Auth)
	authAPI := auth.NewAPIController(authService, cfg.Auth)

	if count, err := db.CountUsers(); err == nil && count == 0 {
		log.Printf("No users found. POST /api/auth/signup to create an account.")
	}

	sweeper := scheduler.NewTokenSweepScheduler(authService, cfg.Sweep)
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	if err := sweeper.Start(sweepCtx); err != nil {
		log.Printf("WARNING: token sweep disabled: %v", err)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:      db,
		AuthAPI:       authAPI,
		Version:       version,
		AccessLogging: true,
	})

	onShutdown := func(ctx context.Context) {
		sweepCancel()
		sweeper.Stop()
		authAPI.Stop()
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}

	return router, onShutdown, nil
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting authclient reference server v%s", version)
	log.Printf("Token expiry: %v, sweep schedule: %q (enabled: %v)",
		cfg.Auth.TokenExpiry, cfg.Sweep.Schedule, cfg.Sweep.Enabled)

	router, onShutdown, err := Build(cfg, version)
	if err != nil {
		log.Fatalf("%v", err)
	}

	Serve(router, cfg, onShutdown)
}
