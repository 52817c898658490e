// Package di provides dependency injection and application bootstrapping.
package di

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pannpers/go-logging/logging"

	"github.com/talivision/where-am-i-listening/internal/infrastructure/server"
	"github.com/talivision/where-am-i-listening/pkg/shutdown"
)

// App represents the application with all its dependencies and lifecycle management.
type App struct {
	Server          *server.Server
	HealthServer    *server.HealthServer
	Logger          *logging.Logger
	ShutdownTimeout time.Duration
}

// Shutdown gracefully shuts down the application and closes all resources.
func (a *App) Shutdown(ctx context.Context) error {
	log.Println("Starting application shutdown...")

	var errs error

	if a.HealthServer != nil {
		if err := a.HealthServer.Close(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to shut down health server: %w", err))
		}
	}

	if a.Server != nil {
		if err := a.Server.Stop(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to gracefully shut down server: %w", err))
		}
	}

	// Run the phases registered in InitializeApp, which also close the cache
	// and the MusicBrainz client. The drain phase closes the two servers a
	// second time; by then they are already shut down.
	if err := shutdown.Shutdown(ctx); err != nil {
		errs = errors.Join(errs, fmt.Errorf("failed to run shutdown phases: %w", err))
	}

	if errs != nil {
		return errs
	}

	log.Println("Application shutdown complete")

	return nil
}
