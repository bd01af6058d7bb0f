// Package app wires the managers together and owns the process lifecycle.
package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/uvmon/uvmon/internal/log"
	"github.com/uvmon/uvmon/internal/managers"
	"github.com/uvmon/uvmon/internal/monitor"
	"github.com/uvmon/uvmon/pkg/config"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	status := monitor.NewStatus()

	// Initialize the storage manager
	storageManager, err := managers.NewStorageManager(ctx, &wg, a.configProvider)
	if err != nil {
		return err
	}

	// Initialize the monitor manager
	mm, err := managers.NewMonitorManager(ctx, &wg, a.configProvider, storageManager.ReadingDistributor, status, a.logger)
	if err != nil {
		return err
	}
	if err := mm.StartMonitors(); err != nil {
		return err
	}

	// Initialize the controller manager
	cm, err := managers.NewControllerManager(ctx, &wg, a.configProvider, status, a.logger)
	if err != nil {
		return err
	}
	if err := cm.StartControllers(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	cancel()

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
