package managers

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/uvmon/uvmon/internal/controllers/restserver"
	"github.com/uvmon/uvmon/internal/monitor"
	"github.com/uvmon/uvmon/pkg/config"
)

// Controller is an interface that provides standard methods for various
// controller backends
type Controller interface {
	StartController() error
}

// ControllerManager starts the configured controllers.
type ControllerManager struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	logger      *zap.SugaredLogger
	controllers []Controller
}

// NewControllerManager creates a new controller manager
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider,
	status *monitor.Status, logger *zap.SugaredLogger) (*ControllerManager, error) {

	cm := &ControllerManager{
		ctx:    ctx,
		wg:     wg,
		logger: logger,
	}

	controllers, err := configProvider.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("could not load controllers configuration: %w", err)
	}

	for _, cc := range controllers {
		controller, err := cm.createController(cc, status)
		if err != nil {
			return nil, fmt.Errorf("error creating controller: %w", err)
		}
		cm.controllers = append(cm.controllers, controller)
	}

	return cm, nil
}

// StartControllers starts all configured controllers
func (cm *ControllerManager) StartControllers() error {
	cm.logger.Info("Starting controller manager...")

	for _, controller := range cm.controllers {
		if err := controller.StartController(); err != nil {
			return fmt.Errorf("error starting controller: %w", err)
		}
	}

	cm.logger.Infof("Started %d controllers successfully", len(cm.controllers))
	return nil
}

func (cm *ControllerManager) createController(cc config.ControllerData, status *monitor.Status) (Controller, error) {
	switch cc.Type {
	case "restserver", "rest":
		return restserver.NewController(cm.ctx, cm.wg, cc.RESTServer, status, cm.logger)
	default:
		return nil, fmt.Errorf("unknown controller type: %s", cc.Type)
	}
}
