// Package restserver exposes the latest dose readings over HTTP.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/uvmon/uvmon/internal/log"
	"github.com/uvmon/uvmon/internal/monitor"
	"github.com/uvmon/uvmon/pkg/config"
)

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	status     *monitor.Status
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, rc *config.RESTServerData,
	status *monitor.Status, logger *zap.SugaredLogger) (*Controller, error) {

	if rc == nil {
		return nil, fmt.Errorf("rest controller requires a rest configuration section")
	}
	cfg := *rc

	if cfg.ListenAddr == "" {
		logger.Info("rest.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		cfg.ListenAddr = "0.0.0.0"
	}
	if cfg.Port == 0 {
		logger.Info("rest.port not provided; defaulting to 8080")
		cfg.Port = 8080
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: cfg,
		status:     status,
		logger:     logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", cfg.ListenAddr, cfg.Port)
	ctrl.Server.Handler = ctrl.setupRouter()

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(requestLogger)

	router.HandleFunc("/status", c.handlers.GetAllStatus).Methods("GET")
	router.HandleFunc("/status/{device}", c.handlers.GetDeviceStatus).Methods("GET")
	router.HandleFunc("/healthz", c.handlers.GetHealth).Methods("GET")

	return router
}
