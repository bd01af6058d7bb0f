package managers

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/uvmon/uvmon/internal/monitor"
	"github.com/uvmon/uvmon/internal/sensors/veml6075"
	"github.com/uvmon/uvmon/internal/transport"
	"github.com/uvmon/uvmon/internal/types"
	"github.com/uvmon/uvmon/pkg/config"
)

// MonitorManager owns one monitor per enabled device.
type MonitorManager struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	distributor chan types.Reading
	status      *monitor.Status
	logger      *zap.SugaredLogger
	monitors    map[string]*monitor.Monitor
}

// NewMonitorManager creates a MonitorManager, populated with a monitor for
// every enabled device in the configuration. Connecting the sensor and the
// remote link happens here, before any monitor goroutine starts; a device
// that cannot be reached is a startup error.
func NewMonitorManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider,
	distributor chan types.Reading, status *monitor.Status, logger *zap.SugaredLogger) (*MonitorManager, error) {

	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	mm := &MonitorManager{
		ctx:         ctx,
		wg:          wg,
		distributor: distributor,
		status:      status,
		logger:      logger,
		monitors:    make(map[string]*monitor.Monitor),
	}

	for _, device := range cfgData.Devices {
		if !device.Enabled {
			logger.Infof("Skipping disabled device [%s]", device.Name)
			continue
		}
		m, err := mm.createMonitor(device, cfgData.Profile)
		if err != nil {
			return nil, fmt.Errorf("error creating monitor [%s]: %w", device.Name, err)
		}
		mm.monitors[device.Name] = m
	}

	return mm, nil
}

// StartMonitors launches every monitor goroutine.
func (mm *MonitorManager) StartMonitors() error {
	for name, m := range mm.monitors {
		mm.logger.Infof("Starting monitor [%s]...", name)
		m.Start()
	}
	mm.logger.Infof("Started %d monitors", len(mm.monitors))
	return nil
}

// createMonitor connects the device's sensor and remote link and builds the
// monitor around them.
func (mm *MonitorManager) createMonitor(device config.DeviceData, profile config.ProfileData) (*monitor.Monitor, error) {
	source, err := veml6075.NewSensor(device, mm.logger)
	if err != nil {
		return nil, fmt.Errorf("could not create sensor: %w", err)
	}
	if err := source.Init(mm.ctx); err != nil {
		return nil, fmt.Errorf("could not initialize sensor: %w", err)
	}

	link, err := mm.openLink(device.Transport)
	if err != nil {
		return nil, fmt.Errorf("could not open remote link: %w", err)
	}

	// Serial links front a BLE bridge module that needs its AT setup
	// before lines flow.
	if device.Transport.SerialDevice != "" {
		bridgeCfg := transport.BridgeConfig{
			Name:         device.Transport.BridgeName,
			FactoryReset: device.Transport.FactoryReset,
		}
		if err := transport.InitBridge(link, bridgeCfg, mm.logger); err != nil {
			link.Close()
			return nil, fmt.Errorf("bridge initialization failed: %w", err)
		}
	}

	return monitor.New(mm.ctx, mm.wg, device, profile, source, link, mm.distributor, mm.status, mm.logger), nil
}

func (mm *MonitorManager) openLink(tc config.TransportData) (transport.LineTransport, error) {
	switch {
	case tc.SerialDevice != "":
		return transport.OpenSerial(tc.SerialDevice, tc.Baud)
	case tc.Hostname != "" && tc.Port != "":
		return transport.Dial(tc.Hostname, tc.Port)
	default:
		return nil, fmt.Errorf("transport needs either serial_device or hostname and port")
	}
}
