// Package managers wires the configured components together: storage
// backends, per-device monitors, and controllers.
package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/uvmon/uvmon/internal/storage"
	"github.com/uvmon/uvmon/internal/storage/mqtt"
	"github.com/uvmon/uvmon/internal/storage/timescaledb"
	"github.com/uvmon/uvmon/internal/types"
	"github.com/uvmon/uvmon/pkg/config"
)

// StorageManager holds our active storage backends
type StorageManager struct {
	Engines            []StorageEngine
	ReadingDistributor chan types.Reading
}

// StorageEngine holds a backend storage engine's interface as well as
// a channel for passing readings to the engine
type StorageEngine struct {
	Engine storage.StorageEngineInterface
	C      chan<- types.Reading
}

// NewStorageManager creates a StorageManager object, populated with all
// configured storage engines
func NewStorageManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider) (*StorageManager, error) {
	s := StorageManager{}

	// Channel between the monitors and the reading distributor
	s.ReadingDistributor = make(chan types.Reading, 20)

	go s.startReadingDistributor(ctx, wg)

	storageConfig, err := configProvider.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load storage configuration: %w", err)
	}

	if storageConfig.TimescaleDB != nil && storageConfig.TimescaleDB.ConnectionString != "" {
		if err := s.AddEngine(ctx, wg, "timescaledb", storageConfig); err != nil {
			return &s, fmt.Errorf("could not add TimescaleDB storage backend: %w", err)
		}
	}

	if storageConfig.MQTT != nil && storageConfig.MQTT.Broker != "" {
		if err := s.AddEngine(ctx, wg, "mqtt", storageConfig); err != nil {
			return &s, fmt.Errorf("could not add MQTT storage backend: %w", err)
		}
	}

	return &s, nil
}

// GetReadingDistributor returns the reading distributor channel
func (s *StorageManager) GetReadingDistributor() chan types.Reading {
	return s.ReadingDistributor
}

// AddEngine adds a new StorageEngine of name engineName to our StorageManager
func (s *StorageManager) AddEngine(ctx context.Context, wg *sync.WaitGroup, engineName string, sc *config.StorageData) error {
	switch engineName {
	case "timescaledb":
		se := StorageEngine{}
		engine, err := timescaledb.New(ctx, sc.TimescaleDB)
		if err != nil {
			return err
		}
		se.Engine = engine
		se.C = se.Engine.StartStorageEngine(ctx, wg)
		s.Engines = append(s.Engines, se)
	case "mqtt":
		se := StorageEngine{}
		engine, err := mqtt.New(sc.MQTT)
		if err != nil {
			return err
		}
		se.Engine = engine
		se.C = se.Engine.StartStorageEngine(ctx, wg)
		s.Engines = append(s.Engines, se)
	default:
		return fmt.Errorf("unknown storage engine: %s", engineName)
	}
	return nil
}

// startReadingDistributor receives readings from the monitors and fans them
// out to the various storage backends
func (s *StorageManager) startReadingDistributor(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-s.ReadingDistributor:
			// With no engines configured the reading is discarded silently
			for _, e := range s.Engines {
				e.C <- r
			}
		case <-ctx.Done():
			return
		}
	}
}
