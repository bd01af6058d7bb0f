// Package timescaledb stores dose readings in a TimescaleDB hypertable for
// long-term exposure history.
package timescaledb

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/uvmon/uvmon/internal/log"
	"github.com/uvmon/uvmon/internal/types"
	"github.com/uvmon/uvmon/pkg/config"
)

// Storage holds the connection to a TimescaleDB storage backend
type Storage struct {
	DB *gorm.DB
}

// New connects to TimescaleDB and provisions the readings table, hypertable,
// and continuous aggregates.
func New(ctx context.Context, c *config.TimescaleDBData) (*Storage, error) {
	t := Storage{}

	dbLogger := gormlogger.New(
		zap.NewStdLog(log.GetZapLogger()),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      gormlogger.Warn,
		},
	)

	log.Info("connecting to TimescaleDB...")
	db, err := gorm.Open(postgres.Open(c.ConnectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		log.Warn("warning: unable to create a TimescaleDB connection:", err)
		return &Storage{}, err
	}
	t.DB = db

	log.Info("creating dose readings table...")
	if err := t.DB.WithContext(ctx).Exec(createTableSQL).Error; err != nil {
		log.Warn("warning: could not create table in database")
		return &Storage{}, err
	}

	log.Info("creating TimescaleDB extension...")
	if err := t.DB.WithContext(ctx).Exec(createExtensionSQL).Error; err != nil {
		log.Warn("warning: could not create TimescaleDB extension")
		return &Storage{}, err
	}

	log.Info("creating hypertable...")
	if err := t.DB.WithContext(ctx).Exec(createHypertableSQL).Error; err != nil {
		log.Warn("warning: could not create hypertable")
		return &Storage{}, err
	}

	log.Info("creating 1m view...")
	if err := t.DB.WithContext(ctx).Exec(create1mViewSQL).Error; err != nil {
		log.Warn("warning: could not create 1m view")
		return &Storage{}, err
	}

	log.Info("creating 1h view...")
	if err := t.DB.WithContext(ctx).Exec(create1hViewSQL).Error; err != nil {
		log.Warn("warning: could not create 1h view")
		return &Storage{}, err
	}

	log.Info("adding 1m aggregation policy...")
	if err := t.DB.WithContext(ctx).Exec(addAggregationPolicy1mSQL).Error; err != nil {
		log.Warn("warning: could not add 1m aggregation policy")
		return &Storage{}, err
	}

	log.Info("adding 1h aggregation policy...")
	if err := t.DB.WithContext(ctx).Exec(addAggregationPolicy1hSQL).Error; err != nil {
		log.Warn("warning: could not add 1h aggregation policy")
		return &Storage{}, err
	}

	return &t, nil
}

// StartStorageEngine creates a goroutine loop to receive readings and send
// them off to TimescaleDB
func (t *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Reading {
	log.Info("starting TimescaleDB storage engine...")
	readingChan := make(chan types.Reading, 10)
	go t.processReadings(ctx, wg, readingChan)
	return readingChan
}

func (t *Storage) processReadings(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.Reading) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-rchan:
			if err := t.StoreReading(r); err != nil {
				log.Error("could not store reading:", err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received. Cancelling readings processor.")
			return
		}
	}
}

// StoreReading stores a reading value in TimescaleDB
func (t *Storage) StoreReading(r types.Reading) error {
	return t.DB.Create(&r).Error
}

// Healthy reports whether the backing connection answers a trivial query.
func (t *Storage) Healthy() bool {
	if t.DB == nil {
		return false
	}
	sqlDB, err := t.DB.DB()
	if err != nil {
		return false
	}
	if err := sqlDB.Ping(); err != nil {
		return false
	}
	var result int
	return t.DB.Raw("SELECT 1").Scan(&result).Error == nil
}
