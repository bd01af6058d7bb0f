// Package storage defines the interface implemented by dose reading storage
// backends.
package storage

import (
	"context"
	"sync"

	"github.com/uvmon/uvmon/internal/types"
)

// StorageEngineInterface is the standardized entry point for storage
// backends. StartStorageEngine launches the engine's receive loop and
// returns the channel the reading distributor fans out to.
type StorageEngineInterface interface {
	StartStorageEngine(context.Context, *sync.WaitGroup) chan<- types.Reading
}
