// Package sensors defines the boundary to UV irradiance sources.
package sensors

import "context"

// UVSource is an irradiance source that yields unitless UV index samples.
// ReadUVIndex has no distinct fault channel beyond the error: on a sensor
// fault the driver may return a negative sentinel value with a nil error,
// and the dose accumulator's floor substitution is the only defense.
type UVSource interface {
	// Init connects to the source and pushes its startup configuration.
	Init(ctx context.Context) error
	// ReadUVIndex returns the current UV index sample.
	ReadUVIndex() (float64, error)
	SourceName() string
	Close() error
}
