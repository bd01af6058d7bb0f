package monitor

import (
	"sort"
	"sync"

	"github.com/uvmon/uvmon/internal/types"
)

// Status holds the latest reading per device for the REST surface.
type Status struct {
	mu     sync.RWMutex
	latest map[string]types.Reading
}

func NewStatus() *Status {
	return &Status{latest: make(map[string]types.Reading)}
}

func (s *Status) Update(r types.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[r.DeviceName] = r
}

// Latest returns the most recent reading for a device.
func (s *Status) Latest(device string) (types.Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.latest[device]
	return r, ok
}

// All returns the latest readings for every device, ordered by device name.
func (s *Status) All() []types.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Reading, 0, len(s.latest))
	for _, r := range s.latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceName < out[j].DeviceName })
	return out
}
