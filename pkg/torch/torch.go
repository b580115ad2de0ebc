// Package torch drives an external light used as camera flash when the
// camera itself has no torch, e.g. an LED on a Raspberry Pi GPIO pin.
package torch

import (
	"log/slog"
	"sync"
)

// DefaultPin is the BCM GPIO offset the LED is wired to by default.
const DefaultPin = 17

// Mock is a torch without hardware. It logs and remembers its state.
type Mock struct {
	mu     sync.Mutex
	on     bool
	logger *slog.Logger
}

func NewMock(logger *slog.Logger) *Mock {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mock{logger: logger}
}

func (m *Mock) SetTorch(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.on = on
	m.logger.Info("[MOCK] Torch switched", "on", on)
	return nil
}

// On reports the last state set.
func (m *Mock) On() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.on
}

func (m *Mock) Close() error { return nil }
