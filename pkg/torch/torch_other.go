//go:build !linux

package torch

import (
	"log/slog"
)

// Open returns a Mock; there is no GPIO character device here.
func Open(chipName string, pin int) (*Mock, error) {
	slog.Info("[MOCK] Initializing torch without GPIO", "chip", chipName, "pin", pin)
	return NewMock(nil), nil
}
