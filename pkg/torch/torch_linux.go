//go:build linux

package torch

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/warthog618/go-gpiocdev"
	"github.com/warthog618/go-gpiocdev/device/rpi"
)

// GPIO is an LED torch on a GPIO output line.
type GPIO struct {
	mu   sync.Mutex
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// Open requests pin on chipName as an output, initially off.
func Open(chipName string, pin int) (*GPIO, error) {
	if pin < rpi.GPIO2 || pin > rpi.GPIO27 {
		return nil, fmt.Errorf("gpio pin %d is not a header pin", pin)
	}
	c, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("failed to open chip: %w", err)
	}
	line, err := c.RequestLine(pin, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("camera-torch"))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to request gpio %d: %w", pin, err)
	}
	slog.Info("Torch ready", "chip", chipName, "pin", pin)
	return &GPIO{chip: c, line: line}, nil
}

func (g *GPIO) SetTorch(on bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := 0
	if on {
		v = 1
	}
	return g.line.SetValue(v)
}

// Close switches the light off and releases the line.
func (g *GPIO) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_ = g.line.SetValue(0)
	if err := g.line.Close(); err != nil {
		return err
	}
	return g.chip.Close()
}
