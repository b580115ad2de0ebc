package shutter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func audioContext() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: ChannelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		otoCtx, ready, otoErr = oto.NewContext(op)
		if otoErr != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", otoErr)
			return
		}
		<-ready
	})
	return otoCtx, otoErr
}

// Player plays one preloaded sound. Overlapping Play calls are dropped
// while a sound is still playing.
type Player struct {
	pcm    PCM
	logger *slog.Logger

	mu      sync.Mutex
	playing bool
}

// New returns a player for pcm, which must be in the output format.
func New(pcm PCM, logger *slog.Logger) (*Player, error) {
	if pcm.SampleRate != SampleRate || pcm.Channels != ChannelCount {
		return nil, fmt.Errorf("pcm must be %d Hz with %d channels, got %d Hz with %d", SampleRate, ChannelCount, pcm.SampleRate, pcm.Channels)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{pcm: pcm, logger: logger}, nil
}

// Load builds a player from a sound file; the synthesized click when path
// is empty.
func Load(path string, logger *slog.Logger) (*Player, error) {
	if path == "" {
		return New(Click(), logger)
	}
	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sound file: %w", err)
	}
	pcm, err := Decode(path, fileData)
	if err != nil {
		return nil, err
	}
	return New(pcm, logger)
}

// Play blocks until the sound finished or ctx is done.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return nil
	}
	p.playing = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.playing = false
		p.mu.Unlock()
	}()

	otoCtx, err := audioContext()
	if err != nil {
		return err
	}
	player := otoCtx.NewPlayer(bytes.NewReader(p.pcm.Data))
	defer player.Close()
	player.Play()
	p.logger.DebugContext(ctx, "playing shutter sound", "seconds", p.pcm.Duration())

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
