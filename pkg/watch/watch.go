// Package watch periodically re-enumerates cameras and reports devices that
// appeared or disappeared since the previous run.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"

	"github.com/wachiwi/camera-preview/pkg/logger"
	"github.com/wachiwi/camera-preview/pkg/preview"
)

const checkTimeout = 10 * time.Second

// Change is the result of one enumeration pass.
type Change struct {
	Added   []preview.DeviceInfo
	Removed []preview.DeviceInfo
}

func (c Change) Empty() bool { return len(c.Added) == 0 && len(c.Removed) == 0 }

// Watcher keeps the last seen set of video inputs.
type Watcher struct {
	enum   preview.DeviceEnumerator
	logger *slog.Logger

	devices prometheus.Gauge
	changes *prometheus.CounterVec
	errors  prometheus.Counter

	mu     sync.Mutex
	known  map[string]preview.DeviceInfo
	primed bool

	cron *cron.Cron
}

// New registers the watcher metrics on reg.
func New(enum preview.DeviceEnumerator, reg prometheus.Registerer, l *slog.Logger) *Watcher {
	if l == nil {
		l = slog.Default()
	}
	f := promauto.With(reg)
	return &Watcher{
		enum:   enum,
		logger: l,
		devices: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "camera_preview",
			Subsystem: "devices",
			Name:      "video_inputs",
			Help:      "Number of video input devices seen by the last enumeration",
		}),
		changes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "camera_preview",
			Subsystem: "devices",
			Name:      "changes_total",
			Help:      "Video inputs that appeared or disappeared",
		}, []string{"change"}),
		errors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "camera_preview",
			Subsystem: "devices",
			Name:      "enumeration_errors_total",
			Help:      "Failed device enumerations",
		}),
		known: make(map[string]preview.DeviceInfo),
	}
}

// Check enumerates once and diffs against the previous pass. The first pass
// only primes the known set and reports no change.
func (w *Watcher) Check(ctx context.Context) (Change, error) {
	infos, err := w.enum.EnumerateDevices(ctx)
	if err != nil {
		w.errors.Inc()
		return Change{}, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	current := make(map[string]preview.DeviceInfo)
	for _, info := range infos {
		if info.Kind == preview.KindVideoInput {
			current[info.DeviceID] = info
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var change Change
	if w.primed {
		for id, info := range current {
			if _, ok := w.known[id]; !ok {
				change.Added = append(change.Added, info)
			}
		}
		for id, info := range w.known {
			if _, ok := current[id]; !ok {
				change.Removed = append(change.Removed, info)
			}
		}
	}
	sortInfos(change.Added)
	sortInfos(change.Removed)

	w.known = current
	w.primed = true
	w.devices.Set(float64(len(current)))
	w.changes.WithLabelValues("added").Add(float64(len(change.Added)))
	w.changes.WithLabelValues("removed").Add(float64(len(change.Removed)))
	return change, nil
}

// Known returns the video inputs of the last successful pass.
func (w *Watcher) Known() []preview.DeviceInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]preview.DeviceInfo, 0, len(w.known))
	for _, info := range w.known {
		out = append(out, info)
	}
	sortInfos(out)
	return out
}

func (w *Watcher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	change, err := w.Check(ctx)
	if err != nil {
		w.logger.Warn("Device check failed", "error", err)
		return
	}
	for _, d := range change.Added {
		w.logger.Info("Camera connected", "deviceId", d.DeviceID, "label", d.Label)
	}
	for _, d := range change.Removed {
		w.logger.Info("Camera disconnected", "deviceId", d.DeviceID, "label", d.Label)
	}
}

// Start primes the device set and schedules further checks. schedule is a cron
// expression or descriptor such as "@every 30s".
func (w *Watcher) Start(schedule string, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	cl := &logger.CronLogger{Logger: w.logger}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(schedule, w.run); err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", schedule, err)
	}
	w.run()
	c.Start()
	w.cron = c
	w.logger.Info("Device watch started", "schedule", schedule)
	return nil
}

// Stop halts scheduling and waits for a running check.
func (w *Watcher) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
	w.cron = nil
}

func sortInfos(infos []preview.DeviceInfo) {
	sort.Slice(infos, func(i, j int) bool { return infos[i].DeviceID < infos[j].DeviceID })
}
