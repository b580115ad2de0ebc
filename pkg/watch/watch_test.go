package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/wachiwi/camera-preview/pkg/preview"
)

type fakeEnumerator struct {
	mu    sync.Mutex
	infos []preview.DeviceInfo
	err   error
	calls int
}

func (f *fakeEnumerator) set(infos ...preview.DeviceInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infos = infos
}

func (f *fakeEnumerator) EnumerateDevices(ctx context.Context) ([]preview.DeviceInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return append([]preview.DeviceInfo(nil), f.infos...), f.err
}

func video(id, label string) preview.DeviceInfo {
	return preview.DeviceInfo{DeviceID: id, Label: label, Kind: preview.KindVideoInput}
}

func TestCheckReportsChanges(t *testing.T) {
	enum := &fakeEnumerator{}
	enum.set(
		video("back", "Back Camera"),
		preview.DeviceInfo{DeviceID: "mic", Kind: preview.KindAudioInput},
	)
	w := New(enum, prometheus.NewRegistry(), nil)
	ctx := context.Background()

	change, err := w.Check(ctx)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !change.Empty() {
		t.Errorf("first pass must only prime, got %+v", change)
	}
	if got := testutil.ToFloat64(w.devices); got != 1 {
		t.Errorf("device gauge = %v, want 1", got)
	}

	enum.set(video("front", "Front Camera"))
	change, err = w.Check(ctx)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(change.Added) != 1 || change.Added[0].DeviceID != "front" {
		t.Errorf("added = %+v", change.Added)
	}
	if len(change.Removed) != 1 || change.Removed[0].DeviceID != "back" {
		t.Errorf("removed = %+v", change.Removed)
	}
	if got := testutil.ToFloat64(w.changes.WithLabelValues("added")); got != 1 {
		t.Errorf("added counter = %v", got)
	}
	if known := w.Known(); len(known) != 1 || known[0].DeviceID != "front" {
		t.Errorf("known = %+v", known)
	}
}

func TestCheckErrorKeepsKnownSet(t *testing.T) {
	enum := &fakeEnumerator{}
	enum.set(video("back", "Back Camera"))
	w := New(enum, prometheus.NewRegistry(), nil)
	if _, err := w.Check(context.Background()); err != nil {
		t.Fatal(err)
	}

	enum.err = errors.New("permission denied")
	if _, err := w.Check(context.Background()); err == nil {
		t.Fatal("expected enumeration error")
	}
	if got := testutil.ToFloat64(w.errors); got != 1 {
		t.Errorf("error counter = %v", got)
	}
	if len(w.Known()) != 1 {
		t.Error("failed pass must not clear known devices")
	}
}

func TestStartRunsImmediately(t *testing.T) {
	enum := &fakeEnumerator{}
	enum.set(video("back", "Back Camera"))
	w := New(enum, prometheus.NewRegistry(), nil)

	if err := w.Start("@every 1h", time.UTC); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	enum.mu.Lock()
	calls := enum.calls
	enum.mu.Unlock()
	if calls != 1 {
		t.Errorf("enumerations = %d, want 1", calls)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	w := New(&fakeEnumerator{}, prometheus.NewRegistry(), nil)
	if err := w.Start("every now and then", nil); err == nil {
		t.Fatal("expected schedule error")
	}
	w.Stop()
}
