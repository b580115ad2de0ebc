package preview

import (
	"context"
	"math"
	"strings"
)

// placeholderFocalLength is reported for every lens; optical metadata is not
// available through the capture API.
const placeholderFocalLength = 4.25

// ClassifyLens derives lens data from a human-readable device label.
func ClassifyLens(label string) CameraLens {
	l := strings.ToLower(label)
	lens := CameraLens{
		Label:         label,
		DeviceType:    LensWideAngle,
		FocalLength:   placeholderFocalLength,
		BaseZoomRatio: 1.0,
		MinZoom:       1.0,
		MaxZoom:       1.0,
	}
	switch {
	case containsAny(l, "ultra", "0.5"):
		lens.DeviceType = LensUltraWide
		lens.BaseZoomRatio = 0.5
	case containsAny(l, "telephoto", "tele", "2x", "3x"):
		lens.DeviceType = LensTelephoto
		lens.BaseZoomRatio = 2.0
	case containsAny(l, "depth", "truedepth"):
		lens.DeviceType = LensTrueDepth
	}
	return lens
}

// IsRearLabel reports whether a label names a rear-facing camera.
func IsRearLabel(label string) bool {
	return containsAny(strings.ToLower(label), "back", "rear")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// GroupDevices folds video inputs into at most one rear and one front
// logical device.
func GroupDevices(infos []DeviceInfo) []CameraDevice {
	var rear, front []DeviceInfo
	for _, info := range infos {
		if info.Kind != KindVideoInput {
			continue
		}
		if IsRearLabel(info.Label) {
			rear = append(rear, info)
		} else {
			front = append(front, info)
		}
	}

	var devices []CameraDevice
	if d, ok := logicalDevice(rear, PositionRear, "Back Camera"); ok {
		devices = append(devices, d)
	}
	if d, ok := logicalDevice(front, PositionFront, "Front Camera"); ok {
		devices = append(devices, d)
	}
	return devices
}

func logicalDevice(members []DeviceInfo, pos Position, label string) (CameraDevice, bool) {
	if len(members) == 0 {
		return CameraDevice{}, false
	}
	d := CameraDevice{
		DeviceID:  members[0].DeviceID,
		Label:     label,
		Position:  pos,
		IsLogical: len(members) > 1,
		MinZoom:   math.Inf(1),
		MaxZoom:   math.Inf(-1),
	}
	for _, m := range members {
		lens := ClassifyLens(m.Label)
		d.Lenses = append(d.Lenses, lens)
		d.MinZoom = math.Min(d.MinZoom, lens.MinZoom)
		d.MaxZoom = math.Max(d.MaxZoom, lens.MaxZoom)
	}
	return d, true
}

// GetAvailableDevices enumerates the platform's cameras.
func (a *Adapter) GetAvailableDevices(ctx context.Context) ([]CameraDevice, error) {
	infos, err := a.enumerate(ctx)
	if err != nil {
		return nil, err
	}
	return GroupDevices(infos), nil
}

func (a *Adapter) enumerate(ctx context.Context) ([]DeviceInfo, error) {
	en, ok := a.media.(DeviceEnumerator)
	if !ok {
		return nil, unsupported("device enumeration")
	}
	infos, err := en.EnumerateDevices(ctx)
	if err != nil {
		return nil, wrapError(err, CodeEnumerationFailed, "device enumeration failed")
	}
	return infos, nil
}

// labelOf looks up the label of a device id; "" when unknown.
func (a *Adapter) labelOf(ctx context.Context, deviceID string) string {
	if deviceID == "" {
		return ""
	}
	infos, err := a.enumerate(ctx)
	if err != nil {
		a.logger.DebugContext(ctx, "device label lookup failed", "deviceId", deviceID, "error", err)
		return ""
	}
	for _, info := range infos {
		if info.DeviceID == deviceID {
			return info.Label
		}
	}
	return ""
}
