package preview

import (
	"context"
	"errors"
)

// Flip switches between the front and rear camera. The previous stream is
// stopped first; a failed reacquisition leaves the session without a stream.
func (a *Adapter) Flip(ctx context.Context) error {
	a.mu.Lock()
	if !a.started || a.surface == nil {
		a.mu.Unlock()
		return ErrNotRunning
	}
	surface, old := a.surface, a.stream
	next := PositionFront
	if a.facing == PositionFront {
		next = PositionRear
	}
	a.facing = next
	a.stream = nil
	a.mu.Unlock()

	w, h := trackDims(old)
	stopTracks(old)

	stream, err := a.acquire(ctx, Constraints{FacingMode: facingMode(next), IdealWidth: w, IdealHeight: h})
	if err != nil {
		surface.Attach(nil)
		return wrapError(err, CodeFlipFailed, "failed to flip camera")
	}
	a.rebind(surface, stream, next)
	a.mu.Lock()
	a.deviceID = ""
	if t := firstTrack(stream); t != nil {
		a.deviceID = t.Settings().DeviceID
	}
	a.mu.Unlock()
	if err := surface.Play(ctx); err != nil {
		return wrapError(err, CodeFlipFailed, "failed to resume preview")
	}
	a.logger.InfoContext(ctx, "camera flipped", "position", next)
	return nil
}

// SetDeviceID switches the session to a specific source. The active device
// id is updated before the new stream is confirmed.
func (a *Adapter) SetDeviceID(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return newError(CodeInvalidArgument, "deviceId is required")
	}
	a.mu.Lock()
	if !a.started || a.surface == nil {
		a.mu.Unlock()
		return ErrNotRunning
	}
	surface, old := a.surface, a.stream
	a.deviceID = deviceID
	a.stream = nil
	a.mu.Unlock()

	w, h := trackDims(old)
	stopTracks(old)

	stream, err := a.acquire(ctx, Constraints{DeviceID: deviceID, IdealWidth: w, IdealHeight: h})
	if err != nil {
		surface.Attach(nil)
		return wrapError(err, CodeDeviceSwitchFailed, "failed to switch camera device")
	}

	facing := PositionFront
	if IsRearLabel(a.labelOf(ctx, deviceID)) {
		facing = PositionRear
	}
	a.rebind(surface, stream, facing)
	if err := surface.Play(ctx); err != nil {
		return wrapError(err, CodeDeviceSwitchFailed, "failed to resume preview")
	}
	a.logger.InfoContext(ctx, "camera device switched", "deviceId", deviceID, "position", facing)
	return nil
}

// GetDeviceID returns the active source id, "" when unknown.
func (a *Adapter) GetDeviceID(ctx context.Context) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.deviceID == "" {
		if t := firstTrack(a.stream); t != nil {
			return t.Settings().DeviceID
		}
	}
	return a.deviceID
}

func (a *Adapter) acquire(ctx context.Context, c Constraints) (Stream, error) {
	stream, err := a.media.GetUserMedia(ctx, c)
	if err == nil && stream == nil {
		err = errors.New("no stream returned")
	}
	return stream, err
}

// rebind attaches a replacement stream and applies the mirror rule.
func (a *Adapter) rebind(surface Surface, stream Stream, facing Position) {
	surface.Attach(stream)
	surface.SetMirrored(facing == PositionFront)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.stream = stream
	a.facing = facing
	if t := firstTrack(stream); t != nil {
		if id := t.Settings().DeviceID; id != "" {
			a.deviceID = id
		}
	}
}

func trackDims(s Stream) (int, int) {
	t := firstTrack(s)
	if t == nil {
		return 0, 0
	}
	st := t.Settings()
	return st.Width, st.Height
}
