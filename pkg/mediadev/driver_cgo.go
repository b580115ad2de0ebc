//go:build cgo

package mediadev

// Registers the camera driver; it needs cgo on every platform.
import _ "github.com/pion/mediadevices/pkg/driver/camera"
