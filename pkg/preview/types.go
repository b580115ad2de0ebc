package preview

// Position selects the camera facing.
type Position string

const (
	PositionRear  Position = "rear"
	PositionFront Position = "front"
)

// GridMode selects the composition grid drawn over the preview.
type GridMode string

const (
	GridNone GridMode = "none"
	Grid3x3  GridMode = "3x3"
	Grid4x4  GridMode = "4x4"
)

// VerticalAlign is applied when the preview is vertically auto-centered.
type VerticalAlign string

const (
	AlignTop    VerticalAlign = "top"
	AlignCenter VerticalAlign = "center"
	AlignBottom VerticalAlign = "bottom"
)

// Options configures Start.
type Options struct {
	Position  Position `json:"position,omitempty"`
	Parent    string   `json:"parent,omitempty"`
	ClassName string   `json:"className,omitempty"`
	ToBack    bool     `json:"toBack,omitempty"`

	Width       float64  `json:"width,omitempty"`
	Height      float64  `json:"height,omitempty"`
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
	AspectRatio string   `json:"aspectRatio,omitempty"`
	// PositioningY applies to auto-centering only.
	PositioningY VerticalAlign `json:"positioning,omitempty"`

	GridMode         GridMode `json:"gridMode,omitempty"`
	InitialZoomLevel *float64 `json:"initialZoomLevel,omitempty"`
}

// Bounds is a rendered box rounded to whole pixels.
type Bounds struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

// ImageFormat selects the capture encoding.
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
)

// CaptureOptions configures Capture and CaptureSample.
type CaptureOptions struct {
	Width   int         `json:"width,omitempty"`
	Height  int         `json:"height,omitempty"`
	Quality *int        `json:"quality,omitempty"`
	Format  ImageFormat `json:"format,omitempty"`
	// Recognized but without effect here.
	SaveToGallery    bool `json:"saveToGallery,omitempty"`
	WithExifLocation bool `json:"withExifLocation,omitempty"`
}

// CaptureResult holds a base64 image without data-url prefix.
type CaptureResult struct {
	Value string         `json:"value"`
	Exif  map[string]any `json:"exif"`
}

// LensType classifies a physical lens.
type LensType string

const (
	LensUltraWide LensType = "ultraWide"
	LensWideAngle LensType = "wideAngle"
	LensTelephoto LensType = "telephoto"
	LensTrueDepth LensType = "trueDepth"
	LensDual      LensType = "dual"
	LensDualWide  LensType = "dualWide"
	LensTriple    LensType = "triple"
)

// CameraLens is one physical lens of a device.
type CameraLens struct {
	Label         string   `json:"label"`
	DeviceType    LensType `json:"deviceType"`
	FocalLength   float64  `json:"focalLength"`
	BaseZoomRatio float64  `json:"baseZoomRatio"`
	MinZoom       float64  `json:"minZoom"`
	MaxZoom       float64  `json:"maxZoom"`
}

// CameraDevice is a logical camera backed by one or more lenses.
type CameraDevice struct {
	DeviceID  string       `json:"deviceId"`
	Label     string       `json:"label"`
	Position  Position     `json:"position"`
	Lenses    []CameraLens `json:"lenses"`
	IsLogical bool         `json:"isLogical"`
	MinZoom   float64      `json:"minZoom"`
	MaxZoom   float64      `json:"maxZoom"`
}

// LensInfo is a snapshot of the active lens and its digital zoom.
type LensInfo struct {
	FocalLength   float64  `json:"focalLength"`
	DeviceType    LensType `json:"deviceType"`
	BaseZoomRatio float64  `json:"baseZoomRatio"`
	DigitalZoom   float64  `json:"digitalZoom"`
}

// ZoomState is returned by GetZoom.
type ZoomState struct {
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Current float64  `json:"current"`
	Lens    LensInfo `json:"lens"`
}

// ZoomOptions configures SetZoom. Ramp and AutoFocus have no effect here.
type ZoomOptions struct {
	Level     float64 `json:"level"`
	Ramp      bool    `json:"ramp,omitempty"`
	AutoFocus bool    `json:"autoFocus,omitempty"`
}

// AspectRatioOptions configures SetAspectRatio.
type AspectRatioOptions struct {
	AspectRatio string   `json:"aspectRatio"`
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
}

// PreviewSize is the raw preview box.
type PreviewSize struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FlashMode is a torch/flash setting.
type FlashMode string

const (
	FlashOff   FlashMode = "off"
	FlashOn    FlashMode = "on"
	FlashAuto  FlashMode = "auto"
	FlashTorch FlashMode = "torch"
)

// PictureSize is a supported capture resolution.
type PictureSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ExposureMode names an exposure strategy.
type ExposureMode string
