package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wachiwi/camera-preview/pkg/headless"
	"github.com/wachiwi/camera-preview/pkg/orientation"
	"github.com/wachiwi/camera-preview/pkg/preview"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	server  *Server
	host    *headless.Host
	devices *headless.Devices
	adapter *preview.Adapter
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	host := headless.NewHost(400, 800)
	devices := headless.NewDevices()
	monitor := orientation.NewMonitor(host)
	adapter := preview.New(devices, host, preview.WithOrientation(monitor))
	t.Cleanup(func() {
		adapter.Stop(context.Background())
		monitor.Close()
	})

	base := []Option{
		WithHostControl(host),
		WithOrientation(monitor),
		WithStreamInterval(10 * time.Millisecond),
	}
	return &fixture{
		server:  New(adapter, append(base, opts...)...),
		host:    host,
		devices: devices,
		adapter: adapter,
	}
}

func (f *fixture) post(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func (f *fixture) call(t *testing.T, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	return f.post(t, "/api/camera/"+method, body)
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestStartStop(t *testing.T) {
	f := newFixture(t)

	w := f.call(t, "start", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	bounds := decodeBody[preview.Bounds](t, w)
	assert.Equal(t, preview.Bounds{Width: 400, Height: 300, X: 0, Y: 250}, bounds)

	w = f.call(t, "isRunning", "")
	assert.JSONEq(t, `{"isRunning":true}`, w.Body.String())

	w = f.call(t, "getGridMode", "")
	assert.JSONEq(t, `{"gridMode":"none"}`, w.Body.String())

	w = f.call(t, "stop", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
	assert.False(t, f.adapter.IsRunning())
}

func TestCallErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		body   string
		status int
		code   string
	}{
		{"not running", "flip", "", http.StatusConflict, "NOT_RUNNING"},
		{"exposure", "getExposureModes", "", http.StatusNotImplemented, "UNSUPPORTED"},
		{"recording", "startRecordVideo", "", http.StatusNotImplemented, "UNSUPPORTED"},
		{"missing focus point", "setFocus", `{"x":0.5}`, http.StatusBadRequest, "INVALID_FOCUS_COORDINATES"},
		{"conflicting size", "start", `{"aspectRatio":"4:3","width":100}`, http.StatusBadRequest, "CONFLICTING_SIZE_SPEC"},
		{"unknown parent", "start", `{"parent":"nope"}`, http.StatusNotFound, "CONTAINER_NOT_FOUND"},
		{"broken json", "setZoom", `{"level":`, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"unknown method", "selfDestruct", "", http.StatusNotFound, "UNKNOWN_METHOD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.call(t, tt.method, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			body := decodeBody[errorBody](t, w)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestStartAcquisitionFailureIsBadGateway(t *testing.T) {
	f := newFixture(t)
	f.devices.FailWith(errors.New("camera busy"))

	w := f.call(t, "start", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "STREAM_ACQUISITION_FAILED", decodeBody[errorBody](t, w).Code)
}

func TestStatusOfForeignError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusOf(errors.New("boom")))
	assert.Equal(t, http.StatusBadGateway, statusOf(&preview.Error{Code: preview.CodeZoomApplyFailed}))
	assert.Equal(t, http.StatusNotImplemented, statusOf(preview.ErrZoomUnsupported))
}

func TestCaptureAndDevices(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.call(t, "start", "").Code)

	w := f.call(t, "capture", `{"quality":70}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decodeBody[preview.CaptureResult](t, w)
	assert.NotEmpty(t, res.Value)
	assert.NotNil(t, res.Exif)

	w = f.call(t, "getAvailableDevices", "")
	require.Equal(t, http.StatusOK, w.Code)
	devices := decodeBody[struct {
		Devices []preview.CameraDevice `json:"devices"`
	}](t, w)
	require.Len(t, devices.Devices, 2)
	assert.Equal(t, preview.PositionRear, devices.Devices[0].Position)

	w = f.call(t, "setZoom", `{"level":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	zoom := decodeBody[preview.ZoomState](t, f.call(t, "getZoom", ""))
	assert.Equal(t, 2.0, zoom.Current)
}

func TestMetricsCountCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := newFixture(t, WithRegistry(reg))
	f.call(t, "flip", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `camera_preview_bridge_calls_total{code="NOT_RUNNING",method="flip"} 1`)
}

func TestDegradationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDegradationMetrics(reg)
	m.Degraded(context.Background(), "focus", errors.New("no focus"))
	m.Degraded(context.Background(), "focus", errors.New("no focus"))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "camera_preview_adapter_degraded_total", families[0].GetName())
	assert.Equal(t, 2.0, families[0].GetMetric()[0].GetCounter().GetValue())
}

func TestStream(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/camera/stream", nil)
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	require.Equal(t, http.StatusOK, f.call(t, "start", "").Code)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req = httptest.NewRequest(http.MethodGet, "/api/camera/stream", nil).WithContext(ctx)
	w = httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)

	assert.Equal(t, "multipart/x-mixed-replace; boundary=frame", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "--frame\r\n")
	assert.Contains(t, body, "Content-Type: image/jpeg\r\n")
}

func TestViewportRelayout(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.call(t, "start", "").Code)

	w := f.post(t, "/api/host/viewport", `{"width":400,"height":1000}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[struct {
		Orientation orientation.Orientation `json:"orientation"`
		Bounds      preview.Bounds          `json:"bounds"`
	}](t, w)
	assert.Equal(t, orientation.Portrait, resp.Orientation)
	assert.Equal(t, 350, resp.Bounds.Y)

	w = f.post(t, "/api/host/viewport", `{"width":0,"height":10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrientationSocket(t *testing.T) {
	f := newFixture(t)
	ts := httptest.NewServer(f.server.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/orientation/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg orientationMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, orientation.Portrait, msg.Orientation)

	resp, err := http.Post(ts.URL+"/api/host/viewport", "application/json",
		bytes.NewBufferString(`{"width":800,"height":400}`))
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, orientation.LandscapeRight, msg.Orientation)
}

func TestLoginRequired(t *testing.T) {
	f := newFixture(t, WithCredentials(Credentials{
		Username:      "admin",
		Password:      "hunter2",
		SessionSecret: "0123456789abcdef0123456789abcdef",
	}))
	ts := httptest.NewServer(f.server.Handler())
	defer ts.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	callIsRunning := func() int {
		resp, err := client.Post(ts.URL+"/api/camera/isRunning", "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, callIsRunning())

	resp, err := client.PostForm(ts.URL+"/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = client.PostForm(ts.URL+"/login", url.Values{"username": {"admin"}, "password": {"hunter2"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.StatusOK, callIsRunning())

	resp, err = client.Post(ts.URL+"/logout", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, callIsRunning())
}

func TestOrientationSocketOriginWithLogin(t *testing.T) {
	f := newFixture(t, WithCredentials(Credentials{
		Username:      "admin",
		Password:      "hunter2",
		SessionSecret: "0123456789abcdef0123456789abcdef",
	}))
	ts := httptest.NewServer(f.server.Handler())
	defer ts.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}
	resp, err := client.PostForm(ts.URL+"/login", url.Values{"username": {"admin"}, "password": {"hunter2"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/orientation/ws"
	dialer := websocket.Dialer{Jar: jar}

	_, resp, err = dialer.Dial(wsURL, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dialer.Dial(wsURL, http.Header{"Origin": {ts.URL}})
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg orientationMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, orientation.Portrait, msg.Orientation)
}
