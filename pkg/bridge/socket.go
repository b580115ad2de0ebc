package bridge

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/wachiwi/camera-preview/pkg/orientation"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
)

type orientationMessage struct {
	Orientation orientation.Orientation `json:"orientation"`
}

// orientationSocket pushes the current orientation, then every change.
func (s *Server) orientationSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates := make(chan orientation.Orientation, 1)
	remove := s.monitor.AddListener(func(o orientation.Orientation) {
		// Keep only the newest value for slow clients.
		select {
		case updates <- o:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- o:
			default:
			}
		}
	})
	defer remove()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go func() {
		// Reads only detect the close; clients send nothing.
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(o orientation.Orientation) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(orientationMessage{Orientation: o})
	}
	if err := send(s.monitor.Current()); err != nil {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case o := <-updates:
			if err := send(o); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type viewportRequest struct {
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	OrientationType string  `json:"orientationType,omitempty"`
	Angle           *int    `json:"angle,omitempty"`
}

// setViewport resizes the emulated page and re-lays out a running preview.
func (s *Server) setViewport(c *gin.Context) {
	req, err := decode[viewportRequest](c)
	if err != nil {
		writeError(c, err)
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		writeError(c, invalidArgument("viewport width and height must be positive", nil))
		return
	}
	ctx := c.Request.Context()
	s.host.SetViewport(req.Width, req.Height)
	if req.OrientationType != "" || req.Angle != nil {
		s.host.SetOrientation(req.OrientationType, req.Angle)
	}

	resp := gin.H{"orientation": s.adapter.GetOrientation(ctx)}
	if s.adapter.IsRunning() {
		if err := s.adapter.Relayout(ctx); err != nil {
			writeError(c, err)
			return
		}
		bounds, err := s.adapter.GetPreviewSize(ctx)
		if err != nil {
			writeError(c, err)
			return
		}
		resp["bounds"] = bounds
	}
	c.JSON(http.StatusOK, resp)
}
