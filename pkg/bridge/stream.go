package bridge

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wachiwi/camera-preview/pkg/preview"
)

const streamQuality = 80

// stream serves the live preview as multipart MJPEG until the client goes
// away or the session stops.
func (s *Server) stream(c *gin.Context) {
	if !s.adapter.IsRunning() {
		writeError(c, preview.ErrNotRunning)
		return
	}

	c.Header("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	w := c.Writer
	flusher, ok := w.(http.Flusher)
	if !ok {
		c.String(http.StatusInternalServerError, "Streaming not supported")
		return
	}

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			frame, err := s.adapter.PreviewJPEG(streamQuality)
			if errors.Is(err, preview.ErrNotRunning) {
				return
			}
			if err != nil {
				s.logger.Warn("Failed to encode preview frame", "error", err)
				continue
			}
			if frame == nil {
				continue
			}

			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame))
			if _, err := w.Write(frame); err != nil {
				return
			}
			fmt.Fprintf(w, "\r\n")
			flusher.Flush()
		}
	}
}
