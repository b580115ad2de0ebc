package camera

import (
	"bytes"
	"errors"
	"io"
)

const (
	readChunkSize = 4096
	// maxFrameSize bounds the frame buffer when no end marker shows up.
	maxFrameSize = 10 * 1024 * 1024
)

// JPEG markers
var (
	soi = []byte{0xFF, 0xD8}
	eoi = []byte{0xFF, 0xD9}
)

// ErrFrameOverflow is returned by Next when a frame exceeds maxFrameSize.
// The scanner resets and can be used again.
var ErrFrameOverflow = errors.New("mjpeg frame buffer overflow")

// FrameScanner splits a raw MJPEG byte stream, as written by rpicam-vid or
// ffmpeg, into individual JPEG images.
type FrameScanner struct {
	r     io.Reader
	buf   []byte
	frame []byte
	err   error
}

func NewFrameScanner(r io.Reader) *FrameScanner {
	return &FrameScanner{r: r, buf: make([]byte, readChunkSize)}
}

// Next returns the next complete JPEG frame. The returned slice is owned by
// the caller.
func (s *FrameScanner) Next() ([]byte, error) {
	for {
		if frame, ok := s.extract(); ok {
			return frame, nil
		}
		if s.err != nil {
			return nil, s.err
		}
		if len(s.frame) > maxFrameSize {
			s.frame = s.frame[:0]
			return nil, ErrFrameOverflow
		}

		n, err := s.r.Read(s.buf)
		s.frame = append(s.frame, s.buf[:n]...)
		// Frames still buffered are returned before the read error.
		s.err = err
	}
}

func (s *FrameScanner) extract() ([]byte, bool) {
	if !bytes.HasPrefix(s.frame, soi) {
		start := bytes.Index(s.frame, soi)
		if start == -1 {
			// Keep a trailing 0xFF in case the marker is split.
			if n := len(s.frame); n > 0 && s.frame[n-1] == 0xFF {
				s.frame = append(s.frame[:0], 0xFF)
			} else {
				s.frame = s.frame[:0]
			}
			return nil, false
		}
		s.frame = append(s.frame[:0], s.frame[start:]...)
	}

	end := bytes.Index(s.frame[len(soi):], eoi)
	if end == -1 {
		return nil, false
	}
	end += len(soi) + len(eoi)

	frame := make([]byte, end)
	copy(frame, s.frame[:end])

	// Whatever follows the end marker starts the next frame.
	s.frame = append(s.frame[:0], s.frame[end:]...)
	return frame, true
}
