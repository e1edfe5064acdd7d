package capture

import (
	"context"
	"errors"
)

// ErrSourceClosed is reported by a Source that is read after Close.
var ErrSourceClosed = errors.New("capture source closed")

// Source provides single pass iteration over the beacon frames of one capture.
// It is finite and cannot be restarted; re-open the capture to read it again.
type Source interface {
	// Next advances to the next frame and returns true if there is one, false
	// when the capture is exhausted or an error occurred.
	Next(context.Context) bool

	// Current returns the frame read by the last successful call to Next.
	Current() Frame

	// Error returns the error that stopped iteration, if any. End of capture is
	// not an error.
	Error() error

	// Close releases the resources held by the source. It is safe to call Close
	// multiple times.
	Close() error
}

// SliceSource is an in-memory Source over a fixed list of frames.
type SliceSource struct {
	frames []Frame
	pos    int
	closed bool
	err    error
}

// NewSliceSource returns a Source that yields frames in order.
func NewSliceSource(frames ...Frame) *SliceSource {
	return &SliceSource{frames: frames, pos: -1}
}

func (s *SliceSource) Next(ctx context.Context) bool {
	if s.err != nil {
		return false
	}
	if s.closed {
		s.err = ErrSourceClosed
		return false
	}
	if err := ctx.Err(); err != nil {
		s.err = err
		return false
	}
	if s.pos+1 >= len(s.frames) {
		s.pos = len(s.frames)
		return false
	}
	s.pos++
	return true
}

func (s *SliceSource) Current() Frame {
	if s.pos < 0 || s.pos >= len(s.frames) {
		return nil
	}
	return s.frames[s.pos]
}

func (s *SliceSource) Error() error {
	return s.err
}

func (s *SliceSource) Close() error {
	s.closed = true
	return nil
}
