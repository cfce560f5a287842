package imgnorm

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrSourceUnreadable is returned when the image bytes could not be opened or read.
	// The underlying I/O error is wrapped and can be inspected with errors.Is and errors.As.
	ErrSourceUnreadable = errors.New("imgnorm: source unreadable")
	// ErrDecodeFailed is returned when the bytes are not a supported image or are corrupt.
	ErrDecodeFailed = errors.New("imgnorm: decode failed")
	// ErrSourceConsumed is returned when a single-pass stream is opened a second time.
	ErrSourceConsumed = errors.New("imgnorm: stream source already consumed")
	// ErrInvalidTarget is returned for a target width that is not positive.
	ErrInvalidTarget = errors.New("imgnorm: target width must be positive")
)

func unreadable(err error) error {
	if errors.Is(err, ErrSourceConsumed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
}

// readRecorder remembers the first read error that is not io.EOF.
// Image decoders report a failed read as a format error, so this is the
// only way to tell an I/O failure apart from bad data.
type readRecorder struct {
	r   io.Reader
	err error
}

func (r *readRecorder) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF && r.err == nil {
		r.err = err
	}
	return n, err
}

func (r *readRecorder) fail(err error) error {
	if r.err != nil {
		return unreadable(r.err)
	}
	return fmt.Errorf("%w: %w", ErrDecodeFailed, err)
}
