package imgnorm

import (
	"bytes"
	"io"
	"os"
	"sync"
)

// Source is where the encoded image bytes come from.
//
// File and Bytes sources can be opened any number of times, so the bounds
// pass, the orientation read and the pixel decode each get their own reader.
// A Stream source can be opened exactly once and everything is read from
// that single pass.
type Source interface {
	open() (io.ReadCloser, error)
	reusable() bool
	String() string
}

// File returns a Source reading from the named file.
func File(path string) Source { return fileSource(path) }

// Bytes returns a Source reading from b. The slice is not copied.
func Bytes(b []byte) Source { return bufferSource(b) }

// Stream returns a single-pass Source reading from r.
// If r is an io.Closer it is closed once the image has been read.
func Stream(r io.Reader) Source { return &streamSource{r: r} }

type fileSource string

func (s fileSource) open() (io.ReadCloser, error) { return os.Open(string(s)) }
func (fileSource) reusable() bool { return true }
func (s fileSource) String() string { return string(s) }

type bufferSource []byte

func (s bufferSource) open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s)), nil
}
func (bufferSource) reusable() bool { return true }
func (bufferSource) String() string { return "buffer" }

type streamSource struct {
	mu     sync.Mutex
	r      io.Reader
	opened bool
}

func (s *streamSource) open() (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opened {
		return nil, ErrSourceConsumed
	}
	s.opened = true

	if rc, ok := s.r.(io.ReadCloser); ok {
		return rc, nil
	}
	return io.NopCloser(s.r), nil
}
func (*streamSource) reusable() bool { return false }
func (*streamSource) String() string { return "stream" }

// use opens src, hands the reader to fn and always closes it again.
func use(src Source, fn func(io.Reader) error) (err error) {
	rc, err := src.open()
	if err != nil {
		return unreadable(err)
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil && err == nil {
			err = unreadable(cerr)
		}
	}()

	return fn(rc)
}
