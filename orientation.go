package imgnorm

import (
	"fmt"
	"io"

	"github.com/rwcarlsen/goexif/exif"
)

// Orientation is the EXIF orientation flag of an image. The values are the
// ones stored in the tag; Undefined means the tag could not be read.
type Orientation int

const (
	Undefined      Orientation = 0
	Normal         Orientation = 1
	FlipHorizontal Orientation = 2
	Rotate180      Orientation = 3
	FlipVertical   Orientation = 4
	Transpose      Orientation = 5
	Rotate90       Orientation = 6
	Transverse     Orientation = 7
	Rotate270      Orientation = 8
)

var orientationNames = map[Orientation]string{
	Undefined:      "undefined",
	Normal:         "normal",
	FlipHorizontal: "flip-horizontal",
	Rotate180:      "rotate-180",
	FlipVertical:   "flip-vertical",
	Transpose:      "transpose",
	Rotate90:       "rotate-90",
	Transverse:     "transverse",
	Rotate270:      "rotate-270",
}

func (o Orientation) String() string {
	if name, ok := orientationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("orientation(%d)", int(o))
}

// Valid reports whether o is a value the EXIF tag can hold.
func (o Orientation) Valid() bool {
	return o >= Undefined && o <= Rotate270
}

// Degrees returns the clockwise rotation that displays an image with
// orientation o upright. Mirrored orientations are not rotated.
func (o Orientation) Degrees() int {
	switch o {
	case Rotate90:
		return 90
	case Rotate180:
		return 180
	case Rotate270:
		return 270
	default:
		return 0
	}
}

// DegreesForOrientation returns o.Degrees().
func DegreesForOrientation(o Orientation) int {
	return o.Degrees()
}

// ReadOrientation reads the EXIF orientation tag from image data in r.
// Missing or unreadable metadata is not an error: it yields Undefined. An
// EXIF block without the tag yields Normal, and any stored value is returned
// as is.
func ReadOrientation(r io.Reader) Orientation {
	x, err := exif.Decode(r)
	if err != nil {
		return Undefined
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return Normal
	}
	v, err := tag.Int(0)
	if err != nil {
		return Undefined
	}
	return Orientation(v)
}

func readOrientation(src Source) (o Orientation) {
	if err := use(src, func(r io.Reader) error {
		o = ReadOrientation(r)
		return nil
	}); err != nil {
		return Undefined
	}
	return
}

// teeOrientation runs fn on r while the EXIF orientation is read from a copy
// of the same bytes, so a single-pass reader yields both.
func teeOrientation(r io.Reader, fn func(io.Reader) error) (Orientation, error) {
	var o Orientation
	pr, pw := io.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		o = ReadOrientation(pr)
		io.Copy(io.Discard, pr)
	}()

	err := fn(io.TeeReader(r, pw))
	pw.Close()
	<-done

	return o, err
}
