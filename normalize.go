package imgnorm

import (
	"bufio"
	"image"
	_ "image/gif"  // decode gif format
	_ "image/jpeg" // decode jpeg format
	_ "image/png"  // decode png format
	"io"

	_ "github.com/sunshineplan/tiff" // decode tiff format
	_ "golang.org/x/image/bmp"       // decode bmp format
	_ "golang.org/x/image/webp"      // decode webp format
)

// decodeBufferSize is the read buffer handed to the image decoders.
const decodeBufferSize = 16 << 10

type config struct {
	orientation    *Orientation
	orientationSrc Source
	canvas         CanvasMode
	parity         bool
	subsample      bool
}

var defaultConfig = config{
	canvas:    FitCanvas,
	subsample: true,
}

// Option sets an optional parameter for the Normalize functions.
type Option func(*config)

// WithOrientation returns an Option that uses o instead of reading the
// orientation from the image metadata.
func WithOrientation(o Orientation) Option {
	return func(c *config) {
		c.orientation = &o
		c.orientationSrc = nil
	}
}

// OrientationFrom returns an Option that reads the orientation from src
// instead of the image source, e.g. the file a stream was copied from.
func OrientationFrom(src Source) Option {
	return func(c *config) {
		c.orientation = nil
		c.orientationSrc = src
	}
}

// Canvas returns an Option that sets the output canvas mode. Default is FitCanvas.
func Canvas(mode CanvasMode) Option {
	return func(c *config) {
		c.canvas = mode
	}
}

// ParityTarget returns an Option that plans subsampling against the reported
// image bounds instead of the target width, which never subsamples.
func ParityTarget(enabled bool) Option {
	return func(c *config) {
		c.parity = enabled
	}
}

// Subsample returns an Option that turns decode subsampling on or off.
// By default it's enabled.
func Subsample(enabled bool) Option {
	return func(c *config) {
		c.subsample = enabled
	}
}

func newConfig(opts []Option) config {
	cfg := defaultConfig
	for _, option := range opts {
		option(&cfg)
	}
	return cfg
}

// Info describes what Normalize would do with a source.
type Info struct {
	Format      string
	Dimensions  Dimensions
	Orientation Orientation
	Factor      int
	Plan        Plan
}

// Normalize decodes the image in src, shrinks it to fit the pixel budget for
// targetWidth, corrects its EXIF orientation and scales it to targetWidth when
// it is wider. The transform is planned on the reported bounds, so a reduced
// decode yields the same output size as a full one.
//
// Every reader opened from src is closed before Normalize returns.
func Normalize(src Source, targetWidth int, opts ...Option) (*image.NRGBA, error) {
	if targetWidth <= 0 {
		return nil, ErrInvalidTarget
	}
	cfg := newConfig(opts)

	var (
		img    image.Image
		d      Dimensions
		orient Orientation
		err    error
	)
	if src.reusable() {
		if d, _, err = decodeBounds(src); err != nil {
			return nil, err
		}
		orient = cfg.resolveOrientation(src)
		if img, err = decodeImage(src); err != nil {
			return nil, err
		}
	} else {
		if img, orient, err = decodeOnce(src, cfg); err != nil {
			return nil, err
		}
		b := img.Bounds()
		d = Dimensions{b.Dx(), b.Dy()}
	}
	img = subsample(img, cfg.factor(d, targetWidth))

	return Render(img, NewPlan(orient, d.Width, d.Height, targetWidth, cfg.canvas)), nil
}

// NormalizeFile normalizes the image stored in the named file. The
// orientation is read from the same file.
func NormalizeFile(path string, targetWidth int, opts ...Option) (*image.NRGBA, error) {
	return Normalize(File(path), targetWidth, opts...)
}

// NormalizeBytes normalizes the encoded image in b.
func NormalizeBytes(b []byte, targetWidth int, opts ...Option) (*image.NRGBA, error) {
	return Normalize(Bytes(b), targetWidth, opts...)
}

// NormalizeStream normalizes the image read from r in a single pass. Unless an
// orientation Option is given the orientation is read from the same bytes.
// If r is an io.Closer it is closed before NormalizeStream returns.
func NormalizeStream(r io.Reader, targetWidth int, opts ...Option) (*image.NRGBA, error) {
	return Normalize(Stream(r), targetWidth, opts...)
}

// Inspect reads the bounds and orientation of the image in src and returns
// the subsample factor and plan Normalize would use, without decoding any pixels.
// A Stream source is consumed by Inspect.
func Inspect(src Source, targetWidth int, opts ...Option) (Info, error) {
	if targetWidth <= 0 {
		return Info{}, ErrInvalidTarget
	}
	cfg := newConfig(opts)

	var info Info
	var err error
	if src.reusable() {
		if info.Dimensions, info.Format, err = decodeBounds(src); err != nil {
			return Info{}, err
		}
		info.Orientation = cfg.resolveOrientation(src)
	} else {
		err = use(src, func(r io.Reader) error {
			fn := func(r io.Reader) (err error) {
				info.Dimensions, info.Format, err = boundsFrom(r)
				return
			}
			if cfg.fixed() {
				info.Orientation = cfg.resolveOrientation(nil)
				return fn(r)
			}
			info.Orientation, err = teeOrientation(r, fn)
			return err
		})
		if err != nil {
			return Info{}, err
		}
	}

	info.Factor = cfg.factor(info.Dimensions, targetWidth)
	info.Plan = NewPlan(info.Orientation, info.Dimensions.Width, info.Dimensions.Height, targetWidth, cfg.canvas)

	return info, nil
}

func (c config) fixed() bool {
	return c.orientation != nil || c.orientationSrc != nil
}

func (c config) resolveOrientation(src Source) Orientation {
	switch {
	case c.orientation != nil:
		return *c.orientation
	case c.orientationSrc != nil:
		return readOrientation(c.orientationSrc)
	case src != nil:
		return readOrientation(src)
	default:
		return Undefined
	}
}

func (c config) factor(d Dimensions, targetWidth int) int {
	if !c.subsample {
		return 1
	}
	w, h := subsampleTarget(d, targetWidth, c.parity)
	// The reduced image must stay at least targetWidth wide so that the
	// plan still scales it down to exactly targetWidth.
	return max(1, min(SubsampleFactor(d, w, h), d.Width/targetWidth))
}

func decodeBounds(src Source) (d Dimensions, format string, err error) {
	err = use(src, func(r io.Reader) (err error) {
		d, format, err = boundsFrom(r)
		return
	})
	return
}

func boundsFrom(r io.Reader) (Dimensions, string, error) {
	rec := &readRecorder{r: r}
	cfg, format, err := image.DecodeConfig(bufio.NewReaderSize(rec, decodeBufferSize))
	if err != nil {
		return Dimensions{}, "", rec.fail(err)
	}
	return Dimensions{cfg.Width, cfg.Height}, format, nil
}

func decodeImage(src Source) (img image.Image, err error) {
	err = use(src, func(r io.Reader) (err error) {
		img, err = decodeFrom(r)
		return
	})
	return
}

func decodeFrom(r io.Reader) (image.Image, error) {
	rec := &readRecorder{r: r}
	img, _, err := image.Decode(bufio.NewReaderSize(rec, decodeBufferSize))
	if err != nil {
		return nil, rec.fail(err)
	}
	return img, nil
}

func decodeOnce(src Source, cfg config) (img image.Image, orient Orientation, err error) {
	err = use(src, func(r io.Reader) (err error) {
		fn := func(r io.Reader) (err error) {
			img, err = decodeFrom(r)
			return
		}
		if cfg.fixed() {
			orient = cfg.resolveOrientation(nil)
			return fn(r)
		}
		orient, err = teeOrientation(r, fn)
		return
	})
	return
}
