package imgnorm

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// CanvasMode selects the size of the output bitmap.
type CanvasMode int

const (
	// FitCanvas sizes the output to the transformed content.
	FitCanvas CanvasMode = iota
	// SourceCanvas keeps the original, unrotated source size and places the
	// transformed content at its origin. Whatever the content does not cover
	// stays transparent.
	SourceCanvas
)

func (m CanvasMode) String() string {
	switch m {
	case FitCanvas:
		return "fit"
	case SourceCanvas:
		return "source"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m CanvasMode) MarshalText() ([]byte, error) {
	switch m {
	case FitCanvas, SourceCanvas:
		return []byte(m.String()), nil
	}
	return nil, fmt.Errorf("imgnorm: unknown canvas mode %d", m)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *CanvasMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "fit":
		*m = FitCanvas
	case "source":
		*m = SourceCanvas
	default:
		return fmt.Errorf("imgnorm: unknown canvas mode %q", text)
	}
	return nil
}

// Plan is the transform applied to a decoded image. It depends only on the
// orientation, the decoded size, the target width and the canvas mode.
type Plan struct {
	// Source is the reported size of the image the plan was made for.
	Source Dimensions
	Mode   CanvasMode

	// Rotated is set whenever the orientation was known, even for 0 degrees.
	Rotated bool
	Degrees int

	// Scaled is set only when the source is wider than the target.
	Scaled       bool
	Scale        float64
	ScaledWidth  int
	ScaledHeight int
	YTranslation float64

	Matrix Matrix
	// Region is the part of Canvas covered by the transformed source.
	Region image.Rectangle
	Canvas image.Rectangle
}

// NewPlan composes the transform for a source of width×height pixels.
//
// The rotation for o is applied first. If the source is wider than
// targetWidth it is then scaled to targetWidth and centered vertically in a
// targetWidth×round(targetWidth/aspect) region; there is never a horizontal
// offset.
func NewPlan(o Orientation, width, height, targetWidth int, mode CanvasMode) Plan {
	p := Plan{
		Source: Dimensions{width, height},
		Mode:   mode,
		Scale:  1,
	}

	m := Identity()
	if o != Undefined {
		p.Rotated = true
		p.Degrees = o.Degrees()
		m = m.PostRotate(float64(p.Degrees))
	}

	if width > targetWidth {
		aspect := float64(width) / float64(height)
		p.Scaled = true
		p.ScaledWidth = targetWidth
		p.ScaledHeight = round(float64(targetWidth) / aspect)
		p.Scale = float64(targetWidth) / float64(width)
		p.YTranslation = (float64(p.ScaledHeight) - float64(height)*p.Scale) / 2
		m = m.PostTranslate(0, p.YTranslation).PreScale(p.Scale, p.Scale)
	}

	// Rotation turns the content around the origin; move it back onto the
	// canvas while keeping the vertical centering offset.
	minX, minY, maxX, maxY := m.Bounds(float64(width), float64(height))
	m = m.PostTranslate(-minX, p.YTranslation-minY)
	p.Matrix = m

	w, h := maxX-minX, maxY-minY
	p.Region = image.Rect(0, round(p.YTranslation), round(w), round(p.YTranslation+h))
	switch mode {
	case SourceCanvas:
		p.Canvas = image.Rect(0, 0, width, height)
	default:
		p.Canvas = image.Rect(0, 0, round(w), round(h))
	}

	return p
}

// Render draws src through p onto a new RGBA canvas. Scaled plans are
// filtered bilinearly; rotation-only plans sample nearest pixels so that
// quarter turns are exact.
//
// src may be a reduced decode of the planned source. It is stretched back to
// p.Source before the plan is applied.
func Render(src image.Image, p Plan) *image.NRGBA {
	dst := image.NewNRGBA(p.Canvas)
	sr := src.Bounds()
	if dst.Rect.Empty() || sr.Empty() {
		return dst
	}

	m := p.Matrix
	reduced := sr.Dx() != p.Source.Width || sr.Dy() != p.Source.Height
	if reduced {
		m = m.PreScale(float64(p.Source.Width)/float64(sr.Dx()), float64(p.Source.Height)/float64(sr.Dy()))
	}
	m = m.PreTranslate(-float64(sr.Min.X), -float64(sr.Min.Y))

	var interp draw.Interpolator = draw.NearestNeighbor
	if p.Scaled || reduced {
		interp = draw.BiLinear
	}
	interp.Transform(dst, m.Aff3(), src, sr, draw.Src, nil)

	return dst
}
