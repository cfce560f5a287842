package imgnorm

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Dimensions are the reported bounds of an image before its pixels are decoded.
type Dimensions struct {
	Width  int
	Height int
}

// SubsampleFactor returns the divisor applied to both dimensions of an image
// of size d so that the decoded pixel count stays within twice the target area.
//
// The first guess is the smaller of the rounded width and height ratios. It is
// then raised until (width*height)/factor² <= targetWidth*targetHeight*2.
func SubsampleFactor(d Dimensions, targetWidth, targetHeight int) int {
	if d.Width <= 0 || d.Height <= 0 || targetWidth <= 0 || targetHeight <= 0 {
		return 1
	}

	factor := 1
	if d.Height > targetHeight || d.Width > targetWidth {
		heightRatio := round(float64(d.Height) / float64(targetHeight))
		widthRatio := round(float64(d.Width) / float64(targetWidth))
		factor = min(heightRatio, widthRatio)
		if factor < 1 {
			factor = 1
		}
	}

	total := float64(d.Width) * float64(d.Height)
	budget := float64(targetWidth) * float64(targetHeight) * 2
	for total/float64(factor*factor) > budget {
		factor++
	}

	return factor
}

// subsampleTarget returns the box the subsample factor is planned against.
// In parity mode that is the reported bounds themselves.
func subsampleTarget(d Dimensions, targetWidth int, parity bool) (int, int) {
	if parity || d.Width <= 0 {
		return d.Width, d.Height
	}
	return targetWidth, max(1, round(float64(targetWidth)*float64(d.Height)/float64(d.Width)))
}

// subsample shrinks img by factor with a box filter.
func subsample(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	return imaging.Resize(img, max(1, b.Dx()/factor), max(1, b.Dy()/factor), imaging.Box)
}

// round rounds half up.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}
