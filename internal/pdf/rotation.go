package pdf

import (
	"image"

	"github.com/drawmark/drawmark/internal/domain"
)

// Technical drawings are produced landscape; a raster that comes out clearly
// portrait was rotated somewhere between drafting and scanning.
const rotatedAspectRatio = 0.8

// DetectRotation estimates how far a drawing raster is from upright.
// Returns one of the domain rotation constants; the aspect-ratio heuristic
// can only distinguish a 90 degree turn from none.
func DetectRotation(img image.Image) int {
	b := img.Bounds()
	if b.Dy() == 0 {
		return domain.RotationNone
	}
	aspect := float64(b.Dx()) / float64(b.Dy())
	if aspect < rotatedAspectRatio {
		return domain.Rotation90
	}
	return domain.RotationNone
}

// CorrectRotation returns an upright copy of img together with the rotation
// that was applied. The input image is never modified.
func CorrectRotation(img image.Image) (image.Image, int) {
	rotation := DetectRotation(img)
	if rotation == domain.RotationNone {
		return img, domain.RotationNone
	}
	return Rotate90(img), rotation
}

// Rotate90 rotates an image 90 degrees clockwise.
func Rotate90(img image.Image) image.Image {
	b := img.Bounds()
	h := b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, h, b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			// (x, y) maps to (h-1-y, x) in the rotated frame.
			out.Set(h-1-(y-b.Min.Y), x-b.Min.X, img.At(x, y))
		}
	}
	return out
}
