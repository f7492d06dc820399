// Package crop finds the rough outline of a document in a camera photo and trims the
// photo to it. It is a bounding box over Sobel edges, not a contour detector.
package crop

import (
	"image"
	"image/draw"
	"math"
)

const (
	edgeThreshold = 50
	minEdgeRatio  = 0.01
	padding       = 20
)

// Box is a crop rectangle: X1/Y1 inclusive, X2/Y2 exclusive, within image bounds.
type Box struct {
	X1, Y1, X2, Y2 int
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Bounds computes the padded bounding box of edge pixels in an RGBA buffer laid out
// row-major with 4 bytes per pixel. ok is false when fewer than 1% of the pixels are
// edges; callers then keep the photo uncropped.
func Bounds(pix []uint8, width, height int) (box Box, ok bool) {
	if width <= 0 || height <= 0 || len(pix) < width*height*4 {
		return Box{}, false
	}

	gray := make([]float64, width*height)
	for i := range gray {
		r, g, b := float64(pix[i*4]), float64(pix[i*4+1]), float64(pix[i*4+2])
		gray[i] = math.Round(0.299*r + 0.587*g + 0.114*b)
	}

	minX, minY, maxX, maxY := width, height, 0, 0
	edges := 0
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			if !isEdge(sobel(gray, width, x, y)) {
				continue
			}
			edges++
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}

	if float64(edges) <= float64(width*height)*minEdgeRatio {
		return Box{}, false
	}
	return Box{
		X1: max(0, minX-padding),
		Y1: max(0, minY-padding),
		X2: min(width, maxX+padding),
		Y2: min(height, maxY+padding),
	}, true
}

// isEdge compares the gradient the way an 8-bit edge map would: clamped to 255
// and rounded before the threshold.
func isEdge(mag float64) bool {
	return math.Round(min(mag, 255)) > edgeThreshold
}

func sobel(gray []float64, width, x, y int) float64 {
	at := func(dx, dy int) float64 { return gray[(y+dy)*width+x+dx] }
	gx := -at(-1, -1) + at(1, -1) - 2*at(-1, 0) + 2*at(1, 0) - at(-1, 1) + at(1, 1)
	gy := -at(-1, -1) - 2*at(0, -1) - at(1, -1) + at(-1, 1) + 2*at(0, 1) + at(1, 1)
	return math.Sqrt(gx*gx + gy*gy)
}

// Document crops img to the detected document. When nothing is detected the original
// image is returned unchanged with ok false.
func Document(img image.Image) (image.Image, bool) {
	rgba := toRGBA(img)
	box, ok := Bounds(rgba.Pix, rgba.Rect.Dx(), rgba.Rect.Dy())
	if !ok {
		return img, false
	}
	return rgba.SubImage(box.Rect()), true
}

// toRGBA returns a zero-origin RGBA copy of img with a tight stride.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}
