package crop

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
)

// JPEGQuality is used when re-encoding a cropped photo.
const JPEGQuality = 90

// maxPixels caps the decoded size of a photo. Larger photos are refused before
// their pixels are allocated.
var maxPixels = 40_000_000

// ErrTooLarge is returned by Photo for images above the pixel cap.
var ErrTooLarge = errors.New("photo too large to crop")

// Photo decodes an encoded JPEG or PNG photo and crops it to the detected document.
// When no document is found the input bytes are returned as they are, with
// cropped false.
func Photo(data []byte) (out []byte, cropped bool, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("decode photo: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPixels {
		return nil, false, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("decode photo: %w", err)
	}
	doc, ok := Document(img)
	if !ok {
		return data, false, nil
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, doc, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, false, fmt.Errorf("encode photo: %w", err)
	}
	return buf.Bytes(), true, nil
}
