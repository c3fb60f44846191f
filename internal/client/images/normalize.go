package images

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

const jpegQuality = 85

// normalize downscales b when either side exceeds maxDim. It reports whether
// the image was re-encoded (always as JPEG). Images that cannot be decoded
// are left alone.
func normalize(b []byte, maxDim int) ([]byte, bool) {
	if maxDim <= 0 {
		return b, false
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil || (cfg.Width <= maxDim && cfg.Height <= maxDim) {
		return b, false
	}

	img, err := imaging.Decode(bytes.NewReader(b), imaging.AutoOrientation(true))
	if err != nil {
		return b, false
	}
	img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return b, false
	}
	return buf.Bytes(), true
}
