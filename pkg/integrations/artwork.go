package integrations

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/kerbaras/pocketdl/pkg/metadata"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultArtworkSize = 600
	artworkQuality     = 90
)

// ArtworkProcessor normalizes podcast artwork before it is embedded.
type ArtworkProcessor struct {
	maxSize int
}

func NewArtworkProcessor(maxSize int) *ArtworkProcessor {
	if maxSize <= 0 {
		maxSize = DefaultArtworkSize
	}
	return &ArtworkProcessor{maxSize: maxSize}
}

// Process decodes JPEG, PNG or WebP artwork, scales it to fit maxSize and
// returns it as JPEG. JPEG input that already fits is passed through as-is.
func (p *ArtworkProcessor) Process(input []byte) (*metadata.Picture, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("empty artwork")
	}

	img, format, err := image.Decode(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}

	bounds := img.Bounds()
	width, height := p.calculateDimensions(bounds.Dx(), bounds.Dy())
	if format == "jpeg" && width == bounds.Dx() && height == bounds.Dy() {
		return &metadata.Picture{MIMEType: "image/jpeg", Data: input}, nil
	}

	if width != bounds.Dx() || height != bounds.Dy() {
		img = resize(img, width, height)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: artworkQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode artwork: %w", err)
	}
	return &metadata.Picture{MIMEType: "image/jpeg", Data: buf.Bytes()}, nil
}

// calculateDimensions fits width x height inside maxSize x maxSize while
// keeping the aspect ratio.
func (p *ArtworkProcessor) calculateDimensions(width, height int) (int, int) {
	if width <= p.maxSize && height <= p.maxSize {
		return width, height
	}

	scale := float64(p.maxSize) / float64(width)
	if hs := float64(p.maxSize) / float64(height); hs < scale {
		scale = hs
	}

	newWidth := max(1, int(float64(width)*scale))
	newHeight := max(1, int(float64(height)*scale))
	return newWidth, newHeight
}

func resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}
