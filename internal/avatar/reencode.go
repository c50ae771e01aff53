package avatar

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"

	"skillswap/internal/constants"
)

type Encoded struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// Reencode decodes src, scales it so neither edge exceeds maxEdge
// and re-encodes it. Images with transparency stay PNG, the rest become JPEG.
func Reencode(src io.Reader, maxEdge int, quality int) (*Encoded, error) {
	if maxEdge <= 0 {
		maxEdge = constants.DefaultAvatarMaxEdge
	}
	if quality <= 0 || quality > 100 {
		quality = constants.DefaultAvatarQuality
	}

	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}

	width, height := scaleDimensions(bounds.Dx(), bounds.Dy(), maxEdge)
	alpha := hasTransparency(img)

	buf := bytes.NewBuffer(nil)
	if alpha {
		dst := image.NewNRGBA(image.Rect(0, 0, width, height))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
		if err := png.Encode(buf, dst); err != nil {
			return nil, fmt.Errorf("encoding png: %w", err)
		}
		return &Encoded{Data: buf.Bytes(), MimeType: "image/png", Width: width, Height: height}, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	if err := jpeg.Encode(buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return &Encoded{Data: buf.Bytes(), MimeType: "image/jpeg", Width: width, Height: height}, nil
}

func hasTransparency(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

func scaleDimensions(width, height, maxEdge int) (int, int) {
	if width <= maxEdge && height <= maxEdge {
		return width, height
	}

	if width >= height {
		ratio := float64(maxEdge) / float64(width)
		scaledHeight := int(float64(height)*ratio + 0.5)
		if scaledHeight < 1 {
			scaledHeight = 1
		}
		return maxEdge, scaledHeight
	}

	ratio := float64(maxEdge) / float64(height)
	scaledWidth := int(float64(width)*ratio + 0.5)
	if scaledWidth < 1 {
		scaledWidth = 1
	}
	return scaledWidth, maxEdge
}
