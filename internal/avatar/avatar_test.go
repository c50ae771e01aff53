package avatar

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"
)

func TestPrepareRejectsUnsafeInput(t *testing.T) {
	p := NewPreparer(1024, 256, 80)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"elf", append([]byte{0x7f, 'E', 'L', 'F'}, make([]byte, 32)...), ErrExecutableFile},
		{"pe", append([]byte("MZ"), make([]byte, 32)...), ErrExecutableFile},
		{"script", []byte("#!/bin/sh\necho hi\n"), ErrExecutableFile},
		{"svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`), ErrDisallowedType},
		{"text", []byte("hello there"), ErrDisallowedType},
		{"too large", bytes.Repeat([]byte{0}, 2048), ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Prepare("upload", bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Prepare() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPrepareFileReencodesAndRenames(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 900, 300))
	draw.Draw(src, src.Bounds(), &image.Uniform{C: color.RGBA{R: 200, G: 10, B: 10, A: 255}}, image.Point{}, draw.Src)

	path := filepath.Join(t.TempDir(), "holiday photo.png")
	if err := os.WriteFile(path, pngBytes(t, src), 0o600); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}

	img, err := NewPreparer(1<<20, 300, 80).PrepareFile(path)
	if err != nil {
		t.Fatalf("PrepareFile() error = %v", err)
	}
	if img.Name != "holiday photo.jpg" || img.MimeType != "image/jpeg" {
		t.Fatalf("img = %s (%s), want holiday photo.jpg as jpeg", img.Name, img.MimeType)
	}
	if img.Width != 300 || img.Height != 100 {
		t.Fatalf("img dimensions = %dx%d, want 300x100", img.Width, img.Height)
	}
}
