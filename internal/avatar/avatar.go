// Package avatar prepares a profile picture for upload: it rejects anything
// that is not a raster image and re-encodes the rest at a bounded size.
package avatar

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge   = errors.New("avatar file too large")
	ErrDisallowedType = errors.New("avatar must be a PNG, JPEG or GIF image")
	ErrExecutableFile = errors.New("executable files are not allowed")
	ErrInvalidImage   = errors.New("invalid image data")
)

// Image is an upload-ready avatar.
type Image struct {
	Name     string
	MimeType string
	Data     []byte
	Width    int
	Height   int
}

type Preparer struct {
	maxBytes int64
	maxEdge  int
	quality  int
}

func NewPreparer(maxBytes int64, maxEdge, quality int) *Preparer {
	return &Preparer{maxBytes: maxBytes, maxEdge: maxEdge, quality: quality}
}

// PrepareFile reads and prepares the image at path.
func (p *Preparer) PrepareFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening avatar: %w", err)
	}
	defer f.Close()

	return p.Prepare(filepath.Base(path), f)
}

func (p *Preparer) Prepare(name string, src io.Reader) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(src, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading avatar: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, ErrFileTooLarge
	}

	if isExecutableSignature(data) {
		return nil, ErrExecutableFile
	}
	mtype := mimetype.Detect(data)
	if !isAllowedMimeType(mtype) {
		return nil, ErrDisallowedType
	}

	normalized, err := Reencode(bytes.NewReader(data), p.maxEdge, p.quality)
	if err != nil {
		return nil, err
	}

	return &Image{
		Name:     uploadName(name, normalized.MimeType),
		MimeType: normalized.MimeType,
		Data:     normalized.Data,
		Width:    normalized.Width,
		Height:   normalized.Height,
	}, nil
}

func uploadName(original, mimeType string) string {
	base := strings.TrimSpace(filepath.Base(original))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "avatar"
	}
	if len(base) > 100 {
		base = base[:100]
	}
	if mimeType == "image/png" {
		return base + ".png"
	}
	return base + ".jpg"
}

func isAllowedMimeType(mtype *mimetype.MIME) bool {
	for _, allowed := range []string{"image/png", "image/jpeg", "image/gif"} {
		if mtype.Is(allowed) {
			return true
		}
	}
	return false
}

func isExecutableSignature(sniff []byte) bool {
	if len(sniff) < 2 {
		return false
	}

	if sniff[0] == 'M' && sniff[1] == 'Z' {
		return true // PE/COFF (Windows)
	}
	if len(sniff) >= 4 {
		if bytes.Equal(sniff[:4], []byte{0x7f, 'E', 'L', 'F'}) {
			return true // ELF
		}

		machoMagics := [][]byte{
			{0xfe, 0xed, 0xfa, 0xce},
			{0xce, 0xfa, 0xed, 0xfe},
			{0xfe, 0xed, 0xfa, 0xcf},
			{0xcf, 0xfa, 0xed, 0xfe},
			{0xca, 0xfe, 0xba, 0xbe},
			{0xbe, 0xba, 0xfe, 0xca},
		}
		for _, magic := range machoMagics {
			if bytes.Equal(sniff[:4], magic) {
				return true
			}
		}
	}

	return sniff[0] == '#' && sniff[1] == '!'
}
