package gallery

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp" // register WebP decoder
)

// DefaultMaxFileSize is the per-file upload limit.
const DefaultMaxFileSize = 10 * 1024 * 1024 // 10 MB

// AllowedMimeTypes are the sniffed content types accepted by Upload.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// checkFile validates in and builds the Image it would become, minus ID,
// handle and timestamp.
func checkFile(in FileInput, maxSize int64) (Image, error) {
	size := int64(len(in.Content))
	if size == 0 {
		return Image{}, fmt.Errorf("%s: %w", in.Filename, ErrEmptyFile)
	}
	if maxSize > 0 && size > maxSize {
		return Image{}, fmt.Errorf("%s: %w", in.Filename, ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(in.Content)
	mimeType = strings.Split(mimeType, ";")[0]
	if !AllowedMimeTypes[mimeType] {
		return Image{}, fmt.Errorf("%s: %w", in.Filename, ErrInvalidMimeType)
	}

	img := Image{
		Name:         displayName(in.Name, in.Filename),
		OriginalName: in.Filename,
		MimeType:     mimeType,
		Size:         size,
		payload:      in.Content,
	}

	// Dimensions are informational; a header we cannot decode is not fatal.
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(in.Content)); err == nil {
		img.Width, img.Height = cfg.Width, cfg.Height
	}

	return img, nil
}

// displayName prefers the suggested name and otherwise takes the file name up
// to its first dot.
func displayName(suggested, filename string) string {
	if name := strings.TrimSpace(suggested); name != "" {
		return name
	}
	base := filepath.Base(filename)
	if stem, _, _ := strings.Cut(base, "."); stem != "" {
		return stem
	}
	return base
}

// ValidateName trims name and rejects it when nothing is left.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: %w", ErrValidation, ErrEmptyName)
	}
	return name, nil
}
