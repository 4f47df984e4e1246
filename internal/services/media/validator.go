package media

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"premium_gallery/internal/config"
	"premium_gallery/internal/lib/apperror"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ImageInfo describes a file that passed validation.
type ImageInfo struct {
	MIME   string
	Format string
	Width  int
	Height int
	Size   int64
}

// Validator checks an uploaded file against an UploadPolicy. It only reads
// the file.
type Validator struct {
	policy config.UploadPolicy
}

func NewValidator(policy config.UploadPolicy) *Validator {
	return &Validator{policy: policy}
}

// Validate checks, in order: size, format, header decodability, minimum
// dimensions. The first failing check decides the returned error.
func (v *Validator) Validate(path, declaredMIME string) (ImageInfo, error) {
	const op = "media.Validator.Validate"

	st, err := os.Stat(path)
	if err != nil {
		return ImageInfo{}, apperror.Storage(apperror.CodeStorageFailed, fmt.Errorf("%s: %w", op, err))
	}
	if st.Size() > v.policy.MaxFileSize {
		return ImageInfo{}, apperror.FileTooLarge()
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return ImageInfo{}, apperror.Storage(apperror.CodeStorageFailed, fmt.Errorf("%s: %w", op, err))
	}
	sniffed := normalizeMIME(mt.String())
	if !allowedMIME[sniffed] {
		return ImageInfo{}, apperror.InvalidImageFormat()
	}
	if declared := normalizeMIME(declaredMIME); declared != "" && declared != "application/octet-stream" && !allowedMIME[declared] {
		return ImageInfo{}, apperror.InvalidImageFormat()
	}

	f, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, apperror.Storage(apperror.CodeStorageFailed, fmt.Errorf("%s: %w", op, err))
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return ImageInfo{}, apperror.CorruptImage(fmt.Errorf("%s: %w", op, err))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ImageInfo{}, apperror.CorruptImage(errors.New("image has no pixels"))
	}

	if cfg.Width < v.policy.MinWidth || cfg.Height < v.policy.MinHeight {
		return ImageInfo{}, apperror.ImageTooSmall()
	}

	return ImageInfo{
		MIME:   sniffed,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   st.Size(),
	}, nil
}

func normalizeMIME(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "image/jpg" || s == "image/pjpeg" {
		return "image/jpeg"
	}

	return s
}
