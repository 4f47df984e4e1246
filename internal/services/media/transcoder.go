package media

import (
	"fmt"
	"os"

	"premium_gallery/internal/config"
	"premium_gallery/internal/lib/apperror"

	"github.com/disintegration/imaging"
)

type Dimensions struct {
	Width  int
	Height int
}

// Transcoder re-encodes images as JPEG, shrinking them to fit the policy
// bounds. Images already inside the bounds keep their size.
type Transcoder struct {
	policy config.UploadPolicy
}

func NewTranscoder(policy config.UploadPolicy) *Transcoder {
	return &Transcoder{policy: policy}
}

func (t *Transcoder) Transcode(src, dst string) (Dimensions, error) {
	const op = "media.Transcoder.Transcode"

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return Dimensions{}, apperror.Storage(apperror.CodeTranscodeFailed, fmt.Errorf("%s: decode: %w", op, err))
	}

	b := img.Bounds()
	if b.Dx() > t.policy.MaxWidth || b.Dy() > t.policy.MaxHeight {
		img = imaging.Fit(img, t.policy.MaxWidth, t.policy.MaxHeight, imaging.Lanczos)
	}

	out, err := os.Create(dst)
	if err != nil {
		return Dimensions{}, apperror.Storage(apperror.CodeTranscodeFailed, fmt.Errorf("%s: %w", op, err))
	}

	err = imaging.Encode(out, img, imaging.JPEG, imaging.JPEGQuality(t.policy.Quality))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return Dimensions{}, apperror.Storage(apperror.CodeTranscodeFailed, fmt.Errorf("%s: encode: %w", op, err))
	}

	b = img.Bounds()

	return Dimensions{Width: b.Dx(), Height: b.Dy()}, nil
}
