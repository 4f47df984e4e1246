// Package media turns an uploaded multipart file into a stored, web-ready
// JPEG artifact.
package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"premium_gallery/internal/config"
	"premium_gallery/internal/lib/apperror"
	"premium_gallery/internal/lib/logger/sl"
	"premium_gallery/internal/metrics"
)

// Spooler writes the raw upload to disk.
type Spooler interface {
	Save(ctx context.Context, file *multipart.FileHeader, name string) (fullPath string, size int64, err error)
}

// ArtifactStore persists processed artifacts.
type ArtifactStore interface {
	Put(ctx context.Context, name, srcPath string) (url string, err error)
	Delete(ctx context.Context, name string) error
}

// Artifact is a processed file that has been stored.
type Artifact struct {
	Name             string
	URL              string
	OriginalFilename string
	MIME             string
	Size             int64
	Width            int
	Height           int
}

type Processor struct {
	log        *slog.Logger
	spool      Spooler
	store      ArtifactStore
	validator  *Validator
	transcoder *Transcoder
	workDir    string
	now        func() time.Time
}

func NewProcessor(log *slog.Logger, policy config.UploadPolicy, spool Spooler, store ArtifactStore, workDir string) *Processor {
	return &Processor{
		log:        log,
		spool:      spool,
		store:      store,
		validator:  NewValidator(policy),
		transcoder: NewTranscoder(policy),
		workDir:    workDir,
		now:        time.Now,
	}
}

// Process spools, validates, transcodes and stores file. Intermediate files
// are removed whatever the outcome.
func (p *Processor) Process(ctx context.Context, file *multipart.FileHeader, field string) (*Artifact, error) {
	const op = "media.Processor.Process"

	log := p.log.With(
		slog.String("op", op),
		slog.String("field", field),
	)

	if file == nil {
		metrics.UploadsTotal.WithLabelValues(field, apperror.CodeFileRequired).Inc()
		return nil, apperror.BadRequest(apperror.CodeFileRequired, "No file uploaded")
	}

	log = log.With(slog.String("filename", file.Filename))

	artifact, err := p.process(ctx, log, file, field)
	if err != nil {
		outcome := apperror.CodeStorageFailed
		if appErr, ok := apperror.As(err); ok {
			outcome = appErr.Code
		}
		metrics.UploadsTotal.WithLabelValues(field, outcome).Inc()

		log.Warn("upload rejected", slog.String("outcome", outcome), sl.Err(err))

		return nil, err
	}

	metrics.UploadsTotal.WithLabelValues(field, "ok").Inc()
	metrics.UploadBytes.WithLabelValues(field).Observe(float64(artifact.Size))

	log.Info("upload processed",
		slog.String("url", artifact.URL),
		slog.Int("width", artifact.Width),
		slog.Int("height", artifact.Height),
	)

	return artifact, nil
}

func (p *Processor) process(ctx context.Context, log *slog.Logger, file *multipart.FileHeader, field string) (*Artifact, error) {
	const op = "media.Processor.process"

	ts := p.now().UnixMilli()
	spoolName := fmt.Sprintf("%s-%d-%09d%s", field, ts, rand.IntN(1_000_000_000), safeExt(file.Filename))

	spoolPath, _, err := p.spool.Save(ctx, file, spoolName)
	if err != nil {
		return nil, apperror.Storage(apperror.CodeStorageFailed, fmt.Errorf("%s: spool: %w", op, err))
	}
	defer p.cleanup(log, spoolPath)

	info, err := p.validator.Validate(spoolPath, file.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	// The derivative is named after the spooled original, never after the
	// client-supplied filename.
	name := fmt.Sprintf("processed_%d_%s.jpg", ts, strings.TrimSuffix(spoolName, filepath.Ext(spoolName)))
	workPath := filepath.Join(p.workDir, name)
	defer p.cleanup(log, workPath)

	dims, err := p.transcoder.Transcode(spoolPath, workPath)
	if err != nil {
		return nil, err
	}

	st, err := os.Stat(workPath)
	if err != nil {
		return nil, apperror.Storage(apperror.CodeStorageFailed, fmt.Errorf("%s: %w", op, err))
	}

	url, err := p.store.Put(ctx, name, workPath)
	if err != nil {
		return nil, apperror.Storage(apperror.CodeStorageFailed, fmt.Errorf("%s: %w", op, err))
	}

	log.Debug("artifact stored",
		slog.String("source_mime", info.MIME),
		slog.Int("source_width", info.Width),
		slog.Int("source_height", info.Height),
	)

	return &Artifact{
		Name:             name,
		URL:              url,
		OriginalFilename: file.Filename,
		MIME:             "image/jpeg",
		Size:             st.Size(),
		Width:            dims.Width,
		Height:           dims.Height,
	}, nil
}

// Discard removes a stored artifact, typically after a failed database write.
func (p *Processor) Discard(ctx context.Context, artifact *Artifact) {
	const op = "media.Processor.Discard"

	if artifact == nil {
		return
	}

	if err := p.store.Delete(ctx, artifact.Name); err != nil {
		p.log.Warn("failed to discard artifact",
			slog.String("op", op),
			slog.String("name", artifact.Name),
			sl.Err(err),
		)
	}
}

func (p *Processor) cleanup(log *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("failed to remove intermediate file", slog.String("path", path), sl.Err(err))
	}
}

func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, r := range ext[min(1, len(ext)):] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	if len(ext) > 6 {
		return ""
	}

	return ext
}
