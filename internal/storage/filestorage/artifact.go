package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"premium_gallery/internal/lib/logger/sl"
)

// ArtifactStore writes every artifact to all of its backends. The primary
// backend decides the public URL of the artifact.
type ArtifactStore struct {
	log      *slog.Logger
	primary  *LocalFileStorage
	backends []Backend
}

func NewArtifactStore(log *slog.Logger, primary *LocalFileStorage, mirrors ...Backend) *ArtifactStore {
	backends := make([]Backend, 0, len(mirrors)+1)
	backends = append(backends, primary)
	backends = append(backends, mirrors...)

	return &ArtifactStore{
		log:      log,
		primary:  primary,
		backends: backends,
	}
}

// Put copies srcPath to every backend under name and returns its public URL.
// If any backend fails, copies already written are removed again.
func (s *ArtifactStore) Put(ctx context.Context, name, srcPath string) (string, error) {
	const op = "filestorage.ArtifactStore.Put"

	log := s.log.With(
		slog.String("op", op),
		slog.String("name", name),
	)

	written := make([]Backend, 0, len(s.backends))
	for _, b := range s.backends {
		if err := b.Put(ctx, name, srcPath); err != nil {
			log.Error("failed to write artifact", slog.String("backend", b.Name()), sl.Err(err))

			for _, w := range written {
				if rbErr := w.Delete(context.WithoutCancel(ctx), name); rbErr != nil {
					log.Warn("rollback failed", slog.String("backend", w.Name()), sl.Err(rbErr))
				}
			}

			return "", fmt.Errorf("%s: %s: %w", op, b.Name(), err)
		}

		written = append(written, b)
	}

	return s.primary.URL(name), nil
}

// Delete removes name from every backend. All backends are attempted and
// their errors joined.
func (s *ArtifactStore) Delete(ctx context.Context, name string) error {
	var errs []error
	for _, b := range s.backends {
		if err := b.Delete(ctx, name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
		}
	}

	return errors.Join(errs...)
}

// Primary returns the backend whose directory is served under BaseURL.
func (s *ArtifactStore) Primary() *LocalFileStorage {
	return s.primary
}
