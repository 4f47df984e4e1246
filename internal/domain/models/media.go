package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type MediaType string

type Metadata map[string]interface{}

const (
	MediaTypePhoto MediaType = "photo"
	MediaTypeVideo MediaType = "video"
)

// Media is a generic content upload that is not part of the gallery.
type Media struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UploaderID       uuid.UUID `json:"uploaderId" db:"uploader_id"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	MediaType        MediaType `json:"mediaType" db:"media_type"`
	OriginalFilename string    `json:"originalFilename" db:"original_filename"`
	StoragePath      string    `json:"url" db:"storage_path"`
	FileSize         int64     `json:"fileSize" db:"file_size"`
	MimeType         string    `json:"mimeType,omitempty" db:"mime_type"`
	Width            *int      `json:"width,omitempty" db:"width"`
	Height           *int      `json:"height,omitempty" db:"height"`
	IsPublic         bool      `json:"isPublic" db:"is_public"`
	Metadata         Metadata  `json:"metadata,omitempty" db:"metadata"`
}

// Value реализует интерфейс driver.Valuer для сериализации Metadata в JSONB
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan реализует интерфейс sql.Scanner для десериализации JSONB в Metadata
func (m *Metadata) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported metadata type %T", value)
	}
}

func NewMedia(uploaderID uuid.UUID, mediaType MediaType, filename, path string, size int64) *Media {
	return &Media{
		ID:               uuid.New(),
		UploaderID:       uploaderID,
		CreatedAt:        time.Now().UTC(),
		MediaType:        mediaType,
		OriginalFilename: filename,
		StoragePath:      path,
		FileSize:         size,
		IsPublic:         false,
		Metadata:         make(Metadata),
	}
}

func (m *Media) Validate() error {
	var validationErrors []string

	if m.UploaderID == uuid.Nil {
		validationErrors = append(validationErrors, "uploader ID is required")
	}
	if m.OriginalFilename == "" {
		validationErrors = append(validationErrors, "original filename is required")
	}
	if len(m.OriginalFilename) > 255 {
		validationErrors = append(validationErrors, "original filename must be 255 characters or less")
	}
	if m.StoragePath == "" {
		validationErrors = append(validationErrors, "storage path is required")
	}
	if m.FileSize <= 0 {
		validationErrors = append(validationErrors, "file size must be positive")
	}

	switch m.MediaType {
	case MediaTypePhoto, MediaTypeVideo:
		if m.Width == nil || m.Height == nil {
			validationErrors = append(validationErrors, "width and height are required for photos and videos")
		} else if *m.Width <= 0 || *m.Height <= 0 {
			validationErrors = append(validationErrors, "width and height must be positive values")
		}
	default:
		validationErrors = append(validationErrors,
			fmt.Sprintf("invalid media type '%s', must be one of: %v",
				m.MediaType, []string{string(MediaTypePhoto), string(MediaTypeVideo)}))
	}

	if len(m.MimeType) > 100 {
		validationErrors = append(validationErrors, "mime type must be 100 characters or less")
	}

	if len(validationErrors) > 0 {
		return &MediaValidationError{
			Errors: validationErrors,
		}
	}

	return nil
}

type MediaValidationError struct {
	Errors []string
}

func (e *MediaValidationError) Error() string {
	return fmt.Sprintf("media validation failed: %s", strings.Join(e.Errors, "; "))
}

func IsMediaValidationError(err error) bool {
	_, ok := err.(*MediaValidationError)
	return ok
}
