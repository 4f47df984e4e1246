package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// GalleryType partitions gallery_items into two logical collections.
type GalleryType string

const (
	GalleryTypeGallery  GalleryType = "gallery"
	GalleryTypeFeatured GalleryType = "featured"
)

func (t GalleryType) Valid() bool {
	return t == GalleryTypeGallery || t == GalleryTypeFeatured
}

type ContentRating string

const (
	RatingSFW  ContentRating = "sfw"
	RatingNSFW ContentRating = "nsfw"
)

// ParseContentRating falls back to sfw for anything it does not recognise.
func ParseContentRating(s string) ContentRating {
	switch ContentRating(strings.ToLower(strings.TrimSpace(s))) {
	case RatingNSFW:
		return RatingNSFW
	default:
		return RatingSFW
	}
}

// Tags is stored as a JSON array in a TEXT column. Scan never fails: rows
// written by older clients may hold a JSON string wrapping the array, or a
// Postgres array literal, and anything undecodable reads as no tags.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}

	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

func (t *Tags) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = Tags{}
	case []byte:
		*t = DecodeTags(string(v))
	case string:
		*t = DecodeTags(v)
	case []string:
		*t = append(Tags{}, v...)
	default:
		*t = Tags{}
	}

	return nil
}

// DecodeTags turns any stored representation of a tag list into a slice.
func DecodeTags(raw string) Tags {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Tags{}
	}

	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err == nil {
		return nonNilTags(tags)
	}

	// double-encoded: "[\"a\",\"b\"]"
	var inner string
	if err := json.Unmarshal([]byte(raw), &inner); err == nil {
		if err := json.Unmarshal([]byte(inner), &tags); err == nil {
			return nonNilTags(tags)
		}

		return Tags{}
	}

	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		var arr pq.StringArray
		if err := arr.Scan(raw); err == nil {
			return nonNilTags(arr)
		}
	}

	return Tags{}
}

func nonNilTags(tags []string) Tags {
	if tags == nil {
		return Tags{}
	}

	return Tags(tags)
}

// GalleryItem is a single media record in the gallery or featured collection.
type GalleryItem struct {
	ID            int64         `json:"id" db:"id"`
	URL           string        `json:"url" db:"url"`
	Title         string        `json:"title" db:"title"`
	Type          GalleryType   `json:"type" db:"type"`
	ContentRating ContentRating `json:"contentRating" db:"content_rating"`
	IsPremium     bool          `json:"isPremium" db:"is_premium"`
	Tags          Tags          `json:"tags" db:"tags"`
	Description   *string       `json:"description" db:"description"`
	Instagram     *string       `json:"instagram" db:"instagram"`
	Twitter       *string       `json:"twitter" db:"twitter"`
	TikTok        *string       `json:"tiktok" db:"tiktok"`
	OnlyFans      *string       `json:"onlyfans" db:"onlyfans"`
	UploaderID    *uuid.UUID    `json:"uploaderId,omitempty" db:"uploader_id"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
}

// NullableString trims s and returns nil when nothing is left.
func NullableString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	return &s
}
