package models

import (
	"strings"
	"time"
)

// MediaCategory groups media documents.
type MediaCategory string

// Media categories.
const (
	MediaAvatar     MediaCategory = "avatar"
	MediaCover      MediaCategory = "cover"
	MediaContent    MediaCategory = "content"
	MediaIcon       MediaCategory = "icon"
	MediaBackground MediaCategory = "background"
	MediaDocument   MediaCategory = "document"
	MediaVideo      MediaCategory = "video"
	MediaAudio      MediaCategory = "audio"
	MediaOther      MediaCategory = "other"
)

// allowedMimeTypes beyond the image, video and audio families.
var allowedMimeTypes = map[string]struct{}{ //nolint:gochecknoglobals
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"text/plain": {},
	"text/csv":   {},
}

// AllowedMimeType reports whether media of this type may be stored.
func AllowedMimeType(mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(mime))

	for _, family := range []string{"image/", "video/", "audio/"} {
		if strings.HasPrefix(mime, family) && len(mime) > len(family) {
			return true
		}
	}

	_, ok := allowedMimeTypes[mime]

	return ok
}

// MediaSize describes a derived image variant.
type MediaSize struct {
	Name     string `json:"name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Quality  int    `json:"quality"`
	Position string `json:"position"`
	URL      string `json:"url"`
}

// ImageSizes are the variants derived for every image upload.
var ImageSizes = []MediaSize{ //nolint:gochecknoglobals
	{Name: "thumbnail", Width: 300, Height: 300, Format: "webp", Quality: 80, Position: "centre"},
	{Name: "card", Width: 640, Height: 480, Format: "webp", Quality: 85, Position: "centre"},
	{Name: "feature", Width: 1200, Height: 630, Format: "webp", Quality: 90, Position: "centre"},
}

// MediaSEO holds search engine metadata.
type MediaSEO struct {
	Title       string   `gorm:"size:255"        json:"title,omitempty"`
	Description string   `gorm:"size:160"        json:"description,omitempty" validate:"max=160"`
	Keywords    []string `gorm:"serializer:json" json:"keywords,omitempty"`
}

// Media is the metadata of an uploaded file. The binary itself lives outside the database.
type Media struct {
	ID       uint64 `gorm:"primaryKey" json:"id"`
	Filename string `gorm:"uniqueIndex;size:255;not null" json:"filename" validate:"required,max=255"`
	MimeType string `gorm:"size:255;not null"             json:"mimeType" validate:"required"`
	Filesize int64  `json:"filesize" validate:"min=0"`
	Width    int    `json:"width,omitempty"  validate:"min=0"`
	Height   int    `json:"height,omitempty" validate:"min=0"`
	URL      string `gorm:"size:2048" json:"url"`

	Alt      string        `gorm:"size:255"  json:"alt,omitempty"`
	Caption  string        `gorm:"type:text" json:"caption,omitempty"`
	Category MediaCategory `gorm:"type:varchar(20);not null;default:'other';index" json:"category" validate:"omitempty,oneof=avatar cover content icon background document video audio other"` //nolint:lll
	Tags     []string      `gorm:"serializer:json" json:"tags,omitempty"`
	// IsPublic is a pointer so an explicit false survives gorm's zero value handling on create.
	IsPublic *bool `gorm:"not null;default:true" json:"isPublic"`

	UploadedByID *uint64 `json:"uploadedBy,omitempty"`

	DownloadCount int64       `gorm:"not null;default:0" json:"downloadCount"`
	Sizes         []MediaSize `gorm:"serializer:json" json:"sizes,omitempty"`
	SEO           MediaSEO    `gorm:"embedded;embeddedPrefix:seo_" json:"seo"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsImage reports whether the media is an image.
func (m *Media) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(m.MimeType), "image/")
}

// Derive fills the url and, for images, the variant descriptors.
func (m *Media) Derive() {
	m.URL = "/media/" + m.Filename
	m.Sizes = nil

	if !m.IsImage() {
		return
	}

	base := strings.TrimSuffix(m.Filename, extension(m.Filename))

	for _, s := range ImageSizes {
		s.URL = "/media/" + base + "-" + s.Name + "." + s.Format
		m.Sizes = append(m.Sizes, s)
	}
}

func extension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i:]
	}

	return ""
}
