package catalog

import (
	"io"
	"time"
)

// Link is an affiliate URL record with metadata and a click counter. Category
// is resolved on read paths and is nil when the referenced category no longer
// exists.
type Link struct {
	ID          string
	Title       string
	Description string
	URL         string
	ImageRef    string
	CategoryID  string
	Category    *Category
	Tags        []string
	Clicks      int64
	IsFeatured  bool
	Order       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category is a named grouping entity referenced by links.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// ImageUpload is an uploaded image handed to the image store before the link
// record referencing it is written.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

type CreateLinkInput struct {
	Title       string
	Description string
	URL         string
	CategoryID  string
	Tags        string // comma-delimited, normalized by the service
	IsFeatured  bool
	Order       int
	Image       *ImageUpload
}

// LinkPatch carries a partial update: nil fields are left untouched, non-nil
// fields overwrite the stored value. Tags replace the whole sequence. A
// non-nil empty CategoryID clears the category reference.
type LinkPatch struct {
	Title       *string
	Description *string
	URL         *string
	CategoryID  *string
	Tags        *string
	IsFeatured  *bool
	Order       *int
	Clicks      *int64
	Image       *ImageUpload
}

// Summary is the admin dashboard aggregate computed at the store.
type Summary struct {
	TotalLinks    int64
	TotalClicks   int64
	FeaturedLinks int64
	TopLinks      []Link
}

// DailyCount is one day's click total for a link.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}
