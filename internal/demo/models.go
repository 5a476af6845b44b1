package demo

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Bookmark is the record behind the demo's timed database endpoints.
type Bookmark struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string         `json:"title"`
	URL       string         `json:"url"`
	Tags      pq.StringArray `gorm:"type:text[]" json:"tags"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Bookmark) TableName() string { return "demo.bookmarks" }
