// Package entities defines the persisted library model: books and the
// highlights imported for them.
package entities

import "time"

type Kind string

const (
	KindHighlight Kind = "highlight"
	KindNote      Kind = "note"
	KindBookmark  Kind = "bookmark"
)

// Book is a persisted book with its imported highlights. Key is the stable
// identifier derived from title and author set, so re-imports upsert
// instead of duplicating.
type Book struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Key        string      `gorm:"uniqueIndex;size:64" json:"key"`
	Title      string      `gorm:"index;size:512" json:"title"`
	Author     string      `gorm:"index;size:512" json:"author"` // display list, comma separated
	CoverPath  string      `gorm:"size:1024" json:"cover_path,omitempty"`
	Highlights []Highlight `gorm:"foreignKey:BookID" json:"highlights,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Highlight is one persisted clipping. ExternalID is derived from the
// source entry (book key, position, timestamp) and deduplicates re-imports.
type Highlight struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	BookID uint   `gorm:"index" json:"book_id"`
	Kind   Kind   `gorm:"size:20;default:'highlight'" json:"kind"`
	Text   string `gorm:"type:text" json:"text"`

	Page          *int       `json:"page,omitempty"`
	PositionStart int        `json:"position_start,omitempty"`
	PositionEnd   int        `json:"position_end,omitempty"`
	HighlightedAt *time.Time `json:"highlighted_at,omitempty"`

	ExternalID string    `gorm:"index;size:128" json:"external_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Book) TableName() string {
	return "books"
}

func (Highlight) TableName() string {
	return "highlights"
}
