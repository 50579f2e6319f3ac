package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/eitchtee/Kindle2Markdown/internal/clippings"
	"github.com/eitchtee/Kindle2Markdown/internal/entities"
)

// SaveBook upserts a parsed book and inserts any highlights not already
// present, matching by external ID. Returns the number of newly inserted
// highlights.
func (d *Database) SaveBook(book clippings.Book) (int, error) {
	key := book.ID()

	var stored entities.Book
	err := d.DB.Where("key = ?", key).First(&stored).Error
	switch {
	case err == nil:
		// Re-imports may fix casing or author spelling; keep the latest.
		stored.Title = book.Title
		stored.Author = strings.Join(book.Authors, ", ")
		if err := d.DB.Save(&stored).Error; err != nil {
			return 0, fmt.Errorf("update book %q: %w", book.Title, err)
		}
	case err == gorm.ErrRecordNotFound:
		stored = entities.Book{
			Key:    key,
			Title:  book.Title,
			Author: strings.Join(book.Authors, ", "),
		}
		if err := d.DB.Create(&stored).Error; err != nil {
			return 0, fmt.Errorf("create book %q: %w", book.Title, err)
		}
	default:
		return 0, fmt.Errorf("look up book %q: %w", book.Title, err)
	}

	inserted := 0
	for _, c := range book.Clippings {
		highlight := toHighlight(stored.ID, key, c)

		var count int64
		if err := d.DB.Model(&entities.Highlight{}).
			Where("book_id = ? AND external_id = ?", stored.ID, highlight.ExternalID).
			Count(&count).Error; err != nil {
			return inserted, fmt.Errorf("check highlight: %w", err)
		}
		if count > 0 {
			continue
		}

		if err := d.DB.Create(&highlight).Error; err != nil {
			return inserted, fmt.Errorf("create highlight: %w", err)
		}
		inserted++
	}

	return inserted, nil
}

// GetAllBooks lists the library without highlight bodies.
func (d *Database) GetAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	if err := d.DB.Order("title ASC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// GetBookByID returns a book with its highlights ordered by position.
func (d *Database) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := d.DB.Preload("Highlights", func(db *gorm.DB) *gorm.DB {
		return db.Order("position_start ASC, highlighted_at ASC")
	}).First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// SetCoverPath records the local cover file for a book.
func (d *Database) SetCoverPath(id uint, path string) error {
	return d.DB.Model(&entities.Book{}).Where("id = ?", id).
		Update("cover_path", path).Error
}

// BooksWithoutCover lists books that have no cached cover yet, used by the
// background enrichment queue.
func (d *Database) BooksWithoutCover() ([]entities.Book, error) {
	var books []entities.Book
	if err := d.DB.Where("cover_path = '' OR cover_path IS NULL").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func toHighlight(bookID uint, bookKey string, c clippings.Clipping) entities.Highlight {
	h := entities.Highlight{
		BookID:        bookID,
		Kind:          entities.Kind(c.Kind),
		Text:          c.Content,
		Page:          c.Page,
		HighlightedAt: c.AddedAt,
	}
	if c.Position != nil {
		h.PositionStart = c.Position.Start
		h.PositionEnd = c.Position.End
	}
	h.ExternalID = externalID(bookKey, c)
	return h
}

// externalID identifies a highlight across imports: book, position and
// timestamp pin it down well enough to skip re-inserts.
func externalID(bookKey string, c clippings.Clipping) string {
	pos := 0
	if c.Position != nil {
		pos = c.Position.Start
	}
	added := int64(0)
	if c.AddedAt != nil {
		added = c.AddedAt.Unix()
	}
	return fmt.Sprintf("%s-%s-%d-%d", bookKey[:12], c.Kind, pos, added)
}
