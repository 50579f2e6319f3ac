package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/eitchtee/Kindle2Markdown/internal/clippings"
	"github.com/eitchtee/Kindle2Markdown/internal/database"
	"github.com/eitchtee/Kindle2Markdown/internal/entities"
	"github.com/eitchtee/Kindle2Markdown/internal/exporters"
	"github.com/eitchtee/Kindle2Markdown/internal/tasks"
)

type BooksController struct {
	db         *database.Database
	taskClient *tasks.Client
}

func NewBooksController(db *database.Database, taskClient *tasks.Client) *BooksController {
	return &BooksController{db: db, taskClient: taskClient}
}

func (b *BooksController) List(c *gin.Context) {
	books, err := b.db.GetAllBooks()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

func (b *BooksController) Get(c *gin.Context) {
	book, ok := b.lookupBook(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, book)
}

// Markdown renders the stored book as the same note the exporter writes.
func (b *BooksController) Markdown(c *gin.Context) {
	book, ok := b.lookupBook(c)
	if !ok {
		return
	}

	content, err := exporters.GenerateMarkdown(toParsedBook(book), book.CoverPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(content))
}

// Enrich enqueues a background cover fetch for the book.
func (b *BooksController) Enrich(c *gin.Context) {
	if b.taskClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "task queue is disabled"})
		return
	}

	book, ok := b.lookupBook(c)
	if !ok {
		return
	}

	_, err := b.taskClient.Add(tasks.EnrichCoverTask{BookID: book.ID}).Save()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "book_id": book.ID})
}

func (b *BooksController) lookupBook(c *gin.Context) (*entities.Book, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return nil, false
	}

	book, err := b.db.GetBookByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, false
	}
	return book, true
}

// toParsedBook rebuilds the exporter's input from the stored model.
func toParsedBook(book *entities.Book) clippings.Book {
	parsed := clippings.Book{Title: book.Title}
	if book.Author != "" {
		parsed.Authors = strings.Split(book.Author, ", ")
	}

	for _, h := range book.Highlights {
		entry := clippings.Clipping{
			BookTitle: book.Title,
			Authors:   parsed.Authors,
			Kind:      clippings.Kind(h.Kind),
			Page:      h.Page,
			AddedAt:   h.HighlightedAt,
			Content:   h.Text,
		}
		if h.PositionStart != 0 || h.PositionEnd != 0 {
			entry.Position = &clippings.PositionRange{Start: h.PositionStart, End: h.PositionEnd}
		}
		parsed.Clippings = append(parsed.Clippings, entry)
	}
	return parsed
}
