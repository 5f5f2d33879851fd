package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"libris/api/internal/ids"
	"libris/api/internal/models"
)

type bookRequest struct {
	ISBN      string `json:"isbn" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Author    string `json:"author" binding:"required"`
	Publisher string `json:"publisher"`
	Year      int    `json:"year"`
	Copies    int    `json:"copies" binding:"min=0"`
	Available int    `json:"available" binding:"min=0"`
}

type bookResponse struct {
	ID        string    `json:"id"`
	ISBN      string    `json:"isbn"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Publisher string    `json:"publisher"`
	Year      int       `json:"year"`
	Copies    int       `json:"copies"`
	Available int       `json:"available"`
	CreatedAt time.Time `json:"createdAt"`
}

func toBookResponse(b models.Book) bookResponse {
	return bookResponse{
		ID:        b.ID,
		ISBN:      b.ISBN,
		Title:     b.Title,
		Author:    b.Author,
		Publisher: b.Publisher,
		Year:      b.Year,
		Copies:    b.Copies,
		Available: b.Available,
		CreatedAt: b.CreatedAt,
	}
}

func (h HandlerSet) ListBooks(c *gin.Context) {
	limit, offset := pagination(c)

	books, err := h.books.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]bookResponse, 0, len(books))
	for _, b := range books {
		items = append(items, toBookResponse(b))
	}

	c.JSON(http.StatusOK, gin.H{"books": items})
}

func (h HandlerSet) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid book payload"})
		return
	}

	book := models.Book{
		ID:        ids.New(),
		ISBN:      req.ISBN,
		Title:     req.Title,
		Author:    req.Author,
		Publisher: req.Publisher,
		Year:      req.Year,
		Copies:    req.Copies,
		Available: req.Available,
	}
	if err := h.books.Create(c.Request.Context(), book); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"book": toBookResponse(book)})
}

func (h HandlerSet) UpdateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid book payload"})
		return
	}

	book := models.Book{
		ID:        c.Param("id"),
		ISBN:      req.ISBN,
		Title:     req.Title,
		Author:    req.Author,
		Publisher: req.Publisher,
		Year:      req.Year,
		Copies:    req.Copies,
		Available: req.Available,
	}
	if err := h.books.Update(c.Request.Context(), book); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"book": toBookResponse(book)})
}

func (h HandlerSet) DeleteBook(c *gin.Context) {
	if err := h.books.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Book deleted"})
}
