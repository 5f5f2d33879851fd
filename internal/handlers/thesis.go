package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"libris/api/internal/ids"
	"libris/api/internal/models"
	"libris/api/internal/security"
	"libris/api/internal/service"
)

const maxThesisDocumentBytes = 32 << 20 // 32 MiB

type thesisResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	Title      string    `json:"title"`
	Abstract   string    `json:"abstract"`
	Keywords   []string  `json:"keywords"`
	Status     string    `json:"status"`
	ReviewNote string    `json:"reviewNote,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toThesisResponse(t models.Thesis) thesisResponse {
	return thesisResponse{
		ID:         t.ID,
		AuthorID:   t.AuthorID,
		Title:      t.Title,
		Abstract:   t.Abstract,
		Keywords:   t.Keywords,
		Status:     string(t.Status),
		ReviewNote: t.ReviewNote,
		CreatedAt:  t.CreatedAt,
	}
}

// SubmitThesis accepts multipart metadata plus the document file, stores the
// file in blob storage under an opaque key, and records the thesis as
// pending review.
func (h HandlerSet) SubmitThesis(c *gin.Context) {
	auth, err := h.auth.CurrentSession(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	abstract := strings.TrimSpace(c.PostForm("abstract"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title is required"})
		return
	}

	var keywords []string
	for _, kw := range strings.Split(c.PostForm("keywords"), ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Document file is required"})
		return
	}
	if fileHeader.Size > maxThesisDocumentBytes {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Document too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer file.Close()

	thesisID := ids.New()
	documentKey := fmt.Sprintf("theses/%s/%s.pdf", auth.User.ID, thesisID)

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	if err := h.store.Put(c.Request.Context(), documentKey, file, fileHeader.Size, contentType); err != nil {
		h.respondError(c, err)
		return
	}

	thesis := models.Thesis{
		ID:          thesisID,
		AuthorID:    auth.User.ID,
		Title:       title,
		Abstract:    abstract,
		Keywords:    keywords,
		DocumentKey: documentKey,
		Status:      models.ThesisStatusPending,
	}
	if err := h.theses.Create(c.Request.Context(), thesis); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"thesis": toThesisResponse(thesis)})
}

func (h HandlerSet) MyTheses(c *gin.Context) {
	auth, err := h.auth.CurrentSession(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	theses, err := h.theses.ListByAuthor(c.Request.Context(), auth.User.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"theses": toThesisResponses(theses)})
}

func (h HandlerSet) ListTheses(c *gin.Context) {
	status := models.ThesisStatus(c.DefaultQuery("status", string(models.ThesisStatusPending)))
	limit, offset := pagination(c)

	theses, err := h.theses.ListByStatus(c.Request.Context(), status, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"theses": toThesisResponses(theses)})
}

type reviewThesisRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected published"`
	Note   string `json:"note"`
}

func (h HandlerSet) ReviewThesis(c *gin.Context) {
	auth, err := h.auth.CurrentSession(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req reviewThesisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid review payload"})
		return
	}

	thesis, err := h.theses.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	next := models.ThesisStatus(req.Status)
	if !thesis.Status.CanTransitionTo(next) {
		h.respondError(c, service.ErrInvalidTransition)
		return
	}

	if err := h.theses.UpdateStatus(c.Request.Context(), thesis.ID, next, auth.User.ID, req.Note); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Thesis updated"})
}

// ThesisDownloadLink hands out a short-lived signed URL for the document.
// Students may only link their own theses; staff and above may link any.
func (h HandlerSet) ThesisDownloadLink(c *gin.Context) {
	auth, err := h.auth.CurrentSession(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	thesis, err := h.theses.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if !auth.User.Role.StaffOrAbove() && thesis.AuthorID != auth.User.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
		return
	}

	token, err := security.GenerateDocumentToken(
		h.cfg.Security.DocumentTokenSecret,
		thesis.ID,
		thesis.DocumentKey,
		h.cfg.Security.DocumentTokenTTL,
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":       fmt.Sprintf("/api/v1/documents/%s?token=%s", thesis.ID, token),
		"expiresIn": h.cfg.Security.DocumentTokenTTL.Seconds(),
	})
}

// FetchDocument streams the stored document. Authorization is the signed
// token in the URL; the session cookie plays no part here.
func (h HandlerSet) FetchDocument(c *gin.Context) {
	claims, err := security.ParseDocumentToken(c.Query("token"), h.cfg.Security.DocumentTokenSecret)
	if err != nil || claims.ThesisID != c.Param("thesisId") {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	obj, err := h.store.Get(c.Request.Context(), claims.DocumentKey)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer obj.Close()

	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, obj); err != nil {
		h.log.Error().Err(err).Str("thesis_id", claims.ThesisID).Msg("stream document failed")
	}
}

func toThesisResponses(theses []models.Thesis) []thesisResponse {
	items := make([]thesisResponse, 0, len(theses))
	for _, t := range theses {
		items = append(items, toThesisResponse(t))
	}
	return items
}
