package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"calendar_notes/internal/domain"
	"calendar_notes/internal/service"
	apperrors "calendar_notes/pkg/errors"
	"calendar_notes/pkg/logger"
)

type NoteHandler struct {
	noteService service.NoteService
	log         logger.Logger
}

func NewNoteHandler(noteService service.NoteService, log logger.Logger) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		log:         log,
	}
}

func (h *NoteHandler) List(c *gin.Context) {
	notes, err := h.noteService.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, notes)
}

func (h *NoteHandler) GetByID(c *gin.Context) {
	noteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note ID"})
		return
	}

	note, err := h.noteService.GetByID(c.Request.Context(), noteID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, note)
}

type CreateNoteRequest struct {
	Title            string    `json:"title" binding:"required"`
	Text             string    `json:"text"`
	NotificationTime time.Time `json:"notification_time" binding:"required"`
}

func (h *NoteHandler) Create(c *gin.Context) {
	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := h.noteService.Create(c.Request.Context(), req.Title, req.Text, req.NotificationTime)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, note)
}

type UpdateNoteRequest struct {
	Title            string    `json:"title" binding:"required"`
	Text             string    `json:"text"`
	NotificationTime time.Time `json:"notification_time" binding:"required"`
}

func (h *NoteHandler) Update(c *gin.Context) {
	noteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note ID"})
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note := &domain.Note{
		ID:               noteID,
		Title:            req.Title,
		Text:             req.Text,
		NotificationTime: req.NotificationTime,
	}

	if err := h.noteService.Update(c.Request.Context(), note); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note updated"})
}

func (h *NoteHandler) Delete(c *gin.Context) {
	noteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note ID"})
		return
	}

	if err := h.noteService.Delete(c.Request.Context(), noteID); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note deleted"})
}
