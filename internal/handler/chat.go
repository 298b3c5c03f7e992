package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"calendar_notes/internal/service"
	apperrors "calendar_notes/pkg/errors"
	"calendar_notes/pkg/logger"
)

type ChatHandler struct {
	chatService service.ChatService
	log         logger.Logger
}

func NewChatHandler(chatService service.ChatService, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		log:         log,
	}
}

type CreateRoomRequest struct {
	Name           *string  `json:"name"`
	IsGroupChat    bool     `json:"is_group_chat"`
	CreatorUserID  string   `json:"creator_user_id" binding:"required"`
	ParticipantIDs []string `json:"participant_ids" binding:"required"`
}

func (h *ChatHandler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.chatService.CreateRoom(c.Request.Context(), req.CreatorUserID, req.Name, req.IsGroupChat, req.ParticipantIDs)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, room)
}

func (h *ChatHandler) GetUserRooms(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	rooms, err := h.chatService.GetUserRooms(c.Request.Context(), userID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rooms)
}

func (h *ChatHandler) GetRoomByID(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	room, err := h.chatService.GetRoomByID(c.Request.Context(), roomID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, room)
}

func (h *ChatHandler) GetRoomMessages(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	messages, err := h.chatService.GetRoomMessages(c.Request.Context(), roomID, limit, offset)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, messages)
}

type SendMessageRequest struct {
	SenderID   string `json:"sender_id" binding:"required"`
	SenderName string `json:"sender_name" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// SendMessage — REST-альтернатива отправке через websocket-хаб
func (h *ChatHandler) SendMessage(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), req.SenderID, req.SenderName, roomID, req.Content)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *ChatHandler) MarkMessagesAsRead(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	if err := h.chatService.MarkMessagesAsRead(c.Request.Context(), roomID); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Messages marked as read"})
}

func (h *ChatHandler) GetOrCreatePrivateRoom(c *gin.Context) {
	userID1 := c.Query("userId1")
	userID2 := c.Query("userId2")
	if userID1 == "" || userID2 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId1 and userId2 are required"})
		return
	}

	room, err := h.chatService.GetOrCreatePrivateRoom(c.Request.Context(), userID1, userID2)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, room)
}

func (h *ChatHandler) DeleteRoom(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	if err := h.chatService.DeleteRoom(c.Request.Context(), roomID); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Room deleted"})
}
