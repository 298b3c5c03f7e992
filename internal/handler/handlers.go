package handler

import (
	"calendar_notes/internal/hub"
	"calendar_notes/internal/service"
	"calendar_notes/pkg/logger"
)

type Handlers struct {
	Health    *HealthHandler
	Note      *NoteHandler
	Chat      *ChatHandler
	WebSocket *WebSocketHandler
}

func NewHandlers(services *service.Services, chatHub *hub.ChatHub, notificationHub *hub.NotificationHub, log logger.Logger) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(),
		Note:      NewNoteHandler(services.Note, log),
		Chat:      NewChatHandler(services.Chat, log),
		WebSocket: NewWebSocketHandler(chatHub, notificationHub, log),
	}
}
