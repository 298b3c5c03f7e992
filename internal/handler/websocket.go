package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"calendar_notes/internal/hub"
	"calendar_notes/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене нужно проверять origin
	},
}

type WebSocketHandler struct {
	chatHub         *hub.ChatHub
	notificationHub *hub.NotificationHub
	log             logger.Logger
}

func NewWebSocketHandler(chatHub *hub.ChatHub, notificationHub *hub.NotificationHub, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		chatHub:         chatHub,
		notificationHub: notificationHub,
		log:             log,
	}
}

// HandleChat поднимает websocket-соединение чата. Никакой регистрации
// при подключении не происходит: клиент обязан вызвать registerUser сам.
func (h *WebSocketHandler) HandleChat(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := hub.NewClient(conn, h.chatHub, h.log)
	h.chatHub.Connect(client)
	client.Serve()
}

// HandleNotifications поднимает соединение на глобальном канале уведомлений
func (h *WebSocketHandler) HandleNotifications(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := hub.NewClient(conn, h.notificationHub, h.log)
	h.notificationHub.Connect(client)
	client.Serve()
}
