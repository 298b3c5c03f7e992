package hub

import (
	"encoding/json"

	"calendar_notes/internal/domain"
)

// Методы, которые клиент вызывает через push-канал
const (
	MethodRegisterUser      = "registerUser"
	MethodJoinRoom          = "joinRoom"
	MethodLeaveRoom         = "leaveRoom"
	MethodSendMessage       = "sendMessage"
	MethodUserTyping        = "userTyping"
	MethodUserStoppedTyping = "userStoppedTyping"
	MethodMarkAsRead        = "markAsRead"
	MethodSendDirectMessage = "sendDirectMessage"
	MethodSendNotification  = "sendNotification"
)

// События, которые сервер отправляет клиентам
const (
	EventUserRegistered       = "UserRegistered"
	EventJoinedRoom           = "JoinedRoom"
	EventReceiveMessage       = "ReceiveMessage"
	EventUserTyping           = "UserTyping"
	EventUserStoppedTyping    = "UserStoppedTyping"
	EventMessagesRead         = "MessagesRead"
	EventReceiveDirectMessage = "ReceiveDirectMessage"
	EventError                = "Error"
	EventReceiveNotification  = "ReceiveNotification"
)

// Invocation — входящий конверт вызова. Набор полей зависит от метода,
// лишние поля игнорируются.
type Invocation struct {
	Method       string          `json:"method"`
	UserID       string          `json:"userId,omitempty"`
	UserName     string          `json:"userName,omitempty"`
	RoomID       int64           `json:"roomId,omitempty"`
	SenderID     string          `json:"senderId,omitempty"`
	SenderName   string          `json:"senderName,omitempty"`
	Content      string          `json:"content,omitempty"`
	TargetUserID string          `json:"targetUserId,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

// Event — исходящий конверт события
type Event struct {
	Event    string              `json:"event"`
	UserID   string              `json:"userId,omitempty"`
	UserName string              `json:"userName,omitempty"`
	RoomID   int64               `json:"roomId,omitempty"`
	Message  *domain.ChatMessage `json:"message,omitempty"`
	Payload  json.RawMessage     `json:"payload,omitempty"`
	Text     string              `json:"text,omitempty"`
	Error    string              `json:"error,omitempty"`
}
