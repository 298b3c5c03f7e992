package domain

import "time"

// ChatRoom — комната чата. Для приватной комнаты участников ровно двое,
// групповая всегда содержит создателя.
type ChatRoom struct {
	ID             int64      `json:"id"`
	Name           *string    `json:"name,omitempty"`
	IsGroupChat    bool       `json:"is_group_chat"`
	CreatorUserID  string     `json:"creator_user_id"`
	ParticipantIDs []string   `json:"participant_ids"`
	CreatedAt      time.Time  `json:"created_at"`
	ModifiedAt     time.Time  `json:"modified_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`

	// Денормализованные поля для списка комнат
	UnreadCount int          `json:"unread_count"`
	LastMessage *ChatMessage `json:"last_message,omitempty"`
}

// ChatMessage — сообщение в комнате. После создания меняется только флаг IsRead.
type ChatMessage struct {
	ID         int64      `json:"id"`
	ChatRoomID int64      `json:"chat_room_id"`
	SenderID   string     `json:"sender_id"`
	SenderName string     `json:"sender_name"`
	Content    string     `json:"content"`
	IsRead     bool       `json:"is_read"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}
