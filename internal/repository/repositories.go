package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"calendar_notes/pkg/logger"
)

type Repositories struct {
	Note        NoteRepository
	ChatRoom    ChatRoomRepository
	ChatMessage ChatMessageRepository
	RateLimit   RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, redis *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		Note:        NewNoteRepository(db, log),
		ChatRoom:    NewChatRoomRepository(db, log),
		ChatMessage: NewChatMessageRepository(db, log),
		RateLimit:   NewRateLimitRepository(redis, log),
	}
}
