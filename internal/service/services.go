package service

import (
	"calendar_notes/internal/config"
	"calendar_notes/internal/repository"
	"calendar_notes/pkg/logger"
)

type Services struct {
	Note      NoteService
	Chat      ChatService
	RateLimit RateLimitService
	Notifier  *NotifierService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, broadcaster Broadcaster, log logger.Logger) *Services {
	return &Services{
		Note:      NewNoteService(repos.Note, log),
		Chat:      NewChatService(repos.ChatRoom, repos.ChatMessage, log),
		RateLimit: NewRateLimitService(repos.RateLimit, log),
		Notifier:  NewNotifierService(repos.Note, broadcaster, cfg.Notifier, log),
	}
}
