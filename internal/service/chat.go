package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"calendar_notes/internal/domain"
	"calendar_notes/internal/repository"
	apperrors "calendar_notes/pkg/errors"
	"calendar_notes/pkg/logger"
)

const maxMessageLength = 2000

type ChatService interface {
	CreateRoom(ctx context.Context, creatorUserID string, name *string, isGroupChat bool, participantIDs []string) (*domain.ChatRoom, error)
	GetUserRooms(ctx context.Context, userID string) ([]*domain.ChatRoom, error)
	GetRoomByID(ctx context.Context, roomID int64) (*domain.ChatRoom, error)
	GetOrCreatePrivateRoom(ctx context.Context, userID1, userID2 string) (*domain.ChatRoom, error)
	SendMessage(ctx context.Context, senderID, senderName string, roomID int64, content string) (*domain.ChatMessage, error)
	GetRoomMessages(ctx context.Context, roomID int64, limit, offset int) ([]*domain.ChatMessage, error)
	MarkMessagesAsRead(ctx context.Context, roomID int64) error
	DeleteRoom(ctx context.Context, roomID int64) error
}

type chatService struct {
	roomRepo    repository.ChatRoomRepository
	messageRepo repository.ChatMessageRepository
	log         logger.Logger
}

func NewChatService(roomRepo repository.ChatRoomRepository, messageRepo repository.ChatMessageRepository, log logger.Logger) ChatService {
	return &chatService{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		log:         log,
	}
}

// CreateRoom создает комнату. Приватная комната — ровно два участника,
// групповая — минимум два и всегда содержит создателя.
func (s *chatService) CreateRoom(ctx context.Context, creatorUserID string, name *string, isGroupChat bool, participantIDs []string) (*domain.ChatRoom, error) {
	if creatorUserID == "" {
		return nil, fmt.Errorf("%w: creator is required", apperrors.ErrBadRequest)
	}

	participants := dedupeParticipants(participantIDs)
	if !containsParticipant(participants, creatorUserID) {
		participants = append(participants, creatorUserID)
	}

	if isGroupChat {
		if len(participants) < 2 {
			return nil, fmt.Errorf("%w: group chat requires at least two participants", apperrors.ErrBadRequest)
		}
	} else {
		if len(participants) != 2 {
			return nil, fmt.Errorf("%w: private chat requires exactly two participants", apperrors.ErrBadRequest)
		}
	}

	room := &domain.ChatRoom{
		Name:           name,
		IsGroupChat:    isGroupChat,
		CreatorUserID:  creatorUserID,
		ParticipantIDs: participants,
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, err
	}

	s.log.Info("Chat room created", "room_id", room.ID, "creator", creatorUserID, "group", isGroupChat)
	return room, nil
}

func (s *chatService) GetUserRooms(ctx context.Context, userID string) ([]*domain.ChatRoom, error) {
	rooms, err := s.roomRepo.GetUserRooms(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, room := range rooms {
		unread, err := s.messageRepo.GetUnreadCount(ctx, room.ID)
		if err != nil {
			return nil, err
		}
		room.UnreadCount = unread

		last, err := s.messageRepo.GetLastMessage(ctx, room.ID)
		if err != nil {
			return nil, err
		}
		room.LastMessage = last
	}

	return rooms, nil
}

func (s *chatService) GetRoomByID(ctx context.Context, roomID int64) (*domain.ChatRoom, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	unread, err := s.messageRepo.GetUnreadCount(ctx, roomID)
	if err != nil {
		return nil, err
	}
	room.UnreadCount = unread

	return room, nil
}

// GetOrCreatePrivateRoom создает комнату только когда ее действительно нет.
// Сбой поиска — не повод плодить дубликаты: ошибка уходит вызывающему.
func (s *chatService) GetOrCreatePrivateRoom(ctx context.Context, userID1, userID2 string) (*domain.ChatRoom, error) {
	room, err := s.roomRepo.FindPrivateRoom(ctx, userID1, userID2)
	if err != nil {
		if errors.Is(err, apperrors.ErrRoomNotFound) {
			return s.CreateRoom(ctx, userID1, nil, false, []string{userID1, userID2})
		}
		return nil, err
	}

	unread, err := s.messageRepo.GetUnreadCount(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	room.UnreadCount = unread
	return room, nil
}

// SendMessage проверяет существование комнаты, сохраняет сообщение
// с is_read=false и возвращает его с присвоенным id и временем создания
func (s *chatService) SendMessage(ctx context.Context, senderID, senderName string, roomID int64, content string) (*domain.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", apperrors.ErrBadRequest)
	}
	if len(content) > maxMessageLength {
		return nil, fmt.Errorf("%w: content exceeds %d characters", apperrors.ErrBadRequest, maxMessageLength)
	}

	if _, err := s.roomRepo.GetByID(ctx, roomID); err != nil {
		return nil, err
	}

	message := &domain.ChatMessage{
		ChatRoomID: roomID,
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}

func (s *chatService) GetRoomMessages(ctx context.Context, roomID int64, limit, offset int) ([]*domain.ChatMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.messageRepo.GetRoomMessages(ctx, roomID, limit, offset)
}

func (s *chatService) MarkMessagesAsRead(ctx context.Context, roomID int64) error {
	return s.messageRepo.MarkAllRead(ctx, roomID)
}

func (s *chatService) DeleteRoom(ctx context.Context, roomID int64) error {
	return s.roomRepo.Delete(ctx, roomID)
}

func dedupeParticipants(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func containsParticipant(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
