package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"calendar_notes/internal/domain"
	"calendar_notes/pkg/logger"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *domain.ChatMessage) error
	GetRoomMessages(ctx context.Context, roomID int64, limit, offset int) ([]*domain.ChatMessage, error)
	GetLastMessage(ctx context.Context, roomID int64) (*domain.ChatMessage, error)
	GetUnreadCount(ctx context.Context, roomID int64) (int, error)
	MarkAllRead(ctx context.Context, roomID int64) error
}

type chatMessageRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewChatMessageRepository(db *pgxpool.Pool, log logger.Logger) ChatMessageRepository {
	return &chatMessageRepository{db: db, log: log}
}

func (r *chatMessageRepository) Create(ctx context.Context, message *domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (chat_room_id, sender_id, sender_name, content, is_read, created_at, modified_at)
		VALUES ($1, $2, $3, $4, false, now(), now())
		RETURNING id, is_read, created_at, modified_at
	`

	err := r.db.QueryRow(ctx, query,
		message.ChatRoomID, message.SenderID, message.SenderName, message.Content,
	).Scan(&message.ID, &message.IsRead, &message.CreatedAt, &message.ModifiedAt)

	if err != nil {
		r.log.Error("Failed to create message", "error", err, "room_id", message.ChatRoomID)
		return err
	}

	return nil
}

func (r *chatMessageRepository) GetRoomMessages(ctx context.Context, roomID int64, limit, offset int) ([]*domain.ChatMessage, error) {
	// Отображение сортируется по времени создания, id — тайбрейк
	query := `
		SELECT id, chat_room_id, sender_id, sender_name, content, is_read, created_at, modified_at
		FROM chat_messages
		WHERE chat_room_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, roomID, limit, offset)
	if err != nil {
		r.log.Error("Failed to get messages", "error", err, "room_id", roomID)
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.ChatMessage
	for rows.Next() {
		message := &domain.ChatMessage{}
		err := rows.Scan(
			&message.ID, &message.ChatRoomID, &message.SenderID, &message.SenderName,
			&message.Content, &message.IsRead, &message.CreatedAt, &message.ModifiedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

func (r *chatMessageRepository) GetLastMessage(ctx context.Context, roomID int64) (*domain.ChatMessage, error) {
	query := `
		SELECT id, chat_room_id, sender_id, sender_name, content, is_read, created_at, modified_at
		FROM chat_messages
		WHERE chat_room_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	message := &domain.ChatMessage{}
	err := r.db.QueryRow(ctx, query, roomID).Scan(
		&message.ID, &message.ChatRoomID, &message.SenderID, &message.SenderName,
		&message.Content, &message.IsRead, &message.CreatedAt, &message.ModifiedAt,
	)

	if err != nil {
		// Отсутствие сообщений в комнате — не ошибка, все остальное — да
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("Failed to get last message", "error", err, "room_id", roomID)
		return nil, err
	}

	return message, nil
}

func (r *chatMessageRepository) GetUnreadCount(ctx context.Context, roomID int64) (int, error) {
	query := `
		SELECT count(*)
		FROM chat_messages
		WHERE chat_room_id = $1 AND is_read = false AND deleted_at IS NULL
	`

	var count int
	if err := r.db.QueryRow(ctx, query, roomID).Scan(&count); err != nil {
		r.log.Error("Failed to get unread count", "error", err, "room_id", roomID)
		return 0, err
	}

	return count, nil
}

// MarkAllRead помечает все непрочитанные сообщения комнаты одним запросом
func (r *chatMessageRepository) MarkAllRead(ctx context.Context, roomID int64) error {
	query := `
		UPDATE chat_messages
		SET is_read = true, modified_at = now()
		WHERE chat_room_id = $1 AND is_read = false AND deleted_at IS NULL
	`

	if _, err := r.db.Exec(ctx, query, roomID); err != nil {
		r.log.Error("Failed to mark messages read", "error", err, "room_id", roomID)
		return err
	}

	return nil
}
