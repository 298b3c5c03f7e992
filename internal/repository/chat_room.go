package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"calendar_notes/internal/domain"
	apperrors "calendar_notes/pkg/errors"
	"calendar_notes/pkg/logger"
)

type ChatRoomRepository interface {
	Create(ctx context.Context, room *domain.ChatRoom) error
	GetByID(ctx context.Context, roomID int64) (*domain.ChatRoom, error)
	GetUserRooms(ctx context.Context, userID string) ([]*domain.ChatRoom, error)
	FindPrivateRoom(ctx context.Context, userID1, userID2 string) (*domain.ChatRoom, error)
	Delete(ctx context.Context, roomID int64) error
}

type chatRoomRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewChatRoomRepository(db *pgxpool.Pool, log logger.Logger) ChatRoomRepository {
	return &chatRoomRepository{db: db, log: log}
}

// Участники хранятся строкой через запятую; семантически это множество,
// порядок не имеет значения.
func joinParticipants(ids []string) string {
	return strings.Join(ids, ",")
}

func splitParticipants(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func (r *chatRoomRepository) Create(ctx context.Context, room *domain.ChatRoom) error {
	query := `
		INSERT INTO chat_rooms (name, is_group_chat, creator_user_id, participant_ids, created_at, modified_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, created_at, modified_at
	`

	err := r.db.QueryRow(ctx, query,
		room.Name, room.IsGroupChat, room.CreatorUserID, joinParticipants(room.ParticipantIDs),
	).Scan(&room.ID, &room.CreatedAt, &room.ModifiedAt)

	if err != nil {
		r.log.Error("Failed to create chat room", "error", err)
		return err
	}

	return nil
}

func (r *chatRoomRepository) GetByID(ctx context.Context, roomID int64) (*domain.ChatRoom, error) {
	query := `
		SELECT id, name, is_group_chat, creator_user_id, participant_ids, created_at, modified_at
		FROM chat_rooms
		WHERE id = $1 AND deleted_at IS NULL
	`

	room := &domain.ChatRoom{}
	var participants string
	err := r.db.QueryRow(ctx, query, roomID).Scan(
		&room.ID, &room.Name, &room.IsGroupChat, &room.CreatorUserID,
		&participants, &room.CreatedAt, &room.ModifiedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRoomNotFound
		}
		r.log.Error("Failed to get chat room", "error", err, "room_id", roomID)
		return nil, err
	}

	room.ParticipantIDs = splitParticipants(participants)
	return room, nil
}

func (r *chatRoomRepository) GetUserRooms(ctx context.Context, userID string) ([]*domain.ChatRoom, error) {
	// Обрамление запятыми дает точное совпадение элемента списка:
	// u1 не должен видеть комнату, где состоит только u12
	query := `
		SELECT id, name, is_group_chat, creator_user_id, participant_ids, created_at, modified_at
		FROM chat_rooms
		WHERE ',' || participant_ids || ',' LIKE '%,' || $1 || ',%' AND deleted_at IS NULL
		ORDER BY modified_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to get user rooms", "error", err, "user_id", userID)
		return nil, err
	}
	defer rows.Close()

	var rooms []*domain.ChatRoom
	for rows.Next() {
		room := &domain.ChatRoom{}
		var participants string
		err := rows.Scan(
			&room.ID, &room.Name, &room.IsGroupChat, &room.CreatorUserID,
			&participants, &room.CreatedAt, &room.ModifiedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan chat room", "error", err)
			return nil, err
		}
		room.ParticipantIDs = splitParticipants(participants)
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

func (r *chatRoomRepository) FindPrivateRoom(ctx context.Context, userID1, userID2 string) (*domain.ChatRoom, error) {
	query := `
		SELECT id, name, is_group_chat, creator_user_id, participant_ids, created_at, modified_at
		FROM chat_rooms
		WHERE is_group_chat = false
		  AND ',' || participant_ids || ',' LIKE '%,' || $1 || ',%'
		  AND ',' || participant_ids || ',' LIKE '%,' || $2 || ',%'
		  AND deleted_at IS NULL
		LIMIT 1
	`

	room := &domain.ChatRoom{}
	var participants string
	err := r.db.QueryRow(ctx, query, userID1, userID2).Scan(
		&room.ID, &room.Name, &room.IsGroupChat, &room.CreatorUserID,
		&participants, &room.CreatedAt, &room.ModifiedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRoomNotFound
		}
		r.log.Error("Failed to find private room", "error", err)
		return nil, err
	}

	room.ParticipantIDs = splitParticipants(participants)
	return room, nil
}

// Delete мягко удаляет комнату вместе с сообщениями одной транзакцией
func (r *chatRoomRepository) Delete(ctx context.Context, roomID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin transaction", "error", err)
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE chat_rooms
		SET deleted_at = now(), modified_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, roomID)
	if err != nil {
		r.log.Error("Failed to delete chat room", "error", err, "room_id", roomID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrRoomNotFound
	}

	if _, err := tx.Exec(ctx, `
		UPDATE chat_messages
		SET deleted_at = now(), modified_at = now()
		WHERE chat_room_id = $1 AND deleted_at IS NULL
	`, roomID); err != nil {
		r.log.Error("Failed to delete room messages", "error", err, "room_id", roomID)
		return err
	}

	return tx.Commit(ctx)
}
