package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"calendar_notes/internal/domain"
	apperrors "calendar_notes/pkg/errors"
	"calendar_notes/pkg/logger"
)

type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	GetByID(ctx context.Context, noteID int64) (*domain.Note, error)
	GetAll(ctx context.Context) ([]*domain.Note, error)
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, noteID int64) error
	GetDueForNotification(ctx context.Context, now time.Time, checkWindow time.Duration) ([]*domain.Note, error)
	MarkNotified(ctx context.Context, noteIDs []int64) error
}

type noteRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewNoteRepository(db *pgxpool.Pool, log logger.Logger) NoteRepository {
	return &noteRepository{db: db, log: log}
}

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	query := `
		INSERT INTO notes (title, text, notification_time, is_notified, created_at, modified_at)
		VALUES ($1, $2, $3, false, now(), now())
		RETURNING id, is_notified, created_at, modified_at
	`

	err := r.db.QueryRow(ctx, query,
		note.Title, note.Text, note.NotificationTime,
	).Scan(&note.ID, &note.IsNotified, &note.CreatedAt, &note.ModifiedAt)

	if err != nil {
		r.log.Error("Failed to create note", "error", err)
		return err
	}

	return nil
}

func (r *noteRepository) GetByID(ctx context.Context, noteID int64) (*domain.Note, error) {
	query := `
		SELECT id, title, text, notification_time, is_notified, created_at, modified_at
		FROM notes
		WHERE id = $1 AND deleted_at IS NULL
	`

	note := &domain.Note{}
	err := r.db.QueryRow(ctx, query, noteID).Scan(
		&note.ID, &note.Title, &note.Text, &note.NotificationTime,
		&note.IsNotified, &note.CreatedAt, &note.ModifiedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoteNotFound
		}
		r.log.Error("Failed to get note", "error", err, "note_id", noteID)
		return nil, err
	}

	return note, nil
}

func (r *noteRepository) GetAll(ctx context.Context) ([]*domain.Note, error) {
	query := `
		SELECT id, title, text, notification_time, is_notified, created_at, modified_at
		FROM notes
		WHERE deleted_at IS NULL
		ORDER BY notification_time
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to get notes", "error", err)
		return nil, err
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		note := &domain.Note{}
		err := rows.Scan(
			&note.ID, &note.Title, &note.Text, &note.NotificationTime,
			&note.IsNotified, &note.CreatedAt, &note.ModifiedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan note", "error", err)
			return nil, err
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

func (r *noteRepository) Update(ctx context.Context, note *domain.Note) error {
	query := `
		UPDATE notes
		SET title = $2, text = $3, notification_time = $4, modified_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING modified_at
	`

	err := r.db.QueryRow(ctx, query,
		note.ID, note.Title, note.Text, note.NotificationTime,
	).Scan(&note.ModifiedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNoteNotFound
		}
		r.log.Error("Failed to update note", "error", err, "note_id", note.ID)
		return err
	}

	return nil
}

func (r *noteRepository) Delete(ctx context.Context, noteID int64) error {
	query := `
		UPDATE notes
		SET deleted_at = now(), modified_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, noteID)
	if err != nil {
		r.log.Error("Failed to delete note", "error", err, "note_id", noteID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNoteNotFound
	}

	return nil
}

// GetDueForNotification выбирает неразосланные заметки, чье время
// уведомления попало в окно (now - checkWindow, now]. Порядок не важен.
func (r *noteRepository) GetDueForNotification(ctx context.Context, now time.Time, checkWindow time.Duration) ([]*domain.Note, error) {
	query := `
		SELECT id, title, text, notification_time, is_notified, created_at, modified_at
		FROM notes
		WHERE is_notified = false
		  AND notification_time <= $1
		  AND notification_time > $2
		  AND deleted_at IS NULL
	`

	rows, err := r.db.Query(ctx, query, now, now.Add(-checkWindow))
	if err != nil {
		r.log.Error("Failed to query due notes", "error", err)
		return nil, err
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		note := &domain.Note{}
		err := rows.Scan(
			&note.ID, &note.Title, &note.Text, &note.NotificationTime,
			&note.IsNotified, &note.CreatedAt, &note.ModifiedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan due note", "error", err)
			return nil, err
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

// MarkNotified выставляет is_notified всей пачке одним коммитом.
// Если транзакция сорвется, заметки попадут в следующую итерацию сканера:
// повторная рассылка допустима, потерянная — нет.
func (r *noteRepository) MarkNotified(ctx context.Context, noteIDs []int64) error {
	if len(noteIDs) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin transaction", "error", err)
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE notes
		SET is_notified = true, modified_at = now()
		WHERE id = ANY($1)
	`

	if _, err := tx.Exec(ctx, query, noteIDs); err != nil {
		r.log.Error("Failed to mark notes notified", "error", err)
		return err
	}

	return tx.Commit(ctx)
}
