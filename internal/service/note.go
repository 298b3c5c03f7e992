package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"calendar_notes/internal/domain"
	"calendar_notes/internal/repository"
	apperrors "calendar_notes/pkg/errors"
	"calendar_notes/pkg/logger"
)

type NoteService interface {
	GetAll(ctx context.Context) ([]*domain.Note, error)
	GetByID(ctx context.Context, noteID int64) (*domain.Note, error)
	Create(ctx context.Context, title, text string, notificationTime time.Time) (*domain.Note, error)
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, noteID int64) error
}

type noteService struct {
	noteRepo repository.NoteRepository
	log      logger.Logger
}

func NewNoteService(noteRepo repository.NoteRepository, log logger.Logger) NoteService {
	return &noteService{noteRepo: noteRepo, log: log}
}

func (s *noteService) GetAll(ctx context.Context) ([]*domain.Note, error) {
	return s.noteRepo.GetAll(ctx)
}

func (s *noteService) GetByID(ctx context.Context, noteID int64) (*domain.Note, error) {
	return s.noteRepo.GetByID(ctx, noteID)
}

func (s *noteService) Create(ctx context.Context, title, text string, notificationTime time.Time) (*domain.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrBadRequest)
	}
	if notificationTime.IsZero() {
		return nil, fmt.Errorf("%w: notification time is required", apperrors.ErrBadRequest)
	}

	note := &domain.Note{
		Title:            title,
		Text:             text,
		NotificationTime: notificationTime,
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	return note, nil
}

func (s *noteService) Update(ctx context.Context, note *domain.Note) error {
	note.Title = strings.TrimSpace(note.Title)
	if note.Title == "" {
		return fmt.Errorf("%w: title is required", apperrors.ErrBadRequest)
	}

	return s.noteRepo.Update(ctx, note)
}

func (s *noteService) Delete(ctx context.Context, noteID int64) error {
	return s.noteRepo.Delete(ctx, noteID)
}
