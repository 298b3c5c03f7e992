package service

import (
	"context"
	"fmt"
	"time"

	"calendar_notes/internal/config"
	"calendar_notes/internal/domain"
	"calendar_notes/internal/repository"
	"calendar_notes/pkg/logger"
)

// Broadcaster — канал доставки уведомлений всем подключенным клиентам
type Broadcaster interface {
	BroadcastAll(text string) error
}

// NotifierService — фоновый сканер заметок. Одна итерация: найти
// неразосланные заметки, чье время попало в окно проверки, разослать
// уведомление всем клиентам и пометить пачку одним коммитом.
//
// Заметка, чья рассылка не удалась, в коммит не попадает и будет
// подхвачена следующей итерацией: повторное уведомление — допустимый
// исход, потерянное — нет.
type NotifierService struct {
	notes       repository.NoteRepository
	broadcaster Broadcaster
	cfg         config.NotifierConfig
	log         logger.Logger
}

func NewNotifierService(notes repository.NoteRepository, broadcaster Broadcaster, cfg config.NotifierConfig, log logger.Logger) *NotifierService {
	return &NotifierService{
		notes:       notes,
		broadcaster: broadcaster,
		cfg:         cfg,
		log:         log,
	}
}

// Run крутит цикл сканирования до отмены контекста. Ошибки итерации
// логируются и не прерывают цикл: одна неудачная итерация не должна
// останавливать сканер. Отмена прерывает и паузу между итерациями.
func (s *NotifierService) Run(ctx context.Context) {
	s.log.Info("Notification scanner started",
		"delay", s.cfg.Delay, "check_window", s.cfg.CheckWindow, "utc_offset", s.cfg.UTCOffset)

	timer := time.NewTimer(s.cfg.Delay)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			s.log.Info("Notification scanner stopped")
			return
		}

		s.RunIteration(ctx)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(s.cfg.Delay)

		select {
		case <-ctx.Done():
			s.log.Info("Notification scanner stopped")
			return
		case <-timer.C:
		}
	}
}

// RunIteration выполняет один проход сканера. Колонка времени в БД
// хранится без таймзоны, поэтому "сейчас" корректируется настроенной
// поправкой к UTC, а не вычисляется из локальной зоны процесса.
func (s *NotifierService) RunIteration(ctx context.Context) {
	now := time.Now().UTC().Add(s.cfg.UTCOffset)

	notes, err := s.notes.GetDueForNotification(ctx, now, s.cfg.CheckWindow)
	if err != nil {
		s.log.Error("Failed to query due notes", "error", err)
		return
	}

	if len(notes) == 0 {
		return
	}

	notified := make([]int64, 0, len(notes))
	for _, note := range notes {
		if err := s.broadcast(note); err != nil {
			s.log.Error("Failed to broadcast notification", "error", err, "note_id", note.ID)
			continue
		}
		notified = append(notified, note.ID)
	}

	if err := s.notes.MarkNotified(ctx, notified); err != nil {
		// Заметки останутся в окне и будут разосланы повторно
		s.log.Error("Failed to mark notes notified", "error", err, "count", len(notified))
		return
	}

	s.log.Info("Notifications dispatched", "count", len(notified))
}

func (s *NotifierService) broadcast(note *domain.Note) error {
	text := fmt.Sprintf("Notification: %s - %s", note.Title, note.Text)
	return s.broadcaster.BroadcastAll(text)
}
