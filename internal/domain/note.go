package domain

import "time"

// Note — заметка календаря с временем уведомления
type Note struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Text             string     `json:"text"`
	NotificationTime time.Time  `json:"notification_time"`
	IsNotified       bool       `json:"is_notified"`
	CreatedAt        time.Time  `json:"created_at"`
	ModifiedAt       time.Time  `json:"modified_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
}
