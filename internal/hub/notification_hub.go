package hub

import (
	"encoding/json"
	"sync"

	"calendar_notes/pkg/logger"
)

// NotificationHub — отдельный глобальный канал уведомлений. Рассылка
// не адресована ни пользователю, ни комнате: все подключенные клиенты
// получают каждое уведомление.
type NotificationHub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     logger.Logger
}

func NewNotificationHub(log logger.Logger) *NotificationHub {
	return &NotificationHub{
		clients: make(map[string]*Client),
		log:     log,
	}
}

func (h *NotificationHub) Connect(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	h.log.Info("Notification client connected", "conn_id", c.id)
}

func (h *NotificationHub) Disconnect(c *Client) {
	h.mu.Lock()
	_, known := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()

	if known {
		c.closeSend()
		h.log.Info("Notification client disconnected", "conn_id", c.id)
	}
}

// HandleMessage поддерживает единственный вызов — ручную рассылку
// уведомления всем клиентам
func (h *NotificationHub) HandleMessage(c *Client, data []byte) {
	var inv Invocation
	if err := json.Unmarshal(data, &inv); err != nil {
		h.log.Warn("Invalid invocation", "error", err, "conn_id", c.id)
		return
	}

	if inv.Method == MethodSendNotification {
		h.BroadcastAll(inv.Content)
		return
	}

	h.log.Warn("Unknown method on notification hub", "method", inv.Method, "conn_id", c.id)
}

// BroadcastAll отправляет уведомление всем подключенным клиентам
func (h *NotificationHub) BroadcastAll(text string) error {
	data, err := json.Marshal(Event{Event: EventReceiveNotification, Text: text})
	if err != nil {
		return err
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		client.enqueue(data)
	}

	h.log.Info("Notification broadcast", "clients", len(targets))
	return nil
}
