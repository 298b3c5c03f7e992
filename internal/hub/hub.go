package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"calendar_notes/internal/domain"
	apperrors "calendar_notes/pkg/errors"
	"calendar_notes/pkg/logger"
)

// ChatService — срез функциональности чата, который нужен хабу
type ChatService interface {
	SendMessage(ctx context.Context, senderID, senderName string, roomID int64, content string) (*domain.ChatMessage, error)
	MarkMessagesAsRead(ctx context.Context, roomID int64) error
}

// ChatHub координирует чат в реальном времени: регистрацию пользователей,
// членство в комнатах, рассылку сообщений и событий присутствия.
type ChatHub struct {
	mu       sync.RWMutex
	clients  map[string]*Client // connID -> клиент
	registry *ConnectionRegistry
	rooms    *RoomGroups
	chat     ChatService
	log      logger.Logger
}

func NewChatHub(chat ChatService, log logger.Logger) *ChatHub {
	return &ChatHub{
		clients:  make(map[string]*Client),
		registry: NewConnectionRegistry(),
		rooms:    NewRoomGroups(),
		chat:     chat,
		log:      log,
	}
}

// Connect вводит соединение в хаб. Регистрация пользователя при этом
// не происходит — клиент обязан явно вызвать registerUser.
func (h *ChatHub) Connect(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	h.log.Info("Client connected", "conn_id", c.id)
}

// Disconnect снимает соединение с учета: из реестра пользователей
// и из всех групп комнат, в которых оно состояло.
func (h *ChatHub) Disconnect(c *Client) {
	h.mu.Lock()
	_, known := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()

	h.registry.UnregisterConnection(c.id)
	h.rooms.LeaveAll(c.id)

	// Очередь закрывается через closeSend: рассылка, взявшая снимок
	// участников до отключения, не должна попасть в закрытый канал
	if known {
		c.closeSend()
		h.log.Info("Client disconnected", "conn_id", c.id)
	}
}

// HandleMessage разбирает входящий вызов и выполняет его
func (h *ChatHub) HandleMessage(c *Client, data []byte) {
	var inv Invocation
	if err := json.Unmarshal(data, &inv); err != nil {
		h.log.Warn("Invalid invocation", "error", err, "conn_id", c.id)
		h.sendError(c, "invalid message format")
		return
	}

	ctx := context.Background()

	switch inv.Method {
	case MethodRegisterUser:
		h.registerUser(c, inv.UserID, inv.UserName)
	case MethodJoinRoom:
		h.joinRoom(c, inv.RoomID)
	case MethodLeaveRoom:
		h.leaveRoom(c, inv.RoomID)
	case MethodSendMessage:
		h.sendMessage(ctx, c, inv)
	case MethodUserTyping:
		h.broadcastTyping(c, EventUserTyping, inv.RoomID, inv.UserName)
	case MethodUserStoppedTyping:
		h.broadcastTyping(c, EventUserStoppedTyping, inv.RoomID, inv.UserName)
	case MethodMarkAsRead:
		h.markAsRead(ctx, c, inv.RoomID)
	case MethodSendDirectMessage:
		h.sendDirectMessage(c, inv.TargetUserID, inv.Payload)
	default:
		h.log.Warn("Unknown method", "method", inv.Method, "conn_id", c.id)
		h.sendError(c, "unknown method")
	}
}

func (h *ChatHub) registerUser(c *Client, userID, userName string) {
	if userID == "" {
		h.sendError(c, "userId is required")
		return
	}

	h.registry.Register(userID, c.id)
	h.log.Info("User registered", "user_id", userID, "user_name", userName, "conn_id", c.id)

	h.sendTo(c, Event{Event: EventUserRegistered, UserID: userID})
}

func (h *ChatHub) joinRoom(c *Client, roomID int64) {
	if roomID <= 0 {
		h.sendError(c, "roomId is required")
		return
	}

	h.rooms.Join(roomID, c)
	h.log.Info("Connection joined room", "conn_id", c.id, "room_id", roomID)

	h.sendTo(c, Event{Event: EventJoinedRoom, RoomID: roomID})
}

func (h *ChatHub) leaveRoom(c *Client, roomID int64) {
	h.rooms.Leave(roomID, c.id)
	h.log.Info("Connection left room", "conn_id", c.id, "room_id", roomID)
}

// sendMessage сохраняет сообщение и рассылает его всем участникам группы,
// включая отправителя. Ошибка уходит только вызвавшему соединению:
// остальная комната о неудачной отправке не узнает.
func (h *ChatHub) sendMessage(ctx context.Context, c *Client, inv Invocation) {
	message, err := h.chat.SendMessage(ctx, inv.SenderID, inv.SenderName, inv.RoomID, inv.Content)
	if err != nil {
		h.log.Error("Failed to send message", "error", err, "room_id", inv.RoomID, "conn_id", c.id)
		if errors.Is(err, apperrors.ErrRoomNotFound) {
			h.sendError(c, "chat room not found")
		} else {
			h.sendError(c, "failed to send message")
		}
		return
	}

	h.broadcastToRoom(inv.RoomID, Event{Event: EventReceiveMessage, RoomID: inv.RoomID, Message: message})
	h.log.Info("Message sent to room", "room_id", inv.RoomID, "sender", inv.SenderName)
}

// broadcastTyping рассылает индикатор набора всем в комнате, кроме
// отправителя: клиент не должен видеть собственный индикатор.
func (h *ChatHub) broadcastTyping(c *Client, event string, roomID int64, userName string) {
	h.broadcastToOthers(roomID, c.id, Event{Event: event, RoomID: roomID, UserName: userName})
}

// markAsRead помечает сообщения прочитанными одним запросом и уведомляет
// остальных участников. Неудачная рассылка после успешного апдейта
// не фатальна: состояние в БД уже корректно.
func (h *ChatHub) markAsRead(ctx context.Context, c *Client, roomID int64) {
	if err := h.chat.MarkMessagesAsRead(ctx, roomID); err != nil {
		h.log.Error("Failed to mark messages read", "error", err, "room_id", roomID)
		h.sendError(c, "failed to mark messages as read")
		return
	}

	h.broadcastToOthers(roomID, c.id, Event{Event: EventMessagesRead, RoomID: roomID})
}

// sendDirectMessage доставляет payload на все живые соединения адресата.
// Если их нет — молча ничего не делает: store-and-forward здесь не место,
// это только live-доставка.
func (h *ChatHub) sendDirectMessage(c *Client, targetUserID string, payload json.RawMessage) {
	connIDs := h.registry.ConnectionsFor(targetUserID)
	if len(connIDs) == 0 {
		return
	}

	ev := Event{Event: EventReceiveDirectMessage, Payload: payload}

	h.mu.RLock()
	targets := make([]*Client, 0, len(connIDs))
	for _, connID := range connIDs {
		if target, ok := h.clients[connID]; ok {
			targets = append(targets, target)
		}
	}
	h.mu.RUnlock()

	for _, target := range targets {
		h.sendTo(target, ev)
	}
}

func (h *ChatHub) broadcastToRoom(roomID int64, ev Event) {
	for _, member := range h.rooms.Members(roomID) {
		h.sendTo(member, ev)
	}
}

func (h *ChatHub) broadcastToOthers(roomID int64, exceptConnID string, ev Event) {
	for _, member := range h.rooms.MembersExcept(roomID, exceptConnID) {
		h.sendTo(member, ev)
	}
}

func (h *ChatHub) sendTo(c *Client, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("Failed to marshal event", "error", err, "event", ev.Event)
		return
	}
	c.enqueue(data)
}

func (h *ChatHub) sendError(c *Client, message string) {
	h.sendTo(c, Event{Event: EventError, Error: message})
}
