package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"calendar_notes/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 256
)

// Session — хаб, которому принадлежит соединение
type Session interface {
	HandleMessage(c *Client, data []byte)
	Disconnect(c *Client)
}

// Client — одно живое websocket-соединение. Идентификатор выдается на
// время сессии и нигде не переживает ее.
type Client struct {
	id      string
	session Session
	conn    *websocket.Conn
	log     logger.Logger

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

func NewClient(conn *websocket.Conn, session Session, log logger.Logger) *Client {
	return &Client{
		id:      uuid.NewString(),
		session: session,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		log:     log,
	}
}

func (c *Client) ID() string {
	return c.id
}

// Serve запускает write pump и блокируется в read pump до разрыва соединения
func (c *Client) Serve() {
	go c.writePump()
	c.readPump()
}

// enqueue ставит кадр в исходящую очередь соединения. Рассылка могла
// взять снимок участников до отключения клиента, поэтому после closeSend
// кадр молча отбрасывается. Медленный клиент с переполненным буфером
// кадр пропускает: доставка best-effort, история доступна через REST.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		c.log.Warn("Send buffer full, dropping frame", "conn_id", c.id)
		return false
	}
}

// closeSend закрывает исходящую очередь ровно один раз. Мьютекс общий
// с enqueue: запись в закрытый канал невозможна даже при гонке
// рассылки с отключением.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readPump() {
	defer func() {
		c.session.Disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Error("Failed to set read deadline", "error", err, "conn_id", c.id)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Error("Unexpected close", "error", err, "conn_id", c.id)
			}
			return
		}

		c.session.HandleMessage(c, data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Error("Failed to write message", "error", err, "conn_id", c.id)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
