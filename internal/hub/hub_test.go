package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar_notes/internal/domain"
	apperrors "calendar_notes/pkg/errors"
	"calendar_notes/pkg/logger"
)

type fakeChatService struct {
	mu        sync.Mutex
	sendErr   error
	markErr   error
	sent      []*domain.ChatMessage
	markedFor []int64
	nextID    int64
}

func (f *fakeChatService) SendMessage(ctx context.Context, senderID, senderName string, roomID int64, content string) (*domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	message := &domain.ChatMessage{
		ID:         f.nextID,
		ChatRoomID: roomID,
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
		IsRead:     false,
		CreatedAt:  time.Now(),
	}
	f.sent = append(f.sent, message)
	return message, nil
}

func (f *fakeChatService) MarkMessagesAsRead(ctx context.Context, roomID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.markErr != nil {
		return f.markErr
	}
	f.markedFor = append(f.markedFor, roomID)
	return nil
}

func newTestHub(chat ChatService) *ChatHub {
	return NewChatHub(chat, logger.New("error"))
}

func connectClient(h *ChatHub) *Client {
	c := NewClient(nil, h, logger.New("error"))
	h.Connect(c)
	return c
}

func invoke(h *ChatHub, c *Client, inv Invocation) {
	data, _ := json.Marshal(inv)
	h.HandleMessage(c, data)
}

func recvEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data := <-c.send:
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("expected an event, got none")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("expected no event, got %s", data)
	default:
	}
}

func TestRegisterUserAcknowledged(t *testing.T) {
	h := newTestHub(&fakeChatService{})
	c := connectClient(h)

	invoke(h, c, Invocation{Method: MethodRegisterUser, UserID: "user-1", UserName: "Alice"})

	ev := recvEvent(t, c)
	assert.Equal(t, EventUserRegistered, ev.Event)
	assert.Equal(t, "user-1", ev.UserID)
	assert.Equal(t, []string{c.ID()}, h.registry.ConnectionsFor("user-1"))
}

func TestRegisterUserRequiresID(t *testing.T) {
	h := newTestHub(&fakeChatService{})
	c := connectClient(h)

	invoke(h, c, Invocation{Method: MethodRegisterUser, UserName: "Alice"})

	ev := recvEvent(t, c)
	assert.Equal(t, EventError, ev.Event)
}

func TestJoinRoomAcknowledged(t *testing.T) {
	h := newTestHub(&fakeChatService{})
	c := connectClient(h)

	invoke(h, c, Invocation{Method: MethodJoinRoom, RoomID: 7})

	ev := recvEvent(t, c)
	assert.Equal(t, EventJoinedRoom, ev.Event)
	assert.Equal(t, int64(7), ev.RoomID)
	assert.Len(t, h.rooms.Members(7), 1)
}

func TestJoinRoomRequiresID(t *testing.T) {
	h := newTestHub(&fakeChatService{})
	c := connectClient(h)

	invoke(h, c, Invocation{Method: MethodJoinRoom})

	ev := recvEvent(t, c)
	assert.Equal(t, EventError, ev.Event)
	assert.Empty(t, h.rooms.Members(0))
}

func TestBroadcastAfterDisconnectDoesNotPanic(t *testing.T) {
	h := newTestHub(&fakeChatService{})
	a := connectClient(h)
	b := connectClient(h)

	for _, cl := range []*Client{a, b} {
		invoke(h, cl, Invocation{Method: MethodJoinRoom, RoomID: 7})
		recvEvent(t, cl)
	}

	// Рассылка взяла снимок участников до отключения одного из них
	members := h.rooms.Members(7)
	h.Disconnect(b)

	assert.NotPanics(t, func() {
		for _, m := range members {
			m.enqueue([]byte(`{}`))
		}
	})
	assert.False(t, b.enqueue([]byte(`{}`)))
}

func TestConcurrentBroadcastAndDisconnect(t *testing.T) {
	h := newTestHub(&fakeChatService{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		c := connectClient(h)
		invoke(h, c, Invocation{Method: MethodJoinRoom, RoomID: 1})

		wg.Add(2)
		go func(c *Client) {
			defer wg.Done()
			h.Disconnect(c)
		}(c)
		go func(c *Client) {
			defer wg.Done()
			invoke(h, c, Invocation{Method: MethodSendMessage, SenderID: "user-a", SenderName: "Alice", RoomID: 1, Content: "hi"})
		}(c)
	}
	wg.Wait()
}

func TestSendMessageFanOutIncludesSender(t *testing.T) {
	chat := &fakeChatService{}
	h := newTestHub(chat)
	a := connectClient(h)
	b := connectClient(h)

	invoke(h, a, Invocation{Method: MethodJoinRoom, RoomID: 7})
	invoke(h, b, Invocation{Method: MethodJoinRoom, RoomID: 7})
	recvEvent(t, a) // JoinedRoom
	recvEvent(t, b)

	invoke(h, a, Invocation{Method: MethodSendMessage, SenderID: "user-a", SenderName: "Alice", RoomID: 7, Content: "hi"})

	for _, c := range []*Client{a, b} {
		ev := recvEvent(t, c)
		assert.Equal(t, EventReceiveMessage, ev.Event)
		assert.Equal(t, int64(7), ev.RoomID)
		require.NotNil(t, ev.Message)
		assert.Equal(t, "hi", ev.Message.Content)
		assert.False(t, ev.Message.IsRead)
		assert.NotZero(t, ev.Message.ID)
		assert.False(t, ev.Message.CreatedAt.IsZero())
	}

	require.Len(t, chat.sent, 1)
	assert.Equal(t, "user-a", chat.sent[0].SenderID)
}

func TestSendMessageNotDeliveredOutsideRoom(t *testing.T) {
	h := newTestHub(&fakeChatService{})
	a := connectClient(h)
	outsider := connectClient(h)

	invoke(h, a, Invocation{Method: MethodJoinRoom, RoomID: 7})
	recvEvent(t, a)

	invoke(h, a, Invocation{Method: MethodSendMessage, SenderID: "user-a", SenderName: "Alice", RoomID: 7, Content: "hi"})

	recvEvent(t, a)
	assertNoEvent(t, outsider)
}

func TestSendMessageRoomNotFound(t *testing.T) {
	chat := &fakeChatService{sendErr: apperrors.ErrRoomNotFound}
	h := newTestHub(chat)
	a := connectClient(h)
	b := connectClient(h)

	invoke(h, a, Invocation{Method: MethodJoinRoom, RoomID: 7})
	invoke(h, b, Invocation{Method: MethodJoinRoom, RoomID: 7})
	recvEvent(t, a)
	recvEvent(t, b)

	invoke(h, a, Invocation{Method: MethodSendMessage, SenderID: "user-a", SenderName: "Alice", RoomID: 7, Content: "hi"})

	// Ошибка уходит только отправителю, комната ничего не видит
	ev := recvEvent(t, a)
	assert.Equal(t, EventError, ev.Event)
	assert.Equal(t, "chat room not found", ev.Error)
	assertNoEvent(t, b)
	assert.Empty(t, chat.sent)
}

func TestTypingExcludesSender(t *testing.T) {
	h := newTestHub(&fakeChatService{})
	a := connectClient(h)
	b := connectClient(h)
	c := connectClient(h)

	for _, cl := range []*Client{a, b, c} {
		invoke(h, cl, Invocation{Method: MethodJoinRoom, RoomID: 5})
		recvEvent(t, cl)
	}

	invoke(h, a, Invocation{Method: MethodUserTyping, RoomID: 5, UserName: "Alice"})

	for _, cl := range []*Client{b, c} {
		ev := recvEvent(t, cl)
		assert.Equal(t, EventUserTyping, ev.Event)
		assert.Equal(t, "Alice", ev.UserName)
		assert.Equal(t, int64(5), ev.RoomID)
	}
	assertNoEvent(t, a)
}

func TestStoppedTypingExcludesSender(t *testing.T) {
	h := newTestHub(&fakeChatService{})
	a := connectClient(h)
	b := connectClient(h)

	for _, cl := range []*Client{a, b} {
		invoke(h, cl, Invocation{Method: MethodJoinRoom, RoomID: 5})
		recvEvent(t, cl)
	}

	invoke(h, a, Invocation{Method: MethodUserStoppedTyping, RoomID: 5, UserName: "Alice"})

	ev := recvEvent(t, b)
	assert.Equal(t, EventUserStoppedTyping, ev.Event)
	assertNoEvent(t, a)
}

func TestMarkAsReadBroadcastsToOthers(t *testing.T) {
	chat := &fakeChatService{}
	h := newTestHub(chat)
	a := connectClient(h)
	b := connectClient(h)

	for _, cl := range []*Client{a, b} {
		invoke(h, cl, Invocation{Method: MethodJoinRoom, RoomID: 3})
		recvEvent(t, cl)
	}

	invoke(h, a, Invocation{Method: MethodMarkAsRead, RoomID: 3})

	ev := recvEvent(t, b)
	assert.Equal(t, EventMessagesRead, ev.Event)
	assert.Equal(t, int64(3), ev.RoomID)
	assertNoEvent(t, a)
	assert.Equal(t, []int64{3}, chat.markedFor)
}

func TestMarkAsReadStorageFailure(t *testing.T) {
	chat := &fakeChatService{markErr: fmt.Errorf("storage down")}
	h := newTestHub(chat)
	a := connectClient(h)
	b := connectClient(h)

	for _, cl := range []*Client{a, b} {
		invoke(h, cl, Invocation{Method: MethodJoinRoom, RoomID: 3})
		recvEvent(t, cl)
	}

	invoke(h, a, Invocation{Method: MethodMarkAsRead, RoomID: 3})

	ev := recvEvent(t, a)
	assert.Equal(t, EventError, ev.Event)
	assertNoEvent(t, b)
}

func TestDirectMessageReachesAllUserConnections(t *testing.T) {
	h := newTestHub(&fakeChatService{})
	sender := connectClient(h)
	target1 := connectClient(h)
	target2 := connectClient(h)

	invoke(h, target1, Invocation{Method: MethodRegisterUser, UserID: "user-b"})
	invoke(h, target2, Invocation{Method: MethodRegisterUser, UserID: "user-b"})
	recvEvent(t, target1)
	recvEvent(t, target2)

	payload := json.RawMessage(`{"kind":"ping"}`)
	invoke(h, sender, Invocation{Method: MethodSendDirectMessage, TargetUserID: "user-b", Payload: payload})

	for _, cl := range []*Client{target1, target2} {
		ev := recvEvent(t, cl)
		assert.Equal(t, EventReceiveDirectMessage, ev.Event)
		assert.JSONEq(t, string(payload), string(ev.Payload))
	}
	assertNoEvent(t, sender)
}

func TestDirectMessageToOfflineUserIsNoop(t *testing.T) {
	h := newTestHub(&fakeChatService{})
	sender := connectClient(h)

	invoke(h, sender, Invocation{Method: MethodSendDirectMessage, TargetUserID: "nobody", Payload: json.RawMessage(`"x"`)})

	assertNoEvent(t, sender)
}

func TestDisconnectCleansUpRegistryAndRooms(t *testing.T) {
	h := newTestHub(&fakeChatService{})
	a := connectClient(h)
	b := connectClient(h)

	invoke(h, a, Invocation{Method: MethodRegisterUser, UserID: "user-a"})
	invoke(h, a, Invocation{Method: MethodJoinRoom, RoomID: 7})
	recvEvent(t, a)
	recvEvent(t, a)
	invoke(h, b, Invocation{Method: MethodJoinRoom, RoomID: 7})
	recvEvent(t, b)

	h.Disconnect(a)

	assert.Empty(t, h.registry.ConnectionsFor("user-a"))
	assert.Len(t, h.rooms.Members(7), 1)
	assert.Equal(t, b.ID(), h.rooms.Members(7)[0].ID())
}

func TestUnknownMethodReportsError(t *testing.T) {
	h := newTestHub(&fakeChatService{})
	c := connectClient(h)

	invoke(h, c, Invocation{Method: "noSuchMethod"})

	ev := recvEvent(t, c)
	assert.Equal(t, EventError, ev.Event)
}

func TestMalformedInvocationReportsError(t *testing.T) {
	h := newTestHub(&fakeChatService{})
	c := connectClient(h)

	h.HandleMessage(c, []byte("{not json"))

	ev := recvEvent(t, c)
	assert.Equal(t, EventError, ev.Event)
}
