package hub

import "sync"

// RoomGroups — членство соединений в широковещательных группах комнат.
// Чисто транспортное состояние: создается на join, снимается на leave
// и целиком при отключении соединения. Ничего не персистится.
type RoomGroups struct {
	mu    sync.RWMutex
	rooms map[int64]map[string]*Client // roomID -> connID -> клиент
}

func NewRoomGroups() *RoomGroups {
	return &RoomGroups{
		rooms: make(map[int64]map[string]*Client),
	}
}

// Join подписывает соединение на рассылки группы. Повторный join идемпотентен.
func (g *RoomGroups) Join(roomID int64, client *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()

	members, ok := g.rooms[roomID]
	if !ok {
		members = make(map[string]*Client)
		g.rooms[roomID] = members
	}
	members[client.ID()] = client
}

// Leave убирает соединение из группы; no-op, если его там нет
func (g *RoomGroups) Leave(roomID int64, connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	members, ok := g.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(g.rooms, roomID)
	}
}

// LeaveAll снимает все членства соединения (вызывается при отключении)
func (g *RoomGroups) LeaveAll(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for roomID, members := range g.rooms {
		delete(members, connID)
		if len(members) == 0 {
			delete(g.rooms, roomID)
		}
	}
}

// Members возвращает снимок участников группы
func (g *RoomGroups) Members(roomID int64) []*Client {
	g.mu.RLock()
	defer g.mu.RUnlock()

	members := g.rooms[roomID]
	result := make([]*Client, 0, len(members))
	for _, client := range members {
		result = append(result, client)
	}
	return result
}

// MembersExcept возвращает снимок участников группы без указанного соединения
func (g *RoomGroups) MembersExcept(roomID int64, connID string) []*Client {
	g.mu.RLock()
	defer g.mu.RUnlock()

	members := g.rooms[roomID]
	result := make([]*Client, 0, len(members))
	for id, client := range members {
		if id == connID {
			continue
		}
		result = append(result, client)
	}
	return result
}
