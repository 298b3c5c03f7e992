package hub

import "sync"

// ConnectionRegistry хранит соответствие пользователя и его живых соединений.
// У пользователя может быть несколько соединений (несколько вкладок, устройств).
// Состояние живет только в памяти процесса и строится заново после рестарта:
// клиенты обязаны пройти регистрацию повторно.
type ConnectionRegistry struct {
	mu    sync.RWMutex
	users map[string]map[string]struct{} // userID -> множество connection ID
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		users: make(map[string]map[string]struct{}),
	}
}

// Register добавляет соединение в множество пользователя. Повторная
// регистрация той же пары — no-op.
func (r *ConnectionRegistry) Register(userID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.users[userID]
	if !ok {
		conns = make(map[string]struct{})
		r.users[userID] = conns
	}
	conns[connID] = struct{}{}
}

// UnregisterConnection убирает соединение из всех множеств, где оно встречается.
// Запись пользователя удаляется целиком, как только множество опустело:
// пользователь присутствует в реестре тогда и только тогда, когда у него
// есть хотя бы одно живое соединение.
func (r *ConnectionRegistry) UnregisterConnection(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, conns := range r.users {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(r.users, userID)
		}
	}
}

// ConnectionsFor возвращает копию текущего множества соединений пользователя.
// Для неизвестного пользователя — пустой срез.
func (r *ConnectionRegistry) ConnectionsFor(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.users[userID]
	result := make([]string, 0, len(conns))
	for connID := range conns {
		result = append(result, connID)
	}
	return result
}
