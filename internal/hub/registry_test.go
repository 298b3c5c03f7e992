package hub

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewConnectionRegistry()

	r.Register("user-1", "conn-a")
	r.Register("user-1", "conn-b")
	r.Register("user-2", "conn-c")

	assert.ElementsMatch(t, []string{"conn-a", "conn-b"}, r.ConnectionsFor("user-1"))
	assert.ElementsMatch(t, []string{"conn-c"}, r.ConnectionsFor("user-2"))
	assert.Empty(t, r.ConnectionsFor("unknown"))
}

func TestRegistryRegisterIdempotent(t *testing.T) {
	r := NewConnectionRegistry()

	r.Register("user-1", "conn-a")
	r.Register("user-1", "conn-a")
	r.Register("user-1", "conn-a")

	assert.Equal(t, []string{"conn-a"}, r.ConnectionsFor("user-1"))
}

func TestRegistryUnregisterConnection(t *testing.T) {
	r := NewConnectionRegistry()

	r.Register("user-1", "conn-a")
	r.Register("user-1", "conn-b")

	r.UnregisterConnection("conn-a")
	assert.Equal(t, []string{"conn-b"}, r.ConnectionsFor("user-1"))

	// После снятия последнего соединения запись пользователя исчезает
	r.UnregisterConnection("conn-b")
	assert.Empty(t, r.ConnectionsFor("user-1"))

	r.mu.RLock()
	_, exists := r.users["user-1"]
	r.mu.RUnlock()
	assert.False(t, exists)
}

func TestRegistryUnregisterUnknownConnection(t *testing.T) {
	r := NewConnectionRegistry()
	r.Register("user-1", "conn-a")

	r.UnregisterConnection("never-registered")

	assert.Equal(t, []string{"conn-a"}, r.ConnectionsFor("user-1"))
}

func TestRegistrySnapshotIsCopy(t *testing.T) {
	r := NewConnectionRegistry()
	r.Register("user-1", "conn-a")

	snapshot := r.ConnectionsFor("user-1")
	snapshot[0] = "mutated"

	assert.Equal(t, []string{"conn-a"}, r.ConnectionsFor("user-1"))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewConnectionRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", i%5)
			connID := fmt.Sprintf("conn-%d", i)
			r.Register(userID, connID)
			r.ConnectionsFor(userID)
			r.UnregisterConnection(connID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		assert.Empty(t, r.ConnectionsFor(fmt.Sprintf("user-%d", i)))
	}
}
