package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"calendar_notes/pkg/logger"
)

func newMemberClient() *Client {
	return NewClient(nil, nil, logger.New("error"))
}

func TestRoomGroupsJoinLeave(t *testing.T) {
	g := NewRoomGroups()
	c := newMemberClient()

	g.Join(7, c)
	assert.Len(t, g.Members(7), 1)

	g.Leave(7, c.ID())
	assert.Empty(t, g.Members(7))
}

func TestRoomGroupsJoinIdempotent(t *testing.T) {
	g := NewRoomGroups()
	c := newMemberClient()

	g.Join(7, c)
	g.Join(7, c)
	g.Join(7, c)

	// Повторный join не порождает дублей в рассылке
	assert.Len(t, g.Members(7), 1)
}

func TestRoomGroupsLeaveAbsent(t *testing.T) {
	g := NewRoomGroups()

	g.Leave(7, "no-such-conn")

	assert.Empty(t, g.Members(7))
}

func TestRoomGroupsLeaveAll(t *testing.T) {
	g := NewRoomGroups()
	c1 := newMemberClient()
	c2 := newMemberClient()

	g.Join(1, c1)
	g.Join(2, c1)
	g.Join(2, c2)

	g.LeaveAll(c1.ID())

	assert.Empty(t, g.Members(1))
	assert.Len(t, g.Members(2), 1)
	assert.Equal(t, c2.ID(), g.Members(2)[0].ID())
}

func TestRoomGroupsMembersExcept(t *testing.T) {
	g := NewRoomGroups()
	c1 := newMemberClient()
	c2 := newMemberClient()
	c3 := newMemberClient()

	g.Join(5, c1)
	g.Join(5, c2)
	g.Join(5, c3)

	others := g.MembersExcept(5, c1.ID())
	assert.Len(t, others, 2)
	for _, m := range others {
		assert.NotEqual(t, c1.ID(), m.ID())
	}
}
