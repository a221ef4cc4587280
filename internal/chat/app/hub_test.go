package app

import (
	"testing"

	"medical_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(c *Client) []domain.WSResponse {
	var out []domain.WSResponse
	for {
		select {
		case resp := <-c.send:
			out = append(out, resp)
		default:
			return out
		}
	}
}

func TestHub_BroadcastExcludesOrigin(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	sender := NewClient("P1", nil)
	receiver := NewClient("D1", nil)
	hub.Register(sender)
	hub.Register(receiver)
	hub.JoinRoom("room-1", sender)
	hub.JoinRoom("room-1", receiver)

	event := domain.NewMessageEvent(domain.ChatMessage{ID: "m1", RoomID: "room-1", SenderID: "P1", Body: "hello"})
	hub.Broadcast("room-1", sender, event)

	assert.Empty(t, drain(sender))
	got := drain(receiver)
	require.Len(t, got, 1)
	assert.Equal(t, string(domain.NewMessage), got[0].Action)
}

func TestHub_BroadcastOnlyReachesJoinedRoom(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	joined := NewClient("D1", nil)
	elsewhere := NewClient("D2", nil)
	hub.Register(joined)
	hub.Register(elsewhere)
	hub.JoinRoom("room-1", joined)
	hub.JoinRoom("room-2", elsewhere)

	hub.Broadcast("room-1", nil, domain.WSResponse{Action: string(domain.NewMessage)})

	assert.Len(t, drain(joined), 1)
	assert.Empty(t, drain(elsewhere))
}

func TestHub_BroadcastToEmptyRoom(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	// nobody joined; must be a no-op, not an error
	hub.Broadcast("room-1", nil, domain.WSResponse{Action: string(domain.NewMessage)})
	assert.Equal(t, 0, hub.RoomSize("room-1"))
}

func TestHub_LeaveRoomStopsDelivery(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	c := NewClient("D1", nil)
	hub.Register(c)
	hub.JoinRoom("room-1", c)
	hub.LeaveRoom("room-1", c)

	hub.Broadcast("room-1", nil, domain.WSResponse{Action: string(domain.NewMessage)})
	assert.Empty(t, drain(c))
}

func TestHub_UnregisterRemovesFromAllRooms(t *testing.T) {
	hub := NewHub()

	c := NewClient("D1", nil)
	hub.Register(c)
	hub.JoinRoom("room-1", c)
	hub.JoinRoom("room-2", c)
	require.Equal(t, 1, hub.RoomSize("room-1"))
	require.Equal(t, 1, hub.RoomSize("room-2"))

	hub.Unregister(c)
	assert.Equal(t, 0, hub.RoomSize("room-1"))
	assert.Equal(t, 0, hub.RoomSize("room-2"))

	// queue is closed, WritePump would now return
	_, open := <-c.send
	assert.False(t, open)
}

func TestHub_JoinBeforeRegisterIgnored(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	c := NewClient("D1", nil)
	hub.JoinRoom("room-1", c)
	assert.Equal(t, 0, hub.RoomSize("room-1"))
}

func TestHub_SlowConsumerDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	c := NewClient("D1", nil)
	hub.Register(c)
	hub.JoinRoom("room-1", c)

	// nobody drains the queue; once full, broadcasts must drop and return
	for i := 0; i < clientSendBuffer+10; i++ {
		hub.Broadcast("room-1", nil, domain.WSResponse{Action: string(domain.NewMessage)})
	}

	assert.Len(t, drain(c), clientSendBuffer)
}
