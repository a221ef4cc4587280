package repository

import (
	"context"
	"time"

	"medical_chat_service/internal/chat/domain"
	"medical_chat_service/pkg/database"

	"github.com/go-redis/redis/v8"
)

// ChatCache definition short-TTL read cache of the chat list and message
// log. A miss or a cache error is never fatal; callers fall through to
// the durable store.
type ChatCache interface {
	GetRoomList(ctx context.Context, userID string) ([]domain.RoomSummary, error)
	SetRoomList(ctx context.Context, userID string, list []domain.RoomSummary) error
	GetMessages(ctx context.Context, roomID string) ([]domain.ChatMessage, error)
	SetMessages(ctx context.Context, roomID string, msgs []domain.ChatMessage) error
	// Invalidate drop the room's message cache and every given user's
	// list cache, called after each append
	Invalidate(ctx context.Context, roomID string, userIDs ...string) error
}

// ErrCacheMiss key absent
var ErrCacheMiss = database.ErrCacheMiss

type chatCache struct {
	lists    database.RedisRepository[[]domain.RoomSummary]
	messages database.RedisRepository[[]domain.ChatMessage]

	listTTL    time.Duration
	messageTTL time.Duration
}

// NewChatCache create the chat read cache
func NewChatCache(client *redis.Client, listTTL, messageTTL time.Duration) ChatCache {
	return &chatCache{
		lists:      database.NewRedisRepository[[]domain.RoomSummary](client),
		messages:   database.NewRedisRepository[[]domain.ChatMessage](client),
		listTTL:    listTTL,
		messageTTL: messageTTL,
	}
}

func listKey(userID string) string {
	return "chat:list:" + userID
}

func messagesKey(roomID string) string {
	return "chat:messages:" + roomID
}

func (c *chatCache) GetRoomList(ctx context.Context, userID string) ([]domain.RoomSummary, error) {
	return c.lists.Get(ctx, listKey(userID))
}

func (c *chatCache) SetRoomList(ctx context.Context, userID string, list []domain.RoomSummary) error {
	return c.lists.Set(ctx, listKey(userID), list, c.listTTL)
}

func (c *chatCache) GetMessages(ctx context.Context, roomID string) ([]domain.ChatMessage, error) {
	return c.messages.Get(ctx, messagesKey(roomID))
}

func (c *chatCache) SetMessages(ctx context.Context, roomID string, msgs []domain.ChatMessage) error {
	return c.messages.Set(ctx, messagesKey(roomID), msgs, c.messageTTL)
}

func (c *chatCache) Invalidate(ctx context.Context, roomID string, userIDs ...string) error {
	var firstErr error
	if err := c.messages.Del(ctx, messagesKey(roomID)); err != nil {
		firstErr = err
	}
	for _, u := range userIDs {
		if err := c.lists.Del(ctx, listKey(u)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
