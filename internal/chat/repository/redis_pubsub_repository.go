package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"medical_chat_service/internal/chat/domain"
	"medical_chat_service/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// UserChannel per-user notification channel name
func UserChannel(userID string) string {
	return "chat:user:" + userID
}

// PubSub definition best-effort live notification transport. Publish
// failures are the caller's to ignore; nothing here touches persisted
// state.
type PubSub interface {
	Publish(channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error
}

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		ctx:    context.Background(),
	}
}

// Publish marshal the message and publish it to the channel
func (r *RedisPubSub) Publish(channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, channel, data).Err()
}

// Subscribe consume the channel until ctx is cancelled, invoking handler
// with a new_message event per payload
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	sub := r.client.Subscribe(r.ctx, channel)
	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var msg domain.ChatMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					logger.Log.Errorf("pubsub unmarshal error:", err)
					continue
				}

				handler(domain.NewMessageEvent(msg))
			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%s , sub close", channel))
				sub.Close()
				return
			}
		}
	}()
	return nil
}
