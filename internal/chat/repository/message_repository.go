package repository

import (
	"context"
	"errors"

	"medical_chat_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository definition the append-only message log of a room.
// The log lives embedded in the room document, so every append carries
// the summary update and the unread bump in one atomic write, and
// AddReadReceipts pairs the receipt pushes with the counter reset the
// same way. Entries are never removed.
type MessageRepository interface {
	// AppendMessage append msg and, in the same write, set the room's
	// last-message summary and increment the other participant's unread
	// counter
	AppendMessage(ctx context.Context, roomID string, msg *domain.ChatMessage, otherUserID string) error
	// FindByRoom the full log in append order
	FindByRoom(ctx context.Context, roomID string) ([]domain.ChatMessage, error)
	// AddReadReceipts append {userID, readAt} to every message not sent
	// by userID and not already read by them, and zero the user's unread
	// counter. Idempotent.
	AddReadReceipts(ctx context.Context, roomID, userID string, readAt int64) error
}

type messageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create message repository over the same
// chat_rooms collection the room directory uses
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{
		coll: db.Collection("chat_rooms"),
	}
}

// AppendMessage one UpdateOne so readers never observe the log and the
// summary out of step
func (r *messageRepository) AppendMessage(ctx context.Context, roomID string, msg *domain.ChatMessage, otherUserID string) error {
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$set": bson.M{
			"last_message":    msg.Summary(),
			"last_message_at": msg.CreatedAt,
		},
		"$inc": bson.M{
			"unread_count." + otherUserID: 1,
		},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": roomID}, update)
	if err != nil {
		return translateStoreErr(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

// FindByRoom read the embedded log; concurrent appends may yield a strict
// prefix of the final log, never a torn entry
func (r *messageRepository) FindByRoom(ctx context.Context, roomID string) ([]domain.ChatMessage, error) {
	var room domain.ChatRoom
	opts := options.FindOne().SetProjection(bson.M{"messages": 1})
	err := r.coll.FindOne(ctx, bson.M{"_id": roomID}, opts).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return room.Messages, nil
}

// AddReadReceipts the array filter selects only unread foreign messages,
// so a second call matches nothing and changes nothing
func (r *messageRepository) AddReadReceipts(ctx context.Context, roomID, userID string, readAt int64) error {
	update := bson.M{
		"$set": bson.M{
			"unread_count." + userID: 0,
		},
		"$push": bson.M{
			"messages.$[msg].read_by": domain.ReadReceipt{UserID: userID, ReadAt: readAt},
		},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{
				"msg.sender_id":       bson.M{"$ne": userID},
				"msg.read_by.user_id": bson.M{"$ne": userID},
			},
		},
	})
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": roomID}, update, opts)
	if err != nil {
		return translateStoreErr(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}
