package repository

import (
	"context"
	"errors"

	"medical_chat_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrPairExists insert hit the unique pair_key index; the caller should
// re-fetch the existing room
var ErrPairExists = errors.New("room for pair already exists")

// RoomRepository definition chat room directory persistence. Reads
// exclude the embedded message log; that is the message repository's
// side of the collection.
type RoomRepository interface {
	EnsureIndexes(ctx context.Context) error
	CreateRoom(ctx context.Context, room *domain.ChatRoom) error
	FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error)
	FindByPair(ctx context.Context, userA, userB string) (*domain.ChatRoom, error)
	FindRoomsForUser(ctx context.Context, userID string) ([]domain.ChatRoom, error)
}

type roomRepository struct {
	coll *mongo.Collection
}

// NewMongoRoomRepository create room repository over the chat_rooms collection
func NewMongoRoomRepository(db *mongo.Database) RoomRepository {
	return &roomRepository{
		coll: db.Collection("chat_rooms"),
	}
}

// EnsureIndexes unique pair index keeps one room per unordered user pair
func (r *roomRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "participants.user_id", Value: 1}},
		},
	})
	return translateStoreErr(err)
}

// CreateRoom create room
func (r *roomRepository) CreateRoom(ctx context.Context, room *domain.ChatRoom) error {
	_, err := r.coll.InsertOne(ctx, room)
	if mongo.IsDuplicateKeyError(err) {
		return ErrPairExists
	}
	return translateStoreErr(err)
}

// FindByID find room by id, message log excluded
func (r *roomRepository) FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	opts := options.FindOne().SetProjection(bson.M{"messages": 0})
	err := r.coll.FindOne(ctx, bson.M{"_id": roomID}, opts).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return &room, nil
}

// FindByPair find the room of an unordered user pair, nil when absent
func (r *roomRepository) FindByPair(ctx context.Context, userA, userB string) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	opts := options.FindOne().SetProjection(bson.M{"messages": 0})
	err := r.coll.FindOne(ctx, bson.M{"pair_key": domain.PairKey(userA, userB)}, opts).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return &room, nil
}

// FindRoomsForUser rooms containing the user, most recent activity first.
// Rooms without messages carry last_message_at 0 and sort last, newest
// created first among themselves.
func (r *roomRepository) FindRoomsForUser(ctx context.Context, userID string) ([]domain.ChatRoom, error) {
	opts := options.Find().
		SetProjection(bson.M{"messages": 0}).
		SetSort(bson.D{
			{Key: "last_message_at", Value: -1},
			{Key: "created_at", Value: -1},
		})
	cur, err := r.coll.Find(ctx, bson.M{"participants.user_id": userID}, opts)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	var rooms []domain.ChatRoom
	if err := cur.All(ctx, &rooms); err != nil {
		return nil, translateStoreErr(err)
	}
	return rooms, nil
}

// translateStoreErr map driver timeouts onto the retryable store error
func translateStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) {
		return domain.ErrTransientStore
	}
	return err
}
