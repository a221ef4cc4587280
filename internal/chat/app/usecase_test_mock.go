package app

import (
	"context"

	"medical_chat_service/internal/chat/domain"
	identitydomain "medical_chat_service/internal/identity/domain"

	"github.com/stretchr/testify/mock"
)

// MockRoomRepository Mock RoomRepository
type MockRoomRepository struct {
	mock.Mock
}

// EnsureIndexes mock ensure indexes
func (m *MockRoomRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// CreateRoom mock create room
func (m *MockRoomRepository) CreateRoom(ctx context.Context, room *domain.ChatRoom) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

// FindByID mock find room by room id
func (m *MockRoomRepository) FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByPair mock find room of an unordered pair
func (m *MockRoomRepository) FindByPair(ctx context.Context, userA, userB string) (*domain.ChatRoom, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindRoomsForUser mock find rooms containing user
func (m *MockRoomRepository) FindRoomsForUser(ctx context.Context, userID string) ([]domain.ChatRoom, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// AppendMessage mock append message
func (m *MockMessageRepository) AppendMessage(ctx context.Context, roomID string, msg *domain.ChatMessage, otherUserID string) error {
	args := m.Called(ctx, roomID, msg, otherUserID)
	return args.Error(0)
}

// FindByRoom mock find room log
func (m *MockMessageRepository) FindByRoom(ctx context.Context, roomID string) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// AddReadReceipts mock add read receipts
func (m *MockMessageRepository) AddReadReceipts(ctx context.Context, roomID, userID string, readAt int64) error {
	args := m.Called(ctx, roomID, userID, readAt)
	return args.Error(0)
}

// MockPubSub Mock PubSub
type MockPubSub struct {
	mock.Mock
}

// Publish mock publisher
func (m *MockPubSub) Publish(channel string, message interface{}) error {
	args := m.Called(channel, message)
	return args.Error(0)
}

// Subscribe mock subscriber
func (m *MockPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	args := m.Called(channel, handler)
	return args.Error(0)
}

// MockChatCache Mock ChatCache
type MockChatCache struct {
	mock.Mock
}

// GetRoomList mock get cached room list
func (m *MockChatCache) GetRoomList(ctx context.Context, userID string) ([]domain.RoomSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.RoomSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

// SetRoomList mock set cached room list
func (m *MockChatCache) SetRoomList(ctx context.Context, userID string, list []domain.RoomSummary) error {
	args := m.Called(ctx, userID, list)
	return args.Error(0)
}

// GetMessages mock get cached messages
func (m *MockChatCache) GetMessages(ctx context.Context, roomID string) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// SetMessages mock set cached messages
func (m *MockChatCache) SetMessages(ctx context.Context, roomID string, msgs []domain.ChatMessage) error {
	args := m.Called(ctx, roomID, msgs)
	return args.Error(0)
}

// Invalidate mock invalidate
func (m *MockChatCache) Invalidate(ctx context.Context, roomID string, userIDs ...string) error {
	callArgs := make([]interface{}, 0, len(userIDs)+2)
	callArgs = append(callArgs, ctx, roomID)
	for _, u := range userIDs {
		callArgs = append(callArgs, u)
	}
	args := m.Called(callArgs...)
	return args.Error(0)
}

// MockIdentityRepository Mock IdentityRepository
type MockIdentityRepository struct {
	mock.Mock
}

// FindUser mock find user
func (m *MockIdentityRepository) FindUser(ctx context.Context, userID string) (*identitydomain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).(*identitydomain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// VerifyConnection mock verify connection
func (m *MockIdentityRepository) VerifyConnection(ctx context.Context, userA, userB string) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

// MockAttachmentStore Mock AttachmentStore
type MockAttachmentStore struct {
	mock.Mock
}

// Store mock store bytes
func (m *MockAttachmentStore) Store(ctx context.Context, fileName string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, fileName, data, contentType)
	return args.String(0), args.Error(1)
}
