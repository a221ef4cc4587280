package app

import (
	"context"
	"os"
	"testing"
	"time"

	"medical_chat_service/internal/chat/domain"
	"medical_chat_service/internal/chat/repository"
	identitydomain "medical_chat_service/internal/identity/domain"
	"medical_chat_service/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Log = logger.Initialize("chat_test", os.TempDir())
	os.Exit(m.Run())
}

func newTestRoomUseCase(roomRepo *MockRoomRepository, identity *MockIdentityRepository, cache *MockChatCache) *RoomUseCase {
	return NewRoomUseCase(roomRepo, identity, cache, 5*time.Second, 5*time.Second)
}

func TestRoomUseCase_GetOrCreateRoom_Existing(t *testing.T) {
	ctx := context.Background()
	patientID := uuid.New().String()
	doctorID := uuid.New().String()

	existing := &domain.ChatRoom{
		ID:      uuid.New().String(),
		PairKey: domain.PairKey(patientID, doctorID),
		Participants: []domain.Participant{
			{UserID: patientID, Role: domain.RolePatient},
			{UserID: doctorID, Role: domain.RoleDoctor},
		},
	}

	mockRoomRepo := new(MockRoomRepository)
	mockIdentity := new(MockIdentityRepository)
	mockCache := new(MockChatCache)

	mockRoomRepo.On("FindByPair", mock.Anything, patientID, doctorID).Return(existing, nil)

	uc := newTestRoomUseCase(mockRoomRepo, mockIdentity, mockCache)
	room, err := uc.GetOrCreateRoom(ctx, patientID, doctorID)

	require.NoError(t, err)
	assert.Equal(t, existing.ID, room.ID)
	// no identity round trip for an existing room
	mockIdentity.AssertNotCalled(t, "VerifyConnection", mock.Anything, mock.Anything, mock.Anything)
	mockRoomRepo.AssertExpectations(t)
}

func TestRoomUseCase_GetOrCreateRoom_CreatesVerifiedPair(t *testing.T) {
	ctx := context.Background()
	patientID := uuid.New().String()
	doctorID := uuid.New().String()

	mockRoomRepo := new(MockRoomRepository)
	mockIdentity := new(MockIdentityRepository)
	mockCache := new(MockChatCache)

	mockRoomRepo.On("FindByPair", mock.Anything, patientID, doctorID).Return(nil, nil)
	mockIdentity.On("FindUser", mock.Anything, patientID).
		Return(&identitydomain.User{ID: patientID, Role: "patient"}, nil)
	mockIdentity.On("FindUser", mock.Anything, doctorID).
		Return(&identitydomain.User{ID: doctorID, Role: "doctor"}, nil)
	mockIdentity.On("VerifyConnection", mock.Anything, patientID, doctorID).Return(true, nil)
	mockRoomRepo.On("CreateRoom", mock.Anything, mock.Anything).Return(nil)

	uc := newTestRoomUseCase(mockRoomRepo, mockIdentity, mockCache)
	room, err := uc.GetOrCreateRoom(ctx, patientID, doctorID)

	require.NoError(t, err)
	assert.Equal(t, domain.PairKey(patientID, doctorID), room.PairKey)
	assert.Len(t, room.Participants, 2)
	assert.Equal(t, 0, room.UnreadCount[patientID])
	assert.Equal(t, 0, room.UnreadCount[doctorID])
	mockRoomRepo.AssertExpectations(t)
	mockIdentity.AssertExpectations(t)
}

func TestRoomUseCase_GetOrCreateRoom_NotConnected(t *testing.T) {
	ctx := context.Background()
	patientID := uuid.New().String()
	doctorID := uuid.New().String()

	mockRoomRepo := new(MockRoomRepository)
	mockIdentity := new(MockIdentityRepository)
	mockCache := new(MockChatCache)

	mockRoomRepo.On("FindByPair", mock.Anything, patientID, doctorID).Return(nil, nil)
	mockIdentity.On("FindUser", mock.Anything, patientID).
		Return(&identitydomain.User{ID: patientID, Role: "patient"}, nil)
	mockIdentity.On("FindUser", mock.Anything, doctorID).
		Return(&identitydomain.User{ID: doctorID, Role: "doctor"}, nil)
	mockIdentity.On("VerifyConnection", mock.Anything, patientID, doctorID).Return(false, nil)

	uc := newTestRoomUseCase(mockRoomRepo, mockIdentity, mockCache)
	room, err := uc.GetOrCreateRoom(ctx, patientID, doctorID)

	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	assert.Nil(t, room)
	// no room is ever created for an unverified pair
	mockRoomRepo.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything)
}

func TestRoomUseCase_GetOrCreateRoom_OtherUserMissing(t *testing.T) {
	ctx := context.Background()
	patientID := uuid.New().String()
	ghostID := uuid.New().String()

	mockRoomRepo := new(MockRoomRepository)
	mockIdentity := new(MockIdentityRepository)
	mockCache := new(MockChatCache)

	mockRoomRepo.On("FindByPair", mock.Anything, patientID, ghostID).Return(nil, nil)
	mockIdentity.On("FindUser", mock.Anything, patientID).
		Return(&identitydomain.User{ID: patientID, Role: "patient"}, nil)
	mockIdentity.On("FindUser", mock.Anything, ghostID).Return(nil, domain.ErrUserNotFound)

	uc := newTestRoomUseCase(mockRoomRepo, mockIdentity, mockCache)
	_, err := uc.GetOrCreateRoom(ctx, patientID, ghostID)

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	mockRoomRepo.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything)
}

func TestRoomUseCase_GetOrCreateRoom_LosesCreationRace(t *testing.T) {
	ctx := context.Background()
	patientID := uuid.New().String()
	doctorID := uuid.New().String()

	winner := &domain.ChatRoom{
		ID:      uuid.New().String(),
		PairKey: domain.PairKey(patientID, doctorID),
	}

	mockRoomRepo := new(MockRoomRepository)
	mockIdentity := new(MockIdentityRepository)
	mockCache := new(MockChatCache)

	mockRoomRepo.On("FindByPair", mock.Anything, patientID, doctorID).Return(nil, nil).Once()
	mockIdentity.On("FindUser", mock.Anything, patientID).
		Return(&identitydomain.User{ID: patientID, Role: "patient"}, nil)
	mockIdentity.On("FindUser", mock.Anything, doctorID).
		Return(&identitydomain.User{ID: doctorID, Role: "doctor"}, nil)
	mockIdentity.On("VerifyConnection", mock.Anything, patientID, doctorID).Return(true, nil)
	mockRoomRepo.On("CreateRoom", mock.Anything, mock.Anything).Return(repository.ErrPairExists)
	mockRoomRepo.On("FindByPair", mock.Anything, patientID, doctorID).Return(winner, nil).Once()

	uc := newTestRoomUseCase(mockRoomRepo, mockIdentity, mockCache)
	room, err := uc.GetOrCreateRoom(ctx, patientID, doctorID)

	require.NoError(t, err)
	assert.Equal(t, winner.ID, room.ID)
	mockRoomRepo.AssertExpectations(t)
}

func TestRoomUseCase_IsParticipant(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()
	patientID := uuid.New().String()
	doctorID := uuid.New().String()

	room := &domain.ChatRoom{
		ID: roomID,
		Participants: []domain.Participant{
			{UserID: patientID, Role: domain.RolePatient},
			{UserID: doctorID, Role: domain.RoleDoctor},
		},
	}

	mockRoomRepo := new(MockRoomRepository)
	mockIdentity := new(MockIdentityRepository)
	mockCache := new(MockChatCache)

	mockRoomRepo.On("FindByID", mock.Anything, roomID).
		Run(func(args mock.Arguments) {
			// the lookup must run under a bounded context
			_, bounded := args.Get(0).(context.Context).Deadline()
			assert.True(t, bounded)
		}).
		Return(room, nil)

	uc := newTestRoomUseCase(mockRoomRepo, mockIdentity, mockCache)

	assert.NoError(t, uc.IsParticipant(ctx, roomID, patientID))
	assert.NoError(t, uc.IsParticipant(ctx, roomID, doctorID))
	assert.ErrorIs(t, uc.IsParticipant(ctx, roomID, uuid.New().String()), domain.ErrAccessDenied)
}

func TestRoomUseCase_IsParticipant_UnknownRoom(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()

	mockRoomRepo := new(MockRoomRepository)
	mockIdentity := new(MockIdentityRepository)
	mockCache := new(MockChatCache)

	mockRoomRepo.On("FindByID", mock.Anything, roomID).Return(nil, domain.ErrRoomNotFound)

	uc := newTestRoomUseCase(mockRoomRepo, mockIdentity, mockCache)
	assert.ErrorIs(t, uc.IsParticipant(ctx, roomID, uuid.New().String()), domain.ErrRoomNotFound)
}

func TestRoomUseCase_ListRooms_BuildsSummaries(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()
	otherID := uuid.New().String()

	rooms := []domain.ChatRoom{
		{
			ID: "room-1",
			Participants: []domain.Participant{
				{UserID: userID, Role: domain.RolePatient},
				{UserID: otherID, Role: domain.RoleDoctor},
			},
			LastMessage:   "hello",
			LastMessageAt: 1700000000000,
			UnreadCount:   map[string]int{userID: 2, otherID: 0},
		},
	}

	mockRoomRepo := new(MockRoomRepository)
	mockIdentity := new(MockIdentityRepository)
	mockCache := new(MockChatCache)

	mockCache.On("GetRoomList", mock.Anything, userID).Return(nil, repository.ErrCacheMiss)
	mockRoomRepo.On("FindRoomsForUser", mock.Anything, userID).Return(rooms, nil)
	mockCache.On("SetRoomList", mock.Anything, userID, mock.Anything).Return(nil)

	uc := newTestRoomUseCase(mockRoomRepo, mockIdentity, mockCache)
	list, err := uc.ListRooms(ctx, userID)

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "room-1", list[0].RoomID)
	assert.Equal(t, otherID, list[0].OtherParticipant.UserID)
	assert.Equal(t, 2, list[0].UnreadCount)
	mockRoomRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestRoomUseCase_ListRooms_ServedFromCache(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()

	cached := []domain.RoomSummary{{RoomID: "room-1", UnreadCount: 1}}

	mockRoomRepo := new(MockRoomRepository)
	mockIdentity := new(MockIdentityRepository)
	mockCache := new(MockChatCache)

	mockCache.On("GetRoomList", mock.Anything, userID).Return(cached, nil)

	uc := newTestRoomUseCase(mockRoomRepo, mockIdentity, mockCache)
	list, err := uc.ListRooms(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, cached, list)
	mockRoomRepo.AssertNotCalled(t, "FindRoomsForUser", mock.Anything, mock.Anything)
}
