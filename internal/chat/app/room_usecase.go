package app

import (
	"context"
	"time"

	"medical_chat_service/internal/chat/domain"
	"medical_chat_service/internal/chat/repository"
	identityrepo "medical_chat_service/internal/identity/repository"
	"medical_chat_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoomUseCase the room directory: get-or-create two-party rooms and the
// per-user chat list
type RoomUseCase struct {
	roomRepo repository.RoomRepository
	identity identityrepo.IdentityRepository
	cache    repository.ChatCache

	storeTimeout  time.Duration
	verifyTimeout time.Duration
}

// NewRoomUseCase init room use case
func NewRoomUseCase(
	roomRepo repository.RoomRepository,
	identity identityrepo.IdentityRepository,
	cache repository.ChatCache,
	storeTimeout, verifyTimeout time.Duration,
) *RoomUseCase {
	return &RoomUseCase{
		roomRepo:      roomRepo,
		identity:      identity,
		cache:         cache,
		storeTimeout:  storeTimeout,
		verifyTimeout: verifyTimeout,
	}
}

// GetOrCreateRoom return the existing room of the unordered pair, or
// create it after the identity collaborator confirms the relationship.
// Connection state is checked once here and never re-derived.
func (uc *RoomUseCase) GetOrCreateRoom(ctx context.Context, requesterID, otherUserID string) (*domain.ChatRoom, error) {
	storeCtx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	room, err := uc.roomRepo.FindByPair(storeCtx, requesterID, otherUserID)
	if err != nil {
		return nil, err
	}
	if room != nil {
		return room, nil
	}

	requester, err := uc.identity.FindUser(storeCtx, requesterID)
	if err != nil {
		return nil, err
	}
	other, err := uc.identity.FindUser(storeCtx, otherUserID)
	if err != nil {
		return nil, err
	}

	verifyCtx, cancelVerify := context.WithTimeout(ctx, uc.verifyTimeout)
	defer cancelVerify()

	connected, err := uc.identity.VerifyConnection(verifyCtx, requesterID, otherUserID)
	if err != nil {
		return nil, err
	}
	if !connected {
		return nil, domain.ErrAccessDenied
	}

	room = &domain.ChatRoom{
		ID:      uuid.New().String(),
		PairKey: domain.PairKey(requesterID, otherUserID),
		Participants: []domain.Participant{
			{UserID: requesterID, Role: domain.Role(requester.Role)},
			{UserID: otherUserID, Role: domain.Role(other.Role)},
		},
		Messages: []domain.ChatMessage{},
		UnreadCount: map[string]int{
			requesterID: 0,
			otherUserID: 0,
		},
		CreatedAt: time.Now().UnixMilli(),
	}

	err = uc.roomRepo.CreateRoom(storeCtx, room)
	if err == repository.ErrPairExists {
		// lost the creation race; the winner's room is the room
		return uc.roomRepo.FindByPair(storeCtx, requesterID, otherUserID)
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

// IsParticipant check the user is a member of the room; the lookup is
// bounded like every other store call
func (uc *RoomUseCase) IsParticipant(ctx context.Context, roomID, userID string) error {
	storeCtx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	room, err := uc.roomRepo.FindByID(storeCtx, roomID)
	if err != nil {
		return err
	}
	if !room.HasParticipant(userID) {
		return domain.ErrAccessDenied
	}
	return nil
}

// ListRooms the user's chat list, most recent activity first, served
// from the short-TTL cache when fresh
func (uc *RoomUseCase) ListRooms(ctx context.Context, userID string) ([]domain.RoomSummary, error) {
	if list, err := uc.cache.GetRoomList(ctx, userID); err == nil {
		return list, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	rooms, err := uc.roomRepo.FindRoomsForUser(storeCtx, userID)
	if err != nil {
		return nil, err
	}

	list := make([]domain.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		other, ok := room.OtherParticipant(userID)
		if !ok {
			continue
		}
		list = append(list, domain.RoomSummary{
			RoomID:           room.ID,
			OtherParticipant: other,
			LastMessage:      room.LastMessage,
			LastMessageAt:    room.LastMessageAt,
			UnreadCount:      room.UnreadCount[userID],
		})
	}

	if err := uc.cache.SetRoomList(ctx, userID, list); err != nil {
		logger.Log.Warn("room list cache set failed", zap.String("userID", userID), zap.Error(err))
	}

	return list, nil
}
