package app

import (
	"context"
	"net/url"
	"time"

	"medical_chat_service/internal/chat/domain"
	"medical_chat_service/internal/chat/repository"
	"medical_chat_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageUseCase the durable message path: append, read, read receipts.
// Every counter mutation of a room runs inside that room's critical
// section; reads take no lock and may observe a prefix of the log.
type MessageUseCase struct {
	roomRepo repository.RoomRepository
	msgRepo  repository.MessageRepository
	pubsub   repository.PubSub
	cache    repository.ChatCache
	locks    *roomLocks

	storeTimeout time.Duration
}

// NewMessageUseCase init message use case
func NewMessageUseCase(
	roomRepo repository.RoomRepository,
	msgRepo repository.MessageRepository,
	pubsub repository.PubSub,
	cache repository.ChatCache,
	storeTimeout time.Duration,
) *MessageUseCase {
	return &MessageUseCase{
		roomRepo:     roomRepo,
		msgRepo:      msgRepo,
		pubsub:       pubsub,
		cache:        cache,
		locks:        newRoomLocks(),
		storeTimeout: storeTimeout,
	}
}

// Send append one message to the room's log. The durable write always
// runs; the per-user live notification afterwards is fire-and-forget and
// never affects the result.
func (uc *MessageUseCase) Send(
	ctx context.Context,
	roomID, senderID string,
	kind domain.MessageKind,
	body, attachmentURL, attachmentName string,
) (*domain.ChatMessage, error) {
	if err := validateAttachment(kind, attachmentURL); err != nil {
		return nil, err
	}

	unlock := uc.locks.lock(roomID)
	defer unlock()

	storeCtx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	room, err := uc.roomRepo.FindByID(storeCtx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(senderID) {
		return nil, domain.ErrAccessDenied
	}
	other, _ := room.OtherParticipant(senderID)

	// Strictly increasing per room even under clock skew: never at or
	// below the previous message's timestamp.
	createdAt := time.Now().UnixMilli()
	if createdAt <= room.LastMessageAt {
		createdAt = room.LastMessageAt + 1
	}

	msg := &domain.ChatMessage{
		ID:             uuid.New().String(),
		RoomID:         roomID,
		SenderID:       senderID,
		Body:           body,
		Kind:           kind,
		AttachmentURL:  attachmentURL,
		AttachmentName: attachmentName,
		CreatedAt:      createdAt,
		ReadBy:         []domain.ReadReceipt{},
	}

	if err := uc.msgRepo.AppendMessage(storeCtx, roomID, msg, other.UserID); err != nil {
		return nil, err
	}

	if err := uc.cache.Invalidate(ctx, roomID, senderID, other.UserID); err != nil {
		logger.Log.Warn("cache invalidate failed", zap.String("roomID", roomID), zap.Error(err))
	}

	// live path, best effort: a missing or slow recipient is not an error
	if uc.pubsub != nil {
		if err := uc.pubsub.Publish(repository.UserChannel(other.UserID), msg); err != nil {
			logger.Log.Warn("live publish dropped",
				zap.String("roomID", roomID),
				zap.String("userID", other.UserID),
				zap.Error(err))
		}
	}

	return msg, nil
}

// ListMessages the room's full ordered log
func (uc *MessageUseCase) ListMessages(ctx context.Context, roomID, requesterID string) ([]domain.ChatMessage, error) {
	storeCtx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	room, err := uc.roomRepo.FindByID(storeCtx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(requesterID) {
		return nil, domain.ErrAccessDenied
	}

	if msgs, err := uc.cache.GetMessages(ctx, roomID); err == nil {
		return msgs, nil
	}

	msgs, err := uc.msgRepo.FindByRoom(storeCtx, roomID)
	if err != nil {
		return nil, err
	}

	if err := uc.cache.SetMessages(ctx, roomID, msgs); err != nil {
		logger.Log.Warn("message cache set failed", zap.String("roomID", roomID), zap.Error(err))
	}

	return msgs, nil
}

// MarkRead stamp the requester's receipt on every unread foreign message
// and zero their unread counter. Idempotent; safe against a concurrent
// Send because both run inside the room's critical section.
func (uc *MessageUseCase) MarkRead(ctx context.Context, roomID, userID string) error {
	unlock := uc.locks.lock(roomID)
	defer unlock()

	storeCtx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	room, err := uc.roomRepo.FindByID(storeCtx, roomID)
	if err != nil {
		return err
	}
	if !room.HasParticipant(userID) {
		return domain.ErrAccessDenied
	}

	if err := uc.msgRepo.AddReadReceipts(storeCtx, roomID, userID, time.Now().UnixMilli()); err != nil {
		return err
	}

	if err := uc.cache.Invalidate(ctx, roomID, userID); err != nil {
		logger.Log.Warn("cache invalidate failed", zap.String("roomID", roomID), zap.Error(err))
	}

	return nil
}

// validateAttachment image/file messages need a well-formed absolute
// URL; text messages carry none
func validateAttachment(kind domain.MessageKind, attachmentURL string) error {
	switch kind {
	case domain.KindText:
		if attachmentURL != "" {
			return domain.ErrInvalidAttachment
		}
	case domain.KindImage, domain.KindFile:
		u, err := url.Parse(attachmentURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return domain.ErrInvalidAttachment
		}
	default:
		return domain.ErrInvalidAttachment
	}
	return nil
}
