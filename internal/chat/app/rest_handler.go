package app

import (
	"errors"
	"io"
	"strings"

	"medical_chat_service/internal/chat/domain"
	"medical_chat_service/internal/chat/repository"
	"medical_chat_service/pkg/logger"
	"medical_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ChatRestHandler the durable-path HTTP surface: room directory, message
// history and send/read. A disconnected client recovers all state here.
type ChatRestHandler struct {
	roomUC      *RoomUseCase
	messageUC   *MessageUseCase
	hub         *Hub
	attachments repository.AttachmentStore
}

// NewChatRestHandler create ChatRestHandler
func NewChatRestHandler(
	roomUC *RoomUseCase,
	messageUC *MessageUseCase,
	hub *Hub,
	attachments repository.AttachmentStore,
) *ChatRestHandler {
	return &ChatRestHandler{
		roomUC:      roomUC,
		messageUC:   messageUC,
		hub:         hub,
		attachments: attachments,
	}
}

type createRoomRequest struct {
	OtherUserID string `json:"other_user_id"`
}

// CreateRoom get or create the room shared with another user
// @Summary Get or create a chat room
// @Tags Chat
// @Router /chat/rooms [post]
func (h *ChatRestHandler) CreateRoom(c *fiber.Ctx) error {
	userID, _ := c.Locals(middlewares.TokenUserID).(string)

	var req createRoomRequest
	if err := c.BodyParser(&req); err != nil || req.OtherUserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "other_user_id required"})
	}

	room, err := h.roomUC.GetOrCreateRoom(c.Context(), userID, req.OtherUserID)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"room_id":      room.ID,
		"participants": room.Participants,
	})
}

// ListRooms the requester's chat list
// @Summary List chat rooms
// @Tags Chat
// @Router /chat/rooms [get]
func (h *ChatRestHandler) ListRooms(c *fiber.Ctx) error {
	userID, _ := c.Locals(middlewares.TokenUserID).(string)

	list, err := h.roomUC.ListRooms(c.Context(), userID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(list)
}

// ListMessages the room's full ordered log
// @Summary List room messages
// @Tags Chat
// @Router /chat/rooms/{roomId}/messages [get]
func (h *ChatRestHandler) ListMessages(c *fiber.Ctx) error {
	userID, _ := c.Locals(middlewares.TokenUserID).(string)
	roomID := c.Params("roomId")

	msgs, err := h.messageUC.ListMessages(c.Context(), roomID, userID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(msgs)
}

// SendMessage append one message; a multipart "file" part is stored in
// the object store first and rides along as an opaque URL
// @Summary Send a message
// @Tags Chat
// @Router /chat/rooms/{roomId}/messages [post]
func (h *ChatRestHandler) SendMessage(c *fiber.Ctx) error {
	userID, _ := c.Locals(middlewares.TokenUserID).(string)
	roomID := c.Params("roomId")

	body := c.FormValue("body")
	kind := domain.MessageKind(c.FormValue("kind"))
	attachmentURL := c.FormValue("attachment_url")
	attachmentName := c.FormValue("attachment_name")

	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			return respondErr(c, domain.ErrInvalidAttachment)
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return respondErr(c, domain.ErrInvalidAttachment)
		}

		contentType := fileHeader.Header.Get("Content-Type")
		url, err := h.attachments.Store(c.Context(), fileHeader.Filename, data, contentType)
		if err != nil {
			logger.Log.Errorf("attachment store failed:", err)
			return respondErr(c, err)
		}
		attachmentURL = url
		if attachmentName == "" {
			attachmentName = fileHeader.Filename
		}
		if kind == "" {
			if strings.HasPrefix(contentType, "image/") {
				kind = domain.KindImage
			} else {
				kind = domain.KindFile
			}
		}
	}

	if kind == "" {
		kind = domain.KindText
	}

	msg, err := h.messageUC.Send(c.Context(), roomID, userID, kind, body, attachmentURL, attachmentName)
	if err != nil {
		return respondErr(c, err)
	}

	// live hint for room members with the view open; the sender's own
	// websocket may receive an echo, the client merge drops it
	h.hub.Broadcast(roomID, nil, domain.NewMessageEvent(*msg))

	return c.JSON(msg)
}

// MarkRead stamp the requester's receipts and zero their counter
// @Summary Mark room messages read
// @Tags Chat
// @Router /chat/rooms/{roomId}/read [put]
func (h *ChatRestHandler) MarkRead(c *fiber.Ctx) error {
	userID, _ := c.Locals(middlewares.TokenUserID).(string)
	roomID := c.Params("roomId")

	if err := h.messageUC.MarkRead(c.Context(), roomID, userID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "messages marked as read"})
}

// respondErr map the chat error taxonomy onto HTTP statuses
func respondErr(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		status = fiber.StatusForbidden
	case errors.Is(err, domain.ErrRoomNotFound), errors.Is(err, domain.ErrUserNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAttachment):
		status = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrTransientStore):
		status = fiber.StatusServiceUnavailable
	}

	if status == fiber.StatusInternalServerError {
		logger.Log.Error("chat handler error", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
