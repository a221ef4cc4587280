package app

import (
	"context"
	"encoding/json"
	"time"

	"medical_chat_service/internal/chat/domain"
	"medical_chat_service/internal/chat/repository"
	"medical_chat_service/pkg/logger"
	"medical_chat_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// ChatWebsocketHandler the live-path entry point: one connection per
// authenticated user, explicit join/leave of room groups, best-effort
// event delivery through the hub and the per-user pub/sub channel
type ChatWebsocketHandler struct {
	roomUC    *RoomUseCase
	messageUC *MessageUseCase
	hub       *Hub
	pubsub    repository.PubSub
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	roomUC *RoomUseCase,
	messageUC *MessageUseCase,
	hub *Hub,
	pubsub repository.PubSub,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		roomUC:    roomUC,
		messageUC: messageUC,
		hub:       hub,
		pubsub:    pubsub,
	}
}

// HandleConnection run one websocket session until the peer goes away
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	userID, _ := conn.Locals(middlewares.TokenUserID).(string)
	logger.Log.Info("websocket connected", zap.String("userID", userID))

	client := NewClient(userID, conn)
	h.hub.Register(client)

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	defer func() {
		ticker.Stop()
		logger.Log.Info("websocket close", zap.String("userID", userID))
		h.hub.Unregister(client)
		conn.Close()
		cancel()
	}()

	// fiber handles close/ping/pong internally; the handlers below only
	// surface them for logging
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	conn.SetPongHandler(func(appData string) error {
		logger.Log.Debug("received pong", zap.String("userID", userID))
		return nil
	})

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	// per-user notification channel: new-message notices arrive here even
	// when the room view is closed; like publish, a failure degrades the
	// live path only
	if err := h.pubsub.Subscribe(ctxClose, repository.UserChannel(userID), func(resp domain.WSResponse) {
		client.Enqueue(resp)
	}); err != nil {
		logger.Log.Warn("user channel subscribe failed",
			zap.String("userID", userID),
			zap.Error(err))
	}

	go client.WritePump()

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(time.Second)); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Info("connection closed", zap.String("userID", userID))
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		h.execWebsocketAction(ctx, client, userID, mt, message)
	}
}

func (h *ChatWebsocketHandler) execWebsocketAction(ctx context.Context, client *Client, userID string, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(ctx, client, userID, msg)
	default:
		h.sendError(client, "unknown message type")
	}
}

func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, client *Client, userID string, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		logger.Log.Errorf("json unmarshal error:", err)
		return
	}

	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
	switch req.Action {

	case string(domain.JoinRoom):
		// membership gate before entering the broadcast group
		if err := h.roomUC.IsParticipant(ctx, req.RoomID, userID); err != nil {
			resp.Error = err.Error()
		} else {
			h.hub.JoinRoom(req.RoomID, client)
			resp.Success = true
			resp.Payload["room_id"] = req.RoomID
		}

	case string(domain.LeaveRoom):
		h.hub.LeaveRoom(req.RoomID, client)
		resp.Success = true
		resp.Payload["room_id"] = req.RoomID

	case string(domain.SendMessage):
		kind := domain.MessageKind(req.Kind)
		if req.Kind == "" {
			kind = domain.KindText
		}
		message, err := h.messageUC.Send(ctx, req.RoomID, userID, kind, req.Body, req.AttachmentURL, req.AttachmentName)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["message"] = message

			// room-scoped fan-out to everyone but the sender's connection
			h.hub.Broadcast(req.RoomID, client, domain.NewMessageEvent(*message))
		}

	case string(domain.ReadMessage):
		if err := h.messageUC.MarkRead(ctx, req.RoomID, userID); err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
		}

	case string(domain.GetUnread):
		list, err := h.roomUC.ListRooms(ctx, userID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			for _, summary := range list {
				resp.Payload[summary.RoomID] = summary.UnreadCount
			}
		}

	default:
		h.sendError(client, "unknown action")
		return
	}

	if resp.Error != "" {
		logger.Log.Error("websocket err",
			zap.String("userID", userID),
			zap.String("action", req.Action),
			zap.String("err", resp.Error))
	}
	client.Enqueue(resp)
}

func (h *ChatWebsocketHandler) sendError(client *Client, errorMsg string) {
	client.Enqueue(domain.WSResponse{
		Action:  "error",
		Success: false,
		Payload: map[string]interface{}{
			"error": errorMsg,
		},
	})
}
