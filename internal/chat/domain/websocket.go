package domain

// Action websocket request action
type Action string

const (
	// JoinRoom websocket action join_room
	JoinRoom Action = "join_room"
	// LeaveRoom websocket action leave_room
	LeaveRoom Action = "leave_room"
	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// ReadMessage websocket action read_message
	ReadMessage Action = "read_message"
	// GetUnread websocket action get_unread
	GetUnread Action = "get_unread"

	// NewMessage server-pushed event carrying a freshly appended message
	NewMessage Action = "new_message"
)

// WSRequest websocket Request
type WSRequest struct {
	Action         string `json:"action"`
	RoomID         string `json:"room_id"`
	Kind           string `json:"kind"`
	Body           string `json:"body"`
	AttachmentURL  string `json:"attachment_url,omitempty"`
	AttachmentName string `json:"attachment_name,omitempty"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// NewMessageEvent the live-path event broadcast to a room's group.
// The durable log is the system of record; this event is a notification
// hint only and may be dropped.
func NewMessageEvent(msg ChatMessage) WSResponse {
	return WSResponse{
		Action:  string(NewMessage),
		Success: true,
		Payload: map[string]interface{}{
			"room_id": msg.RoomID,
			"message": msg,
		},
	}
}
