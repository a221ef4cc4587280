package domain

// MessageKind definition chat message kind
type MessageKind string

const (
	// KindText plain text message
	KindText MessageKind = "text"
	// KindImage image attachment message
	KindImage MessageKind = "image"
	// KindFile file attachment message
	KindFile MessageKind = "file"
)

// ReadReceipt one user's read record on a message
type ReadReceipt struct {
	UserID string `bson:"user_id" json:"user_id"`
	ReadAt int64  `bson:"read_at" json:"read_at"`
}

// ChatMessage one entry of a room's append-only log.
// CreatedAt is server-assigned unix millis, strictly increasing per room.
// ReadBy is append-only and never contains the sender.
type ChatMessage struct {
	ID             string        `bson:"_id" json:"id"`
	RoomID         string        `bson:"room_id" json:"room_id"`
	SenderID       string        `bson:"sender_id" json:"sender_id"`
	Body           string        `bson:"body" json:"body"`
	Kind           MessageKind   `bson:"kind" json:"kind"`
	AttachmentURL  string        `bson:"attachment_url,omitempty" json:"attachment_url,omitempty"`
	AttachmentName string        `bson:"attachment_name,omitempty" json:"attachment_name,omitempty"`
	CreatedAt      int64         `bson:"created_at" json:"created_at"`
	ReadBy         []ReadReceipt `bson:"read_by" json:"read_by"`
}

// IsReadBy check the message carries a receipt for userID
func (m *ChatMessage) IsReadBy(userID string) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// Summary one-line room summary text for the message
func (m *ChatMessage) Summary() string {
	switch m.Kind {
	case KindImage:
		return "[image]"
	case KindFile:
		return "[file]"
	default:
		return m.Body
	}
}
