package domain

// Role definition participant role
type Role string

const (
	// RolePatient patient side of a room
	RolePatient Role = "patient"
	// RoleDoctor doctor side of a room
	RoleDoctor Role = "doctor"
)

// Participant one side of a two-party room
type Participant struct {
	UserID string `bson:"user_id" json:"user_id"`
	Role   Role   `bson:"role" json:"role"`
}

// ChatRoom definition two-party chat room and its summary state
type ChatRoom struct {
	ID string `bson:"_id,omitempty" json:"room_id"`
	// PairKey is the sorted "userA:userB" pair, unique-indexed so at most
	// one room exists per unordered pair.
	PairKey      string        `bson:"pair_key" json:"-"`
	Participants []Participant `bson:"participants" json:"participants"`
	// Messages is the room's append-only log, embedded so an append can
	// update the log and the summary state in one document write.
	Messages      []ChatMessage  `bson:"messages" json:"messages,omitempty"`
	LastMessage   string         `bson:"last_message,omitempty" json:"last_message,omitempty"`
	LastMessageAt int64          `bson:"last_message_at" json:"last_message_at"`
	UnreadCount   map[string]int `bson:"unread_count" json:"unread_count"`
	CreatedAt     int64          `bson:"created_at" json:"created_at"`
}

// PairKey sorted key for an unordered user pair
func PairKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}

// HasParticipant check userID is one of the two participants
func (r *ChatRoom) HasParticipant(userID string) bool {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// OtherParticipant the participant that is not userID
func (r *ChatRoom) OtherParticipant(userID string) (Participant, bool) {
	for _, p := range r.Participants {
		if p.UserID != userID {
			return p, true
		}
	}
	return Participant{}, false
}

// RoomSummary room entry of a user's chat list
type RoomSummary struct {
	RoomID           string      `json:"room_id"`
	OtherParticipant Participant `json:"other_participant"`
	LastMessage      string      `json:"last_message,omitempty"`
	LastMessageAt    int64       `json:"last_message_at"`
	UnreadCount      int         `json:"unread_count"`
}
