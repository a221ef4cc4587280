// Package chatclient implements the consumer side of the chat delivery
// contract. The server never deduplicates: a logical message can reach a
// client as an optimistic local render, as the durable-path response and
// as a broadcast echo. The Transcript merges all three into exactly one
// visible entry.
package chatclient

import (
	"sync"

	"medical_chat_service/internal/chat/domain"
)

// State outgoing message state
type State string

const (
	// StateComposed rendered locally, not yet handed to the server
	StateComposed State = "composed"
	// StateSent handed to the server, durable ack pending
	StateSent State = "sent"
	// StateConfirmed durable ack received
	StateConfirmed State = "confirmed"
	// StateFailed durable write failed; rolled back, resend offered
	StateFailed State = "failed"
)

// Key identity of a logical message across delivery paths
type Key struct {
	SenderID  string
	CreatedAt int64
	Body      string
}

// KeyOf the message's composite identity
func KeyOf(msg domain.ChatMessage) Key {
	return Key{SenderID: msg.SenderID, CreatedAt: msg.CreatedAt, Body: msg.Body}
}

// Entry one visible transcript line
type Entry struct {
	Message domain.ChatMessage
	State   State
}

// Transcript the visible message list of one open room, deduplicated by
// message identity. Safe for concurrent use by the receive goroutine and
// the send path.
type Transcript struct {
	mu     sync.Mutex
	selfID string

	entries []*Entry
	index   map[Key]*Entry
}

// NewTranscript create an empty transcript for the given local user
func NewTranscript(selfID string) *Transcript {
	return &Transcript{
		selfID: selfID,
		index:  make(map[Key]*Entry),
	}
}

// Compose append an optimistic render of an outgoing message keyed by a
// provisional client timestamp
func (t *Transcript) Compose(body string, kind domain.MessageKind, provisionalAt int64) Key {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := Key{SenderID: t.selfID, CreatedAt: provisionalAt, Body: body}
	if _, ok := t.index[key]; ok {
		return key
	}

	entry := &Entry{
		Message: domain.ChatMessage{
			SenderID:  t.selfID,
			Body:      body,
			Kind:      kind,
			CreatedAt: provisionalAt,
		},
		State: StateComposed,
	}
	t.entries = append(t.entries, entry)
	t.index[key] = entry
	return key
}

// MarkSent the message was handed to the server, ack pending
func (t *Transcript) MarkSent(key Key) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, ok := t.index[key]; ok && entry.State == StateComposed {
		entry.State = StateSent
	}
}

// Confirm apply the durable ack: the entry is re-keyed from its
// provisional timestamp to the server-assigned one, so later echoes of
// the same message match it
func (t *Transcript) Confirm(key Key, confirmed domain.ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.index[key]
	if !ok {
		return
	}
	delete(t.index, key)
	entry.Message = confirmed
	entry.State = StateConfirmed
	t.index[KeyOf(confirmed)] = entry
}

// Fail roll the optimistic render back and return the body so the UI
// can offer a resend
func (t *Transcript) Fail(key Key) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.index[key]
	if !ok {
		return "", false
	}
	delete(t.index, key)
	entry.State = StateFailed
	for i, e := range t.entries {
		if e == entry {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			break
		}
	}
	return entry.Message.Body, true
}

// Merge apply a message arriving on either delivery path. Returns true
// when the transcript gained a new entry, false when the message was
// recognized as already rendered.
func (t *Transcript) Merge(msg domain.ChatMessage) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := KeyOf(msg)
	if entry, ok := t.index[key]; ok {
		// an echo of a confirmed message may carry fresher read state
		entry.Message = msg
		if entry.State != StateConfirmed {
			entry.State = StateConfirmed
		}
		return false
	}

	// an own-message echo can beat the durable ack; match it against the
	// pending optimistic render by sender and body
	if msg.SenderID == t.selfID {
		for k, entry := range t.index {
			if entry.State != StateConfirmed && k.SenderID == t.selfID && k.Body == msg.Body {
				delete(t.index, k)
				entry.Message = msg
				entry.State = StateConfirmed
				t.index[key] = entry
				return false
			}
		}
	}

	entry := &Entry{Message: msg, State: StateConfirmed}
	t.entries = append(t.entries, entry)
	t.index[key] = entry
	return true
}

// Messages the visible transcript in arrival order
func (t *Transcript) Messages() []domain.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.ChatMessage, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e.Message)
	}
	return out
}
