package domain

import "errors"

// Error taxonomy of the chat core. Handlers map these onto HTTP statuses;
// ErrTransientStore is the only retryable one.
var (
	// ErrAccessDenied caller is not a participant, or the pair has no
	// verified patient/doctor connection
	ErrAccessDenied = errors.New("access denied")
	// ErrRoomNotFound no room with the given id
	ErrRoomNotFound = errors.New("room not found")
	// ErrUserNotFound the other user does not exist
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidAttachment attachment reference malformed or missing for
	// an image/file message
	ErrInvalidAttachment = errors.New("invalid attachment")
	// ErrTransientStore persistence timed out; the whole operation is safe
	// to retry
	ErrTransientStore = errors.New("transient store error")
)
