package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"medical_chat_service/pkg/database"
	errprocess "medical_chat_service/pkg/err"

	"github.com/google/uuid"
)

// AttachmentStore definition the binary object store the chat core hands
// message attachments to. The core only ever sees the returned URL.
type AttachmentStore interface {
	Store(ctx context.Context, fileName string, data []byte, contentType string) (string, error)
}

type minioAttachmentStore struct {
	client *database.MinIOClient
	expiry time.Duration
}

// NewMinioAttachmentStore create attachment store over the shared MinIO client
func NewMinioAttachmentStore(client *database.MinIOClient) AttachmentStore {
	return &minioAttachmentStore{
		client: client,
		expiry: 7 * 24 * time.Hour,
	}
}

// Store upload the bytes under a fresh object name and return a
// presigned URL
func (s *minioAttachmentStore) Store(ctx context.Context, fileName string, data []byte, contentType string) (string, error) {
	objectName := fmt.Sprintf("attachments/%s%s", uuid.New().String(), filepath.Ext(fileName))
	if err := s.client.UploadBytes(ctx, objectName, data, contentType); err != nil {
		return "", errprocess.Set(fmt.Sprintf("upload attachment %s err: %v", objectName, err))
	}
	return s.client.PresignGetURL(ctx, objectName, s.expiry)
}
