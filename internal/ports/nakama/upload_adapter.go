package nakama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"buttonblitz/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

const uploadsCollection = "uploads"

type storedUpload struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Data        string    `json:"data"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// StorageUploadAdapter stores small files as public-read storage objects.
type StorageUploadAdapter struct {
	nk runtime.NakamaModule
}

func NewStorageUploadAdapter(nk runtime.NakamaModule) *StorageUploadAdapter {
	return &StorageUploadAdapter{nk: nk}
}

// Upload writes data under a fresh key and returns a storage:// URL of the
// form storage://uploads/<user>/<key>.
func (a *StorageUploadAdapter) Upload(ctx context.Context, userID, filename, contentType string, data []byte) (string, error) {
	if userID == "" {
		return "", ports.ErrNotLoggedIn
	}
	value, err := json.Marshal(storedUpload{
		Filename:    filename,
		ContentType: contentType,
		Data:        base64.StdEncoding.EncodeToString(data),
		UploadedAt:  time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal upload: %w", err)
	}
	key := uuid.NewString()
	if _, err := a.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      uploadsCollection,
		Key:             key,
		UserID:          userID,
		Value:           string(value),
		PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}}); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return fmt.Sprintf("storage://%s/%s/%s", uploadsCollection, userID, key), nil
}

var _ ports.UploadPort = (*StorageUploadAdapter)(nil)
