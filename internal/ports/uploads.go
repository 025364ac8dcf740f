package ports

import "context"

// UploadPort stores user files and returns a retrievable URL.
type UploadPort interface {
	Upload(ctx context.Context, userID, filename, contentType string, data []byte) (string, error)
}
