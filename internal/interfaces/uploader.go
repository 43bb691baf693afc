package interfaces

import "context"

// ImageUploader stores a normalised JPEG under folder/publicID and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, folder, publicID string, jpg []byte) (string, error)
}
