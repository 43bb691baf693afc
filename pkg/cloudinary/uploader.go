package cloudinary

import (
	"bytes"
	"context"
	"errors"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type CloudinaryUploader struct {
	cld *cld.Cloudinary
}

func NewCloudinaryUploader(cloud *cld.Cloudinary) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cloud}
}

func boolPtr(b bool) *bool {
	return &b
}

func (u *CloudinaryUploader) UploadImage(ctx context.Context, folder, publicID string, jpg []byte) (string, error) {
	res, err := u.cld.Upload.Upload(ctx, bytes.NewReader(jpg), uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		Format:       "jpg",
		ResourceType: "image",
		Overwrite:    boolPtr(false),
	})
	if err != nil {
		return "", err
	}
	if res.Error.Message != "" {
		return "", errors.New(res.Error.Message)
	}
	return res.SecureURL, nil
}
