package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/SundayYogurt/scholarship_service/internal/dto"
	"github.com/SundayYogurt/scholarship_service/pkg/utils"
	"github.com/google/uuid"
)

const (
	MaxAttachmentSize     = 5 * 1024 * 1024 // 5MB
	attachmentMaxWidth    = 1600
	attachmentJPEGQuality = 85
)

var (
	ErrAttachmentClosed      = errors.New("attachment dialog is not open")
	ErrUnsupportedAttachment = errors.New("only jpg/jpeg/png/webp allowed")
	ErrAttachmentTooLarge    = errors.New("file too large (max 5MB)")
)

var allowedAttachmentExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// UploadAttachment normalises an image picked in the attachment dialog and stores it
// under the form's student type / type folder. Form state is not touched.
func (s *entranceService) UploadAttachment(ctx context.Context, form *EntranceForm, file dto.AttachmentFile) (string, error) {
	if s.uploader == nil {
		return "", errors.New("uploader is not configured")
	}
	if !form.AttachmentOpen {
		return "", ErrAttachmentClosed
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAttachmentExt[ext] {
		return "", ErrUnsupportedAttachment
	}
	if len(file.Bytes) > MaxAttachmentSize {
		return "", ErrAttachmentTooLarge
	}

	jpg, err := utils.NormalizeToJPG(file.Bytes, attachmentMaxWidth, attachmentJPEGQuality)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedAttachment, err)
	}

	folder := AttachmentFolder(form.StudentTypeID, form.TypeID)
	return s.uploader.UploadImage(ctx, folder, uuid.NewString(), jpg)
}

func AttachmentFolder(studentTypeID, typeID string) string {
	return fmt.Sprintf("scholarship/entrance/%s/%s", orUnknown(studentTypeID), orUnknown(typeID))
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
