package handlers

import (
	"errors"
	"log"

	"github.com/SundayYogurt/scholarship_service/internal/dto"
	"github.com/SundayYogurt/scholarship_service/internal/helper/utils"
	"github.com/SundayYogurt/scholarship_service/internal/services"
	pkgutils "github.com/SundayYogurt/scholarship_service/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

var errUploadFailed = errors.New("attachment upload failed")

// uploadAttachment reads the multipart "file" and hands it to the service.
// On failure it returns the HTTP status that fits the error.
func (h *EntranceHandler) uploadAttachment(ctx *fiber.Ctx, form *services.EntranceForm) (string, int, error) {
	file, err := ctx.FormFile("file")
	if err != nil {
		return "", fiber.StatusBadRequest, errors.New("file is required")
	}
	if file.Size > services.MaxAttachmentSize {
		return "", fiber.StatusBadRequest, services.ErrAttachmentTooLarge
	}

	f, err := file.Open()
	if err != nil {
		return "", fiber.StatusInternalServerError, errors.New("cannot open uploaded file")
	}
	defer f.Close()

	b, err := pkgutils.ReadAllLimit(f, services.MaxAttachmentSize)
	if err != nil {
		if errors.Is(err, pkgutils.ErrFileTooLarge) {
			return "", fiber.StatusBadRequest, services.ErrAttachmentTooLarge
		}
		return "", fiber.StatusInternalServerError, errors.New("cannot read uploaded file")
	}

	url, err := h.svc.UploadAttachment(ctx.UserContext(), form, dto.AttachmentFile{
		Filename: file.Filename,
		Bytes:    b,
	})
	switch {
	case errors.Is(err, services.ErrAttachmentClosed):
		return "", fiber.StatusConflict, err
	case errors.Is(err, services.ErrUnsupportedAttachment), errors.Is(err, services.ErrAttachmentTooLarge):
		return "", fiber.StatusBadRequest, err
	case err != nil:
		log.Printf("attachment upload error: %v", err)
		return "", fiber.StatusInternalServerError, errUploadFailed
	}
	return url, fiber.StatusOK, nil
}

// POST /api/entrance-application/attachments
// form-data: file=<image>
func (h *EntranceHandler) UploadAttachment(ctx *fiber.Ctx) error {
	_, form, errResp := h.openForm(ctx)
	if form == nil {
		return errResp
	}

	url, status, err := h.uploadAttachment(ctx, form)
	if err != nil {
		return utils.ResponseError(ctx, status, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.AttachmentResponse{URL: url})
}

// POST /student/entrance-application/attachments
// form-data: file=<image>, posted by the attachment dialog
func (h *EntranceHandler) UploadAttachmentPage(ctx *fiber.Ctx) error {
	sess, err := h.store.Get(ctx)
	if err != nil {
		log.Printf("session load error: %v", err)
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "session unavailable")
	}

	form := loadForm(sess)
	if form == nil {
		return ctx.Redirect(formPath, fiber.StatusSeeOther)
	}

	if _, _, err := h.uploadAttachment(ctx, form); err != nil {
		form.Notice = &dto.Notice{Title: "Error!", Text: err.Error(), Icon: "error"}
	} else {
		form.Notice = &dto.Notice{Title: "Success!", Text: "Attachment uploaded.", Icon: "success"}
	}

	back := pageURL(form.StudentTypeID, form.TypeID)
	if err := h.save(sess, form); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return ctx.Redirect(back, fiber.StatusSeeOther)
}
