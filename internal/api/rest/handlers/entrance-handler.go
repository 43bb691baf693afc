package handlers

import (
	"errors"
	"log"
	"net/url"

	"github.com/SundayYogurt/scholarship_service/internal/dto"
	"github.com/SundayYogurt/scholarship_service/internal/helper/utils"
	"github.com/SundayYogurt/scholarship_service/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	formPath          = "/student/entrance-application"
	recentSubmissions = 20
)

var validate = validator.New()

type EntranceHandler struct {
	svc              services.EntranceService
	store            *session.Store
	applicationsPath string
}

func NewEntranceHandler(svc services.EntranceService, store *session.Store, applicationsPath string) *EntranceHandler {
	if applicationsPath == "" {
		applicationsPath = "/student/applications"
	}
	return &EntranceHandler{svc: svc, store: store, applicationsPath: applicationsPath}
}

func (h *EntranceHandler) SetupRoutes(app *fiber.App) {
	// Pages
	page := app.Group(formPath)
	page.Get("/", h.Page)
	page.Post("/", h.SubmitPage)
	page.Post("/attachment/open", h.OpenAttachmentPage)
	page.Post("/attachment/close", h.CloseAttachmentPage)
	page.Post("/attachments", h.UploadAttachmentPage)
	app.Get(h.applicationsPath, h.Applications)

	// JSON
	form := app.Group("/api/entrance-application")
	form.Get("/", h.GetForm)
	form.Patch("/fields", h.ChangeField)
	form.Put("/consent", h.SetConsent)
	form.Post("/submit", h.Submit)
	form.Post("/attachment/open", h.OpenAttachment)
	form.Post("/attachment/close", h.CloseAttachment)
	form.Post("/attachments", h.UploadAttachment)
}

func pageURL(studentTypeID, typeID string) string {
	q := url.Values{}
	q.Set("stid", studentTypeID)
	q.Set("tid", typeID)
	return formPath + "?" + q.Encode()
}

func (h *EntranceHandler) mount(ctx *fiber.Ctx, sess *session.Session) *services.EntranceForm {
	return h.svc.Mount(ctx.UserContext(), loadForm(sess), services.MountInput{
		StudentTypeID: ctx.Query("stid"),
		TypeID:        ctx.Query("tid"),
		SessionUser:   sessionString(sess, services.SessionUserKey),
	})
}

func (h *EntranceHandler) save(sess *session.Session, form *services.EntranceForm) error {
	if err := storeForm(sess, form); err != nil {
		return err
	}
	return sess.Save()
}

// show hands back the form as it should be displayed once; the stored copy
// drops the notice so it does not pop up again.
func (h *EntranceHandler) show(sess *session.Session, form *services.EntranceForm) (services.EntranceForm, error) {
	view := *form
	form.Notice = nil
	return view, h.save(sess, form)
}

func (h *EntranceHandler) openForm(ctx *fiber.Ctx) (*session.Session, *services.EntranceForm, error) {
	sess, err := h.store.Get(ctx)
	if err != nil {
		log.Printf("session load error: %v", err)
		return nil, nil, utils.ResponseError(ctx, fiber.StatusInternalServerError, "session unavailable")
	}
	form := loadForm(sess)
	if form == nil {
		return nil, nil, utils.ResponseError(ctx, fiber.StatusNotFound, "entrance form is not open")
	}
	return sess, form, nil
}

// GET /student/entrance-application?stid=&tid=
func (h *EntranceHandler) Page(ctx *fiber.Ctx) error {
	sess, err := h.store.Get(ctx)
	if err != nil {
		log.Printf("session load error: %v", err)
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "session unavailable")
	}

	view, err := h.show(sess, h.mount(ctx, sess))
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return ctx.Render("entrance-application", fiber.Map{"Form": view})
}

// POST /student/entrance-application
// form-data: contact_number, honors_received, general_weighted_average, consent=on
func (h *EntranceHandler) SubmitPage(ctx *fiber.Ctx) error {
	sess, err := h.store.Get(ctx)
	if err != nil {
		log.Printf("session load error: %v", err)
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "session unavailable")
	}

	form := loadForm(sess)
	if form == nil {
		form = h.mount(ctx, sess)
	}
	h.applyPosted(ctx, form)

	key := sess.ID()
	res, err := h.svc.Submit(ctx.UserContext(), key, form)
	if errors.Is(err, services.ErrSubmissionInFlight) {
		return utils.ResponseError(ctx, fiber.StatusConflict, err.Error())
	}

	if res.State == services.StateSuccess {
		sess.Delete(formSessionKey)
		flashNotice(sess, res.Notice)
		if err := sess.Save(); err != nil {
			return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
		}
		return ctx.Redirect(res.Redirect, fiber.StatusSeeOther)
	}

	// the notice stays on the stored form and shows on the next page load
	back := pageURL(form.StudentTypeID, form.TypeID)
	if err := h.save(sess, form); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return ctx.Redirect(back, fiber.StatusSeeOther)
}

// applyPosted copies the editable inputs and the consent checkbox of the page form.
func (h *EntranceHandler) applyPosted(ctx *fiber.Ctx, form *services.EntranceForm) {
	for _, name := range services.EditableFields {
		if ctx.Request().PostArgs().Has(name) {
			_ = h.svc.ChangeField(form, name, ctx.FormValue(name))
		}
	}
	h.svc.SetConsent(form, ctx.FormValue("consent") == "on")
}

// POST /student/entrance-application/attachment/open
// posted by the main form, so what was typed so far is kept
func (h *EntranceHandler) OpenAttachmentPage(ctx *fiber.Ctx) error {
	return h.toggleAttachmentPage(ctx, h.svc.OpenAttachment, true)
}

// POST /student/entrance-application/attachment/close
func (h *EntranceHandler) CloseAttachmentPage(ctx *fiber.Ctx) error {
	return h.toggleAttachmentPage(ctx, h.svc.CloseAttachment, false)
}

func (h *EntranceHandler) toggleAttachmentPage(ctx *fiber.Ctx, toggle func(*services.EntranceForm), withFields bool) error {
	sess, err := h.store.Get(ctx)
	if err != nil {
		log.Printf("session load error: %v", err)
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "session unavailable")
	}

	form := loadForm(sess)
	if form == nil {
		return ctx.Redirect(formPath, fiber.StatusSeeOther)
	}
	if withFields {
		h.applyPosted(ctx, form)
	}
	toggle(form)

	back := pageURL(form.StudentTypeID, form.TypeID)
	if err := h.save(sess, form); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return ctx.Redirect(back, fiber.StatusSeeOther)
}

// GET /student/applications
func (h *EntranceHandler) Applications(ctx *fiber.Ctx) error {
	sess, err := h.store.Get(ctx)
	if err != nil {
		log.Printf("session load error: %v", err)
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "session unavailable")
	}

	notice := takeNotice(sess)
	subs, err := h.svc.RecentSubmissions(sessionUserID(sess), recentSubmissions)
	if err != nil {
		log.Printf("list submissions error: %v", err)
	}
	if err := sess.Save(); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return ctx.Render("applications", fiber.Map{
		"Notice":      notice,
		"Submissions": subs,
	})
}

// GET /api/entrance-application?stid=&tid=
func (h *EntranceHandler) GetForm(ctx *fiber.Ctx) error {
	sess, err := h.store.Get(ctx)
	if err != nil {
		log.Printf("session load error: %v", err)
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "session unavailable")
	}

	view, err := h.show(sess, h.mount(ctx, sess))
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, view)
}

// PATCH /api/entrance-application/fields
// body: {"name": "contact_number", "value": "09171234567"}
func (h *EntranceHandler) ChangeField(ctx *fiber.Ctx) error {
	var req dto.FieldChangeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if err := validate.Struct(req); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "field name is required")
	}

	sess, form, errResp := h.openForm(ctx)
	if form == nil {
		return errResp
	}
	if err := h.svc.ChangeField(form, req.Name, req.Value); err != nil {
		if errors.Is(err, services.ErrUnknownField) {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	if err := h.save(sess, form); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, form)
}

// PUT /api/entrance-application/consent
// body: {"checked": true}
func (h *EntranceHandler) SetConsent(ctx *fiber.Ctx) error {
	var req dto.ConsentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if err := validate.Struct(req); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "checked is required")
	}

	sess, form, errResp := h.openForm(ctx)
	if form == nil {
		return errResp
	}
	h.svc.SetConsent(form, *req.Checked)

	if err := h.save(sess, form); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, form)
}

// POST /api/entrance-application/submit
func (h *EntranceHandler) Submit(ctx *fiber.Ctx) error {
	sess, form, errResp := h.openForm(ctx)
	if form == nil {
		return errResp
	}

	key := sess.ID()
	res, err := h.svc.Submit(ctx.UserContext(), key, form)
	switch {
	case errors.Is(err, services.ErrSubmissionInFlight):
		return utils.ResponseError(ctx, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrConsentRequired):
		form.Notice = nil
		if err := h.save(sess, form); err != nil {
			return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
		}
		return utils.ResponseNotice(ctx, fiber.StatusUnprocessableEntity, services.ErrConsentRequired.Error(), res.Notice)
	}

	if res.State == services.StateSuccess {
		// leaving for the applications list closes the form; the notice goes back in the response only
		sess.Delete(formSessionKey)
		if err := sess.Save(); err != nil {
			return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
		}
		return utils.ResponseSuccess(ctx, fiber.StatusOK, res)
	}

	form.Notice = nil
	if err := h.save(sess, form); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, res)
}

// POST /api/entrance-application/attachment/open
func (h *EntranceHandler) OpenAttachment(ctx *fiber.Ctx) error {
	return h.toggleAttachment(ctx, h.svc.OpenAttachment)
}

// POST /api/entrance-application/attachment/close
func (h *EntranceHandler) CloseAttachment(ctx *fiber.Ctx) error {
	return h.toggleAttachment(ctx, h.svc.CloseAttachment)
}

func (h *EntranceHandler) toggleAttachment(ctx *fiber.Ctx, toggle func(*services.EntranceForm)) error {
	sess, form, errResp := h.openForm(ctx)
	if form == nil {
		return errResp
	}
	toggle(form)

	if err := h.save(sess, form); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, form)
}
