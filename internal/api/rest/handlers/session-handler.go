package handlers

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/SundayYogurt/scholarship_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/scholarship_service/internal/dto"
	"github.com/SundayYogurt/scholarship_service/internal/helper"
	"github.com/SundayYogurt/scholarship_service/internal/helper/utils"
	"github.com/SundayYogurt/scholarship_service/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// SessionHandler lets the login flow hand the user record over to this service.
type SessionHandler struct {
	store *session.Store
	auth  helper.Auth
}

func NewSessionHandler(store *session.Store, auth helper.Auth) *SessionHandler {
	return &SessionHandler{store: store, auth: auth}
}

func (h *SessionHandler) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/session", middleware.AuthMiddleware(h.auth))
	api.Post("/", h.StoreSession)
	api.Delete("/", h.ClearSession)
}

// POST /api/session
// body: {"user_id": "42", "email": "...", "first_name": "...", ...}
func (h *SessionHandler) StoreSession(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
	}

	var req dto.SessionUser
	if err := ctx.BodyParser(&req); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	raw, err := services.EncodeSessionUser(req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSession) {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	if strconv.Itoa(claims.UserID) != strings.TrimSpace(req.UserID) {
		return utils.ResponseError(ctx, fiber.StatusForbidden, "user_id does not match token")
	}

	sess, err := h.store.Get(ctx)
	if err != nil {
		log.Printf("session load error: %v", err)
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "session unavailable")
	}
	sess.Set(services.SessionUserKey, raw)
	// a form opened for someone else must not carry over
	sess.Delete(formSessionKey)
	if err := sess.Save(); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, "Session stored")
}

// DELETE /api/session
func (h *SessionHandler) ClearSession(ctx *fiber.Ctx) error {
	sess, err := h.store.Get(ctx)
	if err != nil {
		log.Printf("session load error: %v", err)
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "session unavailable")
	}
	sess.Delete(services.SessionUserKey)
	sess.Delete(formSessionKey)
	if err := sess.Save(); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "Session cleared")
}
