package middleware

import (
	"strings"

	"github.com/SundayYogurt/scholarship_service/internal/helper"
	"github.com/SundayYogurt/scholarship_service/internal/helper/utils"
	"github.com/gofiber/fiber/v2"
)

func AuthMiddleware(auth helper.Auth) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		// cookie first, then Authorization header
		tokenStr := strings.TrimSpace(ctx.Cookies("access_token"))
		if tokenStr == "" {
			tokenStr = strings.TrimSpace(ctx.Get(fiber.HeaderAuthorization))
		}

		user, err := auth.VerifyToken(tokenStr)
		if err != nil {
			return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
		}

		ctx.Locals("userID", user.UserID)
		ctx.Locals("user", user)
		return ctx.Next()
	}
}
