package utils

import (
	"github.com/SundayYogurt/scholarship_service/internal/dto"
	"github.com/gofiber/fiber/v2"
)

func ResponseError(ctx *fiber.Ctx, status int, msg string) error {
	return ctx.Status(status).JSON(dto.APIError{Error: msg})
}

// ResponseNotice is ResponseError plus the notice the page should pop up.
func ResponseNotice(ctx *fiber.Ctx, status int, msg string, notice *dto.Notice) error {
	return ctx.Status(status).JSON(dto.APIError{Error: msg, Notice: notice})
}

func ResponseSuccess(ctx *fiber.Ctx, status int, data interface{}) error {
	return ctx.Status(status).JSON(dto.APISuccessAny{Data: data})
}
