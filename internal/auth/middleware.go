package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/audit"
	"magaza-backend/internal/config"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUsernameKey = "username"
	CtxIsAdminKey  = "is_admin"
)

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperr.Unauthorized("Authorization header eksik")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return apperr.Unauthorized("Authorization formatı 'Bearer <token>' olmalı")
		}

		claims, err := ParseToken(cfg.JWTSecret, strings.TrimSpace(parts[1]))
		if err != nil {
			return apperr.Unauthorized("Geçersiz veya süresi dolmuş token")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUsernameKey, claims.Username)
		c.Locals(CtxIsAdminKey, claims.IsAdmin)

		return c.Next()
	}
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isAdmin, _ := c.Locals(CtxIsAdminKey).(bool); !isAdmin {
			return apperr.Forbidden("Bu işlem için yetkiniz yok")
		}
		return c.Next()
	}
}

func CurrentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(CtxUserIDKey).(uint)
	return id
}

// ActorFrom denetim kayıtları için isteği yapan kullanıcı.
func ActorFrom(c *fiber.Ctx) audit.Actor {
	name, _ := c.Locals(CtxUsernameKey).(string)
	return audit.Actor{UserID: CurrentUserID(c), UserName: name}
}
