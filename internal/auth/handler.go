package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/config"
	"magaza-backend/internal/models"
	"magaza-backend/internal/validation"
)

type SetupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	FullName string `json:"fullName" validate:"max=100"`
	PIN      string `json:"pin" validate:"required,pin"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	PIN      string `json:"pin" validate:"required"`
}

func userResponse(u *models.User) fiber.Map {
	return fiber.Map{
		"id":          u.ID,
		"username":    u.Username,
		"fullName":    u.FullName,
		"isAdmin":     u.IsAdmin,
		"isActive":    u.IsActive,
		"lastLoginAt": u.LastLoginAt,
	}
}

func tokenResponse(cfg *config.Config, c *fiber.Ctx, user *models.User, status int) error {
	token, err := GenerateToken(cfg.JWTSecret, cfg.JWTTTL, user)
	if err != nil {
		return apperr.Internal("Token oluşturulamadı", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"token": token,
		"user":  userResponse(user),
	})
}

// SetupHandler hiç kullanıcı yokken ilk admini oluşturur ve token döner.
func SetupHandler(cfg *config.Config, svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SetupRequest
		if err := validation.ParseAndValidate(c, &body); err != nil {
			return err
		}
		user, err := svc.Setup(c.UserContext(), body.Username, body.FullName, body.PIN)
		if err != nil {
			return err
		}
		return tokenResponse(cfg, c, user, fiber.StatusCreated)
	}
}

func LoginHandler(cfg *config.Config, svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := validation.ParseAndValidate(c, &body); err != nil {
			return err
		}
		user, err := svc.Login(c.UserContext(), body.Username, body.PIN)
		if err != nil {
			return err
		}
		return tokenResponse(cfg, c, user, fiber.StatusOK)
	}
}

// LoginRateLimiter IP başına dakikalık giriş isteği sınırı.
func LoginRateLimiter(cfg *config.Config) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.LoginRateLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(apperr.Response{
				Error:   "TOO_MANY_REQUESTS",
				Message: "Çok fazla giriş denemesi, lütfen biraz sonra tekrar deneyin",
			})
		},
	})
}

func MeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := svc.Get(c.UserContext(), CurrentUserID(c))
		if err != nil {
			return err
		}
		if !user.IsActive {
			return apperr.Unauthorized("Hesap pasif durumda")
		}
		return c.JSON(userResponse(user))
	}
}
