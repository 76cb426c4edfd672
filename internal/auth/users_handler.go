package auth

import (
	"github.com/gofiber/fiber/v2"

	"magaza-backend/internal/validation"
)

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	FullName string `json:"fullName" validate:"max=100"`
	PIN      string `json:"pin" validate:"required,pin"`
	IsAdmin  bool   `json:"isAdmin"`
}

type UpdateUserRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,max=100"`
	PIN      *string `json:"pin" validate:"omitempty,pin"`
	IsAdmin  *bool   `json:"isAdmin"`
	IsActive *bool   `json:"isActive"`
}

func ListUsersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(users)
	}
}

func CreateUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := validation.ParseAndValidate(c, &body); err != nil {
			return err
		}
		user, err := svc.CreateUser(c.UserContext(), UserInput{
			Username: body.Username,
			FullName: body.FullName,
			PIN:      body.PIN,
			IsAdmin:  body.IsAdmin,
		}, ActorFrom(c))
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

func UpdateUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body UpdateUserRequest
		if err := validation.ParseAndValidate(c, &body); err != nil {
			return err
		}
		user, err := svc.UpdateUser(c.UserContext(), id, UserUpdate{
			FullName: body.FullName,
			PIN:      body.PIN,
			IsAdmin:  body.IsAdmin,
			IsActive: body.IsActive,
		}, ActorFrom(c))
		if err != nil {
			return err
		}
		return c.JSON(user)
	}
}

func DeleteUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.DeactivateUser(c.UserContext(), id, ActorFrom(c)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func UnlockUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Unlock(c.UserContext(), id, ActorFrom(c)); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Kullanıcı kilidi açıldı"})
	}
}
