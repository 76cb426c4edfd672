package inventory

import (
	"github.com/gofiber/fiber/v2"

	"magaza-backend/internal/auth"
	"magaza-backend/internal/validation"
)

type CreateCategoryRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	SortOrder int    `json:"sortOrder"`
	Color     string `json:"color" validate:"max=20"`
}

type UpdateCategoryRequest struct {
	Name      *string `json:"name" validate:"omitempty,max=100"`
	SortOrder *int    `json:"sortOrder"`
	Color     *string `json:"color" validate:"omitempty,max=20"`
	IsActive  *bool   `json:"isActive"`
}

// GET /api/categories?all=true
func ListCategoriesHandler(svc *CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := svc.List(c.UserContext(), c.Query("all") != "true")
		if err != nil {
			return err
		}
		return c.JSON(cats)
	}
}

// POST /api/categories
func CreateCategoryHandler(svc *CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCategoryRequest
		if err := validation.ParseAndValidate(c, &body); err != nil {
			return err
		}
		cat, err := svc.Create(c.UserContext(), CategoryInput{
			Name:      body.Name,
			SortOrder: body.SortOrder,
			Color:     body.Color,
		}, auth.ActorFrom(c))
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	}
}

// PUT /api/categories/:id
func UpdateCategoryHandler(svc *CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body UpdateCategoryRequest
		if err := validation.ParseAndValidate(c, &body); err != nil {
			return err
		}
		cat, err := svc.Update(c.UserContext(), id, CategoryUpdate{
			Name:      body.Name,
			SortOrder: body.SortOrder,
			Color:     body.Color,
			IsActive:  body.IsActive,
		}, auth.ActorFrom(c))
		if err != nil {
			return err
		}
		return c.JSON(cat)
	}
}

// DELETE /api/categories/:id
func DeleteCategoryHandler(svc *CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id, auth.ActorFrom(c)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
