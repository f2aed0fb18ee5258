package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/farmrakshaa/backend/internal/repository"
)

var resourceValidate = validator.New(validator.WithRequiredStructEnabled())

// ResourceHandler serves the uniform CRUD endpoints shared by alerts, farms,
// compliance records and feedback. Each resource supplies its model type and
// store; the five handlers are otherwise identical.
type ResourceHandler[T any] struct {
	store repository.Store[T]
}

func NewResourceHandler[T any](store repository.Store[T]) *ResourceHandler[T] {
	return &ResourceHandler[T]{store: store}
}

// Mount registers the CRUD routes on a route group.
func (h *ResourceHandler[T]) Mount(r fiber.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/:id", h.Get)
	r.Put("/:id", h.Update)
	r.Delete("/:id", h.Delete)
}

func parseID(c *fiber.Ctx) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Params("id"))
}

func (h *ResourceHandler[T]) Create(c *fiber.Ctx) error {
	var doc T
	if err := c.BodyParser(&doc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := resourceValidate.Struct(&doc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.store.Create(c.Context(), &doc); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

func (h *ResourceHandler[T]) List(c *fiber.Ctx) error {
	items, err := h.store.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *ResourceHandler[T]) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid id"})
	}
	doc, err := h.store.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(doc)
}

func (h *ResourceHandler[T]) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid id"})
	}
	var doc T
	if err := c.BodyParser(&doc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	updated, err := h.store.Update(c.Context(), id, &doc)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

func (h *ResourceHandler[T]) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid id"})
	}
	if err := h.store.Delete(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
