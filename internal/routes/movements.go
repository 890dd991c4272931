package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kivubank/accounts/internal/movement"
)

// RegisterMovementRoutes wires movement endpoints.
func RegisterMovementRoutes(r fiber.Router, h *movement.Handler) {
	r.Post("/movements", h.Submit)
	r.Get("/movements", h.List)
	r.Delete("/movements", h.DeleteAll)
	r.Get("/movements/:movementId", h.Get)
	r.Put("/movements/:movementId", h.Amend)
	r.Delete("/movements/:movementId", h.Delete)
}
