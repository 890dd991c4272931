package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kivubank/accounts/internal/card"
)

// RegisterCardRoutes wires debit card endpoints.
func RegisterCardRoutes(r fiber.Router, h *card.Handler) {
	r.Post("/cards", h.Create)
	r.Get("/cards", h.List)
	r.Delete("/cards", h.DeleteAll)
	r.Get("/cards/:cardId", h.Get)
	r.Put("/cards/:cardId", h.Update)
	r.Delete("/cards/:cardId", h.Delete)

	r.Post("/cards/:cardId/accounts", h.Link)
	r.Post("/cards/:cardId/spend", h.Spend)
	r.Get("/cards/:cardId/movements", h.LastMovements)
	r.Get("/cards/:cardId/balance", h.MainBalance)

	r.Get("/clients/:clientId/cards", h.ListByClient)
}
