package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kivubank/accounts/internal/account"
	"github.com/kivubank/accounts/internal/movement"
)

// RegisterAccountRoutes wires account endpoints and account-scoped movement
// reads.
func RegisterAccountRoutes(r fiber.Router, h *account.Handler, mh *movement.Handler) {
	r.Post("/accounts", h.Create)
	r.Get("/accounts", h.List)
	r.Delete("/accounts", h.DeleteAll)
	r.Get("/accounts/:accountId", h.Get)
	r.Put("/accounts/:accountId", h.Update)
	r.Delete("/accounts/:accountId", h.Delete)

	r.Get("/accounts/:accountId/movements", mh.ListByAccount)
	r.Get("/accounts/:accountId/balance/average", mh.DailyAverage)
	r.Get("/accounts/:accountId/fees", mh.Fees)

	r.Get("/clients/:clientId/accounts", h.ListByClient)
	r.Get("/clients/:clientId/balance/average", mh.DailyAveragesByClient)
}
