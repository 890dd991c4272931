package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kivubank/accounts/internal/report"
)

// RegisterReportRoutes wires statement endpoints.
func RegisterReportRoutes(r fiber.Router, h *report.Handler) {
	r.Get("/accounts/:accountId/statement", h.Statement)
	r.Get("/clients/:clientId/statements", h.StatementsByClient)
}
