package routes

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/kivubank/accounts/internal/pending"
	"github.com/kivubank/accounts/internal/transfer"
)

// RegisterTransferRoutes wires transfer endpoints, the hub-payment pay path
// and the pending-transaction intake the hub calls ahead of a payment.
func RegisterTransferRoutes(r fiber.Router, h *transfer.Handler, store pending.Store, pendingTTL time.Duration) {
	r.Post("/transfers", h.Execute)
	r.Post("/transfers/pay", h.PayPending)
	r.Get("/transfers", h.List)
	r.Delete("/transfers", h.DeleteAll)
	r.Get("/transfers/:transferId", h.Get)
	r.Delete("/transfers/:transferId", h.Delete)

	r.Get("/accounts/:accountId/transfers", h.ListByAccount)

	r.Post("/pending-transactions", createPending(store, pendingTTL))
}

type pendingRequest struct {
	ID        string `json:"id"`
	Amount    string `json:"amount"`
	AccountID string `json:"account_id"`
}

// createPending registers a pending transaction for later settlement. The
// record expires from the keyed store after the configured TTL.
func createPending(store pending.Store, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pendingRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if req.ID == "" || req.AccountID == "" {
			return fiber.NewError(http.StatusBadRequest, "id and account_id are required")
		}
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil || !amount.IsPositive() {
			return fiber.NewError(http.StatusBadRequest, "invalid amount")
		}

		tx := pending.Transaction{
			ID:         req.ID,
			State:      pending.StateRequested,
			Amount:     amount,
			AccountID:  req.AccountID,
			Expiration: time.Now().Add(ttl),
		}
		if err := store.Put(c.UserContext(), tx, ttl); err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"id":         tx.ID,
			"expiration": tx.Expiration,
		})
	}
}
