package transfer

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/kivubank/accounts/internal/account"
	"github.com/kivubank/accounts/internal/pending"
)

// Handler exposes transfer HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a transfer HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type payRequest struct {
	AccountID   string `json:"account_id"`
	Correlation string `json:"correlation_id"`
	Amount      string `json:"amount"`
}

type transferResponse struct {
	ID          string    `json:"id"`
	From        string    `json:"from"`
	To          string    `json:"to,omitempty"`
	Amount      string    `json:"amount"`
	Correlation string    `json:"correlation_id,omitempty"`
	Date        time.Time `json:"date"`
}

func toResponse(t Transfer) transferResponse {
	return transferResponse{
		ID:          t.ID,
		From:        t.From,
		To:          t.To,
		Amount:      t.Amount.String(),
		Correlation: t.Correlation,
		Date:        t.Date,
	}
}

// Execute runs a two-leg transfer.
func (h *Handler) Execute(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid amount")
	}
	tr, err := h.service.Execute(c.UserContext(), ExecuteInput{From: req.From, To: req.To, Amount: amount})
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(tr))
}

// PayPending settles a pending hub transaction.
func (h *Handler) PayPending(c *fiber.Ctx) error {
	var req payRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid amount")
	}
	tr, err := h.service.PayPending(c.UserContext(),
		PayInput{AccountID: req.AccountID, Correlation: req.Correlation, Amount: amount})
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(tr))
}

// Get returns one transfer.
func (h *Handler) Get(c *fiber.Ctx) error {
	tr, err := h.service.Get(c.UserContext(), c.Params("transferId"))
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.JSON(toResponse(tr))
}

// List returns every transfer summary.
func (h *Handler) List(c *fiber.Ctx) error {
	trs, err := h.service.List(c.UserContext())
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.JSON(toResponses(trs))
}

// ListByAccount returns the transfers an account took part in.
func (h *Handler) ListByAccount(c *fiber.Ctx) error {
	trs, err := h.service.ListByAccount(c.UserContext(), c.Params("accountId"))
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.JSON(toResponses(trs))
}

// Delete removes one transfer record.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("transferId")); err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteAll clears the transfer log.
func (h *Handler) DeleteAll(c *fiber.Ctx) error {
	if err := h.service.DeleteAll(c.UserContext()); err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

func toResponses(trs []Transfer) []transferResponse {
	out := make([]transferResponse, 0, len(trs))
	for _, tr := range trs {
		out = append(out, toResponse(tr))
	}
	return out
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, account.ErrNotFound), errors.Is(err, pending.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, account.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, account.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, account.ErrInsufficientFunds), errors.Is(err, account.ErrMovementDay),
		errors.Is(err, ErrExpired), errors.Is(err, ErrAmountMismatch), errors.Is(err, ErrAccountMismatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
