package account

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler exposes account HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	ClientID    string   `json:"client_id"`
	Type        string   `json:"type"`
	Balance     string   `json:"balance"`
	Holders     []string `json:"holders,omitempty"`
	Signers     []string `json:"signers,omitempty"`
	MovementDay int      `json:"movement_day,omitempty"`
}

type updateRequest struct {
	MovementDay int `json:"movement_day"`
}

type accountResponse struct {
	ID             string   `json:"id"`
	ClientID       string   `json:"client_id"`
	ClientKind     string   `json:"client_kind"`
	ClientTier     string   `json:"client_tier"`
	Type           string   `json:"type"`
	Balance        string   `json:"balance"`
	MaintenanceFee string   `json:"maintenance_fee"`
	MovementLimit  int      `json:"movement_limit"`
	Holders        []string `json:"holders,omitempty"`
	Signers        []string `json:"signers,omitempty"`
	MovementDay    int      `json:"movement_day,omitempty"`
}

func toResponse(a Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		ClientID:       a.ClientID,
		ClientKind:     string(a.ClientKind),
		ClientTier:     string(a.ClientTier),
		Type:           string(a.Type),
		Balance:        a.Balance.String(),
		MaintenanceFee: a.MaintenanceFee.String(),
		MovementLimit:  a.MovementLimit,
		Holders:        a.Holders,
		Signers:        a.Signers,
		MovementDay:    a.MovementDay,
	}
}

// Create opens an account.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	acctType, err := ParseType(req.Type)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	balance := decimal.Zero
	if req.Balance != "" {
		if balance, err = decimal.NewFromString(req.Balance); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid balance")
		}
	}

	acct, err := h.service.Create(c.UserContext(), CreateInput{
		ClientID:    req.ClientID,
		Type:        acctType,
		Balance:     balance,
		Holders:     req.Holders,
		Signers:     req.Signers,
		MovementDay: req.MovementDay,
	})
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(acct))
}

// Get returns one account.
func (h *Handler) Get(c *fiber.Ctx) error {
	acct, err := h.service.Get(c.UserContext(), c.Params("accountId"))
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.JSON(toResponse(acct))
}

// List returns every account.
func (h *Handler) List(c *fiber.Ctx) error {
	accounts, err := h.service.List(c.UserContext())
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, acct := range accounts {
		out = append(out, toResponse(acct))
	}
	return c.JSON(out)
}

// ListByClient returns a client's accounts.
func (h *Handler) ListByClient(c *fiber.Ctx) error {
	accounts, err := h.service.ListByClient(c.UserContext(), c.Params("clientId"))
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, acct := range accounts {
		out = append(out, toResponse(acct))
	}
	return c.JSON(out)
}

// Update changes the movement day of a fixed deposit account.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	acct, err := h.service.UpdateMovementDay(c.UserContext(), c.Params("accountId"), req.MovementDay)
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.JSON(toResponse(acct))
}

// Delete removes an account.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("accountId")); err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteAll removes every account.
func (h *Handler) DeleteAll(c *fiber.Ctx) error {
	if err := h.service.DeleteAll(c.UserContext()); err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrMovementDay):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
