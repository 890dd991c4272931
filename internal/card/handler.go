package card

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/kivubank/accounts/internal/account"
	"github.com/kivubank/accounts/internal/movement"
)

// Handler exposes debit card HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a card HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Number      string `json:"number"`
	ClientID    string `json:"client_id"`
	MainAccount string `json:"main_account"`
}

type linkRequest struct {
	Number    string `json:"number"`
	ClientID  string `json:"client_id"`
	AccountID string `json:"account_id"`
}

type spendRequest struct {
	Kind   string `json:"kind"`
	Amount string `json:"amount"`
}

type updateRequest struct {
	Number string `json:"number"`
}

type cardResponse struct {
	ID       string   `json:"id"`
	Number   string   `json:"number"`
	ClientID string   `json:"client_id"`
	Accounts []string `json:"accounts"`
}

type movementResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Amount    string    `json:"amount"`
	Date      time.Time `json:"date"`
	AccountID string    `json:"account_id"`
}

func toResponse(c DebitCard) cardResponse {
	return cardResponse{ID: c.ID, Number: c.Number, ClientID: c.ClientID, Accounts: c.Accounts}
}

func toMovementResponses(movs []movement.Movement) []movementResponse {
	out := make([]movementResponse, 0, len(movs))
	for _, mov := range movs {
		out = append(out, movementResponse{
			ID:        mov.ID,
			Kind:      string(mov.Kind),
			Amount:    mov.Amount.String(),
			Date:      mov.Date,
			AccountID: mov.AccountID,
		})
	}
	return out
}

// Create issues a card.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	card, err := h.service.Create(c.UserContext(), CreateInput{
		Number:      req.Number,
		ClientID:    req.ClientID,
		MainAccount: req.MainAccount,
	})
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(card))
}

// Link appends an account to a card's waterfall.
func (h *Handler) Link(c *fiber.Ctx) error {
	var req linkRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	card, err := h.service.Link(c.UserContext(), LinkInput{
		Number:    req.Number,
		ClientID:  req.ClientID,
		AccountID: req.AccountID,
	})
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.JSON(toResponse(card))
}

// Spend settles a card charge across the linked accounts.
func (h *Handler) Spend(c *fiber.Ctx) error {
	var req spendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	kind, err := account.ParseMovementKind(req.Kind)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid amount")
	}

	movs, err := h.service.Spend(c.UserContext(), SpendInput{
		CardID: c.Params("cardId"),
		Kind:   kind,
		Amount: amount,
	})
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toMovementResponses(movs))
}

// LastMovements returns the card's ten most recent charges.
func (h *Handler) LastMovements(c *fiber.Ctx) error {
	movs, err := h.service.LastMovements(c.UserContext(), c.Params("cardId"))
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.JSON(toMovementResponses(movs))
}

// MainBalance returns the balance of the card's main account.
func (h *Handler) MainBalance(c *fiber.Ctx) error {
	balance, err := h.service.MainBalance(c.UserContext(), c.Params("cardId"))
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.JSON(fiber.Map{"card_id": c.Params("cardId"), "balance": balance.String()})
}

// Get returns one card.
func (h *Handler) Get(c *fiber.Ctx) error {
	card, err := h.service.Get(c.UserContext(), c.Params("cardId"))
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.JSON(toResponse(card))
}

// List returns every card.
func (h *Handler) List(c *fiber.Ctx) error {
	cards, err := h.service.List(c.UserContext())
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	out := make([]cardResponse, 0, len(cards))
	for _, card := range cards {
		out = append(out, toResponse(card))
	}
	return c.JSON(out)
}

// ListByClient returns a client's cards.
func (h *Handler) ListByClient(c *fiber.Ctx) error {
	cards, err := h.service.ListByClient(c.UserContext(), c.Params("clientId"))
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	out := make([]cardResponse, 0, len(cards))
	for _, card := range cards {
		out = append(out, toResponse(card))
	}
	return c.JSON(out)
}

// Update replaces the card number.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	card, err := h.service.UpdateNumber(c.UserContext(), c.Params("cardId"), req.Number)
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.JSON(toResponse(card))
}

// Delete removes a card.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("cardId")); err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteAll removes every card.
func (h *Handler) DeleteAll(c *fiber.Ctx) error {
	if err := h.service.DeleteAll(c.UserContext()); err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, account.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNumberInUse), errors.Is(err, ErrNotIssued),
		errors.Is(err, ErrWrongClient), errors.Is(err, account.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, account.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, account.ErrVersionConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
