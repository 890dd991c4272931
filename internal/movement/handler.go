package movement

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/kivubank/accounts/internal/account"
)

// Handler exposes movement HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a movement HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type movementRequest struct {
	AccountID string `json:"account_id"`
	Kind      string `json:"kind"`
	Amount    string `json:"amount"`
}

type movementResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Amount    string    `json:"amount"`
	Fee       string    `json:"fee"`
	Date      time.Time `json:"date"`
	AccountID string    `json:"account_id"`
}

func toResponse(m Movement) movementResponse {
	return movementResponse{
		ID:        m.ID,
		Kind:      string(m.Kind),
		Amount:    m.Amount.String(),
		Fee:       m.Fee.String(),
		Date:      m.Date,
		AccountID: m.AccountID,
	}
}

func parseRequest(c *fiber.Ctx) (string, account.MovementKind, decimal.Decimal, error) {
	var req movementRequest
	if err := c.BodyParser(&req); err != nil {
		return "", "", decimal.Zero, fiber.NewError(http.StatusBadRequest, err.Error())
	}
	kind, err := account.ParseMovementKind(req.Kind)
	if err != nil {
		return "", "", decimal.Zero, fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return "", "", decimal.Zero, fiber.NewError(http.StatusBadRequest, "invalid amount")
	}
	return req.AccountID, kind, amount, nil
}

// Submit applies a new movement.
func (h *Handler) Submit(c *fiber.Ctx) error {
	accountID, kind, amount, err := parseRequest(c)
	if err != nil {
		return err
	}
	mov, err := h.service.Submit(c.UserContext(), SubmitInput{AccountID: accountID, Kind: kind, Amount: amount})
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(mov))
}

// Amend rewrites a stored movement, reconciling the account balance with the
// difference.
func (h *Handler) Amend(c *fiber.Ctx) error {
	accountID, kind, amount, err := parseRequest(c)
	if err != nil {
		return err
	}
	mov, err := h.service.Amend(c.UserContext(), c.Params("movementId"),
		AmendInput{AccountID: accountID, Kind: kind, Amount: amount})
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.JSON(toResponse(mov))
}

// Get returns one movement.
func (h *Handler) Get(c *fiber.Ctx) error {
	mov, err := h.service.Get(c.UserContext(), c.Params("movementId"))
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.JSON(toResponse(mov))
}

// List returns the whole movement log.
func (h *Handler) List(c *fiber.Ctx) error {
	movs, err := h.service.List(c.UserContext())
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.JSON(toResponses(movs))
}

// ListByAccount returns an account's movements.
func (h *Handler) ListByAccount(c *fiber.Ctx) error {
	movs, err := h.service.ListByAccount(c.UserContext(), c.Params("accountId"))
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.JSON(toResponses(movs))
}

// DailyAverage returns the month-to-date average balance of one account.
func (h *Handler) DailyAverage(c *fiber.Ctx) error {
	avg, err := h.service.DailyAverageBalance(c.UserContext(), c.Params("accountId"))
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.JSON(fiber.Map{"account_id": c.Params("accountId"), "daily_average_balance": avg.String()})
}

// DailyAveragesByClient returns the month-to-date average balance of each of
// a client's accounts.
func (h *Handler) DailyAveragesByClient(c *fiber.Ctx) error {
	averages, err := h.service.DailyAverageBalancesByClient(c.UserContext(), c.Params("clientId"))
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	out := make(map[string]string, len(averages))
	for id, avg := range averages {
		out[id] = avg.String()
	}
	return c.JSON(out)
}

// Fees lists the fees charged to an account over a period.
func (h *Handler) Fees(c *fiber.Ctx) error {
	from, to, err := parsePeriod(c)
	if err != nil {
		return err
	}
	fees, err := h.service.FeesBetween(c.UserContext(), c.Params("accountId"), from, to)
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	out := make([]fiber.Map, 0, len(fees))
	for _, fee := range fees {
		out = append(out, fiber.Map{"date": fee.Date, "fee": fee.Fee.String()})
	}
	return c.JSON(out)
}

// Delete removes one movement record.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("movementId")); err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteAll clears the movement log.
func (h *Handler) DeleteAll(c *fiber.Ctx) error {
	if err := h.service.DeleteAll(c.UserContext()); err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

func toResponses(movs []Movement) []movementResponse {
	out := make([]movementResponse, 0, len(movs))
	for _, mov := range movs {
		out = append(out, toResponse(mov))
	}
	return out
}

func parsePeriod(c *fiber.Ctx) (time.Time, time.Time, error) {
	from, err := time.Parse(time.DateOnly, c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(http.StatusBadRequest, "invalid from date")
	}
	to, err := time.Parse(time.DateOnly, c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(http.StatusBadRequest, "invalid to date")
	}
	return from, to.Add(24*time.Hour - time.Nanosecond), nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, account.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, account.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, account.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, account.ErrInsufficientFunds), errors.Is(err, account.ErrMovementDay):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
