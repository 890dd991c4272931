package report

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kivubank/accounts/internal/account"
)

// Handler exposes report HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a report HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type statementResponse struct {
	AccountID string          `json:"account_id"`
	Type      string          `json:"type"`
	Balance   string          `json:"balance"`
	Cards     []string        `json:"cards"`
	Movements []movementEntry `json:"movements"`
	Transfers []transferEntry `json:"transfers"`
	TotalFees string          `json:"total_fees"`
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
}

type movementEntry struct {
	ID     string    `json:"id"`
	Kind   string    `json:"kind"`
	Amount string    `json:"amount"`
	Fee    string    `json:"fee"`
	Date   time.Time `json:"date"`
}

type transferEntry struct {
	ID     string    `json:"id"`
	From   string    `json:"from"`
	To     string    `json:"to,omitempty"`
	Amount string    `json:"amount"`
	Date   time.Time `json:"date"`
}

func toResponse(st Statement) statementResponse {
	resp := statementResponse{
		AccountID: st.Account.ID,
		Type:      string(st.Account.Type),
		Balance:   st.Account.Balance.String(),
		Cards:     make([]string, 0, len(st.Cards)),
		Movements: make([]movementEntry, 0, len(st.Movements)),
		Transfers: make([]transferEntry, 0, len(st.Transfers)),
		TotalFees: st.TotalFees.String(),
		From:      st.From,
		To:        st.To,
	}
	for _, c := range st.Cards {
		resp.Cards = append(resp.Cards, c.ID)
	}
	for _, mov := range st.Movements {
		resp.Movements = append(resp.Movements, movementEntry{
			ID: mov.ID, Kind: string(mov.Kind), Amount: mov.Amount.String(),
			Fee: mov.Fee.String(), Date: mov.Date,
		})
	}
	for _, tr := range st.Transfers {
		resp.Transfers = append(resp.Transfers, transferEntry{
			ID: tr.ID, From: tr.From, To: tr.To, Amount: tr.Amount.String(), Date: tr.Date,
		})
	}
	return resp
}

// Statement returns one account's statement for a period.
func (h *Handler) Statement(c *fiber.Ctx) error {
	from, to, err := parsePeriod(c)
	if err != nil {
		return err
	}
	st, err := h.service.Statement(c.UserContext(), c.Params("accountId"), from, to)
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	return c.JSON(toResponse(st))
}

// StatementsByClient returns a statement per account the client owns.
func (h *Handler) StatementsByClient(c *fiber.Ctx) error {
	from, to, err := parsePeriod(c)
	if err != nil {
		return err
	}
	sts, err := h.service.StatementsByClient(c.UserContext(), c.Params("clientId"), from, to)
	if err != nil {
		return fiber.NewError(statusOf(err), err.Error())
	}
	out := make([]statementResponse, 0, len(sts))
	for _, st := range sts {
		out = append(out, toResponse(st))
	}
	return c.JSON(out)
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
	case errors.Is(err, account.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
