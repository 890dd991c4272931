package card

import "errors"

var (
	// ErrNotFound occurs when no debit card exists for the requested id.
	ErrNotFound = errors.New("debit card not found")

	// ErrNumberInUse occurs when creating a card with a number that already
	// exists.
	ErrNumberInUse = errors.New("card number already in use")

	// ErrNotIssued occurs when linking an account to a card number that was
	// never created.
	ErrNotIssued = errors.New("card not issued yet")

	// ErrWrongClient occurs when the account named in a card operation does
	// not belong to the card's client.
	ErrWrongClient = errors.New("account is not associated with the client")
)

// DebitCard binds one plastic card to an ordered list of accounts. Accounts
// are drained in list order when the card pays; the first entry is the main
// account.
type DebitCard struct {
	ID       string
	Number   string
	ClientID string
	// Accounts is the ordered linked-account list the waterfall walks.
	Accounts []string
}

// MainAccount returns the card's primary account.
func (c DebitCard) MainAccount() string {
	if len(c.Accounts) == 0 {
		return ""
	}
	return c.Accounts[0]
}
