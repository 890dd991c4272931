package wallet

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kivubank/accounts/internal/events"
)

// PaymentHandler adapts peer payment settlement to the event subscriber.
func PaymentHandler(service *Service) events.Handler {
	return func(ctx context.Context, payload []byte) error {
		var evt events.WalletPayment
		if err := json.Unmarshal(payload, &evt); err != nil {
			return fmt.Errorf("decode wallet payment: %w", err)
		}
		return service.HandlePayment(ctx, evt)
	}
}

// LinkHandler adapts the card link handshake to the event subscriber.
func LinkHandler(service *Service) events.Handler {
	return func(ctx context.Context, payload []byte) error {
		var evt events.LinkEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return fmt.Errorf("decode link event: %w", err)
		}
		return service.HandleLink(ctx, evt)
	}
}
