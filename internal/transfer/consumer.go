package transfer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kivubank/accounts/internal/events"
)

// SettlementHandler adapts the transfer-state credit leg to the event
// subscriber. Decode failures are terminal; redelivering a malformed payload
// cannot help.
func SettlementHandler(service *Service) events.Handler {
	return func(ctx context.Context, payload []byte) error {
		var evt events.TransactionEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return fmt.Errorf("decode transaction event: %w", err)
		}
		return service.CompleteSettlement(ctx, evt)
	}
}
