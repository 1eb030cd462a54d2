package ports

import (
	"context"

	"github.com/gatewarden/gatewarden/internal/core/domain/access"
)

// AlertService notifies operators about automatic escalations. A nil
// or failing sink never affects the decision path.
type AlertService interface {
	SendEscalationAlert(ctx context.Context, entry *access.BlacklistEntry) error
}
