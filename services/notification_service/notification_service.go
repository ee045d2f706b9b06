package notification_service

import (
	"context"

	"github.com/adilhn/supportflow/db"
)

// NotificationService alerts the support team about tickets that need fast
// attention. Failures are for the caller to log; they must never surface to
// the end user.
type NotificationService interface {
	NotifyTicket(ctx context.Context, ticket *db.Ticket) error
}
