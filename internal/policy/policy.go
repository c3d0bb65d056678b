// Package policy holds the pure access decisions for the order tracker.
// Nothing here touches the database or the network; callers resolve entities
// first and pass them in.
package policy

import (
	"fmt"

	"github.com/ignite/order-tracker/internal/domain"
	"github.com/ignite/order-tracker/internal/pkg/logger"
)

// CheckUserAccess denies when superuserOnly and the actor lacks the role, or
// when a target user is named and the actor is neither superuser nor that
// user. targetUserID == 0 means no specific target.
func CheckUserAccess(actor *domain.User, targetUserID int64, superuserOnly bool) error {
	if superuserOnly && !actor.IsSuperuser {
		logger.Error("FORBIDDEN: insufficient permissions", "user_id", actor.ID)
		return domain.ErrForbidden
	}
	if targetUserID != 0 && actor.ID != targetUserID && !actor.IsSuperuser {
		logger.Error("FORBIDDEN: insufficient permissions",
			"user_id", actor.ID, "target_user_id", targetUserID)
		return domain.ErrForbidden
	}
	return nil
}

// ValidateTransition decides whether actor may move order to requested.
// Order: forbidden before conflict, so a non-owner never learns whether the
// status would have changed. The conflict check compares against the stored
// status; reasserting the current value is rejected, not a no-op.
func ValidateTransition(order *domain.Order, requested domain.OrderStatus, actor *domain.User) error {
	if order == nil {
		return domain.ErrNotFound
	}
	if !actor.IsSuperuser && actor.ID != order.UserID {
		logger.Error("FORBIDDEN: cannot change status of order",
			"order_id", order.ID, "user_id", actor.ID)
		return domain.ErrForbidden
	}
	if !requested.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, requested)
	}
	if order.Status == requested {
		logger.Warn("conflict: status not changed", "order_id", order.ID, "status", requested)
		return fmt.Errorf("%w: status not changed", domain.ErrConflict)
	}
	return nil
}
