package apperrors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Pre-mutation failures. All of these abort before any stock, financial or
// status mutation and are safe to re-issue with corrected input.
var (
	ErrInvalidState      = errors.New("requisition is not in a state that allows this transition")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInsufficientStock = errors.New("insufficient central stock")
	ErrNotFound          = errors.New("requisition not found")
	ErrProductNotFound   = errors.New("product not found")
)

// PartialFailure reports a downstream step that failed after the central stock
// debit already committed. The goods have physically left central stock, so the
// operation is never rolled back or retried automatically; reconciliation is
// manual. The requisition's state transition stands.
type PartialFailure struct {
	Step          string    // "sector_credit", "portioning_enqueue", "movement_log", "finance_debit"
	RequisitionID uuid.UUID // zero for direct deliveries without a synthesized id yet
	ProductID     uuid.UUID
	Err           error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("partial failure at %s for product %s: %v (central stock already debited, manual reconciliation required)",
		e.Step, e.ProductID, e.Err)
}

func (e *PartialFailure) Unwrap() error { return e.Err }

// AsPartialFailure unwraps err into a PartialFailure if one is in its chain.
func AsPartialFailure(err error) (*PartialFailure, bool) {
	var pf *PartialFailure
	if errors.As(err, &pf) {
		return pf, true
	}
	return nil, false
}

// Invalidf wraps ErrInvalidArgument with a field-specific message.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
