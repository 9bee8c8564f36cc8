// Package optimistic lets a caller show the terminal requisition state before
// the durable write confirms, and revert the view when the durable sequence
// fails before mutating anything.
package optimistic

import (
	"stockdesk/internal/apperrors"
	"stockdesk/internal/models"

	"github.com/google/uuid"
)

// Board holds the two in-memory collections a fulfillment view renders: the
// pending list and the history list.
type Board struct {
	Pending []*models.Requisition
	History []*models.Requisition
}

// Snapshot is an opaque copy of a Board's collections taken before a
// speculative change.
type Snapshot struct {
	pending []*models.Requisition
	history []*models.Requisition
}

func cloneRequisitions(reqs []*models.Requisition) []*models.Requisition {
	if reqs == nil {
		return nil
	}
	out := make([]*models.Requisition, len(reqs))
	for i, r := range reqs {
		c := *r
		out[i] = &c
	}
	return out
}

// Snapshot captures the current collections. Requisitions are copied by value
// so later in-place mutations cannot leak into the snapshot.
func (b *Board) Snapshot() Snapshot {
	return Snapshot{
		pending: cloneRequisitions(b.Pending),
		history: cloneRequisitions(b.History),
	}
}

// Restore puts the board back to exactly the snapshotted state.
func (b *Board) Restore(s Snapshot) {
	b.Pending = cloneRequisitions(s.pending)
	b.History = cloneRequisitions(s.history)
}

// MoveToHistory optimistically moves a requisition out of the pending list
// into history with the given terminal status applied.
func (b *Board) MoveToHistory(id uuid.UUID, mutate func(*models.Requisition)) {
	for i, r := range b.Pending {
		if r.ID == id {
			b.Pending = append(b.Pending[:i], b.Pending[i+1:]...)
			if mutate != nil {
				mutate(r)
			}
			b.History = append([]*models.Requisition{r}, b.History...)
			return
		}
	}
}

// Run applies the speculative change, then runs the durable operation. A
// pre-mutation failure restores the snapshot and surfaces the error. A
// PartialFailure keeps the applied state: the state transition did commit,
// only a downstream step failed, and the caller shows the warning banner
// instead of rolling the view back.
func (b *Board) Run(apply func(*Board), op func() error) error {
	snapshot := b.Snapshot()
	apply(b)

	err := op()
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsPartialFailure(err); ok {
		return err
	}

	b.Restore(snapshot)
	return err
}
