package services

import (
	"context"

	"stockdesk/internal/models"
	"stockdesk/internal/repositories"

	"github.com/google/uuid"
)

// PortioningService parks delivered quantities of portionable products until
// an external workflow finalizes them into sector stock at a possibly
// different unit count.
type PortioningService interface {
	Enqueue(ctx context.Context, entry *models.PendingPortioningEntry) error
	List(ctx context.Context, hotelID uuid.UUID, limit, offset int) ([]*models.PendingPortioningEntry, error)
}

type portioningService struct {
	repo repositories.PortioningRepository
}

func NewPortioningService(repo repositories.PortioningRepository) PortioningService {
	return &portioningService{repo: repo}
}

// Enqueue records the pending transfer. A failure here after a successful
// central debit means goods left inventory untracked; the caller must surface
// that as a partial failure, never retry it silently.
func (s *portioningService) Enqueue(ctx context.Context, entry *models.PendingPortioningEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return s.repo.Create(ctx, entry)
}

func (s *portioningService) List(ctx context.Context, hotelID uuid.UUID, limit, offset int) ([]*models.PendingPortioningEntry, error) {
	return s.repo.ListByHotel(ctx, hotelID, limit, offset)
}
