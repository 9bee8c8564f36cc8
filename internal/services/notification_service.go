package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stockdesk/internal/models"
	"stockdesk/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Notifier sends the outbound requisition notifications. All sends are
// fire-and-forget: failures are logged and never surface to the fulfillment
// path.
type Notifier interface {
	ItemDelivered(ctx context.Context, req *models.Requisition)
	ItemRejected(ctx context.Context, req *models.Requisition)
	ItemSubstituted(ctx context.Context, req *models.Requisition, substituteName string)
	NewRequest(ctx context.Context, req *models.Requisition)
}

type notificationEvent struct {
	Type          string    `json:"type"`
	HotelID       uuid.UUID `json:"hotel_id"`
	SectorID      uuid.UUID `json:"sector_id"`
	RequisitionID uuid.UUID `json:"requisition_id"`
	ItemName      string    `json:"item_name"`
	Detail        string    `json:"detail,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

type redisNotifier struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisNotifier(client *redis.Client, log *logger.Logger) Notifier {
	return &redisNotifier{client: client, log: log}
}

func notificationTopic(hotelID uuid.UUID) string {
	return fmt.Sprintf("requisition-events-%s", hotelID)
}

func (n *redisNotifier) publish(ctx context.Context, event notificationEvent) {
	event.Timestamp = time.Now().UTC()
	payload, err := json.Marshal(event)
	if err != nil {
		n.log.Warn().Err(err).Str("type", event.Type).Msg("failed to encode notification")
		return
	}
	if err := n.client.Publish(ctx, notificationTopic(event.HotelID), payload).Err(); err != nil {
		n.log.Warn().Err(err).Str("type", event.Type).Stringer("requisition_id", event.RequisitionID).Msg("failed to publish notification")
	}
}

func (n *redisNotifier) ItemDelivered(ctx context.Context, req *models.Requisition) {
	n.publish(ctx, notificationEvent{
		Type:          "item_delivered",
		HotelID:       req.HotelID,
		SectorID:      req.SectorID,
		RequisitionID: req.ID,
		ItemName:      req.ItemName,
	})
}

func (n *redisNotifier) ItemRejected(ctx context.Context, req *models.Requisition) {
	detail := ""
	if req.RejectionReason != nil {
		detail = *req.RejectionReason
	}
	n.publish(ctx, notificationEvent{
		Type:          "item_rejected",
		HotelID:       req.HotelID,
		SectorID:      req.SectorID,
		RequisitionID: req.ID,
		ItemName:      req.ItemName,
		Detail:        detail,
	})
}

func (n *redisNotifier) ItemSubstituted(ctx context.Context, req *models.Requisition, substituteName string) {
	n.publish(ctx, notificationEvent{
		Type:          "item_substituted",
		HotelID:       req.HotelID,
		SectorID:      req.SectorID,
		RequisitionID: req.ID,
		ItemName:      req.ItemName,
		Detail:        substituteName,
	})
}

func (n *redisNotifier) NewRequest(ctx context.Context, req *models.Requisition) {
	n.publish(ctx, notificationEvent{
		Type:          "new_request",
		HotelID:       req.HotelID,
		SectorID:      req.SectorID,
		RequisitionID: req.ID,
		ItemName:      req.ItemName,
	})
}
