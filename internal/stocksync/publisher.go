// Package stocksync keeps concurrently-open views of central stock convergent.
// Every central-stock mutation is followed by a best-effort broadcast on a
// per-hotel Redis channel; the durable product row stays authoritative, so a
// missed broadcast only delays convergence until the next durable read.
package stocksync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StockLevel is the ephemeral broadcast payload.
type StockLevel struct {
	ProductID   uuid.UUID `json:"productId"`
	NewQuantity int       `json:"newQuantity"`
}

// Topic returns the per-hotel broadcast channel name.
func Topic(hotelID uuid.UUID) string {
	return fmt.Sprintf("global-stock-sync-%s", hotelID)
}

// Publisher pushes stock levels onto the hotel's broadcast channel.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishStockLevel sends the freshest quantity to currently-open viewers.
// Advisory only: the caller must already have committed the durable write, and
// must not treat a publish error as a fulfillment failure.
func (p *Publisher) PublishStockLevel(ctx context.Context, hotelID, productID uuid.UUID, newQuantity int) error {
	payload, err := json.Marshal(StockLevel{ProductID: productID, NewQuantity: newQuantity})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, Topic(hotelID), payload).Err()
}
