package stocksync

import (
	"context"
	"encoding/json"
	"sync"

	"stockdesk/internal/repositories"
	"stockdesk/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultMaxEntries bounds how many products a mirror tracks.
const DefaultMaxEntries = 512

// Mirror is a viewer-side cache of central stock quantities for subscribed
// products. Broadcasts are applied last-write-wins by receipt order; Refresh
// reads the durable row and always converges the entry. The mirror is never a
// write guard: debits re-validate against the store.
type Mirror struct {
	hotelID    uuid.UUID
	products   repositories.ProductRepository
	client     *redis.Client
	log        *logger.Logger
	maxEntries int

	mu         sync.RWMutex
	quantities map[uuid.UUID]int
}

func NewMirror(hotelID uuid.UUID, products repositories.ProductRepository, client *redis.Client, log *logger.Logger) *Mirror {
	return &Mirror{
		hotelID:    hotelID,
		products:   products,
		client:     client,
		log:        log,
		maxEntries: DefaultMaxEntries,
		quantities: make(map[uuid.UUID]int),
	}
}

// Subscribe starts tracking a product by id and seeds the entry from a durable
// read.
func (m *Mirror) Subscribe(ctx context.Context, productID uuid.UUID) error {
	return m.Refresh(ctx, productID)
}

// SubscribeByName resolves a display name to a product id (exact match first,
// fuzzy second) and subscribes to it. A failed resolution leaves the view
// stale for that item until re-resolution succeeds; that is a degraded mode,
// not a fatal error, so the caller gets the error to decide on retry.
func (m *Mirror) SubscribeByName(ctx context.Context, itemName string) (uuid.UUID, error) {
	product, err := m.products.GetByName(ctx, m.hotelID, itemName)
	if err != nil {
		product, err = m.products.SearchByName(ctx, m.hotelID, itemName)
		if err != nil {
			return uuid.Nil, err
		}
	}
	if err := m.Subscribe(ctx, product.ID); err != nil {
		return uuid.Nil, err
	}
	return product.ID, nil
}

// Unsubscribe drops a product from the mirror.
func (m *Mirror) Unsubscribe(productID uuid.UUID) {
	m.mu.Lock()
	delete(m.quantities, productID)
	m.mu.Unlock()
}

// Quantity returns the last observed central quantity for a subscribed
// product.
func (m *Mirror) Quantity(productID uuid.UUID) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	qty, ok := m.quantities[productID]
	return qty, ok
}

// ApplyBroadcast applies an ephemeral stock level. Only subscribed products
// are updated; newest receipt wins.
func (m *Mirror) ApplyBroadcast(level StockLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quantities[level.ProductID]; !ok {
		return
	}
	m.quantities[level.ProductID] = level.NewQuantity
}

// Refresh re-reads the durable product row and overwrites the mirror entry.
// This is the authoritative path a viewer falls back to after missing
// broadcasts.
func (m *Mirror) Refresh(ctx context.Context, productID uuid.UUID) error {
	product, err := m.products.GetByID(ctx, m.hotelID, productID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, tracked := m.quantities[productID]; !tracked && len(m.quantities) >= m.maxEntries {
		m.evictOneLocked()
	}
	m.quantities[productID] = product.Quantity
	return nil
}

// evictOneLocked drops an arbitrary entry. The mirror is a cache; an evicted
// viewer re-subscribes on demand.
func (m *Mirror) evictOneLocked() {
	for id := range m.quantities {
		delete(m.quantities, id)
		return
	}
}

// Run consumes the hotel's broadcast channel until ctx is cancelled. Malformed
// payloads are skipped; the channel is fan-out with no delivery guarantee, so
// losing a message here is already covered by Refresh.
func (m *Mirror) Run(ctx context.Context) error {
	pubsub := m.client.Subscribe(ctx, Topic(m.hotelID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var level StockLevel
			if err := json.Unmarshal([]byte(msg.Payload), &level); err != nil {
				m.log.Warn().Err(err).Str("channel", msg.Channel).Msg("discarding malformed stock broadcast")
				continue
			}
			m.ApplyBroadcast(level)
		}
	}
}
