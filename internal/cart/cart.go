// Package cart keeps per-user shopping carts in Redis. A cart is a hash of
// product id → quantity; checkout reads and then clears it.
package cart

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"server/internal/domain"
)

// Store is a Redis-backed cart.
type Store struct {
	rdb *redis.Client
}

// NewStore returns a cart store over the given Redis client.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func cartKey(userID string) string {
	return "cart:" + userID
}

// Add increments the quantity for a product, creating the entry if needed.
func (s *Store) Add(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("cart: quantity must be positive")
	}
	if err := s.rdb.HIncrBy(ctx, cartKey(userID), productID, int64(quantity)).Err(); err != nil {
		return fmt.Errorf("cart: add item: %w", err)
	}
	return nil
}

// SetQuantity overwrites the quantity for a product; zero removes it.
func (s *Store) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("cart: quantity must not be negative")
	}
	if quantity == 0 {
		return s.Remove(ctx, userID, productID)
	}
	if err := s.rdb.HSet(ctx, cartKey(userID), productID, quantity).Err(); err != nil {
		return fmt.Errorf("cart: set quantity: %w", err)
	}
	return nil
}

// Remove deletes a product from the cart.
func (s *Store) Remove(ctx context.Context, userID, productID string) error {
	if err := s.rdb.HDel(ctx, cartKey(userID), productID).Err(); err != nil {
		return fmt.Errorf("cart: remove item: %w", err)
	}
	return nil
}

// Items returns the cart contents.
func (s *Store) Items(ctx context.Context, userID string) ([]domain.CartItem, error) {
	raw, err := s.rdb.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cart: read items: %w", err)
	}
	items := make([]domain.CartItem, 0, len(raw))
	for productID, qty := range raw {
		n, err := strconv.Atoi(qty)
		if err != nil || n <= 0 {
			continue
		}
		items = append(items, domain.CartItem{ProductID: productID, Quantity: n})
	}
	return items, nil
}

// Clear drops the whole cart.
func (s *Store) Clear(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}
	return nil
}
