// Package cache holds the read-through cart cache used by GET /carrinho.
package cache

import (
	"context"
	"errors"

	"loja-backend/models"
)

// CartCache stores rendered carts by owner. It is never consulted for writes.
type CartCache interface {
	Get(ctx context.Context, ownerID string) (*models.Cart, error)
	Set(ctx context.Context, ownerID string, cart *models.Cart) error
	Delete(ctx context.Context, ownerID string) error
}

var ErrCacheMiss = errors.New("cache miss")
