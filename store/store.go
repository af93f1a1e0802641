// Package store adapts the document collections (products, carts, users) to
// the different persistence drivers. Driver failures that are not one of the
// domain conditions below are reported wrapped in ErrUnavailable.
package store

import (
	"context"
	"errors"

	"loja-backend/models"
)

var (
	ErrNotFound    = errors.New("store: document not found")
	ErrConflict    = errors.New("store: document was modified concurrently")
	ErrDuplicate   = errors.New("store: duplicate key")
	ErrInvalidID   = errors.New("store: invalid id")
	ErrUnavailable = errors.New("store: unavailable")
)

type ProductStore interface {
	FindProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	// InsertProduct assigns p.ID when it is empty.
	InsertProduct(ctx context.Context, p *models.Product) error
}

// CartStore persists one cart per owner with compare-and-swap writes.
type CartStore interface {
	LoadCart(ctx context.Context, ownerID string) (*models.Cart, error)
	ListCarts(ctx context.Context) ([]models.Cart, error)
	// SaveCart inserts c when c.Version is 0 and otherwise replaces the stored
	// cart only if its version still equals c.Version. On success c.Version is
	// advanced. A lost race returns ErrConflict.
	SaveCart(ctx context.Context, c *models.Cart) error
	// DeleteCart removes the owner's cart. With expectedVersion set to
	// AnyVersion the delete is unconditional.
	DeleteCart(ctx context.Context, ownerID string, expectedVersion int64) error
}

// AnyVersion disables the version check in DeleteCart.
const AnyVersion int64 = -1

type UserStore interface {
	FindUser(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	// InsertUser returns ErrDuplicate when the email is already registered.
	InsertUser(ctx context.Context, u *models.User) error
}

// Store bundles the three collections served by one driver.
type Store interface {
	ProductStore
	CartStore
	UserStore
	Close(ctx context.Context) error
}
