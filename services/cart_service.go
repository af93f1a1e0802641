package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"loja-backend/cache"
	"loja-backend/cart"
	"loja-backend/models"
	"loja-backend/store"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type CartServiceDeps struct {
	Carts    store.CartStore
	Products store.ProductStore
	// Cache is optional; nil disables read caching.
	Cache  cache.CartCache
	Engine *cart.Engine
	Logger *zap.Logger
}

// CartService runs every cart mutation as a single read-modify-write: load the
// owner's cart, apply the engine rule, then save or delete it. Mutations for
// the same owner are serialised in process; across processes the store's
// version check turns a lost race into store.ErrConflict.
type CartService struct {
	carts    store.CartStore
	products store.ProductStore
	cache    cache.CartCache
	engine   *cart.Engine
	logger   *zap.Logger
	locks    *ownerLocks
	sfg      singleflight.Group
}

func NewCartService(deps CartServiceDeps) *CartService {
	if deps.Engine == nil {
		deps.Engine = cart.NewEngine(nil)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &CartService{
		carts:    deps.Carts,
		products: deps.Products,
		cache:    deps.Cache,
		engine:   deps.Engine,
		logger:   deps.Logger,
		locks:    newOwnerLocks(),
	}
}

// AddItem adds quantity units of the product to the owner's cart, creating the
// cart when needed. created reports whether the cart did not exist before.
func (s *CartService) AddItem(ctx context.Context, ownerID, productID string, quantity int) (c *models.Cart, created bool, err error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, false, err
	}
	if quantity <= 0 {
		return nil, false, cart.ErrInvalidQuantity
	}

	product, err := s.products.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, cart.ErrProductNotFound
		}
		return nil, false, err
	}

	unlock := s.locks.lock(ownerID)
	defer unlock()

	current, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, false, err
	}

	next, err := s.engine.AddItem(current, ownerID, product, quantity)
	if err != nil {
		return nil, false, err
	}
	if err := s.carts.SaveCart(ctx, next); err != nil {
		return nil, false, s.storeFailure("save cart", ownerID, err)
	}
	s.invalidate(ownerID)
	return next, current == nil, nil
}

// RemoveItem drops the product's line. A nil cart means the cart became empty
// and was deleted.
func (s *CartService) RemoveItem(ctx context.Context, ownerID, productID string) (*models.Cart, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, ownerID, func(current *models.Cart) (*models.Cart, error) {
		return s.engine.RemoveItem(current, productID)
	})
}

// SetQuantity overwrites the line's quantity; zero or less removes the line.
// A nil cart means the cart became empty and was deleted.
func (s *CartService) SetQuantity(ctx context.Context, ownerID, productID string, quantity int) (*models.Cart, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, ownerID, func(current *models.Cart) (*models.Cart, error) {
		return s.engine.SetQuantity(current, productID, quantity)
	})
}

func (s *CartService) mutate(ctx context.Context, ownerID string, apply func(*models.Cart) (*models.Cart, error)) (*models.Cart, error) {
	unlock := s.locks.lock(ownerID)
	defer unlock()

	current, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	next, err := apply(current)
	if err != nil {
		return nil, err
	}

	if next == nil {
		if err := s.carts.DeleteCart(ctx, ownerID, current.Version); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				err = store.ErrConflict
			}
			return nil, s.storeFailure("delete cart", ownerID, err)
		}
	} else if err := s.carts.SaveCart(ctx, next); err != nil {
		return nil, s.storeFailure("save cart", ownerID, err)
	}

	s.invalidate(ownerID)
	return next, nil
}

// GetCart returns the owner's cart, reading through the cache when one is
// configured. Concurrent misses for the same owner share one store read.
func (s *CartService) GetCart(ctx context.Context, ownerID string) (*models.Cart, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	// The shared read must outlive the caller that started it.
	shared := context.WithoutCancel(ctx)
	ch := s.sfg.DoChan(ownerID, func() (any, error) {
		if s.cache != nil {
			cached, err := s.cache.Get(shared, ownerID)
			if err == nil {
				return cached, nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				s.logger.Warn("cart cache get failed", zap.String("owner_id", ownerID), zap.Error(err))
			}
		}

		// Held until the cache is filled so a concurrent write cannot be
		// invalidated before the stale read lands in the cache.
		unlock := s.locks.lock(ownerID)
		defer unlock()

		c, err := s.carts.LoadCart(shared, ownerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, cart.ErrCartNotFound
			}
			return nil, s.storeFailure("load cart", ownerID, err)
		}

		if s.cache != nil {
			if err := s.cache.Set(shared, ownerID, c); err != nil {
				s.logger.Warn("cart cache set failed", zap.String("owner_id", ownerID), zap.Error(err))
			}
		}
		return c, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Cart).Clone(), nil
	}
}

func (s *CartService) ListCarts(ctx context.Context) ([]models.Cart, error) {
	carts, err := s.carts.ListCarts(ctx)
	if err != nil {
		s.logger.Error("list carts failed", zap.Error(err))
		return nil, err
	}
	return carts, nil
}

// ClearCart deletes the owner's cart unconditionally. Clearing an absent cart
// succeeds.
func (s *CartService) ClearCart(ctx context.Context, ownerID string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}

	unlock := s.locks.lock(ownerID)
	defer unlock()

	if err := s.carts.DeleteCart(ctx, ownerID, store.AnyVersion); err != nil && !errors.Is(err, store.ErrNotFound) {
		return s.storeFailure("delete cart", ownerID, err)
	}
	s.invalidate(ownerID)
	return nil
}

func (s *CartService) load(ctx context.Context, ownerID string) (*models.Cart, error) {
	c, err := s.carts.LoadCart(ctx, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.storeFailure("load cart", ownerID, err)
	}
	return c, nil
}

func (s *CartService) storeFailure(op, ownerID string, err error) error {
	if errors.Is(err, store.ErrConflict) {
		s.logger.Info("cart write lost a concurrent update", zap.String("op", op), zap.String("owner_id", ownerID))
		return err
	}
	s.logger.Error("cart store failure", zap.String("op", op), zap.String("owner_id", ownerID), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func (s *CartService) invalidate(ownerID string) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, ownerID); err != nil {
		s.logger.Warn("cart cache invalidate failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return fmt.Errorf("%w: usuarioId é obrigatório", ErrInvalidInput)
	}
	return nil
}
