package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"loja-backend/cart"
	"loja-backend/models"

	"gorm.io/gorm"
)

// GormStore serves the collections from a relational database. The *gorm.DB
// must be opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the tables backing the store.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&models.Product{}, &models.Cart{}, &models.User{})
}

func (s *GormStore) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate("find product", err)
	}
	return &p, nil
}

func (s *GormStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&products).Error; err != nil {
		return nil, translate("list products", err)
	}
	return products, nil
}

func (s *GormStore) InsertProduct(ctx context.Context, p *models.Product) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return translate("insert product", err)
	}
	return nil
}

func (s *GormStore) LoadCart(ctx context.Context, ownerID string) (*models.Cart, error) {
	var c models.Cart
	if err := s.db.WithContext(ctx).First(&c, "owner_id = ?", ownerID).Error; err != nil {
		return nil, translate("load cart", err)
	}
	c.Total = cart.ComputeTotal(c.Items)
	return &c, nil
}

func (s *GormStore) ListCarts(ctx context.Context) ([]models.Cart, error) {
	var carts []models.Cart
	if err := s.db.WithContext(ctx).Order("owner_id").Find(&carts).Error; err != nil {
		return nil, translate("list carts", err)
	}
	for i := range carts {
		carts[i].Total = cart.ComputeTotal(carts[i].Items)
	}
	return carts, nil
}

func (s *GormStore) SaveCart(ctx context.Context, c *models.Cart) error {
	next := c.Clone()
	next.Version = c.Version + 1
	next.Total = cart.ComputeTotal(next.Items)

	if c.Version == 0 {
		if err := s.db.WithContext(ctx).Create(next).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrConflict
			}
			return translate("insert cart", err)
		}
		c.Version = next.Version
		return nil
	}

	res := s.db.WithContext(ctx).
		Model(next).
		Where("version = ?", c.Version).
		Select("Items", "Total", "LastUpdatedAt", "Version").
		Updates(next)
	if res.Error != nil {
		return translate("update cart", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	c.Version = next.Version
	return nil
}

func (s *GormStore) DeleteCart(ctx context.Context, ownerID string, expectedVersion int64) error {
	q := s.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if expectedVersion != AnyVersion {
		q = q.Where("version = ?", expectedVersion)
	}
	res := q.Delete(&models.Cart{})
	if res.Error != nil {
		return translate("delete cart", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if expectedVersion == AnyVersion {
		return ErrNotFound
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Cart{}).Where("owner_id = ?", ownerID).Count(&n).Error; err != nil {
		return translate("delete cart", err)
	}
	if n > 0 {
		return ErrConflict
	}
	return ErrNotFound
}

func (s *GormStore) FindUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate("find user", err)
	}
	return &u, nil
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&u).Error; err != nil {
		return nil, translate("find user", err)
	}
	return &u, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("email").Find(&users).Error; err != nil {
		return nil, translate("list users", err)
	}
	return users, nil
}

func (s *GormStore) InsertUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(u.Email)
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return translate("insert user", err)
	}
	return nil
}

func (s *GormStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return unavailable(op, fmt.Errorf("gorm: %w", err))
	}
}
