package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"loja-backend/models"

	"github.com/google/uuid"
)

// MemoryStore keeps every collection in process memory. It backs the
// "memory" driver, the product fallback and the tests.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]models.Product
	order    []string
	carts    map[string]*models.Cart
	users    map[string]models.User
	newID    func() string
}

// NewMemoryStore returns an empty store. newID generates product and user ids;
// nil means random UUIDs.
func NewMemoryStore(newID func() string) *MemoryStore {
	if newID == nil {
		newID = uuid.NewString
	}
	return &MemoryStore{
		products: make(map[string]models.Product),
		carts:    make(map[string]*models.Cart),
		users:    make(map[string]models.User),
		newID:    newID,
	}
}

func (m *MemoryStore) FindProduct(_ context.Context, id string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) ListProducts(_ context.Context) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Product, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.products[id])
	}
	return out, nil
}

func (m *MemoryStore) InsertProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == "" {
		p.ID = m.newID()
	}
	if _, exists := m.products[p.ID]; exists {
		return ErrDuplicate
	}
	m.products[p.ID] = *p
	m.order = append(m.order, p.ID)
	return nil
}

// DeleteProduct removes a product; used when the fallback flushes it to the
// primary store.
func (m *MemoryStore) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryStore) LoadCart(_ context.Context, ownerID string) (*models.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.carts[ownerID]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

func (m *MemoryStore) ListCarts(_ context.Context) ([]models.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Cart, 0, len(m.carts))
	for _, c := range m.carts {
		out = append(out, *c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OwnerID < out[j].OwnerID })
	return out, nil
}

func (m *MemoryStore) SaveCart(_ context.Context, c *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, exists := m.carts[c.OwnerID]
	switch {
	case c.Version == 0 && exists:
		return ErrConflict
	case c.Version != 0 && (!exists || stored.Version != c.Version):
		return ErrConflict
	}

	c.Version++
	m.carts[c.OwnerID] = c.Clone()
	return nil
}

func (m *MemoryStore) DeleteCart(_ context.Context, ownerID string, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, exists := m.carts[ownerID]
	if !exists {
		return ErrNotFound
	}
	if expectedVersion != AnyVersion && stored.Version != expectedVersion {
		return ErrConflict
	}
	delete(m.carts, ownerID)
	return nil
}

func (m *MemoryStore) FindUser(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *MemoryStore) InsertUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = m.newID()
	}
	m.users[u.ID] = *u
	return nil
}

func (m *MemoryStore) Close(context.Context) error { return nil }
