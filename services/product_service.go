package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"loja-backend/cart"
	"loja-backend/dtos"
	"loja-backend/models"
	"loja-backend/store"

	"go.uber.org/zap"
)

// Reconciler is implemented by product stores that buffer writes while the
// primary is down.
type Reconciler interface {
	Reconcile(ctx context.Context) (dtos.SyncReport, error)
}

type ProductService struct {
	products   store.ProductStore
	reconciler Reconciler
	logger     *zap.Logger
}

func NewProductService(products store.ProductStore, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ProductService{products: products, logger: logger}
	if r, ok := products.(Reconciler); ok {
		s.reconciler = r
	}
	return s
}

func (s *ProductService) Create(ctx context.Context, req dtos.CreateProductRequest) (*models.Product, error) {
	p := &models.Product{
		Name:        strings.TrimSpace(req.Nome),
		PhotoURL:    strings.TrimSpace(req.URLFoto),
		Description: strings.TrimSpace(req.Descricao),
	}

	var missing []string
	if p.Name == "" {
		missing = append(missing, "nome")
	}
	if req.Preco == nil {
		missing = append(missing, "preco")
	}
	if p.PhotoURL == "" {
		missing = append(missing, "urlfoto")
	}
	if p.Description == "" {
		missing = append(missing, "descricao")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: campos obrigatórios ausentes: %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	if !req.Preco.IsPositive() {
		return nil, fmt.Errorf("%w: preco deve ser maior que zero", ErrInvalidInput)
	}
	if !req.Preco.Equal(req.Preco.Round(2)) {
		return nil, fmt.Errorf("%w: preco deve ter no máximo 2 casas decimais", ErrInvalidInput)
	}
	p.UnitPrice = *req.Preco

	if err := s.products.InsertProduct(ctx, p); err != nil {
		s.logger.Error("insert product failed", zap.String("name", p.Name), zap.Error(err))
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		s.logger.Error("list products failed", zap.Error(err))
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, cart.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Reconcile(ctx context.Context) (dtos.SyncReport, error) {
	if s.reconciler == nil {
		return dtos.SyncReport{}, ErrReconcileUnsupported
	}
	return s.reconciler.Reconcile(ctx)
}
