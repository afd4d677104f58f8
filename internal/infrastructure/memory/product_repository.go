package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domain "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/product"
	"github.com/shopspring/decimal"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[string]*domain.Product),
	}
}

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[p.ID]; exists {
		return fmt.Errorf("product repository: %w", ErrDuplicateID)
	}
	r.products[p.ID] = p.Clone()
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProductRepository) List(ctx context.Context, f domain.Filter) ([]*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if f.ListedOnly && !p.IsListed {
			continue
		}
		if f.ListedBy != "" && p.ListedBy != f.ListedBy {
			continue
		}
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ProductRepository) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error {
	return r.mutate(ctx, id, func(p *domain.Product) error {
		p.Price = price
		return nil
	})
}

func (r *ProductRepository) SetListed(ctx context.Context, id string, listed bool) error {
	return r.mutate(ctx, id, func(p *domain.Product) error {
		p.IsListed = listed
		return nil
	})
}

func (r *ProductRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	return r.mutate(ctx, id, func(p *domain.Product) error {
		if p.Quantity < qty {
			return domain.ErrInsufficientStock
		}
		p.Quantity -= qty
		return nil
	})
}

func (r *ProductRepository) IncrementStock(ctx context.Context, id string, qty int) error {
	return r.mutate(ctx, id, func(p *domain.Product) error {
		p.Quantity += qty
		return nil
	})
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

// mutate applies fn under the write lock; the stored product is only touched when fn succeeds.
func (r *ProductRepository) mutate(ctx context.Context, id string, fn func(p *domain.Product) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	next := p.Clone()
	if err := fn(next); err != nil {
		return err
	}
	next.UpdatedAt = time.Now().UTC()
	r.products[id] = next
	return nil
}
