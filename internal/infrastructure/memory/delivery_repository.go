package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domain "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/delivery"
)

type DeliveryRepository struct {
	mu         sync.RWMutex
	deliveries map[string]*domain.Delivery
	byOrder    map[string]string
}

func NewDeliveryRepository() *DeliveryRepository {
	return &DeliveryRepository{
		deliveries: make(map[string]*domain.Delivery),
		byOrder:    make(map[string]string),
	}
}

func (r *DeliveryRepository) Insert(ctx context.Context, d *domain.Delivery) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d == nil || d.ID == "" {
		return fmt.Errorf("delivery repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.deliveries[d.ID]; exists {
		return fmt.Errorf("delivery repository: %w", ErrDuplicateID)
	}
	if _, exists := r.byOrder[d.OrderID]; exists {
		return domain.ErrAlreadyAssigned
	}
	r.byOrder[d.OrderID] = d.ID
	r.deliveries[d.ID] = d.Clone()
	return nil
}

func (r *DeliveryRepository) FindByID(ctx context.Context, id string) (*domain.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.deliveries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return d.Clone(), nil
}

func (r *DeliveryRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byOrder[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.deliveries[id].Clone(), nil
}

func (r *DeliveryRepository) ListByPerson(ctx context.Context, personID string) ([]*domain.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Delivery
	for _, d := range r.deliveries {
		if d.DeliveryPersonID == personID {
			out = append(out, d.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *DeliveryRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deliveries[id]
	if !ok {
		return domain.ErrNotFound
	}
	if d.Status != from {
		return domain.ErrInvalidTransition
	}
	next := d.Clone()
	next.Status = to
	next.UpdatedAt = time.Now().UTC()
	r.deliveries[id] = next
	return nil
}
