package inventory

import (
	"context"
	"strings"
	"sync"
)

// Repository finds vehicles by stock number.
type Repository interface {
	FindByStockNumber(ctx context.Context, stockNumber string) (*Vehicle, error)
}

// InMemoryRepository is a map backed Repository for local runs and tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*Vehicle
}

// NewInMemoryRepository seeds the store with vehicles.
func NewInMemoryRepository(vehicles ...*Vehicle) *InMemoryRepository {
	r := &InMemoryRepository{vehicles: make(map[string]*Vehicle)}
	for _, v := range vehicles {
		r.Put(v)
	}
	return r
}

// Put adds or replaces a vehicle.
func (r *InMemoryRepository) Put(v *Vehicle) {
	if v == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles[strings.TrimSpace(v.StockNumber)] = v
}

func (r *InMemoryRepository) FindByStockNumber(ctx context.Context, stockNumber string) (*Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vehicles[strings.TrimSpace(stockNumber)]
	if !ok {
		return nil, ErrVehicleNotFound
	}
	cp := *v
	return &cp, nil
}
