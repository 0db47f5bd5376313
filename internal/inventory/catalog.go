package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// SQLCatalog resolves make and model ids against the catalog tables.
type SQLCatalog struct {
	db *sql.DB
}

func NewSQLCatalog(db *sql.DB) *SQLCatalog {
	return &SQLCatalog{db: db}
}

func (c *SQLCatalog) MakeName(ctx context.Context, id int64) (string, error) {
	var name string
	err := c.db.QueryRowContext(ctx, `SELECT name FROM vehicle_makes WHERE id = $1`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrMakeNotFound
	}
	if err != nil {
		return "", fmt.Errorf("inventory: lookup make %d: %w", id, err)
	}
	return name, nil
}

func (c *SQLCatalog) ModelName(ctx context.Context, id int64) (string, error) {
	var name string
	err := c.db.QueryRowContext(ctx, `SELECT name FROM vehicle_models WHERE id = $1`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrModelNotFound
	}
	if err != nil {
		return "", fmt.Errorf("inventory: lookup model %d: %w", id, err)
	}
	return name, nil
}

// InMemoryCatalog is a fixed catalog for local runs and tests.
type InMemoryCatalog struct {
	mu     sync.RWMutex
	makes  map[int64]string
	models map[int64]string
}

func NewInMemoryCatalog() *InMemoryCatalog {
	return &InMemoryCatalog{makes: map[int64]string{}, models: map[int64]string{}}
}

// AddMake registers a make and returns the catalog for chaining.
func (c *InMemoryCatalog) AddMake(id int64, name string) *InMemoryCatalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.makes[id] = name
	return c
}

// AddModel registers a model and returns the catalog for chaining.
func (c *InMemoryCatalog) AddModel(id int64, name string) *InMemoryCatalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models[id] = name
	return c
}

func (c *InMemoryCatalog) MakeName(_ context.Context, id int64) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.makes[id]
	if !ok {
		return "", ErrMakeNotFound
	}
	return name, nil
}

func (c *InMemoryCatalog) ModelName(_ context.Context, id int64) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.models[id]
	if !ok {
		return "", ErrModelNotFound
	}
	return name, nil
}
