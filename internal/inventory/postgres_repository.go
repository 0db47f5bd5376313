package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository reads vehicles from the inventory tables.
type PostgresRepository struct {
	pool rowQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("inventory: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithQuerier(q rowQuerier) *PostgresRepository {
	if q == nil {
		panic("inventory: querier required")
	}
	return &PostgresRepository{pool: q}
}

// FindByStockNumber loads a vehicle with its make and model names.
func (r *PostgresRepository) FindByStockNumber(ctx context.Context, stockNumber string) (*Vehicle, error) {
	query := `
		SELECT v.id, v.is_new, v.stock_number, v.vin, v.year_mfd,
		       mk.id, mk.name, md.id, md.name,
		       v.trim, v.exterior_color, v.interior_color, v.miles,
		       v.selling_price, v.msrp, v.certified, v.date_in_stock
		FROM vehicles v
		JOIN vehicle_makes mk ON mk.id = v.make_id
		JOIN vehicle_models md ON md.id = v.model_id
		WHERE v.stock_number = $1
		LIMIT 1
	`
	var v Vehicle
	err := r.pool.QueryRow(ctx, query, stockNumber).Scan(
		&v.ID,
		&v.IsNew,
		&v.StockNumber,
		&v.VIN,
		&v.Year,
		&v.MakeID,
		&v.Make,
		&v.ModelID,
		&v.Model,
		&v.Trim,
		&v.ExteriorColor,
		&v.InteriorColor,
		&v.Miles,
		&v.SellingPrice,
		&v.MSRP,
		&v.Certified,
		&v.DateInStock,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("inventory: find vehicle %q: %w", stockNumber, err)
	}
	return &v, nil
}
