package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var vehicleColumns = []string{
	"id", "is_new", "stock_number", "vin", "year_mfd",
	"make_id", "make", "model_id", "model",
	"trim", "exterior_color", "interior_color", "miles",
	"selling_price", "msrp", "certified", "date_in_stock",
}

func TestPostgresRepositoryFindByStockNumber(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)
	inStock := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(vehicleColumns).AddRow(
		int64(7), true, "A1234", "5FRYD4H40HB000001", 2017,
		int64(1), "Acura", int64(3), "MDX",
		"Tech", "White", "Black", 12,
		41995, 44000, false, inStock,
	)
	mock.ExpectQuery("SELECT v.id").WithArgs("A1234").WillReturnRows(rows)

	v, err := repo.FindByStockNumber(context.Background(), "A1234")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if v.Make != "Acura" || v.Model != "MDX" || v.Year != 2017 {
		t.Fatalf("unexpected vehicle: %#v", v)
	}
	if !v.DateInStock.Equal(inStock) {
		t.Fatalf("unexpected date in stock: %s", v.DateInStock)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepositoryNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)
	mock.ExpectQuery("SELECT v.id").WithArgs("NOPE").WillReturnRows(pgxmock.NewRows(vehicleColumns))

	_, err = repo.FindByStockNumber(context.Background(), "NOPE")
	if !errors.Is(err, ErrVehicleNotFound) {
		t.Fatalf("expected ErrVehicleNotFound, got %v", err)
	}
}

func TestPostgresRepositoryWrapsQueryErrors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)
	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT v.id").WithArgs("A1").WillReturnError(boom)

	_, err = repo.FindByStockNumber(context.Background(), "A1")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
	if errors.Is(err, ErrVehicleNotFound) {
		t.Fatalf("driver error must not read as not found")
	}
}
