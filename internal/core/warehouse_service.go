package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WarehouseService manages storage locations and is the single admission
// point for occupied space: every stock mutation goes through ReserveSpaceTx
// so current_capacity stays equal to the space of everything stored.
type WarehouseService interface {
	CreateWarehouse(ctx context.Context, input WarehouseInput) (*Warehouse, error)
	GetWarehouses(ctx context.Context, filter WarehouseFilter) ([]Warehouse, error)
	GetWarehouse(ctx context.Context, id int64) (*Warehouse, error)
	DisableWarehouse(ctx context.Context, id int64) (*Warehouse, error)

	// Tx-scoped operations, used by the product, production and contract
	// services inside their own transactions.

	// GetForUpdateTx loads an enabled warehouse and locks its row.
	GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*Warehouse, error)
	// ReserveSpaceTx moves current_capacity by delta. Positive deltas are
	// admitted against free capacity; negative deltas release space and are
	// floored at zero occupancy.
	ReserveSpaceTx(ctx context.Context, tx pgx.Tx, id int64, delta int64) (*Warehouse, error)
}

type WarehouseInput struct {
	Name     string
	Address  string
	Capacity int64
	Type     WarehouseType
}

type WarehouseFilter struct {
	Name     string
	Type     WarehouseType
	Disabled *bool
	Page     int
	Limit    int
}

type warehouseService struct {
	pool *pgxpool.Pool
}

func NewWarehouseService(pool *pgxpool.Pool) WarehouseService {
	return &warehouseService{pool: pool}
}

func (s *warehouseService) CreateWarehouse(ctx context.Context, input WarehouseInput) (*Warehouse, error) {
	if input.Name == "" {
		return nil, newValidationError("warehouse name is required")
	}
	if !IsValidWarehouseType(input.Type) {
		return nil, newValidationError("unknown warehouse type %q", input.Type)
	}
	if input.Capacity <= 0 {
		return nil, newValidationError("warehouse capacity must be positive, got %d", input.Capacity)
	}

	var w Warehouse
	err := s.pool.QueryRow(ctx, `
		INSERT INTO warehouses (name, address, current_capacity, capacity, warehouse_type)
		VALUES ($1, $2, 0, $3, $4)
		RETURNING id, name, address, current_capacity, capacity, warehouse_type, disable
	`, input.Name, input.Address, input.Capacity, input.Type).Scan(
		&w.ID, &w.Name, &w.Address, &w.CurrentCapacity, &w.Capacity, &w.Type, &w.Disabled,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert warehouse: %w", err)
	}
	return &w, nil
}

func (s *warehouseService) GetWarehouses(ctx context.Context, filter WarehouseFilter) ([]Warehouse, error) {
	var f listFilter
	if filter.Name != "" {
		f.match("name", filter.Name)
	}
	if filter.Type != "" {
		f.equal("warehouse_type", filter.Type)
	}
	if filter.Disabled != nil {
		f.equal("disable", *filter.Disabled)
	}

	query := `
		SELECT id, name, address, current_capacity, capacity, warehouse_type, disable
		FROM warehouses` + f.clause() + `
		ORDER BY id` + f.paginate(filter.Page, filter.Limit)

	rows, err := s.pool.Query(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query warehouses: %w", err)
	}
	defer rows.Close()

	var warehouses []Warehouse
	for rows.Next() {
		var w Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Address, &w.CurrentCapacity, &w.Capacity, &w.Type, &w.Disabled); err != nil {
			return nil, fmt.Errorf("failed to scan warehouse: %w", err)
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

func (s *warehouseService) GetWarehouse(ctx context.Context, id int64) (*Warehouse, error) {
	var w Warehouse
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, address, current_capacity, capacity, warehouse_type, disable
		FROM warehouses
		WHERE id = $1
	`, id).Scan(&w.ID, &w.Name, &w.Address, &w.CurrentCapacity, &w.Capacity, &w.Type, &w.Disabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newNotFoundError("warehouse %d not found", id)
		}
		return nil, fmt.Errorf("failed to fetch warehouse %d: %w", id, err)
	}
	return &w, nil
}

// DisableWarehouse retires a warehouse. Blocked while any enabled product is
// stored in it or any occupied space remains; produced units keep their space
// until they ship, and a disabled warehouse cannot be locked for that release.
func (s *warehouseService) DisableWarehouse(ctx context.Context, id int64) (*Warehouse, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	w, err := s.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	var stored int64
	err = tx.QueryRow(ctx,
		"SELECT count(*) FROM products WHERE storage_location = $1 AND disable = false", id,
	).Scan(&stored)
	if err != nil {
		return nil, fmt.Errorf("failed to count stored products: %w", err)
	}
	if stored > 0 {
		return nil, newConflictError("warehouse %d still stores %d enabled products", id, stored)
	}
	if w.CurrentCapacity > 0 {
		return nil, newConflictError("warehouse %d still holds goods occupying %d units of space", id, w.CurrentCapacity)
	}

	if _, err := tx.Exec(ctx, "UPDATE warehouses SET disable = true WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to disable warehouse %d: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit warehouse disable: %w", err)
	}
	w.Disabled = true
	return w, nil
}

func (s *warehouseService) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*Warehouse, error) {
	var w Warehouse
	err := tx.QueryRow(ctx, `
		SELECT id, name, address, current_capacity, capacity, warehouse_type, disable
		FROM warehouses
		WHERE id = $1 AND disable = false
		FOR UPDATE
	`, id).Scan(&w.ID, &w.Name, &w.Address, &w.CurrentCapacity, &w.Capacity, &w.Type, &w.Disabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newNotFoundError("warehouse %d not found", id)
		}
		return nil, fmt.Errorf("failed to lock warehouse %d: %w", id, err)
	}
	return &w, nil
}

func (s *warehouseService) ReserveSpaceTx(ctx context.Context, tx pgx.Tx, id int64, delta int64) (*Warehouse, error) {
	w, err := s.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	next := w.CurrentCapacity + delta
	if delta > 0 && next > w.Capacity {
		return nil, newConflictError("insufficient free space in warehouse %d: required %d, available %d",
			id, delta, w.FreeCapacity())
	}
	if next < 0 {
		return nil, newConflictError("cannot release %d units of space from warehouse %d: only %d occupied",
			-delta, id, w.CurrentCapacity)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE warehouses SET current_capacity = $1 WHERE id = $2", next, id,
	); err != nil {
		return nil, fmt.Errorf("failed to update warehouse %d capacity: %w", id, err)
	}
	w.CurrentCapacity = next
	return w, nil
}
