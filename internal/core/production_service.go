package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ProductionService mints serialized units of a catalog product into a
// warehouse. A production run is one transaction: admission checks, unit
// minting, warehouse occupancy and the ledger debit land together or not
// at all.
type ProductionService interface {
	Produce(ctx context.Context, warehouseID, productID, quantity int64) (*ProductionRun, error)
	GetProducedUnits(ctx context.Context, filter ProducedUnitFilter) ([]ProducedUnit, error)
}

// ProductionRun reports one completed run.
type ProductionRun struct {
	Units     []ProducedUnit  `json:"units"`
	TotalCost decimal.Decimal `json:"total_cost"`
	Balance   decimal.Decimal `json:"balance"`
}

type ProducedUnitFilter struct {
	ProductID       *int64
	ContractID      *int64
	StorageLocation *int64
	SerialNumber    string
	MintedFrom      string
	Unreserved      bool
	Page            int
	Limit           int
}

type productionService struct {
	pool       *pgxpool.Pool
	signer     *UnitTokenSigner
	ledger     *Ledger
	warehouses WarehouseService
}

func NewProductionService(pool *pgxpool.Pool, signer *UnitTokenSigner, ledger *Ledger, warehouses WarehouseService) ProductionService {
	return &productionService{pool: pool, signer: signer, ledger: ledger, warehouses: warehouses}
}

func (s *productionService) Produce(ctx context.Context, warehouseID, productID, quantity int64) (*ProductionRun, error) {
	if warehouseID <= 0 || productID <= 0 || quantity <= 0 {
		return nil, newValidationError("warehouse id, product id and a positive quantity are required")
	}
	// The signing key is a deployment prerequisite; fail before touching state.
	if !s.signer.Ready() {
		return nil, newConfigurationError("jwt secret key is not configured")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var product Product
	err = tx.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1 AND disable = false FOR UPDATE", productID,
	).Scan(scanProductFields(&product)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newNotFoundError("product %d not found", productID)
		}
		return nil, fmt.Errorf("failed to lock product %d: %w", productID, err)
	}
	if err := validateCatalogEntry(product.Type, product.Subtype); err != nil {
		return nil, err
	}

	warehouse, err := s.warehouses.GetForUpdateTx(ctx, tx, warehouseID)
	if err != nil {
		return nil, err
	}
	if !CompatibleStorage(product.Type, warehouse.Type) {
		return nil, newConflictError("product type %q requires a %q warehouse, %d is %q",
			product.Type, RequiredWarehouseType(product.Type), warehouse.ID, warehouse.Type)
	}

	totalSpace := quantity * product.OccupiedSpace
	if totalSpace > warehouse.FreeCapacity() {
		return nil, newConflictError("insufficient free space in warehouse %d: required %d, available %d",
			warehouseID, totalSpace, warehouse.FreeCapacity())
	}

	balance, err := s.ledger.balanceForAppendTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	totalCost := product.ProductionCost.Mul(decimal.NewFromInt(quantity))
	if totalCost.GreaterThan(balance) {
		return nil, newConflictError("insufficient funds to produce %d units: required %s, available %s",
			quantity, totalCost.StringFixed(2), balance.StringFixed(2))
	}

	mintedAt := time.Now()
	units := make([]ProducedUnit, 0, quantity)
	for i := int64(0); i < quantity; i++ {
		serial := uuid.NewString()
		token, err := s.signer.Sign(&product, serial, mintedAt)
		if err != nil {
			return nil, err
		}

		var u ProducedUnit
		err = tx.QueryRow(ctx, `
			INSERT INTO produced_objects (storage_location, product_id, serial_number, jwt_token, production_cost)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, storage_location, contract_id, product_id, serial_number, jwt_token, production_cost, created_at
		`, warehouseID, productID, serial, token, product.ProductionCost).Scan(
			&u.ID, &u.StorageLocation, &u.ContractID, &u.ProductID, &u.SerialNumber, &u.Token, &u.ProductionCost, &u.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert produced unit: %w", err)
		}
		units = append(units, u)
	}

	if _, err := s.warehouses.ReserveSpaceTx(ctx, tx, warehouseID, totalSpace); err != nil {
		return nil, err
	}

	if _, err := s.ledger.appendTx(ctx, tx, decimal.Zero, totalCost, OpProduction); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit production run: %w", err)
	}
	return &ProductionRun{Units: units, TotalCost: totalCost, Balance: balance.Sub(totalCost)}, nil
}

func (s *productionService) GetProducedUnits(ctx context.Context, filter ProducedUnitFilter) ([]ProducedUnit, error) {
	var f listFilter
	if filter.ProductID != nil {
		f.equal("product_id", *filter.ProductID)
	}
	if filter.ContractID != nil {
		f.equal("contract_id", *filter.ContractID)
	}
	if filter.StorageLocation != nil {
		f.equal("storage_location", *filter.StorageLocation)
	}
	if filter.SerialNumber != "" {
		f.equal("serial_number", filter.SerialNumber)
	}
	if filter.MintedFrom != "" {
		f.atLeast("created_at", filter.MintedFrom)
	}
	if filter.Unreserved {
		f.conds = append(f.conds, "contract_id IS NULL")
	}

	query := `
		SELECT id, storage_location, contract_id, product_id, serial_number, jwt_token, production_cost, created_at
		FROM produced_objects` + f.clause() + `
		ORDER BY id` + f.paginate(filter.Page, filter.Limit)

	rows, err := s.pool.Query(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query produced units: %w", err)
	}
	defer rows.Close()

	var units []ProducedUnit
	for rows.Next() {
		var u ProducedUnit
		if err := rows.Scan(&u.ID, &u.StorageLocation, &u.ContractID, &u.ProductID, &u.SerialNumber, &u.Token, &u.ProductionCost, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan produced unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}
