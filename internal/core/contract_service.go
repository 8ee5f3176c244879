package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const contractColumns = `id, customer_id, contract_date::text, disable, items, description,
	contract_amount, contract_type, currency, contract_status, production_cost`

// ContractService drives the supply-contract lifecycle. Creation reserves
// every line and charges the production cost to the ledger; completion ships
// the goods, archives the deal and credits the contract amount; cancellation
// releases the reservations and posts a compensating credit for the cost
// charged at creation.
type ContractService interface {
	CreateContract(ctx context.Context, input ContractInput) (*SupplyContract, error)
	CompleteContract(ctx context.Context, id int64) (*SupplyContract, error)
	ChangeContractStatus(ctx context.Context, id int64, status ContractStatus) (*SupplyContract, error)
	GetContract(ctx context.Context, id int64) (*SupplyContract, error)
	GetContracts(ctx context.Context, filter ContractFilter) ([]SupplyContract, error)
}

type ContractInput struct {
	CustomerID     int64
	ContractDate   string
	Items          []ContractItem
	Description    string
	ContractAmount decimal.Decimal
	ContractType   string
	Currency       string
}

type ContractFilter struct {
	CustomerID *int64
	Status     ContractStatus
	Type       string
	Currency   string
	Disabled   *bool
	DateFrom   string
	Page       int
	Limit      int
}

type contractService struct {
	pool       *pgxpool.Pool
	ledger     *Ledger
	warehouses WarehouseService
}

func NewContractService(pool *pgxpool.Pool, ledger *Ledger, warehouses WarehouseService) ContractService {
	return &contractService{pool: pool, ledger: ledger, warehouses: warehouses}
}

func (s *contractService) CreateContract(ctx context.Context, input ContractInput) (*SupplyContract, error) {
	if input.CustomerID <= 0 {
		return nil, newValidationError("customer id is required")
	}
	if input.ContractDate == "" {
		return nil, newValidationError("contract date is required")
	}
	if len(input.Items) == 0 {
		return nil, newValidationError("a contract needs at least one line item")
	}
	if input.ContractType != "" && !IsValidContractType(input.ContractType) {
		return nil, newValidationError("unknown contract type %q", input.ContractType)
	}
	if input.Currency != "" && !IsValidCurrency(input.Currency) {
		return nil, newValidationError("unknown currency %q", input.Currency)
	}
	if input.ContractAmount.IsNegative() {
		return nil, newValidationError("contract amount cannot be negative")
	}
	// One line per product and per serial: a repeated line would pass the
	// availability check twice against the same pre-reservation state.
	seenProducts := make(map[int64]bool, len(input.Items))
	seenSerials := make(map[string]bool, len(input.Items))
	for i, item := range input.Items {
		if item.Serialized() {
			if item.ProductID != 0 || item.Quantity != 0 {
				return nil, newValidationError("line %d mixes a serial number with aggregate fields", i+1)
			}
			if seenSerials[item.SerialNumber] {
				return nil, newValidationError("line %d repeats produced unit %s", i+1, item.SerialNumber)
			}
			seenSerials[item.SerialNumber] = true
			continue
		}
		if item.ProductID <= 0 || item.Quantity <= 0 {
			return nil, newValidationError("line %d needs a product id and a positive quantity", i+1)
		}
		if seenProducts[item.ProductID] {
			return nil, newValidationError("line %d repeats product %d", i+1, item.ProductID)
		}
		seenProducts[item.ProductID] = true
	}

	currency := input.Currency
	if currency == "" {
		currency = "RUB"
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var customerID int64
	err = tx.QueryRow(ctx,
		"SELECT id FROM customers WHERE id = $1 AND disable = false", input.CustomerID,
	).Scan(&customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newNotFoundError("customer %d not found", input.CustomerID)
		}
		return nil, fmt.Errorf("failed to fetch customer %d: %w", input.CustomerID, err)
	}

	// Price every line and lock what it reserves. Aggregate lines cost from
	// the catalog, serialized lines from the mint-time snapshot.
	totalCost := decimal.Zero
	for _, item := range input.Items {
		if item.Serialized() {
			var unitCost decimal.Decimal
			var reservedBy *int64
			err := tx.QueryRow(ctx, `
				SELECT production_cost, contract_id
				FROM produced_objects
				WHERE serial_number = $1
				FOR UPDATE
			`, item.SerialNumber).Scan(&unitCost, &reservedBy)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, newNotFoundError("produced unit %s not found", item.SerialNumber)
				}
				return nil, fmt.Errorf("failed to lock produced unit %s: %w", item.SerialNumber, err)
			}
			if reservedBy != nil {
				return nil, newConflictError("produced unit %s is already reserved by contract %d", item.SerialNumber, *reservedBy)
			}
			totalCost = totalCost.Add(unitCost)
			continue
		}

		var quantity, reserved int64
		var unitCost decimal.Decimal
		err := tx.QueryRow(ctx, `
			SELECT quantity, reserved_quantity, production_cost
			FROM products
			WHERE id = $1 AND disable = false
			FOR UPDATE
		`, item.ProductID).Scan(&quantity, &reserved, &unitCost)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, newNotFoundError("product %d not found", item.ProductID)
			}
			return nil, fmt.Errorf("failed to lock product %d: %w", item.ProductID, err)
		}
		available := quantity - reserved
		if item.Quantity > available {
			return nil, newConflictError("insufficient stock for product %d: available %d, required %d",
				item.ProductID, available, item.Quantity)
		}
		totalCost = totalCost.Add(unitCost.Mul(decimal.NewFromInt(item.Quantity)))
	}

	if input.ContractAmount.LessThan(totalCost) {
		return nil, newConflictError("contract amount %s is below the production cost %s",
			input.ContractAmount.StringFixed(2), totalCost.StringFixed(2))
	}

	var c SupplyContract
	err = tx.QueryRow(ctx, `
		INSERT INTO supply_contracts (customer_id, contract_date, items, description,
			contract_amount, contract_type, currency, contract_status, production_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+contractColumns,
		input.CustomerID, input.ContractDate, input.Items, input.Description,
		input.ContractAmount, input.ContractType, currency, ContractPending, totalCost,
	).Scan(scanContractFields(&c)...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert contract: %w", err)
	}

	for _, item := range input.Items {
		if item.Serialized() {
			if _, err := tx.Exec(ctx,
				"UPDATE produced_objects SET contract_id = $1 WHERE serial_number = $2", c.ID, item.SerialNumber,
			); err != nil {
				return nil, fmt.Errorf("failed to reserve produced unit %s: %w", item.SerialNumber, err)
			}
			continue
		}
		if _, err := tx.Exec(ctx,
			"UPDATE products SET reserved_quantity = reserved_quantity + $1 WHERE id = $2", item.Quantity, item.ProductID,
		); err != nil {
			return nil, fmt.Errorf("failed to reserve product %d: %w", item.ProductID, err)
		}
	}

	if _, err := s.ledger.appendTx(ctx, tx, decimal.Zero, totalCost, OpContractCreation); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit contract creation: %w", err)
	}
	return &c, nil
}

// CompleteContract ships every line, releases the departed goods' warehouse
// space, archives the deal and credits the contract amount against the cost.
func (s *contractService) CompleteContract(ctx context.Context, id int64) (*SupplyContract, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	c, err := s.getForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if c.Status.Terminal() {
		return nil, newConflictError("contract %d is already %s", id, c.Status)
	}

	for _, item := range c.Items {
		if item.Serialized() {
			if err := s.shipUnitTx(ctx, tx, id, item.SerialNumber); err != nil {
				return nil, err
			}
			continue
		}
		if err := s.shipAggregateTx(ctx, tx, item); err != nil {
			return nil, err
		}
	}

	err = tx.QueryRow(ctx, `
		UPDATE supply_contracts
		SET contract_status = $1, disable = true
		WHERE id = $2
		RETURNING `+contractColumns, ContractCompleted, id,
	).Scan(scanContractFields(c)...)
	if err != nil {
		return nil, fmt.Errorf("failed to complete contract %d: %w", id, err)
	}

	profit := c.ContractAmount.Sub(c.ProductionCost)
	if _, err := tx.Exec(ctx, `
		INSERT INTO deal_history (contract_id, customer_id, contract_amount, production_cost, profit)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.CustomerID, c.ContractAmount, c.ProductionCost, profit); err != nil {
		return nil, fmt.Errorf("failed to archive deal for contract %d: %w", id, err)
	}

	if _, err := s.ledger.appendTx(ctx, tx, c.ContractAmount, c.ProductionCost, OpContractCompletion); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit contract completion: %w", err)
	}
	return c, nil
}

// ChangeContractStatus moves a contract between lifecycle states.
// Completion carries ledger and shipment effects and must go through
// CompleteContract; cancellation releases every reservation and posts a
// compensating credit for the cost charged at creation.
func (s *contractService) ChangeContractStatus(ctx context.Context, id int64, status ContractStatus) (*SupplyContract, error) {
	if !IsValidContractStatus(status) {
		return nil, newValidationError("unknown contract status %q", status)
	}
	if status == ContractCompleted {
		return nil, newValidationError("completion must go through the complete operation")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	c, err := s.getForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if c.Status.Terminal() {
		return nil, newConflictError("contract %d is already %s", id, c.Status)
	}
	if status == c.Status {
		return nil, newConflictError("contract %d is already %s", id, status)
	}
	if status == ContractPending {
		return nil, newConflictError("contract %d cannot return to %s", id, ContractPending)
	}

	disable := false
	if status == ContractCancelled {
		disable = true
		for _, item := range c.Items {
			if item.Serialized() {
				if _, err := tx.Exec(ctx,
					"UPDATE produced_objects SET contract_id = NULL WHERE serial_number = $1 AND contract_id = $2",
					item.SerialNumber, id,
				); err != nil {
					return nil, fmt.Errorf("failed to release produced unit %s: %w", item.SerialNumber, err)
				}
				continue
			}
			if _, err := tx.Exec(ctx,
				"UPDATE products SET reserved_quantity = reserved_quantity - $1 WHERE id = $2",
				item.Quantity, item.ProductID,
			); err != nil {
				return nil, fmt.Errorf("failed to release reservation for product %d: %w", item.ProductID, err)
			}
		}

		// Refund the production cost charged at creation.
		if c.ProductionCost.IsPositive() {
			if _, err := s.ledger.appendTx(ctx, tx, c.ProductionCost, decimal.Zero, OpContractCancellation); err != nil {
				return nil, err
			}
		}
	}

	err = tx.QueryRow(ctx, `
		UPDATE supply_contracts
		SET contract_status = $1, disable = $2
		WHERE id = $3
		RETURNING `+contractColumns, status, disable, id,
	).Scan(scanContractFields(c)...)
	if err != nil {
		return nil, fmt.Errorf("failed to update contract %d status: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status change: %w", err)
	}
	return c, nil
}

func (s *contractService) GetContract(ctx context.Context, id int64) (*SupplyContract, error) {
	var c SupplyContract
	err := s.pool.QueryRow(ctx,
		"SELECT "+contractColumns+" FROM supply_contracts WHERE id = $1", id,
	).Scan(scanContractFields(&c)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newNotFoundError("contract %d not found", id)
		}
		return nil, fmt.Errorf("failed to fetch contract %d: %w", id, err)
	}
	return &c, nil
}

func (s *contractService) GetContracts(ctx context.Context, filter ContractFilter) ([]SupplyContract, error) {
	var f listFilter
	if filter.CustomerID != nil {
		f.equal("customer_id", *filter.CustomerID)
	}
	if filter.Status != "" {
		f.equal("contract_status", filter.Status)
	}
	if filter.Type != "" {
		f.equal("contract_type", filter.Type)
	}
	if filter.Currency != "" {
		f.equal("currency", filter.Currency)
	}
	if filter.Disabled != nil {
		f.equal("disable", *filter.Disabled)
	}
	if filter.DateFrom != "" {
		f.atLeast("contract_date", filter.DateFrom)
	}

	query := "SELECT " + contractColumns + " FROM supply_contracts" + f.clause() +
		" ORDER BY id DESC" + f.paginate(filter.Page, filter.Limit)

	rows, err := s.pool.Query(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var contracts []SupplyContract
	for rows.Next() {
		var c SupplyContract
		if err := rows.Scan(scanContractFields(&c)...); err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// shipAggregateTx removes item.Quantity units from stock and reservation and
// releases their warehouse space.
func (s *contractService) shipAggregateTx(ctx context.Context, tx pgx.Tx, item ContractItem) error {
	var quantity, reserved, occupied, location int64
	err := tx.QueryRow(ctx, `
		SELECT quantity, reserved_quantity, occupied_space, storage_location
		FROM products
		WHERE id = $1
		FOR UPDATE
	`, item.ProductID).Scan(&quantity, &reserved, &occupied, &location)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return newNotFoundError("product %d not found", item.ProductID)
		}
		return fmt.Errorf("failed to lock product %d: %w", item.ProductID, err)
	}
	if reserved < item.Quantity || quantity < item.Quantity {
		return newConflictError("reservation for product %d no longer covers %d units", item.ProductID, item.Quantity)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE products
		SET quantity = quantity - $1, reserved_quantity = reserved_quantity - $1
		WHERE id = $2
	`, item.Quantity, item.ProductID); err != nil {
		return fmt.Errorf("failed to ship product %d: %w", item.ProductID, err)
	}

	if _, err := s.warehouses.ReserveSpaceTx(ctx, tx, location, -item.Quantity*occupied); err != nil {
		return err
	}
	return nil
}

// shipUnitTx releases the warehouse space of one departing produced unit.
func (s *contractService) shipUnitTx(ctx context.Context, tx pgx.Tx, contractID int64, serialNumber string) error {
	var location int64
	var occupied int64
	err := tx.QueryRow(ctx, `
		SELECT po.storage_location, p.occupied_space
		FROM produced_objects po
		JOIN products p ON p.id = po.product_id
		WHERE po.serial_number = $1 AND po.contract_id = $2
		FOR UPDATE OF po
	`, serialNumber, contractID).Scan(&location, &occupied)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return newNotFoundError("produced unit %s is not reserved by contract %d", serialNumber, contractID)
		}
		return fmt.Errorf("failed to lock produced unit %s: %w", serialNumber, err)
	}

	if _, err := s.warehouses.ReserveSpaceTx(ctx, tx, location, -occupied); err != nil {
		return err
	}
	return nil
}

func (s *contractService) getForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*SupplyContract, error) {
	var c SupplyContract
	err := tx.QueryRow(ctx,
		"SELECT "+contractColumns+" FROM supply_contracts WHERE id = $1 FOR UPDATE", id,
	).Scan(scanContractFields(&c)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newNotFoundError("contract %d not found", id)
		}
		return nil, fmt.Errorf("failed to lock contract %d: %w", id, err)
	}
	return &c, nil
}

func scanContractFields(c *SupplyContract) []any {
	return []any{
		&c.ID, &c.CustomerID, &c.ContractDate, &c.Disabled, &c.Items, &c.Description,
		&c.ContractAmount, &c.ContractType, &c.Currency, &c.Status, &c.ProductionCost,
	}
}
