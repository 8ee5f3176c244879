package core_test

import (
	"context"
	"errors"
	"testing"

	"arms-backoffice/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func newContractService(pool *pgxpool.Pool) (core.ContractService, *core.Ledger) {
	ledger := core.NewLedger(pool)
	warehouses := core.NewWarehouseService(pool)
	return core.NewContractService(pool, ledger, warehouses), ledger
}

func productReservation(t *testing.T, pool *pgxpool.Pool, id int64) int64 {
	t.Helper()
	var reserved int64
	if err := pool.QueryRow(context.Background(),
		"SELECT reserved_quantity FROM products WHERE id = $1", id,
	).Scan(&reserved); err != nil {
		t.Fatalf("Failed to read product %d reservation: %v", id, err)
	}
	return reserved
}

func TestCreateContract_ReservesAggregateStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc, ledger := newContractService(pool)
	ctx := context.Background()
	seedBalance(t, pool, ledger, "100")

	// 2 rifles at production cost 5 each.
	c, err := svc.CreateContract(ctx, core.ContractInput{
		CustomerID:     1,
		ContractDate:   "2026-09-01",
		Items:          []core.ContractItem{{ProductID: 3, Quantity: 2}},
		ContractAmount: decimal.NewFromInt(50),
		Currency:       "RUB",
	})
	if err != nil {
		t.Fatalf("CreateContract failed: %v", err)
	}
	if c.Status != core.ContractPending {
		t.Fatalf("Status = %s, want %s", c.Status, core.ContractPending)
	}
	if !c.ProductionCost.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("ProductionCost = %s, want 10", c.ProductionCost)
	}
	if got := productReservation(t, pool, 3); got != 2 {
		t.Fatalf("Reservation = %d, want 2", got)
	}
	requireBalance(t, ledger, "90")
}

func TestCreateContract_InsufficientStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc, _ := newContractService(pool)
	_, err := svc.CreateContract(context.Background(), core.ContractInput{
		CustomerID:     1,
		ContractDate:   "2026-09-01",
		Items:          []core.ContractItem{{ProductID: 3, Quantity: 10}},
		ContractAmount: decimal.NewFromInt(500),
	})
	var conflict *core.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError, got %v", err)
	}
	if got := productReservation(t, pool, 3); got != 0 {
		t.Fatalf("Reservation = %d after failed creation, want 0", got)
	}
}

func TestCreateContract_AmountBelowCost(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc, _ := newContractService(pool)
	_, err := svc.CreateContract(context.Background(), core.ContractInput{
		CustomerID:     1,
		ContractDate:   "2026-09-01",
		Items:          []core.ContractItem{{ProductID: 3, Quantity: 2}},
		ContractAmount: decimal.NewFromInt(9), // cost is 10
	})
	var conflict *core.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError, got %v", err)
	}
}

func TestCreateContract_UnknownCustomer(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc, _ := newContractService(pool)
	_, err := svc.CreateContract(context.Background(), core.ContractInput{
		CustomerID:     42,
		ContractDate:   "2026-09-01",
		Items:          []core.ContractItem{{ProductID: 3, Quantity: 1}},
		ContractAmount: decimal.NewFromInt(50),
	})
	var notFound *core.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
}

func TestCreateContract_SerializedUnit(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	production, ledger := newProductionService(pool, testSigningKey)
	seedBalance(t, pool, ledger, "100")

	run, err := production.Produce(ctx, 1, 1, 1)
	if err != nil {
		t.Fatalf("Produce failed: %v", err)
	}
	serial := run.Units[0].SerialNumber

	svc, _ := newContractService(pool)
	c, err := svc.CreateContract(ctx, core.ContractInput{
		CustomerID:     1,
		ContractDate:   "2026-09-01",
		Items:          []core.ContractItem{{SerialNumber: serial}},
		ContractAmount: decimal.NewFromInt(25),
	})
	if err != nil {
		t.Fatalf("CreateContract failed: %v", err)
	}
	if !c.ProductionCost.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("ProductionCost = %s, want the mint-time snapshot 10", c.ProductionCost)
	}

	var reservedBy *int64
	if err := pool.QueryRow(ctx,
		"SELECT contract_id FROM produced_objects WHERE serial_number = $1", serial,
	).Scan(&reservedBy); err != nil {
		t.Fatalf("Failed to read unit: %v", err)
	}
	if reservedBy == nil || *reservedBy != c.ID {
		t.Fatalf("Unit not reserved by contract %d: %v", c.ID, reservedBy)
	}

	// The same unit cannot be sold twice.
	_, err = svc.CreateContract(ctx, core.ContractInput{
		CustomerID:     1,
		ContractDate:   "2026-09-01",
		Items:          []core.ContractItem{{SerialNumber: serial}},
		ContractAmount: decimal.NewFromInt(25),
	})
	var conflict *core.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError for double reservation, got %v", err)
	}
}

func TestCreateContract_RejectsDuplicateLines(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	production, ledger := newProductionService(pool, testSigningKey)
	seedBalance(t, pool, ledger, "100")

	svc, _ := newContractService(pool)

	// Two lines over the same product would each see the full 5-unit stock
	// and together reserve 8 of it.
	_, err := svc.CreateContract(ctx, core.ContractInput{
		CustomerID:   1,
		ContractDate: "2026-09-01",
		Items: []core.ContractItem{
			{ProductID: 3, Quantity: 4},
			{ProductID: 3, Quantity: 4},
		},
		ContractAmount: decimal.NewFromInt(100),
	})
	var validation *core.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Expected ValidationError for repeated product, got %v", err)
	}
	if got := productReservation(t, pool, 3); got != 0 {
		t.Fatalf("Reservation = %d after rejected contract, want 0", got)
	}

	run, err := production.Produce(ctx, 1, 1, 1)
	if err != nil {
		t.Fatalf("Produce failed: %v", err)
	}
	serial := run.Units[0].SerialNumber

	_, err = svc.CreateContract(ctx, core.ContractInput{
		CustomerID:   1,
		ContractDate: "2026-09-01",
		Items: []core.ContractItem{
			{SerialNumber: serial},
			{SerialNumber: serial},
		},
		ContractAmount: decimal.NewFromInt(50),
	})
	if !errors.As(err, &validation) {
		t.Fatalf("Expected ValidationError for repeated serial, got %v", err)
	}

	var reservedBy *int64
	if err := pool.QueryRow(ctx,
		"SELECT contract_id FROM produced_objects WHERE serial_number = $1", serial,
	).Scan(&reservedBy); err != nil {
		t.Fatalf("Failed to read unit: %v", err)
	}
	if reservedBy != nil {
		t.Fatalf("Unit reserved by contract %d after rejected contract", *reservedBy)
	}
}

func TestCompleteContract_ShipsArchivesAndCredits(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc, ledger := newContractService(pool)
	ctx := context.Background()
	seedBalance(t, pool, ledger, "100")

	c, err := svc.CreateContract(ctx, core.ContractInput{
		CustomerID:     1,
		ContractDate:   "2026-09-01",
		Items:          []core.ContractItem{{ProductID: 3, Quantity: 2}},
		ContractAmount: decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("CreateContract failed: %v", err)
	}
	occupancyBefore := warehouseOccupancy(t, pool, 1)

	done, err := svc.CompleteContract(ctx, c.ID)
	if err != nil {
		t.Fatalf("CompleteContract failed: %v", err)
	}
	if done.Status != core.ContractCompleted || !done.Disabled {
		t.Fatalf("Contract not terminal after completion: %+v", done)
	}

	var quantity, reserved int64
	if err := pool.QueryRow(ctx,
		"SELECT quantity, reserved_quantity FROM products WHERE id = 3",
	).Scan(&quantity, &reserved); err != nil {
		t.Fatalf("Failed to read product: %v", err)
	}
	if quantity != 3 || reserved != 0 {
		t.Fatalf("Product after shipment: quantity %d reserved %d, want 3/0", quantity, reserved)
	}
	if got := warehouseOccupancy(t, pool, 1); got != occupancyBefore-2 {
		t.Fatalf("Warehouse occupancy = %d, want %d", got, occupancyBefore-2)
	}

	// 100 (seed) - 10 (creation) + 50 - 10 (completion) = 130.
	requireBalance(t, ledger, "130")

	deals, err := core.NewHistoryService(pool).GetDeals(ctx, core.DealFilter{})
	if err != nil {
		t.Fatalf("GetDeals failed: %v", err)
	}
	if len(deals) != 1 {
		t.Fatalf("Got %d deals, want 1", len(deals))
	}
	if !deals[0].Profit.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("Deal profit = %s, want 40", deals[0].Profit)
	}
}

func TestCancelContract_ReleasesAndRefunds(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc, ledger := newContractService(pool)
	ctx := context.Background()
	seedBalance(t, pool, ledger, "100")

	c, err := svc.CreateContract(ctx, core.ContractInput{
		CustomerID:     1,
		ContractDate:   "2026-09-01",
		Items:          []core.ContractItem{{ProductID: 3, Quantity: 2}},
		ContractAmount: decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("CreateContract failed: %v", err)
	}
	requireBalance(t, ledger, "90")

	cancelled, err := svc.ChangeContractStatus(ctx, c.ID, core.ContractCancelled)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled.Status != core.ContractCancelled || !cancelled.Disabled {
		t.Fatalf("Contract not terminal after cancel: %+v", cancelled)
	}
	if got := productReservation(t, pool, 3); got != 0 {
		t.Fatalf("Reservation = %d after cancel, want 0", got)
	}
	// The creation charge comes back.
	requireBalance(t, ledger, "100")

	// Terminal contracts stay terminal.
	_, err = svc.ChangeContractStatus(ctx, c.ID, core.ContractInProgress)
	var conflict *core.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError on terminal contract, got %v", err)
	}
}

func TestChangeContractStatus_Rules(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc, ledger := newContractService(pool)
	ctx := context.Background()
	seedBalance(t, pool, ledger, "100")

	c, err := svc.CreateContract(ctx, core.ContractInput{
		CustomerID:     1,
		ContractDate:   "2026-09-01",
		Items:          []core.ContractItem{{ProductID: 3, Quantity: 1}},
		ContractAmount: decimal.NewFromInt(20),
	})
	if err != nil {
		t.Fatalf("CreateContract failed: %v", err)
	}

	// Completion has side effects and must use the dedicated operation.
	_, err = svc.ChangeContractStatus(ctx, c.ID, core.ContractCompleted)
	var validation *core.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Expected ValidationError for completion via status change, got %v", err)
	}

	_, err = svc.ChangeContractStatus(ctx, c.ID, "Неизвестный")
	if !errors.As(err, &validation) {
		t.Fatalf("Expected ValidationError for unknown status, got %v", err)
	}

	moved, err := svc.ChangeContractStatus(ctx, c.ID, core.ContractInProgress)
	if err != nil {
		t.Fatalf("Pending -> InProgress failed: %v", err)
	}
	if moved.Status != core.ContractInProgress {
		t.Fatalf("Status = %s, want %s", moved.Status, core.ContractInProgress)
	}
}
