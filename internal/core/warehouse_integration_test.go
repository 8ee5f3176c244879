package core_test

import (
	"context"
	"errors"
	"testing"

	"arms-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

func TestCreateWarehouse_RejectsUnknownType(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewWarehouseService(pool)
	_, err := svc.CreateWarehouse(context.Background(), core.WarehouseInput{
		Name:     "Сарай",
		Capacity: 10,
		Type:     "Сарай",
	})
	var validation *core.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

func TestDisableWarehouse_BlockedWhileStocked(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewWarehouseService(pool)
	_, err := svc.DisableWarehouse(context.Background(), 1)
	var conflict *core.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError, got %v", err)
	}
}

func TestDisableWarehouse_EmptySucceeds(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewWarehouseService(pool)
	w, err := svc.DisableWarehouse(context.Background(), 3)
	if err != nil {
		t.Fatalf("DisableWarehouse failed: %v", err)
	}
	if !w.Disabled {
		t.Fatal("Warehouse still enabled after disable")
	}
}

func TestDisableWarehouse_BlockedWhileUnitsStored(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	production, ledger := newProductionService(pool, testSigningKey)
	seedBalance(t, pool, ledger, "100")

	warehouses := core.NewWarehouseService(pool)
	products := core.NewProductService(pool, warehouses)
	p, err := products.AddProduct(ctx, core.ProductInput{
		Name:            "Танк Т-90",
		Type:            "Тяжелая техника",
		Subtype:         "Танки",
		StorageLocation: 3,
		OccupiedSpace:   10,
		Price:           decimal.NewFromInt(80),
		ProductionCost:  decimal.NewFromInt(30),
	})
	if err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}
	run, err := production.Produce(ctx, 3, p.ID, 1)
	if err != nil {
		t.Fatalf("Produce failed: %v", err)
	}

	// Retiring the catalog entry leaves the minted unit in the hangar, so
	// the hangar cannot retire with it.
	if _, err := products.DisableProduct(ctx, p.ID); err != nil {
		t.Fatalf("DisableProduct failed: %v", err)
	}
	_, err = warehouses.DisableWarehouse(ctx, 3)
	var conflict *core.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError while a unit is stored, got %v", err)
	}

	// Shipping the unit out releases its space and unblocks the disable.
	contracts, _ := newContractService(pool)
	c, err := contracts.CreateContract(ctx, core.ContractInput{
		CustomerID:     1,
		ContractDate:   "2026-09-01",
		Items:          []core.ContractItem{{SerialNumber: run.Units[0].SerialNumber}},
		ContractAmount: decimal.NewFromInt(80),
	})
	if err != nil {
		t.Fatalf("CreateContract failed: %v", err)
	}
	if _, err := contracts.CompleteContract(ctx, c.ID); err != nil {
		t.Fatalf("CompleteContract failed: %v", err)
	}

	w, err := warehouses.DisableWarehouse(ctx, 3)
	if err != nil {
		t.Fatalf("DisableWarehouse failed after shipment: %v", err)
	}
	if !w.Disabled {
		t.Fatal("Warehouse still enabled after disable")
	}
}

func TestGetWarehouses_FilterByType(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewWarehouseService(pool)
	warehouses, err := svc.GetWarehouses(context.Background(), core.WarehouseFilter{Type: core.WarehouseAircraftHangar})
	if err != nil {
		t.Fatalf("GetWarehouses failed: %v", err)
	}
	if len(warehouses) != 1 || warehouses[0].ID != 2 {
		t.Fatalf("Filtered warehouses wrong: %+v", warehouses)
	}
}
