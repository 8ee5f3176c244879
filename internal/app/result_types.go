package app

import (
	"github.com/shopspring/decimal"

	"arms-backoffice/internal/core"
)

// WarehouseResult is returned by single-warehouse operations.
type WarehouseResult struct {
	Warehouse *core.Warehouse `json:"warehouse"`
}

// WarehouseListResult is returned by ListWarehouses.
type WarehouseListResult struct {
	Warehouses []core.Warehouse `json:"warehouses"`
}

// ProductResult is returned by single-product operations.
type ProductResult struct {
	Product *core.Product `json:"product"`
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product `json:"products"`
}

// ProductionResult is returned by Produce.
type ProductionResult struct {
	Run *core.ProductionRun `json:"run"`
}

// ProducedUnitListResult is returned by ListProducedUnits.
type ProducedUnitListResult struct {
	Units []core.ProducedUnit `json:"units"`
}

// CustomerResult is returned by single-customer operations.
type CustomerResult struct {
	Customer *core.Customer `json:"customer"`
}

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	Customers []core.Customer `json:"customers"`
}

// ContractResult is returned by contract lifecycle operations.
type ContractResult struct {
	Contract *core.SupplyContract `json:"contract"`
}

// ContractListResult is returned by ListContracts.
type ContractListResult struct {
	Contracts []core.SupplyContract `json:"contracts"`
}

// BalanceResult is returned by GetBalance.
type BalanceResult struct {
	Balance decimal.Decimal `json:"balance"`
}

// LedgerEntryResult is returned by ApplyBalanceOperation.
type LedgerEntryResult struct {
	Entry *core.LedgerEntry `json:"entry"`
}

// LedgerListResult is returned by ListLedgerEntries.
type LedgerListResult struct {
	Entries []core.LedgerEntry `json:"entries"`
}

// OperationTypeListResult is returned by ListOperationTypes.
type OperationTypeListResult struct {
	OperationTypes []core.OperationType `json:"operation_types"`
}

// DealListResult is returned by ListDeals.
type DealListResult struct {
	Deals []core.DealRecord `json:"deals"`
}
