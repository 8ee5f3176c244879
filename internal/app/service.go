package app

import (
	"context"

	"arms-backoffice/internal/core"
)

// ApplicationService is the single interface the HTTP adapter calls. It
// decouples presentation from business logic; implementations contain no
// display or transport concerns.
type ApplicationService interface {
	// ListWarehouses returns warehouses matching the filter.
	ListWarehouses(ctx context.Context, filter core.WarehouseFilter) (*WarehouseListResult, error)

	// GetWarehouse returns a single warehouse by id.
	GetWarehouse(ctx context.Context, id int64) (*WarehouseResult, error)

	// CreateWarehouse registers a new storage location.
	CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*WarehouseResult, error)

	// DisableWarehouse retires an empty warehouse.
	DisableWarehouse(ctx context.Context, id int64) (*WarehouseResult, error)

	// ListProducts returns catalog entries matching the filter.
	ListProducts(ctx context.Context, filter core.ProductFilter) (*ProductListResult, error)

	// GetProduct returns a single catalog entry by id.
	GetProduct(ctx context.Context, id int64) (*ProductResult, error)

	// AddProduct registers a catalog entry, admitting its stock into the
	// target warehouse.
	AddProduct(ctx context.Context, req AddProductRequest) (*ProductResult, error)

	// UpdateProduct rewrites the mutable attributes of a catalog entry.
	UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*ProductResult, error)

	// DisableProduct retires a catalog entry and frees its warehouse space.
	DisableProduct(ctx context.Context, id int64) (*ProductResult, error)

	// Produce mints serialized units of a product into a warehouse, charging
	// the production cost to the ledger.
	Produce(ctx context.Context, req ProduceRequest) (*ProductionResult, error)

	// ListProducedUnits returns serialized units matching the filter.
	ListProducedUnits(ctx context.Context, filter core.ProducedUnitFilter) (*ProducedUnitListResult, error)

	// ListCustomers returns counterparties matching the filter.
	ListCustomers(ctx context.Context, filter core.CustomerFilter) (*CustomerListResult, error)

	// CreateCustomer registers a counterparty.
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*CustomerResult, error)

	// DisableCustomer retires a counterparty with no contracts in flight.
	DisableCustomer(ctx context.Context, id int64) (*CustomerResult, error)

	// ListContracts returns supply contracts matching the filter.
	ListContracts(ctx context.Context, filter core.ContractFilter) (*ContractListResult, error)

	// GetContract returns a single supply contract by id.
	GetContract(ctx context.Context, id int64) (*ContractResult, error)

	// CreateContract opens a contract, reserving every line and charging the
	// production cost.
	CreateContract(ctx context.Context, req CreateContractRequest) (*ContractResult, error)

	// CompleteContract ships the goods, archives the deal and credits the
	// contract amount.
	CompleteContract(ctx context.Context, id int64) (*ContractResult, error)

	// ChangeContractStatus moves a contract between lifecycle states;
	// cancellation releases reservations and refunds the creation charge.
	ChangeContractStatus(ctx context.Context, id int64, req ChangeContractStatusRequest) (*ContractResult, error)

	// GetBalance returns the current running balance.
	GetBalance(ctx context.Context) (*BalanceResult, error)

	// ListLedgerEntries returns financial log entries matching the filter.
	ListLedgerEntries(ctx context.Context, filter core.LedgerFilter) (*LedgerListResult, error)

	// ApplyBalanceOperation posts a manual credit or debit.
	ApplyBalanceOperation(ctx context.Context, req BalanceOperationRequest) (*LedgerEntryResult, error)

	// ListOperationTypes returns the operation-type reference data.
	ListOperationTypes(ctx context.Context) (*OperationTypeListResult, error)

	// ListDeals returns the archive of completed contracts.
	ListDeals(ctx context.Context, filter core.DealFilter) (*DealListResult, error)
}
