package app

import (
	"context"

	"arms-backoffice/internal/core"
)

type appService struct {
	warehouses core.WarehouseService
	products   core.ProductService
	production core.ProductionService
	contracts  core.ContractService
	customers  core.CustomerService
	ledger     core.LedgerService
	history    core.HistoryService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	warehouses core.WarehouseService,
	products core.ProductService,
	production core.ProductionService,
	contracts core.ContractService,
	customers core.CustomerService,
	ledger core.LedgerService,
	history core.HistoryService,
) ApplicationService {
	return &appService{
		warehouses: warehouses,
		products:   products,
		production: production,
		contracts:  contracts,
		customers:  customers,
		ledger:     ledger,
		history:    history,
	}
}

func (s *appService) ListWarehouses(ctx context.Context, filter core.WarehouseFilter) (*WarehouseListResult, error) {
	warehouses, err := s.warehouses.GetWarehouses(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &WarehouseListResult{Warehouses: warehouses}, nil
}

func (s *appService) GetWarehouse(ctx context.Context, id int64) (*WarehouseResult, error) {
	w, err := s.warehouses.GetWarehouse(ctx, id)
	if err != nil {
		return nil, err
	}
	return &WarehouseResult{Warehouse: w}, nil
}

func (s *appService) CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*WarehouseResult, error) {
	w, err := s.warehouses.CreateWarehouse(ctx, core.WarehouseInput{
		Name:     req.Name,
		Address:  req.Address,
		Capacity: req.Capacity,
		Type:     core.WarehouseType(req.Type),
	})
	if err != nil {
		return nil, err
	}
	return &WarehouseResult{Warehouse: w}, nil
}

func (s *appService) DisableWarehouse(ctx context.Context, id int64) (*WarehouseResult, error) {
	w, err := s.warehouses.DisableWarehouse(ctx, id)
	if err != nil {
		return nil, err
	}
	return &WarehouseResult{Warehouse: w}, nil
}

func (s *appService) ListProducts(ctx context.Context, filter core.ProductFilter) (*ProductListResult, error) {
	products, err := s.products.GetProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) GetProduct(ctx context.Context, id int64) (*ProductResult, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) AddProduct(ctx context.Context, req AddProductRequest) (*ProductResult, error) {
	p, err := s.products.AddProduct(ctx, core.ProductInput{
		Name:            req.Name,
		Type:            req.Type,
		Subtype:         req.Subtype,
		Characteristics: req.Characteristics,
		StorageLocation: req.StorageLocation,
		Quantity:        req.Quantity,
		OccupiedSpace:   req.OccupiedSpace,
		Price:           req.Price,
		ImageURL:        req.ImageURL,
		ProductionCost:  req.ProductionCost,
		Description:     req.Description,
	})
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*ProductResult, error) {
	p, err := s.products.UpdateProduct(ctx, id, core.ProductUpdate{
		Name:            req.Name,
		Type:            req.Type,
		Subtype:         req.Subtype,
		Characteristics: req.Characteristics,
		StorageLocation: req.StorageLocation,
		Quantity:        req.Quantity,
		ImageURL:        req.ImageURL,
		Description:     req.Description,
	})
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) DisableProduct(ctx context.Context, id int64) (*ProductResult, error) {
	p, err := s.products.DisableProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) Produce(ctx context.Context, req ProduceRequest) (*ProductionResult, error) {
	run, err := s.production.Produce(ctx, req.WarehouseID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}
	return &ProductionResult{Run: run}, nil
}

func (s *appService) ListProducedUnits(ctx context.Context, filter core.ProducedUnitFilter) (*ProducedUnitListResult, error) {
	units, err := s.production.GetProducedUnits(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ProducedUnitListResult{Units: units}, nil
}

func (s *appService) ListCustomers(ctx context.Context, filter core.CustomerFilter) (*CustomerListResult, error) {
	customers, err := s.customers.GetCustomers(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: customers}, nil
}

func (s *appService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*CustomerResult, error) {
	c, err := s.customers.CreateCustomer(ctx, core.CustomerInput{
		Name:        req.Name,
		Type:        req.Type,
		Address:     req.Address,
		ContactInfo: req.ContactInfo,
	})
	if err != nil {
		return nil, err
	}
	return &CustomerResult{Customer: c}, nil
}

func (s *appService) DisableCustomer(ctx context.Context, id int64) (*CustomerResult, error) {
	c, err := s.customers.DisableCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CustomerResult{Customer: c}, nil
}

func (s *appService) ListContracts(ctx context.Context, filter core.ContractFilter) (*ContractListResult, error) {
	contracts, err := s.contracts.GetContracts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ContractListResult{Contracts: contracts}, nil
}

func (s *appService) GetContract(ctx context.Context, id int64) (*ContractResult, error) {
	c, err := s.contracts.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ContractResult{Contract: c}, nil
}

func (s *appService) CreateContract(ctx context.Context, req CreateContractRequest) (*ContractResult, error) {
	c, err := s.contracts.CreateContract(ctx, core.ContractInput{
		CustomerID:     req.CustomerID,
		ContractDate:   req.ContractDate,
		Items:          req.Items,
		Description:    req.Description,
		ContractAmount: req.ContractAmount,
		ContractType:   req.ContractType,
		Currency:       req.Currency,
	})
	if err != nil {
		return nil, err
	}
	return &ContractResult{Contract: c}, nil
}

func (s *appService) CompleteContract(ctx context.Context, id int64) (*ContractResult, error) {
	c, err := s.contracts.CompleteContract(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ContractResult{Contract: c}, nil
}

func (s *appService) ChangeContractStatus(ctx context.Context, id int64, req ChangeContractStatusRequest) (*ContractResult, error) {
	c, err := s.contracts.ChangeContractStatus(ctx, id, core.ContractStatus(req.Status))
	if err != nil {
		return nil, err
	}
	return &ContractResult{Contract: c}, nil
}

func (s *appService) GetBalance(ctx context.Context) (*BalanceResult, error) {
	balance, err := s.ledger.CurrentBalance(ctx)
	if err != nil {
		return nil, err
	}
	return &BalanceResult{Balance: balance}, nil
}

func (s *appService) ListLedgerEntries(ctx context.Context, filter core.LedgerFilter) (*LedgerListResult, error) {
	entries, err := s.ledger.GetEntries(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &LedgerListResult{Entries: entries}, nil
}

func (s *appService) ApplyBalanceOperation(ctx context.Context, req BalanceOperationRequest) (*LedgerEntryResult, error) {
	entry, err := s.ledger.ApplyOperation(ctx, req.Amount, req.OperationTypeID)
	if err != nil {
		return nil, err
	}
	return &LedgerEntryResult{Entry: entry}, nil
}

func (s *appService) ListOperationTypes(ctx context.Context) (*OperationTypeListResult, error) {
	types, err := s.ledger.ListOperationTypes(ctx)
	if err != nil {
		return nil, err
	}
	return &OperationTypeListResult{OperationTypes: types}, nil
}

func (s *appService) ListDeals(ctx context.Context, filter core.DealFilter) (*DealListResult, error) {
	deals, err := s.history.GetDeals(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &DealListResult{Deals: deals}, nil
}
