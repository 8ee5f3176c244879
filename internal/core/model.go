package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// WarehouseType is the storage class of a warehouse. Values are the Russian
// strings of the production data set and appear verbatim on the wire.
type WarehouseType string

const (
	WarehouseStandard       WarehouseType = "Обычный"
	WarehouseVehicleHangar  WarehouseType = "Ангар для техники"
	WarehouseAircraftHangar WarehouseType = "Авиационный ангар"

	// WarehouseAny marks product types without a storage-class restriction.
	WarehouseAny WarehouseType = ""
)

// ContractStatus is the lifecycle state of a supply contract.
type ContractStatus string

const (
	ContractPending    ContractStatus = "Ожидает подтверждения"
	ContractInProgress ContractStatus = "В процессе выполнения"
	ContractCompleted  ContractStatus = "Выполнен"
	ContractCancelled  ContractStatus = "Отменен"
)

// Terminal reports whether no further transitions are allowed from s.
func (s ContractStatus) Terminal() bool {
	return s == ContractCompleted || s == ContractCancelled
}

// Operation type names as seeded in operation_types. Sale and Other credit
// the balance; Purchase, Maintenance, Salary and Utilities debit it and are
// gated on sufficiency. Production and the three Contract* types are posted
// by the engine only and rejected for manual balance operations.
const (
	OpProduction           = "Production"
	OpContractCreation     = "Contract Creation"
	OpContractCompletion   = "Contract Completion"
	OpContractCancellation = "Contract Cancellation"
	OpSale                 = "Sale"
	OpPurchase             = "Purchase"
	OpMaintenance          = "Maintenance"
	OpSalary               = "Salary"
	OpUtilities            = "Utilities"
	OpOther                = "Other"
)

type Warehouse struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	Address         string        `json:"address"`
	CurrentCapacity int64         `json:"current_capacity"`
	Capacity        int64         `json:"capacity"`
	Type            WarehouseType `json:"warehouse_type"`
	Disabled        bool          `json:"disable"`
}

// FreeCapacity returns the space still available in the warehouse.
func (w *Warehouse) FreeCapacity() int64 {
	return w.Capacity - w.CurrentCapacity
}

type Product struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Type             string          `json:"product_type"`
	Subtype          string          `json:"product_subtype"`
	Characteristics  map[string]any  `json:"characteristics"`
	Disabled         bool            `json:"disable"`
	StorageLocation  int64           `json:"storage_location"`
	Quantity         int64           `json:"quantity"`
	OccupiedSpace    int64           `json:"occupied_space"`
	Price            decimal.Decimal `json:"price"`
	ReservedQuantity int64           `json:"reserved_quantity"`
	ImageURL         string          `json:"image_url"`
	ProductionCost   decimal.Decimal `json:"production_cost"`
	Description      string          `json:"product_description"`
}

// ProducedUnit is an individually serialized manufactured item. Token is a
// signed snapshot of the product attributes at mint time; ContractID is nil
// while the unit sits unreserved in its warehouse.
type ProducedUnit struct {
	ID              int64           `json:"id"`
	StorageLocation int64           `json:"storage_location"`
	ContractID      *int64          `json:"contract_id"`
	ProductID       int64           `json:"product_id"`
	SerialNumber    string          `json:"serial_number"`
	Token           string          `json:"jwt_token"`
	ProductionCost  decimal.Decimal `json:"production_cost"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ContractItem is one line of a supply contract. Exactly one of the two
// shapes is populated: an aggregate reservation (ProductID + Quantity) or a
// reference to a specific produced unit (SerialNumber).
type ContractItem struct {
	ProductID    int64  `json:"product_id,omitempty"`
	Quantity     int64  `json:"quantity,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
}

// Serialized reports whether the line references a specific produced unit.
func (i ContractItem) Serialized() bool {
	return i.SerialNumber != ""
}

type SupplyContract struct {
	ID             int64           `json:"id"`
	CustomerID     int64           `json:"customer_id"`
	ContractDate   string          `json:"contract_date"`
	Disabled       bool            `json:"disable"`
	Items          []ContractItem  `json:"items"`
	Description    string          `json:"description"`
	ContractAmount decimal.Decimal `json:"contract_amount"`
	ContractType   string          `json:"contract_type"`
	Currency       string          `json:"currency"`
	Status         ContractStatus  `json:"contract_status"`
	ProductionCost decimal.Decimal `json:"production_cost"`
}

// LedgerEntry is one append-only row of the financial log. CurrentBalance is
// the running total after this entry; the newest non-disabled entry is the
// authoritative balance.
type LedgerEntry struct {
	ID              int64           `json:"id"`
	ReportDate      string          `json:"report_date"`
	Disabled        bool            `json:"disable"`
	Income          decimal.Decimal `json:"income"`
	Expenditure     decimal.Decimal `json:"expenditure"`
	Profit          decimal.Decimal `json:"profit"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	OperationTypeID int64           `json:"operation_type_id"`
}

type OperationType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Customer struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Address     string `json:"address"`
	ContactInfo string `json:"contact_info"`
	Disabled    bool   `json:"disable"`
}

// DealRecord is the archived snapshot of a completed contract.
type DealRecord struct {
	ID             int64           `json:"id"`
	ContractID     int64           `json:"contract_id"`
	CustomerID     int64           `json:"customer_id"`
	ContractAmount decimal.Decimal `json:"contract_amount"`
	ProductionCost decimal.Decimal `json:"production_cost"`
	Profit         decimal.Decimal `json:"profit"`
	CompletedAt    time.Time       `json:"completed_at"`
}
