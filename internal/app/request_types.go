package app

import (
	"github.com/shopspring/decimal"

	"arms-backoffice/internal/core"
)

type CreateWarehouseRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Capacity int64  `json:"capacity"`
	Type     string `json:"warehouse_type"`
}

type AddProductRequest struct {
	Name            string          `json:"name"`
	Type            string          `json:"product_type"`
	Subtype         string          `json:"product_subtype"`
	Characteristics map[string]any  `json:"characteristics"`
	StorageLocation int64           `json:"storage_location"`
	Quantity        int64           `json:"quantity"`
	OccupiedSpace   int64           `json:"occupied_space"`
	Price           decimal.Decimal `json:"price"`
	ImageURL        string          `json:"image_url"`
	ProductionCost  decimal.Decimal `json:"production_cost"`
	Description     string          `json:"product_description"`
}

type UpdateProductRequest struct {
	Name            string         `json:"name"`
	Type            string         `json:"product_type"`
	Subtype         string         `json:"product_subtype"`
	Characteristics map[string]any `json:"characteristics"`
	StorageLocation int64          `json:"storage_location"`
	Quantity        int64          `json:"quantity"`
	ImageURL        string         `json:"image_url"`
	Description     string         `json:"product_description"`
}

type ProduceRequest struct {
	WarehouseID int64 `json:"warehouse_id"`
	ProductID   int64 `json:"product_id"`
	Quantity    int64 `json:"quantity"`
}

type CreateCustomerRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Address     string `json:"address"`
	ContactInfo string `json:"contact_info"`
}

type CreateContractRequest struct {
	CustomerID     int64               `json:"customer_id"`
	ContractDate   string              `json:"contract_date"`
	Items          []core.ContractItem `json:"items"`
	Description    string              `json:"description"`
	ContractAmount decimal.Decimal     `json:"contract_amount"`
	ContractType   string              `json:"contract_type"`
	Currency       string              `json:"currency"`
}

type ChangeContractStatusRequest struct {
	Status string `json:"contract_status"`
}

type BalanceOperationRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	OperationTypeID int64           `json:"operation_type_id"`
}
