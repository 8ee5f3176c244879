package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const productColumns = `id, name, product_type, product_subtype, characteristics, disable,
	storage_location, quantity, occupied_space, price, reserved_quantity,
	image_url, production_cost, product_description`

// ProductService manages the catalog. Every quantity change moves the owning
// warehouse's occupancy inside the same transaction, so stored stock and
// current_capacity never drift apart.
type ProductService interface {
	AddProduct(ctx context.Context, input ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id int64, input ProductUpdate) (*Product, error)
	DisableProduct(ctx context.Context, id int64) (*Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	GetProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
}

type ProductInput struct {
	Name            string
	Type            string
	Subtype         string
	Characteristics map[string]any
	StorageLocation int64
	Quantity        int64
	OccupiedSpace   int64
	Price           decimal.Decimal
	ImageURL        string
	ProductionCost  decimal.Decimal
	Description     string
}

// ProductUpdate carries the mutable attributes. Price and occupied space are
// fixed at creation; quantity changes settle against warehouse occupancy.
type ProductUpdate struct {
	Name            string
	Type            string
	Subtype         string
	Characteristics map[string]any
	StorageLocation int64
	Quantity        int64
	ImageURL        string
	Description     string
}

type ProductFilter struct {
	Name            string
	Type            string
	Subtype         string
	StorageLocation *int64
	Disabled        *bool
	MinQuantity     *int64
	MinPrice        *decimal.Decimal
	Page            int
	Limit           int
}

type productService struct {
	pool       *pgxpool.Pool
	warehouses WarehouseService
}

func NewProductService(pool *pgxpool.Pool, warehouses WarehouseService) ProductService {
	return &productService{pool: pool, warehouses: warehouses}
}

func validateCatalogEntry(productType, productSubtype string) error {
	if !IsValidProductType(productType) {
		return newValidationError("unknown product type %q", productType)
	}
	if !IsValidProductSubtype(productType, productSubtype) {
		return newValidationError("subtype %q is not valid for product type %q", productSubtype, productType)
	}
	return nil
}

func (s *productService) AddProduct(ctx context.Context, input ProductInput) (*Product, error) {
	if input.Name == "" {
		return nil, newValidationError("product name is required")
	}
	if err := validateCatalogEntry(input.Type, input.Subtype); err != nil {
		return nil, err
	}
	if input.OccupiedSpace <= 0 {
		return nil, newValidationError("occupied space must be positive, got %d", input.OccupiedSpace)
	}
	if input.Quantity < 0 {
		return nil, newValidationError("quantity cannot be negative, got %d", input.Quantity)
	}
	if input.Price.IsNegative() || input.ProductionCost.IsNegative() {
		return nil, newValidationError("price and production cost cannot be negative")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	warehouse, err := s.warehouses.GetForUpdateTx(ctx, tx, input.StorageLocation)
	if err != nil {
		return nil, err
	}
	if !CompatibleStorage(input.Type, warehouse.Type) {
		return nil, newConflictError("product type %q requires a %q warehouse, %d is %q",
			input.Type, RequiredWarehouseType(input.Type), warehouse.ID, warehouse.Type)
	}

	if input.Quantity > 0 {
		if _, err := s.warehouses.ReserveSpaceTx(ctx, tx, warehouse.ID, input.Quantity*input.OccupiedSpace); err != nil {
			return nil, err
		}
	}

	characteristics := input.Characteristics
	if characteristics == nil {
		characteristics = map[string]any{}
	}

	var p Product
	err = tx.QueryRow(ctx, `
		INSERT INTO products (name, product_type, product_subtype, characteristics, storage_location,
			quantity, occupied_space, price, reserved_quantity, image_url, production_cost, product_description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10, $11)
		RETURNING `+productColumns,
		input.Name, input.Type, input.Subtype, characteristics, input.StorageLocation,
		input.Quantity, input.OccupiedSpace, input.Price, input.ImageURL, input.ProductionCost, input.Description,
	).Scan(scanProductFields(&p)...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product creation: %w", err)
	}
	return &p, nil
}

// UpdateProduct rewrites the mutable attributes. Quantity deltas settle
// against the warehouse; a move between warehouses releases all space at the
// old location and admits the full footprint at the new one.
func (s *productService) UpdateProduct(ctx context.Context, id int64, input ProductUpdate) (*Product, error) {
	if input.Name == "" {
		return nil, newValidationError("product name is required")
	}
	if err := validateCatalogEntry(input.Type, input.Subtype); err != nil {
		return nil, err
	}
	if input.Quantity < 0 {
		return nil, newValidationError("quantity cannot be negative, got %d", input.Quantity)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := s.getForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if input.Quantity < current.ReservedQuantity {
		return nil, newConflictError("quantity %d is below the %d units reserved by open contracts",
			input.Quantity, current.ReservedQuantity)
	}

	target := input.StorageLocation
	if target == 0 {
		target = current.StorageLocation
	}
	warehouse, err := s.warehouses.GetForUpdateTx(ctx, tx, target)
	if err != nil {
		return nil, err
	}
	if !CompatibleStorage(input.Type, warehouse.Type) {
		return nil, newConflictError("product type %q requires a %q warehouse, %d is %q",
			input.Type, RequiredWarehouseType(input.Type), warehouse.ID, warehouse.Type)
	}

	if target == current.StorageLocation {
		delta := (input.Quantity - current.Quantity) * current.OccupiedSpace
		if delta != 0 {
			if _, err := s.warehouses.ReserveSpaceTx(ctx, tx, target, delta); err != nil {
				return nil, err
			}
		}
	} else {
		if _, err := s.warehouses.ReserveSpaceTx(ctx, tx, current.StorageLocation, -current.Quantity*current.OccupiedSpace); err != nil {
			return nil, err
		}
		if _, err := s.warehouses.ReserveSpaceTx(ctx, tx, target, input.Quantity*current.OccupiedSpace); err != nil {
			return nil, err
		}
	}

	characteristics := input.Characteristics
	if characteristics == nil {
		characteristics = current.Characteristics
	}

	var p Product
	err = tx.QueryRow(ctx, `
		UPDATE products
		SET name = $1, product_type = $2, product_subtype = $3, characteristics = $4,
			storage_location = $5, quantity = $6, image_url = $7, product_description = $8
		WHERE id = $9
		RETURNING `+productColumns,
		input.Name, input.Type, input.Subtype, characteristics,
		target, input.Quantity, input.ImageURL, input.Description, id,
	).Scan(scanProductFields(&p)...)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product update: %w", err)
	}
	return &p, nil
}

// DisableProduct retires a catalog entry and releases its warehouse space.
// Blocked while open contracts hold reservations against it.
func (s *productService) DisableProduct(ctx context.Context, id int64) (*Product, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := s.getForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if p.ReservedQuantity > 0 {
		return nil, newConflictError("product %d has %d units reserved by open contracts", id, p.ReservedQuantity)
	}

	if p.Quantity > 0 {
		if _, err := s.warehouses.ReserveSpaceTx(ctx, tx, p.StorageLocation, -p.Quantity*p.OccupiedSpace); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, "UPDATE products SET disable = true WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to disable product %d: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product disable: %w", err)
	}
	p.Disabled = true
	return p, nil
}

func (s *productService) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := s.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id,
	).Scan(scanProductFields(&p)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newNotFoundError("product %d not found", id)
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return &p, nil
}

func (s *productService) GetProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	var f listFilter
	if filter.Name != "" {
		f.match("name", filter.Name)
	}
	if filter.Type != "" {
		f.equal("product_type", filter.Type)
	}
	if filter.Subtype != "" {
		f.equal("product_subtype", filter.Subtype)
	}
	if filter.StorageLocation != nil {
		f.equal("storage_location", *filter.StorageLocation)
	}
	if filter.Disabled != nil {
		f.equal("disable", *filter.Disabled)
	}
	if filter.MinQuantity != nil {
		f.atLeast("quantity", *filter.MinQuantity)
	}
	if filter.MinPrice != nil {
		f.atLeast("price", *filter.MinPrice)
	}

	query := "SELECT " + productColumns + " FROM products" + f.clause() +
		" ORDER BY id" + f.paginate(filter.Page, filter.Limit)

	rows, err := s.pool.Query(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(scanProductFields(&p)...); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *productService) getForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*Product, error) {
	var p Product
	err := tx.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1 AND disable = false FOR UPDATE", id,
	).Scan(scanProductFields(&p)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newNotFoundError("product %d not found", id)
		}
		return nil, fmt.Errorf("failed to lock product %d: %w", id, err)
	}
	return &p, nil
}

func scanProductFields(p *Product) []any {
	return []any{
		&p.ID, &p.Name, &p.Type, &p.Subtype, &p.Characteristics, &p.Disabled,
		&p.StorageLocation, &p.Quantity, &p.OccupiedSpace, &p.Price, &p.ReservedQuantity,
		&p.ImageURL, &p.ProductionCost, &p.Description,
	}
}
