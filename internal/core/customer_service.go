package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerService manages counterparty master data.
type CustomerService interface {
	CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error)
	GetCustomers(ctx context.Context, filter CustomerFilter) ([]Customer, error)
	GetCustomer(ctx context.Context, id int64) (*Customer, error)
	DisableCustomer(ctx context.Context, id int64) (*Customer, error)
}

type CustomerInput struct {
	Name        string
	Type        string
	Address     string
	ContactInfo string
}

type CustomerFilter struct {
	Name     string
	Type     string
	Disabled *bool
	Page     int
	Limit    int
}

type customerService struct {
	pool *pgxpool.Pool
}

func NewCustomerService(pool *pgxpool.Pool) CustomerService {
	return &customerService{pool: pool}
}

func (s *customerService) CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error) {
	if input.Name == "" {
		return nil, newValidationError("customer name is required")
	}
	if !IsValidCustomerType(input.Type) {
		return nil, newValidationError("unknown customer type %q", input.Type)
	}

	var c Customer
	err := s.pool.QueryRow(ctx, `
		INSERT INTO customers (name, type, address, contact_info)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, type, address, contact_info, disable
	`, input.Name, input.Type, input.Address, input.ContactInfo).Scan(
		&c.ID, &c.Name, &c.Type, &c.Address, &c.ContactInfo, &c.Disabled,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert customer: %w", err)
	}
	return &c, nil
}

func (s *customerService) GetCustomers(ctx context.Context, filter CustomerFilter) ([]Customer, error) {
	var f listFilter
	if filter.Name != "" {
		f.match("name", filter.Name)
	}
	if filter.Type != "" {
		f.equal("type", filter.Type)
	}
	if filter.Disabled != nil {
		f.equal("disable", *filter.Disabled)
	}

	query := `
		SELECT id, name, type, address, contact_info, disable
		FROM customers` + f.clause() + `
		ORDER BY id` + f.paginate(filter.Page, filter.Limit)

	rows, err := s.pool.Query(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Address, &c.ContactInfo, &c.Disabled); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *customerService) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	var c Customer
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, type, address, contact_info, disable
		FROM customers
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Type, &c.Address, &c.ContactInfo, &c.Disabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newNotFoundError("customer %d not found", id)
		}
		return nil, fmt.Errorf("failed to fetch customer %d: %w", id, err)
	}
	return &c, nil
}

// DisableCustomer retires a counterparty. Blocked while it has contracts
// still in flight.
func (s *customerService) DisableCustomer(ctx context.Context, id int64) (*Customer, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var c Customer
	err = tx.QueryRow(ctx, `
		SELECT id, name, type, address, contact_info, disable
		FROM customers
		WHERE id = $1 AND disable = false
		FOR UPDATE
	`, id).Scan(&c.ID, &c.Name, &c.Type, &c.Address, &c.ContactInfo, &c.Disabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newNotFoundError("customer %d not found", id)
		}
		return nil, fmt.Errorf("failed to lock customer %d: %w", id, err)
	}

	var open int64
	err = tx.QueryRow(ctx,
		"SELECT count(*) FROM supply_contracts WHERE customer_id = $1 AND disable = false", id,
	).Scan(&open)
	if err != nil {
		return nil, fmt.Errorf("failed to count open contracts: %w", err)
	}
	if open > 0 {
		return nil, newConflictError("customer %d has %d contracts in flight", id, open)
	}

	if _, err := tx.Exec(ctx, "UPDATE customers SET disable = true WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to disable customer %d: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit customer disable: %w", err)
	}
	c.Disabled = true
	return &c, nil
}
