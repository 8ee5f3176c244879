package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HistoryService reads the archive of completed deals.
type HistoryService interface {
	GetDeals(ctx context.Context, filter DealFilter) ([]DealRecord, error)
}

type DealFilter struct {
	CustomerID *int64
	ContractID *int64
	From       string
	Page       int
	Limit      int
}

type historyService struct {
	pool *pgxpool.Pool
}

func NewHistoryService(pool *pgxpool.Pool) HistoryService {
	return &historyService{pool: pool}
}

func (s *historyService) GetDeals(ctx context.Context, filter DealFilter) ([]DealRecord, error) {
	var f listFilter
	f.equal("disable", false)
	if filter.CustomerID != nil {
		f.equal("customer_id", *filter.CustomerID)
	}
	if filter.ContractID != nil {
		f.equal("contract_id", *filter.ContractID)
	}
	if filter.From != "" {
		f.atLeast("completed_at", filter.From)
	}

	query := `
		SELECT id, contract_id, customer_id, contract_amount, production_cost, profit, completed_at
		FROM deal_history` + f.clause() + `
		ORDER BY completed_at DESC, id DESC` + f.paginate(filter.Page, filter.Limit)

	rows, err := s.pool.Query(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deal history: %w", err)
	}
	defer rows.Close()

	var deals []DealRecord
	for rows.Next() {
		var d DealRecord
		if err := rows.Scan(&d.ID, &d.ContractID, &d.CustomerID, &d.ContractAmount, &d.ProductionCost, &d.Profit, &d.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deal record: %w", err)
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}
