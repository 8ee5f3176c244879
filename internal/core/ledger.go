package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerService is the append-only financial log. The newest non-disabled
// row carries the authoritative running balance; manual operations classify
// by operation type into a credit or debit bucket, and the engine services
// post their own entries through the Tx-scoped append.
type LedgerService interface {
	CurrentBalance(ctx context.Context) (decimal.Decimal, error)
	ApplyOperation(ctx context.Context, amount decimal.Decimal, operationTypeID int64) (*LedgerEntry, error)
	GetEntries(ctx context.Context, filter LedgerFilter) ([]LedgerEntry, error)
	ListOperationTypes(ctx context.Context) ([]OperationType, error)
}

// Manual operation buckets. Everything else in operation_types belongs to
// the engine and is rejected for ApplyOperation.
var (
	creditOperations = map[string]bool{OpSale: true, OpOther: true}
	debitOperations  = map[string]bool{OpPurchase: true, OpMaintenance: true, OpSalary: true, OpUtilities: true}
)

// LedgerFilter narrows GetEntries. Nil pointer fields are not applied.
type LedgerFilter struct {
	OperationTypeID *int64
	DateFrom        string
	DateTo          string
	Page            int
	Limit           int
}

// ledgerAppendLockID keys the transaction-scoped advisory lock that
// serializes ledger appends.
const ledgerAppendLockID = 740031

type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// CurrentBalance returns the running balance from the tail entry, or zero
// when the ledger is empty.
func (l *Ledger) CurrentBalance(ctx context.Context) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := l.pool.QueryRow(ctx, `
		SELECT current_balance
		FROM financial_situation
		WHERE disable = false
		ORDER BY report_date DESC, id DESC
		LIMIT 1
	`).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read ledger tail: %w", err)
	}
	return balance, nil
}

// balanceForAppendTx takes the append lock for the rest of the transaction,
// then reads the tail balance. The advisory lock is what serializes writers:
// locking the tail row cannot, since a concurrent append leaves the old tail
// row untouched and an empty ledger has no row to lock at all.
func (l *Ledger) balanceForAppendTx(ctx context.Context, tx pgx.Tx) (decimal.Decimal, error) {
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", ledgerAppendLockID); err != nil {
		return decimal.Zero, fmt.Errorf("failed to acquire ledger append lock: %w", err)
	}

	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `
		SELECT current_balance
		FROM financial_situation
		WHERE disable = false
		ORDER BY report_date DESC, id DESC
		LIMIT 1
	`).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read ledger tail for append: %w", err)
	}
	return balance, nil
}

// appendTx appends one entry inside the caller's transaction, resolving the
// operation type by name and rolling the running balance forward under the
// append lock. Used by the production and contract engines.
func (l *Ledger) appendTx(ctx context.Context, tx pgx.Tx, income, expenditure decimal.Decimal, operationName string) (*LedgerEntry, error) {
	var opID int64
	err := tx.QueryRow(ctx, "SELECT id FROM operation_types WHERE name = $1", operationName).Scan(&opID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newConfigurationError("operation type %q is not seeded", operationName)
		}
		return nil, fmt.Errorf("failed to resolve operation type %q: %w", operationName, err)
	}

	balance, err := l.balanceForAppendTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	return l.insertEntryTx(ctx, tx, income, expenditure, opID, balance)
}

func (l *Ledger) insertEntryTx(ctx context.Context, tx pgx.Tx, income, expenditure decimal.Decimal, opID int64, balance decimal.Decimal) (*LedgerEntry, error) {
	profit := income.Sub(expenditure)
	newBalance := balance.Add(profit)

	var e LedgerEntry
	err := tx.QueryRow(ctx, `
		INSERT INTO financial_situation (report_date, income, expenditure, profit, current_balance, operation_type_id)
		VALUES (CURRENT_DATE, $1, $2, $3, $4, $5)
		RETURNING id, report_date::text, disable, income, expenditure, profit, current_balance, operation_type_id
	`, income, expenditure, profit, newBalance, opID).Scan(
		&e.ID, &e.ReportDate, &e.Disabled, &e.Income, &e.Expenditure, &e.Profit, &e.CurrentBalance, &e.OperationTypeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return &e, nil
}

// ApplyOperation posts a manual balance operation. The operation type picks
// the side: Sale/Other credit the balance, Purchase/Maintenance/Salary/
// Utilities debit it and must be covered by the current balance. Types
// reserved for the engine are rejected.
func (l *Ledger) ApplyOperation(ctx context.Context, amount decimal.Decimal, operationTypeID int64) (*LedgerEntry, error) {
	if amount.IsNegative() || amount.IsZero() {
		return nil, newValidationError("operation amount must be positive, got %s", amount)
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var opName string
	err = tx.QueryRow(ctx, "SELECT name FROM operation_types WHERE id = $1", operationTypeID).Scan(&opName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newValidationError("unknown operation type %d", operationTypeID)
		}
		return nil, fmt.Errorf("failed to resolve operation type %d: %w", operationTypeID, err)
	}

	balance, err := l.balanceForAppendTx(ctx, tx)
	if err != nil {
		return nil, err
	}

	var entry *LedgerEntry
	switch {
	case creditOperations[opName]:
		entry, err = l.insertEntryTx(ctx, tx, amount, decimal.Zero, operationTypeID, balance)
	case debitOperations[opName]:
		if amount.GreaterThan(balance) {
			return nil, newConflictError("insufficient funds for %s: required %s, available %s",
				opName, amount.StringFixed(2), balance.StringFixed(2))
		}
		entry, err = l.insertEntryTx(ctx, tx, decimal.Zero, amount, operationTypeID, balance)
	default:
		return nil, newValidationError("operation type %q is reserved for internal postings", opName)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit balance operation: %w", err)
	}
	return entry, nil
}

func (l *Ledger) GetEntries(ctx context.Context, filter LedgerFilter) ([]LedgerEntry, error) {
	var f listFilter
	f.equal("disable", false)
	if filter.OperationTypeID != nil {
		f.equal("operation_type_id", *filter.OperationTypeID)
	}
	if filter.DateFrom != "" {
		f.atLeast("report_date", filter.DateFrom)
	}
	if filter.DateTo != "" {
		f.where("report_date <= $%d", filter.DateTo)
	}

	query := `
		SELECT id, report_date::text, disable, income, expenditure, profit, current_balance, operation_type_id
		FROM financial_situation` + f.clause() + `
		ORDER BY report_date DESC, id DESC` + f.paginate(filter.Page, filter.Limit)

	rows, err := l.pool.Query(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.ReportDate, &e.Disabled, &e.Income, &e.Expenditure, &e.Profit, &e.CurrentBalance, &e.OperationTypeID); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (l *Ledger) ListOperationTypes(ctx context.Context) ([]OperationType, error) {
	rows, err := l.pool.Query(ctx, "SELECT id, name FROM operation_types ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query operation types: %w", err)
	}
	defer rows.Close()

	var types []OperationType
	for rows.Next() {
		var t OperationType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan operation type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}
