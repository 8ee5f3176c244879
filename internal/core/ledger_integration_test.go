package core_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"arms-backoffice/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Clean and seed. Warehouse 1 starts with 5 occupied units, which is the
	// footprint of product 3's stock (5 × occupied_space 1).
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE deal_history, financial_situation, produced_objects, supply_contracts, products, customers, warehouses CASCADE;

		INSERT INTO operation_types (name) VALUES
			('Production'), ('Contract Creation'), ('Contract Completion'), ('Contract Cancellation'),
			('Sale'), ('Purchase'), ('Maintenance'), ('Salary'), ('Utilities'), ('Other')
		ON CONFLICT (name) DO NOTHING;

		INSERT INTO warehouses (id, name, address, current_capacity, capacity, warehouse_type) VALUES
			(1, 'Основной склад', 'Тула', 5, 100, 'Обычный'),
			(2, 'Авиационный ангар №1', 'Жуковский', 0, 1000, 'Авиационный ангар'),
			(3, 'Ангар для техники №1', 'Нижний Тагил', 0, 500, 'Ангар для техники');

		INSERT INTO customers (id, name, type, address, contact_info) VALUES
			(1, 'Министерство обороны', 'Государственная организация', 'Москва', 'tender@example.com');

		INSERT INTO products (id, name, product_type, product_subtype, characteristics, storage_location,
			quantity, occupied_space, price, reserved_quantity, production_cost) VALUES
			(1, 'Пистолет ТТ', 'Оружие', 'Пистолеты', '{"калибр": "7,62 мм"}', 1, 0, 2, 25, 0, 10),
			(2, 'Истребитель МиГ-35', 'Военные самолеты', 'Истребители', '{}', 2, 0, 100, 5000, 0, 1000),
			(3, 'Штурмовая винтовка АК-12', 'Оружие', 'Штурмовые винтовки', '{}', 1, 5, 1, 20, 0, 5);

		SELECT setval('warehouses_id_seq', 10);
		SELECT setval('customers_id_seq', 10);
		SELECT setval('products_id_seq', 10);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

// operationTypeID resolves a seeded operation type by name.
func operationTypeID(t *testing.T, pool *pgxpool.Pool, name string) int64 {
	t.Helper()
	var id int64
	if err := pool.QueryRow(context.Background(),
		"SELECT id FROM operation_types WHERE name = $1", name,
	).Scan(&id); err != nil {
		t.Fatalf("Failed to resolve operation type %s: %v", name, err)
	}
	return id
}

// seedBalance funds the ledger with a Sale credit.
func seedBalance(t *testing.T, pool *pgxpool.Pool, ledger *core.Ledger, amount string) {
	t.Helper()
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("Bad amount %s: %v", amount, err)
	}
	if _, err := ledger.ApplyOperation(context.Background(), amt, operationTypeID(t, pool, core.OpSale)); err != nil {
		t.Fatalf("Failed to seed balance: %v", err)
	}
}

// warehouseOccupancy reads current_capacity for assertions.
func warehouseOccupancy(t *testing.T, pool *pgxpool.Pool, id int64) int64 {
	t.Helper()
	var occupancy int64
	if err := pool.QueryRow(context.Background(),
		"SELECT current_capacity FROM warehouses WHERE id = $1", id,
	).Scan(&occupancy); err != nil {
		t.Fatalf("Failed to read warehouse %d occupancy: %v", id, err)
	}
	return occupancy
}

func requireBalance(t *testing.T, ledger *core.Ledger, want string) {
	t.Helper()
	balance, err := ledger.CurrentBalance(context.Background())
	if err != nil {
		t.Fatalf("CurrentBalance failed: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("Balance = %s, want %s", balance, want)
	}
}

func TestLedger_EmptyBalanceIsZero(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	requireBalance(t, ledger, "0")
}

func TestLedger_CreditAndDebitFlow(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	ctx := context.Background()

	entry, err := ledger.ApplyOperation(ctx, decimal.NewFromInt(100), operationTypeID(t, pool, core.OpSale))
	if err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if !entry.Income.Equal(decimal.NewFromInt(100)) || !entry.Expenditure.IsZero() {
		t.Fatalf("Credit entry sides wrong: income %s, expenditure %s", entry.Income, entry.Expenditure)
	}
	if !entry.CurrentBalance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("Credit running balance = %s, want 100", entry.CurrentBalance)
	}

	entry, err = ledger.ApplyOperation(ctx, decimal.NewFromInt(40), operationTypeID(t, pool, core.OpPurchase))
	if err != nil {
		t.Fatalf("Debit failed: %v", err)
	}
	if !entry.Profit.Equal(decimal.NewFromInt(-40)) {
		t.Fatalf("Debit profit = %s, want -40", entry.Profit)
	}
	requireBalance(t, ledger, "60")
}

func TestLedger_InsufficientFundsRejectsDebit(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	seedBalance(t, pool, ledger, "30")

	_, err := ledger.ApplyOperation(context.Background(), decimal.NewFromInt(31), operationTypeID(t, pool, core.OpSalary))
	var conflict *core.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError, got %v", err)
	}

	// Nothing was appended.
	entries, err := ledger.GetEntries(context.Background(), core.LedgerFilter{})
	if err != nil {
		t.Fatalf("GetEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Ledger has %d entries, want 1", len(entries))
	}
	requireBalance(t, ledger, "30")
}

func TestLedger_RejectsReservedOperationTypes(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	seedBalance(t, pool, ledger, "100")

	for _, name := range []string{core.OpProduction, core.OpContractCreation, core.OpContractCompletion, core.OpContractCancellation} {
		_, err := ledger.ApplyOperation(context.Background(), decimal.NewFromInt(10), operationTypeID(t, pool, name))
		var validation *core.ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("Operation type %s: expected ValidationError, got %v", name, err)
		}
	}
}

// requireBalanceChain walks the ledger oldest to newest and checks every
// running balance against the sum of the sides before it.
func requireBalanceChain(t *testing.T, ledger *core.Ledger) {
	t.Helper()
	entries, err := ledger.GetEntries(context.Background(), core.LedgerFilter{Limit: 100})
	if err != nil {
		t.Fatalf("GetEntries failed: %v", err)
	}
	running := decimal.Zero
	for i := len(entries) - 1; i >= 0; i-- {
		running = running.Add(entries[i].Profit)
		if !entries[i].CurrentBalance.Equal(running) {
			t.Fatalf("Entry %d running balance = %s, want %s", entries[i].ID, entries[i].CurrentBalance, running)
		}
	}
}

func TestLedger_ConcurrentDebitsSerialize(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	seedBalance(t, pool, ledger, "100")
	purchaseID := operationTypeID(t, pool, core.OpPurchase)

	// Eight debits of 20 race for a balance of 100; exactly five can clear.
	const workers = 8
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.ApplyOperation(context.Background(), decimal.NewFromInt(20), purchaseID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	cleared := 0
	for err := range results {
		if err == nil {
			cleared++
			continue
		}
		var conflict *core.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("Expected ConflictError, got %v", err)
		}
	}
	if cleared != 5 {
		t.Fatalf("%d debits cleared, want 5", cleared)
	}
	requireBalance(t, ledger, "0")
	requireBalanceChain(t, ledger)
}

func TestLedger_ConcurrentFirstAppends(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	saleID := operationTypeID(t, pool, core.OpSale)

	// The ledger starts empty, so the first appends have no tail row to
	// contend on and must still serialize.
	const workers = 4
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.ApplyOperation(context.Background(), decimal.NewFromInt(25), saleID); err != nil {
				t.Errorf("Credit failed: %v", err)
			}
		}()
	}
	wg.Wait()

	requireBalance(t, ledger, "100")
	requireBalanceChain(t, ledger)
}

func TestLedger_UnknownOperationType(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	_, err := ledger.ApplyOperation(context.Background(), decimal.NewFromInt(10), 99999)
	var validation *core.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

func TestLedger_EntriesFilterByOperationType(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	ctx := context.Background()
	saleID := operationTypeID(t, pool, core.OpSale)

	seedBalance(t, pool, ledger, "100")
	if _, err := ledger.ApplyOperation(ctx, decimal.NewFromInt(20), operationTypeID(t, pool, core.OpUtilities)); err != nil {
		t.Fatalf("Debit failed: %v", err)
	}

	entries, err := ledger.GetEntries(ctx, core.LedgerFilter{OperationTypeID: &saleID})
	if err != nil {
		t.Fatalf("GetEntries failed: %v", err)
	}
	if len(entries) != 1 || entries[0].OperationTypeID != saleID {
		t.Fatalf("Filtered entries wrong: %+v", entries)
	}
}

func TestLedger_ListOperationTypes(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	types, err := ledger.ListOperationTypes(context.Background())
	if err != nil {
		t.Fatalf("ListOperationTypes failed: %v", err)
	}
	if len(types) != 10 {
		t.Fatalf("Got %d operation types, want 10", len(types))
	}
}
