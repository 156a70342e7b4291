/*
Package sqlite provides the SQLite-backed persistence for calculation
history and monthly correction-index factors.

PURPOSE:
  The engines are pure; everything stateful lives here. Two concerns:
  1. Calculation history - input, result and report of every run, keyed
     by a caller-scoped owner id, so the surrounding application can list
     and replay past calculations.
  2. Index factors - the monthly correction factors consumed through
     calc.FactorProvider. The Store itself implements that interface.

KEY TABLES:
  calculations:  one row per engine run (input/result stored as JSON)
  index_factors: monthly factor per (index code, YYYY-MM), upserted

CONCURRENCY:
  sync.RWMutex for thread-safety, WAL journal mode for concurrent readers.

USAGE:
  store, err := sqlite.New("./data/juriscalc.db")
  ...
  result, err := debt.Compute(terms, asOf, store) // store as FactorProvider

SEE ALSO:
  - calc/index.go: FactorProvider contract and month convention
  - api/handlers.go: the only writer of calculation rows
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/juriscalc/calc-engine/calc"
)

// Store implements calculation-history persistence and calc.FactorProvider.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at the given path. Use ":memory:"
// for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Calculation history (append + delete; results are never edited)
	CREATE TABLE IF NOT EXISTS calculations (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		input_json TEXT NOT NULL,
		result_json TEXT NOT NULL,
		report TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_calculations_owner
		ON calculations(owner_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_calculations_kind
		ON calculations(kind);

	-- Monthly correction factors, one row per (index, month)
	CREATE TABLE IF NOT EXISTS index_factors (
		code TEXT NOT NULL,
		month TEXT NOT NULL,
		factor TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (code, month)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CALCULATION HISTORY
// =============================================================================

// CalculationRecord is one stored engine run.
type CalculationRecord struct {
	ID         string
	OwnerID    string
	Kind       string // debt | arrears | sentence
	InputJSON  string
	ResultJSON string
	Report     string
	CreatedAt  time.Time
}

// SaveCalculation persists a run. A missing ID is generated.
func (s *Store) SaveCalculation(ctx context.Context, rec *CalculationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO calculations (id, owner_id, kind, input_json, result_json, report, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.OwnerID, rec.Kind,
		rec.InputJSON, rec.ResultJSON, rec.Report,
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save calculation: %w", err)
	}
	return nil
}

// GetCalculation retrieves a run by id. Returns calc.ErrNotFound when the
// id is unknown.
func (s *Store) GetCalculation(ctx context.Context, id string) (*CalculationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec CalculationRecord
	var createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, kind, input_json, result_json, report, created_at
		 FROM calculations WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.OwnerID, &rec.Kind, &rec.InputJSON, &rec.ResultJSON, &rec.Report, &createdAt)

	if err == sql.ErrNoRows {
		return nil, calc.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &rec, nil
}

// ListCalculations returns runs for an owner, newest first. An empty owner
// lists every run (admin view).
func (s *Store) ListCalculations(ctx context.Context, ownerID string, limit int) ([]CalculationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	var (
		rows *sql.Rows
		err  error
	)
	if ownerID != "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, owner_id, kind, input_json, result_json, report, created_at
			 FROM calculations WHERE owner_id = ?
			 ORDER BY created_at DESC LIMIT ?`, ownerID, limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, owner_id, kind, input_json, result_json, report, created_at
			 FROM calculations
			 ORDER BY created_at DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []CalculationRecord
	for rows.Next() {
		var rec CalculationRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Kind, &rec.InputJSON, &rec.ResultJSON, &rec.Report, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteCalculation removes a run. Deleting an unknown id is not an error.
func (s *Store) DeleteCalculation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM calculations WHERE id = ?", id)
	return err
}

// =============================================================================
// INDEX FACTORS (calc.FactorProvider)
// =============================================================================

// FactorRecord is one stored monthly factor.
type FactorRecord struct {
	Code      calc.IndexCode
	Month     string // YYYY-MM
	Factor    decimal.Decimal
	UpdatedAt time.Time
}

// SaveFactor upserts the monthly factor for (code, month).
func (s *Store) SaveFactor(ctx context.Context, code calc.IndexCode, month string, factor decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveFactorLocked(ctx, code, month, factor)
}

// SaveFactors upserts a batch atomically.
func (s *Store) SaveFactors(ctx context.Context, code calc.IndexCode, factors map[string]decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO index_factors (code, month, factor, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(code, month) DO UPDATE SET
			factor = excluded.factor,
			updated_at = excluded.updated_at
	`
	now := time.Now().UTC().Format(time.RFC3339)
	for month, factor := range factors {
		if _, err := tx.ExecContext(ctx, query, string(code), month, factor.String(), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) saveFactorLocked(ctx context.Context, code calc.IndexCode, month string, factor decimal.Decimal) error {
	query := `
		INSERT INTO index_factors (code, month, factor, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(code, month) DO UPDATE SET
			factor = excluded.factor,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		string(code), month, factor.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ListFactors returns every stored factor for an index, oldest month first.
func (s *Store) ListFactors(ctx context.Context, code calc.IndexCode) ([]FactorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT code, month, factor, updated_at FROM index_factors
		 WHERE code = ? ORDER BY month ASC`, string(code))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []FactorRecord
	for rows.Next() {
		var rec FactorRecord
		var codeStr, factorStr, updatedAt string
		if err := rows.Scan(&codeStr, &rec.Month, &factorStr, &updatedAt); err != nil {
			return nil, err
		}
		rec.Code = calc.IndexCode(codeStr)
		rec.Factor, _ = decimal.NewFromString(factorStr)
		rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Factor implements calc.FactorProvider against the index_factors table.
func (s *Store) Factor(code calc.IndexCode, from, to calc.Date) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return calc.CumulativeFactor(code, from, to, func(month string) (decimal.Decimal, bool) {
		var factorStr string
		err := s.db.QueryRow(
			"SELECT factor FROM index_factors WHERE code = ? AND month = ?",
			string(code), month,
		).Scan(&factorStr)
		if err != nil {
			return decimal.Decimal{}, false
		}
		factor, err := decimal.NewFromString(factorStr)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return factor, true
	})
}
