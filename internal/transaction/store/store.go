package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads a transaction row in selectColumns order.
func scanRecord(s scanner) (*transaction.Record, error) {
	var r transaction.Record

	var memo, account, messageID, source, parser sql.NullString

	if err := s.Scan(
		&r.ID, &r.ImportID, &r.Date, &r.Amount, &r.Currency, &r.Payee, &r.RawPayee,
		&memo, &account, &r.Cleared, &messageID, &source, &parser,
		&r.CreatedAt, &r.UpdatedAt, &r.DeletedAt,
	); err != nil {
		return nil, err
	}

	r.Memo = memo.String
	r.Account = account.String
	r.MessageID = messageID.String
	r.Source = source.String
	r.Parser = parser.String

	return &r, nil
}

const selectColumns = `
	id, import_id, date, amount, currency, payee, raw_payee,
	memo, account, cleared, message_id, source, parser,
	created_at, updated_at, deleted_at
`

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Record, error) {
	query := `SELECT ` + selectColumns + `
		FROM transactions
		WHERE id = $1 AND deleted_at IS NULL`

	r, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return r, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Record, error) {
	query := `SELECT ` + selectColumns + `
		FROM transactions
		WHERE deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.Cleared != nil {
		query += fmt.Sprintf(" AND cleared = $%d", argIdx)

		args = append(args, *filter.Cleared)
		argIdx++
	}

	if filter.Account != nil {
		query += fmt.Sprintf(" AND account = $%d", argIdx)

		args = append(args, *filter.Account)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY date ASC, created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var records []*transaction.Record

	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return records, nil
}

func (s *Store) UpdatePayee(ctx context.Context, id uuid.UUID, payee string) error {
	query := `
		UPDATE transactions
		SET payee = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`

	return s.execOne(ctx, "updating payee", query, payee, id)
}

func (s *Store) SetCleared(ctx context.Context, id uuid.UUID, cleared bool) error {
	query := `
		UPDATE transactions
		SET cleared = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`

	return s.execOne(ctx, "updating cleared", query, cleared, id)
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE transactions
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	return s.execOne(ctx, "deleting transaction", query, id)
}

// execOne runs an update that must touch exactly one live row.
func (s *Store) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

type importTx struct {
	tx *sql.Tx
}

// BeginImport opens the transaction a batch is written in. Concurrent imports of the
// same message are settled by the unique import_id in CreateTransactions.
func (s *Store) BeginImport(ctx context.Context) (transaction.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) ExistingImportIDs(ctx context.Context, importIDs []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(importIDs) == 0 {
		return existing, nil
	}

	rows, err := itx.tx.QueryContext(ctx,
		`SELECT import_id FROM transactions WHERE import_id = ANY($1)`, importIDs)
	if err != nil {
		return nil, fmt.Errorf("finding existing imports: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning import id: %w", err)
		}

		existing[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating import ids: %w", err)
	}

	return existing, nil
}

func (itx *importTx) CreateTransactions(ctx context.Context, records []*transaction.Record) ([]*transaction.Record, error) {
	query := `
		INSERT INTO transactions (
			import_id, date, amount, currency, payee, raw_payee, memo, account,
			cleared, message_id, source, parser, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT (import_id) DO NOTHING
		RETURNING id, created_at
	`

	inserted := make([]*transaction.Record, 0, len(records))

	for _, r := range records {
		err := itx.tx.QueryRowContext(ctx, query,
			r.ImportID,
			r.Date,
			r.Amount,
			r.Currency,
			r.Payee,
			r.RawPayee,
			r.Memo,
			r.Account,
			r.Cleared,
			r.MessageID,
			r.Source,
			r.Parser,
		).Scan(&r.ID, &r.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("creating transaction %s: %w", r.ImportID, err)
		}

		inserted = append(inserted, r)
	}

	return inserted, nil
}
