package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/tally/internal/matching"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindRule prefers rules scoped to account, then the longest pattern contained in key.
// Patterns are stored already folded, so a plain substring test is enough.
func (s *Store) FindRule(ctx context.Context, account, key string) (*matching.Rule, error) {
	query := `
		SELECT id, pattern, payee, account, created_at
		FROM payee_rules
		WHERE strpos($2, pattern) > 0
		  AND (account = '' OR account = $1)
		ORDER BY account = '', LENGTH(pattern) DESC, id DESC
		LIMIT 1
	`

	var r matching.Rule

	err := s.db.QueryRowContext(ctx, query, account, key).Scan(&r.ID, &r.Pattern, &r.Payee, &r.Account, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding payee rule: %w", err)
	}

	return &r, nil
}

func (s *Store) UpsertRule(ctx context.Context, rule matching.Rule) (*matching.Rule, error) {
	query := `
		INSERT INTO payee_rules (pattern, payee, account)
		VALUES ($1, $2, $3)
		ON CONFLICT (pattern, account) DO UPDATE SET payee = EXCLUDED.payee
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, rule.Pattern, rule.Payee, rule.Account).Scan(&rule.ID, &rule.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("saving payee rule: %w", err)
	}

	return &rule, nil
}

func (s *Store) ListRules(ctx context.Context) ([]*matching.Rule, error) {
	query := `
		SELECT id, pattern, payee, account, created_at
		FROM payee_rules
		ORDER BY account, pattern
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing payee rules: %w", err)
	}
	defer rows.Close()

	var rules []*matching.Rule

	for rows.Next() {
		var r matching.Rule
		if err := rows.Scan(&r.ID, &r.Pattern, &r.Payee, &r.Account, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning payee rule: %w", err)
		}

		rules = append(rules, &r)
	}

	return rules, rows.Err()
}

func (s *Store) DeleteRule(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM payee_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting payee rule: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting payee rule: %w", err)
	}

	if n == 0 {
		return matching.ErrRuleNotFound
	}

	return nil
}
