package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*Record, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Record, error)
	UpdatePayee(ctx context.Context, id uuid.UUID, payee string) error
	SetCleared(ctx context.Context, id uuid.UUID, cleared bool) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	BeginImport(ctx context.Context) (ImportTx, error)
}

type ImportTx interface {
	ExistingImportIDs(ctx context.Context, importIDs []string) (map[string]struct{}, error)
	// CreateTransactions inserts records and returns the ones actually stored. A record
	// whose import id was stored concurrently is left out rather than failing the batch.
	CreateTransactions(ctx context.Context, records []*Record) ([]*Record, error)
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ListFilter struct {
	Cleared   *bool
	Account   *string
	StartDate *time.Time
	EndDate   *time.Time
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Record, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) UpdatePayee(ctx context.Context, id uuid.UUID, payee string) error {
	return s.repo.UpdatePayee(ctx, id, payee)
}

func (s *Service) SetCleared(ctx context.Context, id uuid.UUID, cleared bool) error {
	return s.repo.SetCleared(ctx, id, cleared)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, id)
}

// ImportResult reports what a WriteBatch call stored.
type ImportResult struct {
	Imported []*Record
	Skipped  []Transaction // import id already stored
}

// WriteBatch stores a batch of ingested transactions in one database transaction.
// Transactions whose import id is already stored are skipped, so replaying a batch is safe.
func (s *Service) WriteBatch(ctx context.Context, txs []Transaction) (*ImportResult, error) {
	if len(txs) == 0 {
		return &ImportResult{}, nil
	}

	itx, err := s.repo.BeginImport(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	ids := make([]string, 0, len(txs))
	for _, t := range txs {
		ids = append(ids, t.ImportID)
	}

	existing, err := itx.ExistingImportIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find existing imports: %w", err)
	}

	result := &ImportResult{}

	var records []*Record

	seen := make(map[string]struct{}, len(txs))

	for _, t := range txs {
		if _, found := existing[t.ImportID]; found {
			result.Skipped = append(result.Skipped, t)
			continue
		}

		if _, dup := seen[t.ImportID]; dup {
			result.Skipped = append(result.Skipped, t)
			continue
		}

		seen[t.ImportID] = struct{}{}

		records = append(records, &Record{Transaction: t})
	}

	if len(records) == 0 {
		return result, nil
	}

	inserted, err := itx.CreateTransactions(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	result.Imported = inserted

	if len(inserted) < len(records) {
		stored := make(map[string]struct{}, len(inserted))
		for _, r := range inserted {
			stored[r.ImportID] = struct{}{}
		}

		for _, r := range records {
			if _, ok := stored[r.ImportID]; !ok {
				result.Skipped = append(result.Skipped, r.Transaction)
			}
		}
	}

	return result, nil
}
