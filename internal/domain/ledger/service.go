package ledger

import (
	"context"
	"fmt"
	"time"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/core/tx"
	"refurbhq/internal/core/types"
	"refurbhq/pkg/logger"
)

// Service appends entries to customer ledgers.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new ledger service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Append records a new ledger entry for the customer and returns it with
// its computed balance.
//
// The balance is previous balance + credit - debit, with 0 as the
// starting balance of an empty ledger. The append runs in a transaction
// that locks the customer row first, so concurrent appends for the same
// customer serialize and each one reads the true previous entry.
func (s *Service) Append(ctx context.Context, customerID id.ID, description string, debit, credit types.Money) (*Entry, error) {
	entry := &Entry{
		ID:          id.New(),
		CustomerID:  customerID,
		EntryDate:   time.Now().UTC(),
		Description: description,
		Debit:       debit,
		Credit:      credit,
		CreatedAt:   time.Now().UTC(),
	}

	if err := entry.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockCustomer(ctx, customerID); err != nil {
			return fmt.Errorf("lock customer: %w", err)
		}

		previous := types.ZeroMoney()
		last, err := s.repo.GetLastEntry(ctx, customerID)
		if err != nil && !apperror.IsNotFound(err) {
			return fmt.Errorf("get last entry: %w", err)
		}
		if last != nil {
			previous = last.Balance
		}

		entry.Balance = previous.Add(entry.Credit).Sub(entry.Debit)

		if err := s.repo.Create(ctx, entry); err != nil {
			return fmt.Errorf("create entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "ledger entry appended",
		"customer_id", customerID,
		"debit", entry.Debit,
		"credit", entry.Credit,
		"balance", entry.Balance,
	)

	return entry, nil
}

// Statement returns the customer's entries in ledger order.
func (s *Service) Statement(ctx context.Context, customerID id.ID, limit, offset int) ([]Entry, error) {
	return s.repo.ListByCustomer(ctx, customerID, limit, offset)
}

// Balance returns the customer's current balance, zero for an empty ledger.
func (s *Service) Balance(ctx context.Context, customerID id.ID) (types.Money, error) {
	last, err := s.repo.GetLastEntry(ctx, customerID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return types.ZeroMoney(), nil
		}
		return types.ZeroMoney(), err
	}
	return last.Balance, nil
}
