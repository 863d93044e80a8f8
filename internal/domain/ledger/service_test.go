package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/core/types"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeRepo keeps entries per customer in append order.
type fakeRepo struct {
	entries map[id.ID][]Entry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: make(map[id.ID][]Entry)}
}

func (r *fakeRepo) LockCustomer(ctx context.Context, customerID id.ID) error {
	return nil
}

func (r *fakeRepo) GetLastEntry(ctx context.Context, customerID id.ID) (*Entry, error) {
	list := r.entries[customerID]
	if len(list) == 0 {
		return nil, apperror.NewNotFound("ledger entry", customerID)
	}
	last := list[len(list)-1]
	return &last, nil
}

func (r *fakeRepo) Create(ctx context.Context, e *Entry) error {
	r.entries[e.CustomerID] = append(r.entries[e.CustomerID], *e)
	return nil
}

func (r *fakeRepo) ListByCustomer(ctx context.Context, customerID id.ID, limit, offset int) ([]Entry, error) {
	return r.entries[customerID], nil
}

func TestAppend_RunningBalance(t *testing.T) {
	svc := NewService(newFakeRepo(), passthroughTx{})
	ctx := context.Background()
	customerID := id.New()

	e1, err := svc.Append(ctx, customerID, "Opening", types.ZeroMoney(), types.MustMoney("1000"))
	require.NoError(t, err)
	assert.True(t, e1.Balance.Equal(types.MustMoney("1000")), "got %s", e1.Balance)

	e2, err := svc.Append(ctx, customerID, "Sale", types.MustMoney("300"), types.ZeroMoney())
	require.NoError(t, err)
	assert.True(t, e2.Balance.Equal(types.MustMoney("700")), "got %s", e2.Balance)

	e3, err := svc.Append(ctx, customerID, "Payment", types.ZeroMoney(), types.MustMoney("150"))
	require.NoError(t, err)
	assert.True(t, e3.Balance.Equal(types.MustMoney("850")), "got %s", e3.Balance)
}

func TestAppend_BalanceIsPrefixSumOfCreditsMinusDebits(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, passthroughTx{})
	ctx := context.Background()
	customerID := id.New()

	amounts := []struct {
		debit, credit string
	}{
		{"0", "500"},
		{"120", "0"},
		{"0", "75.50"},
		{"300.25", "0"},
		{"0", "0"},
		{"10", "10"},
	}

	running := types.ZeroMoney()
	for k, a := range amounts {
		debit := types.MustMoney(a.debit)
		credit := types.MustMoney(a.credit)
		running = running.Add(credit).Sub(debit)

		entry, err := svc.Append(ctx, customerID, "entry", debit, credit)
		require.NoError(t, err)
		assert.True(t, entry.Balance.Equal(running),
			"entry %d: want %s, got %s", k, running, entry.Balance)
	}

	// Stored entries carry the same prefix sums.
	entries, err := svc.Statement(ctx, customerID, 100, 0)
	require.NoError(t, err)
	require.Len(t, entries, len(amounts))

	check := types.ZeroMoney()
	for k, e := range entries {
		check = check.Add(e.Credit).Sub(e.Debit)
		assert.True(t, e.Balance.Equal(check), "stored entry %d", k)
	}
}

func TestAppend_IndependentCustomers(t *testing.T) {
	svc := NewService(newFakeRepo(), passthroughTx{})
	ctx := context.Background()

	a := id.New()
	b := id.New()

	ea, err := svc.Append(ctx, a, "Opening", types.ZeroMoney(), types.MustMoney("100"))
	require.NoError(t, err)
	eb, err := svc.Append(ctx, b, "Opening", types.ZeroMoney(), types.MustMoney("40"))
	require.NoError(t, err)

	assert.True(t, ea.Balance.Equal(types.MustMoney("100")))
	assert.True(t, eb.Balance.Equal(types.MustMoney("40")))
}

func TestAppend_RejectsNegativeAmounts(t *testing.T) {
	svc := NewService(newFakeRepo(), passthroughTx{})
	ctx := context.Background()

	_, err := svc.Append(ctx, id.New(), "bad", types.MustMoney("-5"), types.ZeroMoney())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestBalance_EmptyLedgerIsZero(t *testing.T) {
	svc := NewService(newFakeRepo(), passthroughTx{})

	balance, err := svc.Balance(context.Background(), id.New())
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}
