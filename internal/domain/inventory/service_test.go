package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	rollups map[id.ID]*Inventory
	daily   map[id.ID]*DailyProduction
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		rollups: make(map[id.ID]*Inventory),
		daily:   make(map[id.ID]*DailyProduction),
	}
}

func (r *fakeRepo) Create(ctx context.Context, inv *Inventory) error {
	cp := *inv
	r.rollups[inv.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, inventoryID id.ID) (*Inventory, error) {
	inv, ok := r.rollups[inventoryID]
	if !ok {
		return nil, apperror.NewNotFound("inventory", inventoryID)
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeRepo) GetByProduct(ctx context.Context, productID id.ID) (*Inventory, error) {
	for _, inv := range r.rollups {
		if inv.ProductID == productID {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("inventory", productID)
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, inventoryID id.ID) (*Inventory, error) {
	return r.GetByID(ctx, inventoryID)
}

func (r *fakeRepo) Update(ctx context.Context, inv *Inventory) error {
	stored, ok := r.rollups[inv.ID]
	if !ok {
		return apperror.NewNotFound("inventory", inv.ID)
	}
	// Mirrors the optimistic predicate: the caller bumped Version
	// before saving, the row must still hold the previous one.
	if stored.Version != inv.Version-1 {
		return apperror.NewConcurrentModification("inventory", inv.ID)
	}
	cp := *inv
	r.rollups[inv.ID] = &cp
	return nil
}

func (r *fakeRepo) List(ctx context.Context, limit, offset int) ([]Inventory, error) {
	out := make([]Inventory, 0, len(r.rollups))
	for _, inv := range r.rollups {
		out = append(out, *inv)
	}
	return out, nil
}

func (r *fakeRepo) CreateDailyProduction(ctx context.Context, d *DailyProduction) error {
	cp := *d
	r.daily[d.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdateDailyProduction(ctx context.Context, d *DailyProduction) error {
	if _, ok := r.daily[d.ID]; !ok {
		return apperror.NewNotFound("daily production", d.ID)
	}
	cp := *d
	r.daily[d.ID] = &cp
	return nil
}

func (r *fakeRepo) GetDailyProduction(ctx context.Context, entryID id.ID) (*DailyProduction, error) {
	d, ok := r.daily[entryID]
	if !ok {
		return nil, apperror.NewNotFound("daily production", entryID)
	}
	cp := *d
	return &cp, nil
}

func (r *fakeRepo) ListDailyProduction(ctx context.Context, batchID id.ID) ([]DailyProduction, error) {
	var out []DailyProduction
	for _, d := range r.daily {
		if d.BatchID == batchID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func TestUpdateStock_RecomputesCurrentStock(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, passthroughTx{})
	ctx := context.Background()

	inv, err := svc.Open(ctx, id.New(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), inv.CurrentStock)

	updated, err := svc.UpdateStock(ctx, inv.ID, 10, 25, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(27), updated.CurrentStock)
}

func TestUpdateStock_AllowsNegativeResult(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, passthroughTx{})
	ctx := context.Background()

	inv, err := svc.Open(ctx, id.New(), 0)
	require.NoError(t, err)

	// No clamping: out can exceed opening + in.
	updated, err := svc.UpdateStock(ctx, inv.ID, 0, 5, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(-4), updated.CurrentStock)
}

func TestUpdateStock_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, passthroughTx{})
	ctx := context.Background()

	inv, err := svc.Open(ctx, id.New(), 3)
	require.NoError(t, err)

	first, err := svc.UpdateStock(ctx, inv.ID, 3, 7, 2)
	require.NoError(t, err)
	second, err := svc.UpdateStock(ctx, inv.ID, 3, 7, 2)
	require.NoError(t, err)

	assert.Equal(t, first.CurrentStock, second.CurrentStock)
	assert.Equal(t, int64(8), second.CurrentStock)
}

func TestAddMovement_Accumulates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, passthroughTx{})
	ctx := context.Background()
	productID := id.New()

	_, err := svc.Open(ctx, productID, 5)
	require.NoError(t, err)

	inv, err := svc.AddMovement(ctx, productID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(15), inv.CurrentStock)

	inv, err = svc.AddMovement(ctx, productID, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(11), inv.CurrentStock)
}

func TestRecordDailyProduction_RecomputesFromOwnFields(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, passthroughTx{})
	ctx := context.Background()

	d := &DailyProduction{
		BatchID:   id.New(),
		ProductID: id.New(),
		StockIn:   12,
		StockOut:  5,
		// Stale derived value that must be overwritten on save.
		CurrentStock: 999,
	}

	require.NoError(t, svc.RecordDailyProduction(ctx, d))
	assert.Equal(t, int64(7), d.CurrentStock)

	// Editing movements and re-saving recomputes again.
	d.StockOut = 12
	require.NoError(t, svc.RecordDailyProduction(ctx, d))
	assert.Equal(t, int64(0), d.CurrentStock)
}

func TestRecordDailyProduction_RejectsNegativeMovements(t *testing.T) {
	svc := NewService(newFakeRepo(), passthroughTx{})

	d := &DailyProduction{
		BatchID:   id.New(),
		ProductID: id.New(),
		StockIn:   -1,
	}

	err := svc.RecordDailyProduction(context.Background(), d)
	require.Error(t, err)
}
