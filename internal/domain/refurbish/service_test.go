package refurbish

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/entity"
	"refurbhq/internal/core/id"
	"refurbhq/internal/core/types"
	"refurbhq/internal/domain/catalogs/component"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeComponentRepo struct {
	components map[id.ID]*component.Component
}

func newFakeComponentRepo() *fakeComponentRepo {
	return &fakeComponentRepo{components: make(map[id.ID]*component.Component)}
}

func (r *fakeComponentRepo) add(c *component.Component) {
	r.components[c.ID] = c
}

func (r *fakeComponentRepo) Create(ctx context.Context, c *component.Component) error {
	r.components[c.ID] = c
	return nil
}

func (r *fakeComponentRepo) Update(ctx context.Context, c *component.Component) error {
	r.components[c.ID] = c
	return nil
}

func (r *fakeComponentRepo) GetByID(ctx context.Context, componentID id.ID) (*component.Component, error) {
	c, ok := r.components[componentID]
	if !ok {
		return nil, apperror.NewNotFound("component", componentID)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeComponentRepo) GetForUpdate(ctx context.Context, componentID id.ID) (*component.Component, error) {
	return r.GetByID(ctx, componentID)
}

func (r *fakeComponentRepo) DecrementStock(ctx context.Context, componentID id.ID, qty int64) error {
	c, ok := r.components[componentID]
	if !ok {
		return apperror.NewNotFound("component", componentID)
	}
	if c.StockQuantity < qty {
		return apperror.NewInsufficientStock(componentID.String(), c.Name, qty, c.StockQuantity)
	}
	c.StockQuantity -= qty
	return nil
}

func (r *fakeComponentRepo) IncrementStock(ctx context.Context, componentID id.ID, qty int64) error {
	c, ok := r.components[componentID]
	if !ok {
		return apperror.NewNotFound("component", componentID)
	}
	c.StockQuantity += qty
	return nil
}

func (r *fakeComponentRepo) List(ctx context.Context, limit, offset int) ([]component.Component, error) {
	out := make([]component.Component, 0, len(r.components))
	for _, c := range r.components {
		out = append(out, *c)
	}
	return out, nil
}

type fakeRepo struct {
	batches map[id.ID]*Batch
	usages  []Usage
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{batches: make(map[id.ID]*Batch)}
}

func (r *fakeRepo) CreateBatch(ctx context.Context, b *Batch) error {
	cp := *b
	r.batches[b.ID] = &cp
	return nil
}

func (r *fakeRepo) GetBatch(ctx context.Context, batchID id.ID) (*Batch, error) {
	b, ok := r.batches[batchID]
	if !ok {
		return nil, apperror.NewNotFound("batch", batchID)
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) FindBySerial(ctx context.Context, serialNumber string) (*Batch, error) {
	for _, b := range r.batches {
		if b.SerialNumber == serialNumber {
			cp := *b
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("batch", serialNumber)
}

func (r *fakeRepo) ListBatches(ctx context.Context, limit, offset int) ([]Batch, error) {
	out := make([]Batch, 0, len(r.batches))
	for _, b := range r.batches {
		out = append(out, *b)
	}
	return out, nil
}

func (r *fakeRepo) CreateUsage(ctx context.Context, u *Usage) error {
	r.usages = append(r.usages, *u)
	return nil
}

func (r *fakeRepo) ListUsages(ctx context.Context, batchID id.ID) ([]Usage, error) {
	var out []Usage
	for _, u := range r.usages {
		if u.BatchID == batchID {
			out = append(out, u)
		}
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *fakeComponentRepo) {
	t.Helper()
	repo := newFakeRepo()
	components := newFakeComponentRepo()
	return NewService(repo, components, passthroughTx{}, nil), repo, components
}

func seedBatch(t *testing.T, repo *fakeRepo) *Batch {
	t.Helper()
	b := NewBatch(id.New(), "RB-2025-0001")
	require.NoError(t, repo.CreateBatch(context.Background(), b))
	return b
}

func seedComponent(t *testing.T, components *fakeComponentRepo, name string, stock int64) *component.Component {
	t.Helper()
	c := component.NewComponent(name, types.MustMoney("1500"))
	c.StockQuantity = stock
	components.add(c)
	return c
}

func TestRecordUsage_DecrementsStock(t *testing.T) {
	svc, repo, components := newTestService(t)
	ctx := context.Background()

	batch := seedBatch(t, repo)
	ram := seedComponent(t, components, "RAM 8GB DDR4", 5)

	usage, err := svc.RecordUsage(ctx, batch.ID, ram.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(3), usage.QuantityUsed)
	assert.Equal(t, batch.ID, usage.BatchID)
	assert.Equal(t, int64(2), components.components[ram.ID].StockQuantity)

	usages, err := svc.ListUsages(ctx, batch.ID)
	require.NoError(t, err)
	assert.Len(t, usages, 1)
}

func TestRecordUsage_InsufficientStock(t *testing.T) {
	svc, repo, components := newTestService(t)
	ctx := context.Background()

	batch := seedBatch(t, repo)
	ram := seedComponent(t, components, "RAM 8GB DDR4", 5)

	_, err := svc.RecordUsage(ctx, batch.ID, ram.ID, 3)
	require.NoError(t, err)

	// Only 2 left: a second draw of 3 must fail and change nothing.
	_, err = svc.RecordUsage(ctx, batch.ID, ram.ID, 3)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, int64(3), appErr.Details["requested"])
	assert.Equal(t, int64(2), appErr.Details["available"])

	assert.Equal(t, int64(2), components.components[ram.ID].StockQuantity)

	usages, err := svc.ListUsages(ctx, batch.ID)
	require.NoError(t, err)
	assert.Len(t, usages, 1)
}

func TestRecordUsage_ExactStockDrainsToZero(t *testing.T) {
	svc, repo, components := newTestService(t)
	ctx := context.Background()

	batch := seedBatch(t, repo)
	ssd := seedComponent(t, components, "SSD 256GB", 4)

	_, err := svc.RecordUsage(ctx, batch.ID, ssd.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(0), components.components[ssd.ID].StockQuantity)
}

func TestRecordUsage_RejectsNonPositiveQuantity(t *testing.T) {
	svc, repo, components := newTestService(t)
	ctx := context.Background()

	batch := seedBatch(t, repo)
	ram := seedComponent(t, components, "RAM 8GB DDR4", 5)

	for _, qty := range []int64{0, -2} {
		_, err := svc.RecordUsage(ctx, batch.ID, ram.ID, qty)
		require.Error(t, err)
	}
	assert.Equal(t, int64(5), components.components[ram.ID].StockQuantity)
}

func TestRecordUsage_UnknownBatch(t *testing.T) {
	svc, _, components := newTestService(t)
	ram := seedComponent(t, components, "RAM 8GB DDR4", 5)

	_, err := svc.RecordUsage(context.Background(), id.New(), ram.ID, 1)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, int64(5), components.components[ram.ID].StockQuantity)
}

func TestCreateBatch_DuplicateSerial(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first := NewBatch(id.New(), "RB-2025-0042")
	require.NoError(t, svc.CreateBatch(ctx, first))

	second := NewBatch(id.New(), "RB-2025-0042")
	err := svc.CreateBatch(ctx, second)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestCreateBatch_RequiresProduct(t *testing.T) {
	svc, _, _ := newTestService(t)

	b := &Batch{BaseEntity: entity.NewBaseEntity(), SerialNumber: "RB-2025-0099"}
	err := svc.CreateBatch(context.Background(), b)
	require.Error(t, err)
}
