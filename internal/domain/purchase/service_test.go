package purchase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/core/types"
	"refurbhq/internal/domain/catalogs/component"
	"refurbhq/internal/domain/voucher"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeVouchers struct {
	counters map[string]int64
}

func (v *fakeVouchers) Next(ctx context.Context, seriesName string) (string, error) {
	v.counters[seriesName]++
	prefix := map[string]string{
		SeriesPurchase:      "PO",
		SeriesVendorPayment: "VPAY",
	}[seriesName]
	if prefix == "" {
		return "", apperror.NewNotFound("voucher series", seriesName)
	}
	return voucher.FormatCode(prefix, v.counters[seriesName]), nil
}

type fakeComponentRepo struct {
	components map[id.ID]*component.Component
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
	return nil, nil
}

type fakeRepo struct {
	orders   map[id.ID]*Order
	payments map[id.ID][]VendorPayment
}

func (r *fakeRepo) CreateOrder(ctx context.Context, o *Order) error {
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeRepo) GetOrder(ctx context.Context, orderID id.ID) (*Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("purchase order", orderID)
	}
	cp := *o
	return &cp, nil
}

func (r *fakeRepo) GetOrderForUpdate(ctx context.Context, orderID id.ID) (*Order, error) {
	return r.GetOrder(ctx, orderID)
}

func (r *fakeRepo) UpdateOrder(ctx context.Context, o *Order) error {
	if _, ok := r.orders[o.ID]; !ok {
		return apperror.NewNotFound("purchase order", o.ID)
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeRepo) ListOrders(ctx context.Context, limit, offset int) ([]Order, error) {
	out := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeRepo) CreatePayment(ctx context.Context, p *VendorPayment) error {
	r.payments[p.OrderID] = append(r.payments[p.OrderID], *p)
	return nil
}

func (r *fakeRepo) ListPayments(ctx context.Context, orderID id.ID) ([]VendorPayment, error) {
	return r.payments[orderID], nil
}

func newTestService(t *testing.T) (*Service, *fakeComponentRepo) {
	t.Helper()
	components := &fakeComponentRepo{components: make(map[id.ID]*component.Component)}
	repo := &fakeRepo{
		orders:   make(map[id.ID]*Order),
		payments: make(map[id.ID][]VendorPayment),
	}
	vouchers := &fakeVouchers{counters: make(map[string]int64)}
	return NewService(repo, components, vouchers, passthroughTx{}, nil), components
}

func seedComponent(t *testing.T, components *fakeComponentRepo, stock int64) *component.Component {
	t.Helper()
	c := component.NewComponent("SSD 512GB", types.MustMoney("2500"))
	c.StockQuantity = stock
	components.components[c.ID] = c
	return c
}

func newPurchase(t *testing.T, svc *Service, componentID id.ID, qty int64) *Order {
	t.Helper()
	o := NewOrder(id.New())
	o.Items = []Item{{
		ComponentID: componentID,
		Quantity:    qty,
		UnitCost:    types.MustMoney("2500"),
	}}
	require.NoError(t, svc.CreateOrder(context.Background(), o))
	return o
}

func TestCreateOrder_ComputesTotal(t *testing.T) {
	svc, components := newTestService(t)
	c := seedComponent(t, components, 0)

	o := newPurchase(t, svc, c.ID, 4)

	assert.Equal(t, "PO0001", o.OrderNumber)
	assert.True(t, o.TotalAmount.Equal(types.MustMoney("10000")), o.TotalAmount.String())
	assert.Equal(t, PaymentPending, o.PaymentStatus)
}

func TestCreateOrder_UnknownComponent(t *testing.T) {
	svc, _ := newTestService(t)

	o := NewOrder(id.New())
	o.Items = []Item{{ComponentID: id.New(), Quantity: 1, UnitCost: types.MustMoney("100")}}
	err := svc.CreateOrder(context.Background(), o)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReceive_IncrementsStockOnce(t *testing.T) {
	svc, components := newTestService(t)
	ctx := context.Background()

	c := seedComponent(t, components, 3)
	o := newPurchase(t, svc, c.ID, 4)

	received, err := svc.Receive(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, received.Status)
	require.NotNil(t, received.ReceivedAt)
	assert.Equal(t, int64(7), components.components[c.ID].StockQuantity)

	// Receiving twice must not double-credit the stock.
	_, err = svc.Receive(ctx, o.ID)
	require.Error(t, err)
	assert.Equal(t, int64(7), components.components[c.ID].StockQuantity)
}

func TestRecordPayment_RollsUpStatus(t *testing.T) {
	svc, components := newTestService(t)
	ctx := context.Background()

	c := seedComponent(t, components, 0)
	o := newPurchase(t, svc, c.ID, 4) // total 10000

	p, err := svc.RecordPayment(ctx, o.ID, types.MustMoney("4000"), "bank_transfer", nil)
	require.NoError(t, err)
	assert.Equal(t, "VPAY0001", p.VoucherNo)

	stored, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentPartial, stored.PaymentStatus)
	assert.True(t, stored.BalanceDue.Equal(types.MustMoney("6000")))

	_, err = svc.RecordPayment(ctx, o.ID, types.MustMoney("6000"), "cash", nil)
	require.NoError(t, err)

	stored, err = svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, stored.PaymentStatus)
	assert.True(t, stored.BalanceDue.IsZero())
}

func TestRecordPayment_RejectsNonPositive(t *testing.T) {
	svc, components := newTestService(t)
	c := seedComponent(t, components, 0)
	o := newPurchase(t, svc, c.ID, 1)

	_, err := svc.RecordPayment(context.Background(), o.ID, types.ZeroMoney(), "cash", nil)
	require.Error(t, err)
}
