package sales

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/core/types"
	"refurbhq/internal/domain/ledger"
	"refurbhq/internal/domain/voucher"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeVouchers struct {
	counters map[string]int64
}

func newFakeVouchers() *fakeVouchers {
	return &fakeVouchers{counters: make(map[string]int64)}
}

func (v *fakeVouchers) Next(ctx context.Context, seriesName string) (string, error) {
	v.counters[seriesName]++
	prefix := map[string]string{
		SeriesOrder:   "ORD",
		SeriesPayment: "PAY",
		SeriesInvoice: "INV",
	}[seriesName]
	if prefix == "" {
		return "", apperror.NewNotFound("voucher series", seriesName)
	}
	return voucher.FormatCode(prefix, v.counters[seriesName]), nil
}

type ledgerLine struct {
	customerID  id.ID
	description string
	debit       types.Money
	credit      types.Money
}

type fakeLedger struct {
	lines []ledgerLine
}

func (l *fakeLedger) Append(ctx context.Context, customerID id.ID, description string, debit, credit types.Money) (*ledger.Entry, error) {
	l.lines = append(l.lines, ledgerLine{customerID, description, debit, credit})
	return &ledger.Entry{CustomerID: customerID, Debit: debit, Credit: credit}, nil
}

type fakeRepo struct {
	orders   map[id.ID]*Order
	payments map[id.ID][]PaymentTransaction
	invoices map[id.ID]*Invoice
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders:   make(map[id.ID]*Order),
		payments: make(map[id.ID][]PaymentTransaction),
		invoices: make(map[id.ID]*Invoice),
	}
}

func (r *fakeRepo) CreateOrder(ctx context.Context, o *Order) error {
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeRepo) GetOrder(ctx context.Context, orderID id.ID) (*Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID)
	}
	cp := *o
	return &cp, nil
}

func (r *fakeRepo) GetOrderForUpdate(ctx context.Context, orderID id.ID) (*Order, error) {
	return r.GetOrder(ctx, orderID)
}

func (r *fakeRepo) UpdateOrder(ctx context.Context, o *Order) error {
	if _, ok := r.orders[o.ID]; !ok {
		return apperror.NewNotFound("order", o.ID)
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeRepo) ListOrders(ctx context.Context, filter ListFilter) ([]Order, error) {
	out := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeRepo) CreatePayment(ctx context.Context, p *PaymentTransaction) error {
	r.payments[p.OrderID] = append(r.payments[p.OrderID], *p)
	return nil
}

func (r *fakeRepo) ListPayments(ctx context.Context, orderID id.ID) ([]PaymentTransaction, error) {
	return r.payments[orderID], nil
}

func (r *fakeRepo) CreateInvoice(ctx context.Context, inv *Invoice) error {
	r.invoices[inv.OrderID] = inv
	return nil
}

func (r *fakeRepo) GetInvoiceByOrder(ctx context.Context, orderID id.ID) (*Invoice, error) {
	inv, ok := r.invoices[orderID]
	if !ok {
		return nil, apperror.NewNotFound("invoice", orderID)
	}
	return inv, nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *fakeLedger) {
	t.Helper()
	repo := newFakeRepo()
	ldg := &fakeLedger{}
	return NewService(repo, newFakeVouchers(), ldg, passthroughTx{}, nil), repo, ldg
}

// orderWithTotal creates and persists an order whose single line yields
// the given total with no discount or tax.
func orderWithTotal(t *testing.T, svc *Service, total int64) *Order {
	t.Helper()
	o := NewOrder(id.New())
	o.Items = []Item{{
		ProductID: id.New(),
		Quantity:  1,
		UnitPrice: types.NewMoneyFromInt(total),
	}}
	require.NoError(t, svc.CreateOrder(context.Background(), o))
	return o
}

func TestRecalculateTotals_DiscountAndGST(t *testing.T) {
	o := NewOrder(id.New())
	o.Items = []Item{{
		ProductID:       id.New(),
		Quantity:        2,
		UnitPrice:       types.MustMoney("1000"),
		DiscountPercent: types.MustMoney("10"),
		GSTPercent:      types.MustMoney("18"),
	}}

	o.RecalculateTotals()

	// base 2000, discount 200, discounted 1800, gst 324
	assert.True(t, o.Subtotal.Equal(types.MustMoney("2000")), o.Subtotal.String())
	assert.True(t, o.DiscountAmount.Equal(types.MustMoney("200")), o.DiscountAmount.String())
	assert.True(t, o.GSTAmount.Equal(types.MustMoney("324")), o.GSTAmount.String())
	assert.True(t, o.TotalAmount.Equal(types.MustMoney("2124")), o.TotalAmount.String())
	assert.True(t, o.Items[0].LineTotal.Equal(types.MustMoney("2124")))
}

func TestCreateOrder_PostsDebitToLedger(t *testing.T) {
	svc, repo, ldg := newTestService(t)

	o := orderWithTotal(t, svc, 1500)

	stored, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD0001", stored.OrderNumber)
	assert.Equal(t, PaymentPending, stored.PaymentStatus)

	require.Len(t, ldg.lines, 1)
	assert.Equal(t, o.CustomerID, ldg.lines[0].customerID)
	assert.True(t, ldg.lines[0].debit.Equal(types.MustMoney("1500")))
	assert.True(t, ldg.lines[0].credit.IsZero())

	assert.Len(t, repo.orders, 1)
}

func TestRecordPayment_RollsUpStatus(t *testing.T) {
	svc, _, ldg := newTestService(t)
	ctx := context.Background()

	o := orderWithTotal(t, svc, 1000)

	p1, err := svc.RecordPayment(ctx, o.ID, types.MustMoney("400"), ModeCash, nil)
	require.NoError(t, err)
	assert.Equal(t, "PAY0001", p1.VoucherNo)

	stored, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentPartial, stored.PaymentStatus)
	assert.True(t, stored.AmountPaid.Equal(types.MustMoney("400")))
	assert.True(t, stored.BalanceDue.Equal(types.MustMoney("600")))

	p2, err := svc.RecordPayment(ctx, o.ID, types.MustMoney("600"), ModeUPI, nil)
	require.NoError(t, err)
	assert.Equal(t, "PAY0002", p2.VoucherNo)

	stored, err = svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, stored.PaymentStatus)
	assert.True(t, stored.BalanceDue.IsZero())

	// order debit plus two payment credits
	require.Len(t, ldg.lines, 3)
	assert.True(t, ldg.lines[1].credit.Equal(types.MustMoney("400")))
	assert.True(t, ldg.lines[2].credit.Equal(types.MustMoney("600")))
}

func TestRecordPayment_OverpaymentStaysPaid(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	o := orderWithTotal(t, svc, 1000)

	_, err := svc.RecordPayment(ctx, o.ID, types.MustMoney("1200"), ModeBankTransfer, nil)
	require.NoError(t, err)

	stored, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, stored.PaymentStatus)
	assert.True(t, stored.BalanceDue.Equal(types.MustMoney("-200")), stored.BalanceDue.String())
}

func TestRecomputePaymentStatus_ZeroTotalOrder(t *testing.T) {
	o := NewOrder(id.New())

	// Nothing paid against a zero total stays pending.
	o.RecomputePaymentStatus(nil)
	assert.Equal(t, PaymentPending, o.PaymentStatus)

	// Any payment covers a zero total in full.
	o.RecomputePaymentStatus([]PaymentTransaction{{Amount: types.MustMoney("500")}})
	assert.Equal(t, PaymentPaid, o.PaymentStatus)
	assert.True(t, o.BalanceDue.Equal(types.MustMoney("-500")), o.BalanceDue.String())
}

func TestRecordPayment_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	o := orderWithTotal(t, svc, 100)

	_, err := svc.RecordPayment(ctx, o.ID, types.ZeroMoney(), ModeCash, nil)
	require.Error(t, err)

	_, err = svc.RecordPayment(ctx, o.ID, types.MustMoney("-5"), ModeCash, nil)
	require.Error(t, err)

	_, err = svc.RecordPayment(ctx, o.ID, types.MustMoney("50"), PaymentMode("barter"), nil)
	require.Error(t, err)
}

func TestSyncPaymentStatus_Idempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	o := orderWithTotal(t, svc, 1000)
	_, err := svc.RecordPayment(ctx, o.ID, types.MustMoney("400"), ModeCash, nil)
	require.NoError(t, err)

	first, err := svc.SyncPaymentStatus(ctx, o.ID)
	require.NoError(t, err)
	second, err := svc.SyncPaymentStatus(ctx, o.ID)
	require.NoError(t, err)

	assert.Equal(t, first.PaymentStatus, second.PaymentStatus)
	assert.True(t, first.AmountPaid.Equal(second.AmountPaid))
	assert.True(t, first.BalanceDue.Equal(second.BalanceDue))
	assert.Equal(t, PaymentPartial, second.PaymentStatus)
}

func TestGenerateInvoice_OncePerOrder(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	o := orderWithTotal(t, svc, 750)

	inv, err := svc.GenerateInvoice(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV0001", inv.InvoiceNumber)
	assert.True(t, inv.TotalAmount.Equal(types.MustMoney("750")))

	_, err = svc.GenerateInvoice(ctx, o.ID)
	require.Error(t, err)
}

func TestCancelOrder_ReversesLedger(t *testing.T) {
	svc, _, ldg := newTestService(t)
	ctx := context.Background()

	o := orderWithTotal(t, svc, 500)
	require.NoError(t, svc.CancelOrder(ctx, o.ID))

	stored, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)

	require.Len(t, ldg.lines, 2)
	assert.True(t, ldg.lines[1].credit.Equal(types.MustMoney("500")))

	// A paid order cannot be cancelled.
	paid := orderWithTotal(t, svc, 300)
	_, err = svc.RecordPayment(ctx, paid.ID, types.MustMoney("300"), ModeCash, nil)
	require.NoError(t, err)
	err = svc.CancelOrder(ctx, paid.ID)
	require.Error(t, err)
}

func TestCreateOrder_SequentialNumbers(t *testing.T) {
	svc, _, _ := newTestService(t)

	for i := 1; i <= 3; i++ {
		o := orderWithTotal(t, svc, 100)
		assert.Equal(t, fmt.Sprintf("ORD%04d", i), o.OrderNumber)
	}
}
