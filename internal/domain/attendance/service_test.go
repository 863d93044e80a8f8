package attendance

import (
	"context"
	"testing"
	"time"

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
	records map[id.ID]*Record
	visits  []Visit
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[id.ID]*Record)}
}

func (r *fakeRepo) CreateRecord(ctx context.Context, rec *Record) error {
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdateRecord(ctx context.Context, rec *Record) error {
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

func (r *fakeRepo) GetOpenRecord(ctx context.Context, userID id.ID, dayStart time.Time) (*Record, error) {
	for _, rec := range r.records {
		if rec.UserID == userID && rec.Day.Equal(dayStart) && rec.CheckOut == nil {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("attendance record", userID)
}

func (r *fakeRepo) ListRecords(ctx context.Context, userID id.ID, from, to time.Time) ([]Record, error) {
	var out []Record
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateVisit(ctx context.Context, v *Visit) error {
	r.visits = append(r.visits, *v)
	return nil
}

func (r *fakeRepo) ListVisits(ctx context.Context, userID id.ID, from, to time.Time) ([]Visit, error) {
	var out []Visit
	for _, v := range r.visits {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func TestCheckInThenOut(t *testing.T) {
	svc := NewService(newFakeRepo(), passthroughTx{})
	ctx := context.Background()
	userID := id.New()

	rec, err := svc.CheckIn(ctx, userID, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, rec.CheckOut)
	assert.Zero(t, rec.WorkingHours)

	closed, err := svc.CheckOut(ctx, userID, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, closed.CheckOut)
	assert.GreaterOrEqual(t, closed.WorkingHours, 0.0)
}

func TestCheckIn_TwiceSameDay(t *testing.T) {
	svc := NewService(newFakeRepo(), passthroughTx{})
	ctx := context.Background()
	userID := id.New()

	_, err := svc.CheckIn(ctx, userID, nil, nil)
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, userID, nil, nil)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestCheckOut_WithoutCheckIn(t *testing.T) {
	svc := NewService(newFakeRepo(), passthroughTx{})

	_, err := svc.CheckOut(context.Background(), id.New(), nil, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestClose_DerivesWorkingHours(t *testing.T) {
	in := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	rec := &Record{CheckIn: in}

	require.NoError(t, rec.Close(in.Add(7*time.Hour+30*time.Minute)))
	assert.InDelta(t, 7.5, rec.WorkingHours, 1e-9)

	// Closing twice is refused.
	err := rec.Close(in.Add(8 * time.Hour))
	require.Error(t, err)
}

func TestLogVisit(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, passthroughTx{})
	ctx := context.Background()
	userID := id.New()

	v := &Visit{UserID: userID, CustomerID: id.New()}
	require.NoError(t, svc.LogVisit(ctx, v))
	assert.False(t, v.VisitedAt.IsZero())

	visits, err := svc.Visits(ctx, userID, time.Time{}, time.Now())
	require.NoError(t, err)
	assert.Len(t, visits, 1)

	// Visits need a customer.
	err = svc.LogVisit(ctx, &Visit{UserID: userID})
	require.Error(t, err)
}
