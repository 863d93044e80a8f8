package voucher

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refurbhq/internal/core/apperror"
)

// fakeRepo simulates the storage layer's atomic counter.
type fakeRepo struct {
	mu     sync.Mutex
	series map[string]*Series
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{series: make(map[string]*Series)}
}

func (r *fakeRepo) CreateSeries(ctx context.Context, s *Series) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.series[s.Name] = &cp
	return nil
}

func (r *fakeRepo) GetByName(ctx context.Context, name string) (*Series, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.series[name]
	if !ok {
		return nil, apperror.NewNotFound("voucher series", name)
	}
	cp := *s
	return &cp, nil
}

func (r *fakeRepo) List(ctx context.Context) ([]Series, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Series, 0, len(r.series))
	for _, s := range r.series {
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeRepo) NextNumber(ctx context.Context, name string) (int64, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.series[name]
	if !ok {
		return 0, "", apperror.NewNotFound("voucher series", name)
	}
	s.CurrentNumber++
	return s.CurrentNumber, s.Prefix, nil
}

func TestNext_SequentialCodes(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.CreateSeries(ctx, NewSeries("payment", "PAY", 1)))

	first, err := svc.Next(ctx, "payment")
	require.NoError(t, err)
	assert.Equal(t, "PAY0001", first)

	second, err := svc.Next(ctx, "payment")
	require.NoError(t, err)
	assert.Equal(t, "PAY0002", second)
}

func TestNext_UnknownSeries(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Next(context.Background(), "missing")
	require.Error(t, err)
}

func TestNext_ConcurrentCallersGetDistinctCodes(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.CreateSeries(ctx, NewSeries("invoice", "INV", 1)))

	const n = 100
	codes := make(chan string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := svc.Next(ctx, "invoice")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			codes <- code
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for code := range codes {
		if seen[code] {
			t.Fatalf("duplicate voucher code issued: %s", code)
		}
		seen[code] = true
	}
	assert.Len(t, seen, n)

	// No gaps: every number 1..n must have been issued exactly once.
	for i := int64(1); i <= n; i++ {
		if !seen[FormatCode("INV", i)] {
			t.Fatalf("gap in voucher sequence at %d", i)
		}
	}
}

func TestCreateSeries_DuplicateName(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.CreateSeries(ctx, NewSeries("payment", "PAY", 1)))

	err := svc.CreateSeries(ctx, NewSeries("payment", "PV", 1))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestFormatCode_PadsToFourDigits(t *testing.T) {
	assert.Equal(t, "PAY0007", FormatCode("PAY", 7))
	assert.Equal(t, "PAY0123", FormatCode("PAY", 123))
	assert.Equal(t, "PAY12345", FormatCode("PAY", 12345))
}
