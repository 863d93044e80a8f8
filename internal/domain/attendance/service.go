package attendance

import (
	"context"
	"time"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/core/tx"
	"refurbhq/pkg/logger"
)

// Service manages attendance records and shop visits.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new attendance service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// day truncates a timestamp to its UTC date.
func day(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// CheckIn opens the user's attendance record for today. A second
// check-in on the same day is rejected while the first is still open.
func (s *Service) CheckIn(ctx context.Context, userID id.ID, lat, lng *float64) (*Record, error) {
	now := time.Now().UTC()

	var record *Record
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		open, err := s.repo.GetOpenRecord(ctx, userID, day(now))
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if open != nil {
			return apperror.NewConflict("already checked in today")
		}

		record = &Record{
			ID:         id.New(),
			UserID:     userID,
			Day:        day(now),
			CheckIn:    now,
			CheckInLat: lat,
			CheckInLng: lng,
			CreatedAt:  now,
		}
		return s.repo.CreateRecord(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "checked in", "user_id", userID)
	return record, nil
}

// CheckOut closes today's open record and derives working hours.
func (s *Service) CheckOut(ctx context.Context, userID id.ID, lat, lng *float64) (*Record, error) {
	now := time.Now().UTC()

	var record *Record
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		open, err := s.repo.GetOpenRecord(ctx, userID, day(now))
		if err != nil {
			return err
		}

		if err := open.Close(now); err != nil {
			return err
		}
		open.CheckOutLat = lat
		open.CheckOutLng = lng

		record = open
		return s.repo.UpdateRecord(ctx, open)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "checked out",
		"user_id", userID,
		"working_hours", record.WorkingHours,
	)
	return record, nil
}

// LogVisit records a salesman's shop visit.
func (s *Service) LogVisit(ctx context.Context, v *Visit) error {
	if err := v.Validate(ctx); err != nil {
		return err
	}

	v.ID = id.New()
	if v.VisitedAt.IsZero() {
		v.VisitedAt = time.Now().UTC()
	}
	v.CreatedAt = time.Now().UTC()

	if err := s.repo.CreateVisit(ctx, v); err != nil {
		return err
	}

	logger.Info(ctx, "visit logged",
		"user_id", v.UserID,
		"customer_id", v.CustomerID,
	)
	return nil
}

// Timesheet returns the user's records in the range.
func (s *Service) Timesheet(ctx context.Context, userID id.ID, from, to time.Time) ([]Record, error) {
	return s.repo.ListRecords(ctx, userID, from, to)
}

// Visits returns the user's visits in the range.
func (s *Service) Visits(ctx context.Context, userID id.ID, from, to time.Time) ([]Visit, error) {
	return s.repo.ListVisits(ctx, userID, from, to)
}
