// Package attendance_repo provides the PostgreSQL attendance
// repository.
package attendance_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/attendance"
	"refurbhq/internal/infrastructure/storage/postgres"
)

const (
	attendanceTable = "att_attendance"
	visitsTable     = "att_visits"
)

// AttendanceRepo implements attendance.Repository.
type AttendanceRepo struct {
	txm           *postgres.TxManager
	builder       squirrel.StatementBuilderType
	recordColumns []string
	visitColumns  []string
}

// NewAttendanceRepo creates a new attendance repository.
func NewAttendanceRepo(txm *postgres.TxManager) *AttendanceRepo {
	return &AttendanceRepo{
		txm:           txm,
		builder:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		recordColumns: postgres.ExtractDBColumns[attendance.Record](),
		visitColumns:  postgres.ExtractDBColumns[attendance.Visit](),
	}
}

// CreateRecord inserts an attendance record.
func (r *AttendanceRepo) CreateRecord(ctx context.Context, rec *attendance.Record) error {
	q := r.builder.Insert(attendanceTable).SetMap(postgres.StructToMap(rec))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewConflict("already checked in today")
		}
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

// UpdateRecord saves checkout fields.
func (r *AttendanceRepo) UpdateRecord(ctx context.Context, rec *attendance.Record) error {
	values := postgres.StructToMap(rec)
	delete(values, "id")
	delete(values, "created_at")

	q := r.builder.Update(attendanceTable).
		SetMap(values).
		Where(squirrel.Eq{"id": rec.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("attendance record", rec.ID.String())
	}
	return nil
}

// GetOpenRecord returns the user's record for the day with no checkout.
func (r *AttendanceRepo) GetOpenRecord(ctx context.Context, userID id.ID, day time.Time) (*attendance.Record, error) {
	q := r.builder.Select(r.recordColumns...).
		From(attendanceTable).
		Where(squirrel.Eq{"user_id": userID, "day": day}).
		Where("check_out IS NULL")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rec attendance.Record
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("attendance record", userID.String())
		}
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	return &rec, nil
}

// ListRecords returns a user's records within [from, to), oldest first.
func (r *AttendanceRepo) ListRecords(ctx context.Context, userID id.ID, from, to time.Time) ([]attendance.Record, error) {
	q := r.builder.Select(r.recordColumns...).
		From(attendanceTable).
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"day": from}).
		Where(squirrel.Lt{"day": to}).
		OrderBy("day")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []attendance.Record
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select attendance: %w", err)
	}
	return records, nil
}

// CreateVisit inserts a shop visit.
func (r *AttendanceRepo) CreateVisit(ctx context.Context, v *attendance.Visit) error {
	q := r.builder.Insert(visitsTable).SetMap(postgres.StructToMap(v))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("customer", v.CustomerID.String())
		}
		return fmt.Errorf("insert visit: %w", err)
	}
	return nil
}

// ListVisits returns a user's visits within [from, to), oldest first.
func (r *AttendanceRepo) ListVisits(ctx context.Context, userID id.ID, from, to time.Time) ([]attendance.Visit, error) {
	q := r.builder.Select(r.visitColumns...).
		From(visitsTable).
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"visited_at": from}).
		Where(squirrel.Lt{"visited_at": to}).
		OrderBy("visited_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var visits []attendance.Visit
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &visits, sql, args...); err != nil {
		return nil, fmt.Errorf("select visits: %w", err)
	}
	return visits, nil
}

var _ attendance.Repository = (*AttendanceRepo)(nil)
