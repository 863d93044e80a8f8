// Package attendance tracks staff attendance and salesman shop visits.
package attendance

import (
	"context"
	"time"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
)

// Record is one user's attendance for one day.
type Record struct {
	ID     id.ID     `db:"id" json:"id"`
	UserID id.ID     `db:"user_id" json:"userId"`
	Day    time.Time `db:"day" json:"day"`

	CheckIn  time.Time  `db:"check_in" json:"checkIn"`
	CheckOut *time.Time `db:"check_out" json:"checkOut,omitempty"`

	// WorkingHours is derived at checkout, zero while still checked in
	WorkingHours float64 `db:"working_hours" json:"workingHours"`

	CheckInLat  *float64 `db:"check_in_lat" json:"checkInLat,omitempty"`
	CheckInLng  *float64 `db:"check_in_lng" json:"checkInLng,omitempty"`
	CheckOutLat *float64 `db:"check_out_lat" json:"checkOutLat,omitempty"`
	CheckOutLng *float64 `db:"check_out_lng" json:"checkOutLng,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Close sets the checkout time and derives working hours.
func (r *Record) Close(at time.Time) error {
	if r.CheckOut != nil {
		return apperror.NewConflict("already checked out")
	}
	if at.Before(r.CheckIn) {
		return apperror.NewValidation("checkout cannot precede check-in")
	}
	r.CheckOut = &at
	r.WorkingHours = at.Sub(r.CheckIn).Hours()
	return nil
}

// Visit is a salesman's logged visit to a customer shop.
type Visit struct {
	ID         id.ID     `db:"id" json:"id"`
	UserID     id.ID     `db:"user_id" json:"userId"`
	CustomerID id.ID     `db:"customer_id" json:"customerId"`
	VisitedAt  time.Time `db:"visited_at" json:"visitedAt"`

	Notes *string  `db:"notes" json:"notes,omitempty"`
	Lat   *float64 `db:"lat" json:"lat,omitempty"`
	Lng   *float64 `db:"lng" json:"lng,omitempty"`

	// OrderID links the visit to the order it produced, if any
	OrderID *id.ID `db:"order_id" json:"orderId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Validate checks visit invariants.
func (v *Visit) Validate(ctx context.Context) error {
	if id.IsNil(v.UserID) {
		return apperror.NewValidation("user is required").
			WithDetail("field", "userId")
	}
	if id.IsNil(v.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	return nil
}

// Repository defines persistence operations for attendance and visits.
type Repository interface {
	CreateRecord(ctx context.Context, r *Record) error
	UpdateRecord(ctx context.Context, r *Record) error

	// GetOpenRecord returns the user's record for the day that has no
	// checkout yet.
	GetOpenRecord(ctx context.Context, userID id.ID, day time.Time) (*Record, error)

	ListRecords(ctx context.Context, userID id.ID, from, to time.Time) ([]Record, error)

	CreateVisit(ctx context.Context, v *Visit) error
	ListVisits(ctx context.Context, userID id.ID, from, to time.Time) ([]Visit, error)
}
