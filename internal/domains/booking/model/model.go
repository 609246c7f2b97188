package model

import (
	"time"

	"fleet/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID         = "id"
	FieldCarID      = "car_id"
	FieldRenterID   = "renter_id"
	FieldPickupDate = "pickup_date"
	FieldReturnDate = "return_date"
	FieldStatus     = "status"
	FieldPrice      = "price"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// transitions lists the allowed next states per state. Cancelled is terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
	StatusCancelled: {},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]

	return ok
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether the state machine allows moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// BlockingStatuses are the states in which a booking occupies its date range.
// Cancelled bookings never block.
func BlockingStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed}
}

type Booking struct {
	ID         string    `db:"id"`
	CarID      string    `db:"car_id"`
	RenterID   string    `db:"renter_id"`
	PickupDate time.Time `db:"pickup_date"`
	ReturnDate time.Time `db:"return_date"`
	Status     Status    `db:"status"`
	Price      float64   `db:"price"`
	model.Metadata
}

// Overlaps reports whether the half-open range [pickup, return) intersects
// this booking's range. Back-to-back rentals where one returns the day the
// next picks up do not overlap.
func (b *Booking) Overlaps(pickup, returnDate time.Time) bool {
	return pickup.Before(b.ReturnDate) && returnDate.After(b.PickupDate)
}

// Days is the number of rental days, counting pickup day but not return day.
func (b *Booking) Days() int {
	return RentalDays(b.PickupDate, b.ReturnDate)
}

// RentalDays is the calendar-day difference between the two dates. Both are
// normalized to UTC midnight first so a DST transition in the application
// timezone cannot shave an hour off the range and undercount a day.
func RentalDays(pickup, returnDate time.Time) int {
	start := time.Date(pickup.Year(), pickup.Month(), pickup.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(returnDate.Year(), returnDate.Month(), returnDate.Day(), 0, 0, 0, 0, time.UTC)

	return int(end.Sub(start) / (24 * time.Hour))
}
