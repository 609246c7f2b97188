package dto

import (
	"time"

	"fleet/internal/domains/booking/model"
	"fleet/shared"
	"fleet/shared/clock"
	"fleet/shared/constant"
	gDto "fleet/shared/dto"
	gModel "fleet/shared/model"
	"fleet/shared/timezone"

	"github.com/google/uuid"
)

type CheckAvailabilityRequest struct {
	CarID      string `json:"car_id"      validate:"required"`
	PickupDate string `json:"pickup_date" validate:"required,calendardate"`
	ReturnDate string `json:"return_date" validate:"required,calendardate"`
}

// ParseRange converts the wire dates into calendar dates in the application
// timezone. Validation has already checked the format.
func (c *CheckAvailabilityRequest) ParseRange() (pickup, returnDate time.Time, err error) {
	pickup, err = timezone.Parse(constant.DayFormat, c.PickupDate)
	if err != nil {
		return pickup, returnDate, model.ErrInvalidRange
	}

	returnDate, err = timezone.Parse(constant.DayFormat, c.ReturnDate)
	if err != nil {
		return pickup, returnDate, model.ErrInvalidRange
	}

	return clock.Truncate(pickup), clock.Truncate(returnDate), nil
}

type AvailabilityResponse struct {
	CarID      string `json:"car_id"`
	PickupDate string `json:"pickup_date"`
	ReturnDate string `json:"return_date"`
	Available  bool   `json:"available"`
}

type CreateBookingRequest struct {
	CarID      string `json:"car_id"      validate:"required"`
	PickupDate string `json:"pickup_date" validate:"required,calendardate"`
	ReturnDate string `json:"return_date" validate:"required,calendardate"`
}

func (c *CreateBookingRequest) ParseRange() (pickup, returnDate time.Time, err error) {
	r := CheckAvailabilityRequest{CarID: c.CarID, PickupDate: c.PickupDate, ReturnDate: c.ReturnDate}

	return r.ParseRange()
}

// ToModel builds the booking with its price snapshot. New bookings always
// start pending.
func (c *CreateBookingRequest) ToModel(renter string, pickup, returnDate time.Time, pricePerDay float64) model.Booking {
	days := model.RentalDays(pickup, returnDate)

	return model.Booking{
		ID:         uuid.NewString(),
		CarID:      c.CarID,
		RenterID:   renter,
		PickupDate: pickup,
		ReturnDate: returnDate,
		Status:     model.StatusPending,
		Price:      float64(days) * pricePerDay,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  renter,
			ModifiedBy: renter,
		},
	}
}

type ChangeStatusRequest struct {
	BookingID string `json:"booking_id" validate:"required"`
	Status    string `json:"status"     validate:"required,oneof=confirmed cancelled"`
}

type BookingResponse struct {
	ID         string  `json:"id"`
	CarID      string  `json:"car_id"`
	RenterID   string  `json:"renter_id"`
	PickupDate string  `json:"pickup_date"`
	ReturnDate string  `json:"return_date"`
	Status     string  `json:"status"`
	Price      float64 `json:"price"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.CarID = model.CarID
	r.RenterID = model.RenterID
	r.PickupDate = model.PickupDate.Format(constant.DayFormat)
	r.ReturnDate = model.ReturnDate.Format(constant.DayFormat)
	r.Status = string(model.Status)
	r.Price = model.Price
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}
