package model

import "fleet/shared/model"

const (
	TableName  = "cars"
	EntityName = "car"

	FieldID          = "id"
	FieldOwnerID     = "owner_id"
	FieldBrand       = "brand"
	FieldCarModel    = "car_model"
	FieldPricePerDay = "price_per_day"
	FieldIsAvailable = "is_available"
	FieldRemoved     = "removed"
)

type Car struct {
	ID          string  `db:"id"`
	OwnerID     string  `db:"owner_id"`
	Brand       string  `db:"brand"`
	CarModel    string  `db:"car_model"`
	PricePerDay float64 `db:"price_per_day"`
	IsAvailable bool    `db:"is_available"`
	Removed     bool    `db:"removed"`
	model.Metadata
}

// Bookable reports whether new reservations may be taken against the car.
func (c *Car) Bookable() bool {
	return c.IsAvailable && !c.Removed
}
