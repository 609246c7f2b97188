package dto

import (
	"fleet/internal/domains/car/model"
	"fleet/shared"
	gDto "fleet/shared/dto"
	gModel "fleet/shared/model"
	"fleet/shared/timezone"

	"github.com/google/uuid"
)

type CreateCarRequest struct {
	Brand       string  `json:"brand"         validate:"required,max=100"`
	CarModel    string  `json:"car_model"     validate:"required,max=100"`
	PricePerDay float64 `json:"price_per_day" validate:"required,gt=0"`
	IsAvailable *bool   `json:"is_available"  validate:"omitempty"`
}

func (c *CreateCarRequest) ToModel(owner string) model.Car {
	available := true
	if c.IsAvailable != nil {
		available = *c.IsAvailable
	}

	return model.Car{
		ID:          uuid.NewString(),
		OwnerID:     owner,
		Brand:       c.Brand,
		CarModel:    c.CarModel,
		PricePerDay: c.PricePerDay,
		IsAvailable: available,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  owner,
			ModifiedBy: owner,
		},
	}
}

type UpdateCarRequest struct {
	Brand       string   `db:"brand"         json:"brand"         validate:"omitempty,max=100"`
	CarModel    string   `db:"car_model"     json:"car_model"     validate:"omitempty,max=100"`
	PricePerDay *float64 `db:"price_per_day" json:"price_per_day" validate:"omitempty,gt=0"`
	IsAvailable *bool    `db:"is_available"  json:"is_available"  validate:"omitempty"`
}

type CarResponse struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"owner_id"`
	Brand       string  `json:"brand"`
	CarModel    string  `json:"car_model"`
	PricePerDay float64 `json:"price_per_day"`
	IsAvailable bool    `json:"is_available"`
	gDto.Metadata
}

func (r *CarResponse) FromModel(model model.Car) {
	r.ID = model.ID
	r.OwnerID = model.OwnerID
	r.Brand = model.Brand
	r.CarModel = model.CarModel
	r.PricePerDay = model.PricePerDay
	r.IsAvailable = model.IsAvailable
	r.Metadata.FromModel(model.Metadata)
}

type GetCarsResponse struct {
	Cars      []CarResponse `json:"cars"`
	TotalPage int           `json:"total_page"`
	TotalData int           `json:"total_data"`
}

func (r *GetCarsResponse) FromModels(models []model.Car, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Cars = make([]CarResponse, len(models))
	for i, mod := range models {
		r.Cars[i].FromModel(mod)
	}
}
