package events

//go:generate go run go.uber.org/mock/mockgen -source=./events.go -destination=./mocks/events_mock.go -package=mocks

import (
	"context"
	"time"

	"fleet/config"
	"fleet/infras/kafka"
	"fleet/infras/otel"
	"fleet/internal/domains/booking/model"
	"fleet/shared/constant"
	"fleet/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
)

// BookingEvent is the lifecycle message published on every booking change.
// Consumers (notifier) key on BookingID, so all events for one booking land
// on the same partition in order.
type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	CarID      string    `json:"car_id"`
	RenterID   string    `json:"renter_id"`
	PickupDate string    `json:"pickup_date"`
	ReturnDate string    `json:"return_date"`
	Status     string    `json:"status"`
	Price      float64   `json:"price"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, booking model.Booking) BookingEvent {
	return BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		CarID:      booking.CarID,
		RenterID:   booking.RenterID,
		PickupDate: booking.PickupDate.Format(constant.DayFormat),
		ReturnDate: booking.ReturnDate.Format(constant.DayFormat),
		Status:     string(booking.Status),
		Price:      booking.Price,
		OccurredAt: timezone.Now(),
	}
}

type Publisher interface {
	PublishBookingEvent(ctx context.Context, event BookingEvent)
}

type kafkaPublisher struct {
	cfg    *config.Config
	client kafka.Client
	otel   otel.Otel
}

func NewPublisher(cfg *config.Config, client kafka.Client, otel otel.Otel) Publisher {
	return &kafkaPublisher{
		cfg:    cfg,
		client: client,
		otel:   otel,
	}
}

// PublishBookingEvent sends the event without blocking the caller. Booking
// operations never fail because the broker is down; a lost event is logged.
func (p *kafkaPublisher) PublishBookingEvent(ctx context.Context, event BookingEvent) {
	go func() {
		c := context.WithoutCancel(ctx)

		c, scope := p.otel.NewScope(c, constant.OtelEventScopeName, constant.OtelEventScopeName+".PublishBookingEvent")
		defer scope.End()

		scope.SetAttributes(map[string]any{
			"event.type":       event.Type,
			"event.booking_id": event.BookingID,
		})

		message := kafka.Message{
			Key:   event.BookingID,
			Value: event,
		}

		if err := p.client.SendMessages(c, p.cfg.Kafka.Topics.BookingLifecycle, message); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Str("type", event.Type).Str("bookingID", event.BookingID).Msg("failed to publish booking event")
		}
	}()
}
