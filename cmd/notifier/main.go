package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fleet/config"
	"fleet/infras/kafka"
	"fleet/internal/events"
	"fleet/shared/logger"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

// The notifier consumes booking lifecycle events and dispatches renter/owner
// notifications. Delivery is a log line for now; the consume loop and
// decoding are the part that matters.
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := kafka.New(cfg)

	log.Info().Str("topic", cfg.Kafka.Topics.BookingLifecycle).Msg("Notifier started")

	client.Consume(ctx, cfg.Kafka.ConsumerGroup, cfg.Kafka.Topics.BookingLifecycle, handleMessage)

	log.Info().Msg("Notifier stopped")
}

func handleMessage(msg kafkaGo.Message) {
	event, err := kafka.DecodeKafkaMessage[events.BookingEvent](msg)
	if err != nil {
		log.Error().Err(err).Str("key", string(msg.Key)).Msg("Dropping undecodable booking event")

		return
	}

	notification := log.Info().
		Str("bookingID", event.BookingID).
		Str("carID", event.CarID).
		Str("renterID", event.RenterID).
		Str("pickupDate", event.PickupDate).
		Str("returnDate", event.ReturnDate)

	switch event.Type {
	case events.TypeBookingCreated:
		notification.Float64("price", event.Price).Msg("Booking requested, notifying car owner")
	case events.TypeBookingConfirmed:
		notification.Msg("Booking confirmed, notifying renter")
	case events.TypeBookingCancelled:
		notification.Msg("Booking cancelled, notifying renter and car owner")
	default:
		log.Warn().Str("type", event.Type).Str("bookingID", event.BookingID).Msg("Unknown booking event type")
	}
}
