package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet/infras/otel"
	"fleet/infras/postgres"
	"fleet/internal/domains/booking/model"
	carModel "fleet/internal/domains/car/model"
	"fleet/shared"
	"fleet/shared/constant"
	gDto "fleet/shared/dto"
	"fleet/shared/logger"
	gRepo "fleet/shared/repository"

	"github.com/lib/pq"
)

type Booking interface {
	Insert(ctx context.Context, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	FindOverlapping(ctx context.Context, carID string, pickup, returnDate time.Time, excludeID string, statuses []model.Status) ([]model.Booking, error)
	ListByOwner(ctx context.Context, ownerID string, params gDto.QueryParams) ([]model.Booking, int, error)
	UpdateStatus(ctx context.Context, id string, mutate func(current model.Booking) (map[string]any, error)) (model.Booking, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// FindOverlapping returns the bookings in the given statuses whose half-open
// date range intersects [pickup, returnDate), ordered by pickup date.
// excludeID skips one booking, used when re-checking a booking against its
// competitors.
func (r *repositoryImpl) FindOverlapping(ctx context.Context, carID string, pickup, returnDate time.Time, excludeID string, statuses []model.Status) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.FindOverlapping")
	defer scope.End()

	statusValues := make([]string, len(statuses))
	for i, status := range statuses {
		statusValues[i] = string(status)
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldCarID,
				Value:    carID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldStatus,
				Value:    statusValues,
				Operator: gDto.FilterOperatorIn,
				Table:    model.TableName,
			},
			gDto.Filter{
				ArgName:  "overlap_return",
				Field:    model.FieldPickupDate,
				Value:    returnDate,
				Operator: gDto.FilterOperatorLess,
				Table:    model.TableName,
			},
			gDto.Filter{
				ArgName:  "overlap_pickup",
				Field:    model.FieldReturnDate,
				Value:    pickup,
				Operator: gDto.FilterOperatorGreater,
				Table:    model.TableName,
			},
		},
	}

	if excludeID != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			ArgName:  "exclude_id",
			Field:    model.FieldID,
			Value:    excludeID,
			Operator: gDto.FilterOperatorNotEq,
			Table:    model.TableName,
		})
	}

	params := gDto.QueryParams{
		SortBy:  model.FieldPickupDate,
		SortDir: gDto.SortDirAsc,
	}

	return r.GetAll(ctx, params, filter)
}

// ListByOwner returns bookings made against any car the owner has listed,
// newest first, plus the unpaginated total.
func (r *repositoryImpl) ListByOwner(ctx context.Context, ownerID string, params gDto.QueryParams) ([]model.Booking, int, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ListByOwner")
	defer scope.End()

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	countQuery := fmt.Sprintf(
		"SELECT COUNT(b.%s) FROM %s b JOIN %s c ON c.%s = b.%s WHERE c.%s = $1",
		model.FieldID, model.TableName, carModel.TableName, carModel.FieldID, model.FieldCarID, carModel.FieldOwnerID,
	)

	var total int
	if err := r.db.Read.GetContext(ctx, &total, countQuery, ownerID); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, 0, fmt.Errorf("failed to count owner bookings: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT b.* FROM %s b JOIN %s c ON c.%s = b.%s WHERE c.%s = $1 ORDER BY b.%s DESC",
		model.TableName, carModel.TableName, carModel.FieldID, model.FieldCarID, carModel.FieldOwnerID, constant.FieldCreatedAt,
	)

	args := []any{ownerID}

	if params.Page > 0 && params.Limit > 0 {
		query += " LIMIT $2 OFFSET $3"
		args = append(args, params.Limit, (params.Page-1)*params.Limit)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var bookings []model.Booking
	if err := r.db.Read.SelectContext(ctx, &bookings, query, args...); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, 0, fmt.Errorf("failed to list owner bookings: %w", err)
	}

	return bookings, total, nil
}

// UpdateStatus re-reads the booking under a row lock, lets mutate derive the
// updated fields from the current state, and commits. Concurrent status
// changes on the same booking serialize on the lock. A zero booking with nil
// error means the booking does not exist.
func (r *repositoryImpl) UpdateStatus(ctx context.Context, id string, mutate func(current model.Booking) (map[string]any, error)) (booking model.Booking, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.UpdateStatus")
	defer scope.End()

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	tx, err := r.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return booking, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				logger.ErrorWithStack(rollbackErr)
			}
		}
	}()

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1 FOR UPDATE", model.TableName, model.FieldID)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err = tx.GetContext(ctx, &booking, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.Rollback()
		if err != nil {
			logger.ErrorWithStack(err)
		}

		return model.Booking{}, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return booking, fmt.Errorf("failed to lock booking: %w", err)
	}

	fields, err := mutate(booking)
	if err != nil {
		return booking, err
	}

	if err = r.UpdateTx(ctx, tx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		return booking, err
	}

	if err = tx.GetContext(ctx, &booking, fmt.Sprintf("SELECT * FROM %s WHERE %s = $1", model.TableName, model.FieldID), id); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return booking, fmt.Errorf("failed to reload booking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return booking, fmt.Errorf("failed to commit status update: %w", err)
	}

	return booking, nil
}

// IsOverlapViolation reports whether the error is the bookings table exclusion
// constraint firing, meaning another booking holds an intersecting range.
func IsOverlapViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == constant.PqErrorCodeExclusionViolation
	}

	return false
}
