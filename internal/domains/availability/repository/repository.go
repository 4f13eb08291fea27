package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"appointer/infras/otel"
	"appointer/infras/postgres"
	"appointer/internal/domains/availability/model"
	"appointer/internal/scheduling/calendar"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/logger"
	gRepo "appointer/shared/repository"
)

const queryConfirmedBookings = `
SELECT b.id, b.customer_id, COALESCE(u.full_name, '') AS customer_name, COALESCE(u.email, '') AS customer_email,
       b.service_name, b.date, b.start_time, b.duration_minutes, b.status
FROM bookings b
LEFT JOIN users u ON u.id = b.customer_id
WHERE b.specialist_id = $1 AND b.date = $2 AND b.status = 'confirmed'
ORDER BY b.start_time`

type Window interface {
	Insert(ctx context.Context, model model.Window) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Window, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Window, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) (int64, error)
	// ConfirmedBookings lists the specialist's confirmed bookings on date,
	// ordered by start time.
	ConfirmedBookings(ctx context.Context, specialistID string, date calendar.Date) ([]model.AffectedBooking, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Window]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Window {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Window](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) ConfirmedBookings(ctx context.Context, specialistID string, date calendar.Date) ([]model.AffectedBooking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".availability.ConfirmedBookings")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryConfirmedBookings)

	bookings := []model.AffectedBooking{}
	if err := r.db.Read.SelectContext(ctx, &bookings, queryConfirmedBookings, specialistID, date); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to list confirmed bookings: %w", err)
	}

	return bookings, nil
}
