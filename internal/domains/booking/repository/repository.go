package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"github.com/jmoiron/sqlx"

	"appointer/infras/otel"
	"appointer/infras/postgres"
	"appointer/internal/domains/booking/model"
	"appointer/internal/scheduling/calendar"
	"appointer/internal/scheduling/conflict"
	"appointer/shared"
	gDto "appointer/shared/dto"
	gRepo "appointer/shared/repository"
)

// Ledger is the durable record of bookings. Inside Atomic every call goes
// through the same serializable transaction.
type Ledger interface {
	// Find returns the zero Booking when id is unknown.
	Find(ctx context.Context, id string) (model.Booking, error)
	List(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	// Confirmed lists the confirmed bookings bound to sel on date.
	Confirmed(ctx context.Context, sel conflict.Selector, date calendar.Date) ([]model.Booking, error)
	Insert(ctx context.Context, booking model.Booking) error
	// Save rewrites the mutable columns of booking.
	Save(ctx context.Context, booking model.Booking) (int64, error)
	Purge(ctx context.Context, id string) (int64, error)
	Atomic(ctx context.Context, fn func(tx Ledger) error) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
	tx   *sqlx.Tx
}

func New(db *postgres.Connection, otel otel.Otel) Ledger {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func byID(id string) gDto.FilterGroup {
	return shared.FilterByID(id, model.FieldID, model.TableName)
}

// ConfirmedFilter selects the confirmed bookings sharing sel and date.
func ConfirmedFilter(sel conflict.Selector, date calendar.Date) gDto.FilterGroup {
	filters := []any{
		gDto.Eq(model.TableName, model.FieldStatus, model.StatusConfirmed),
		gDto.Eq(model.TableName, model.FieldDate, date),
	}

	switch {
	case sel.IsSpecialist():
		filters = append(filters, gDto.Eq(model.TableName, model.FieldSpecialistID, sel.ID()))
	case sel.IsResource():
		filters = append(filters, gDto.Eq(model.TableName, model.FieldResourceID, sel.ID()))
	default:
		filters = append(filters,
			gDto.Filter{Field: model.FieldSpecialistID, Operator: gDto.FilterIsNull, Table: model.TableName},
			gDto.Filter{Field: model.FieldResourceID, Operator: gDto.FilterIsNull, Table: model.TableName},
		)
	}

	return gDto.And(filters...)
}

var byStartTime = gDto.QueryParams{SortBy: model.TableName + "." + model.FieldStartTime, SortDir: gDto.SortDirAsc}

func (r *repositoryImpl) Find(ctx context.Context, id string) (model.Booking, error) {
	if r.tx != nil {
		return r.GetTx(ctx, r.tx, byID(id))
	}

	return r.Get(ctx, byID(id))
}

func (r *repositoryImpl) List(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.Booking, error) {
	if r.tx != nil {
		return r.GetAllTx(ctx, r.tx, params, filter)
	}

	return r.GetAll(ctx, params, filter)
}

func (r *repositoryImpl) Confirmed(ctx context.Context, sel conflict.Selector, date calendar.Date) ([]model.Booking, error) {
	return r.List(ctx, byStartTime, ConfirmedFilter(sel, date))
}

func (r *repositoryImpl) Insert(ctx context.Context, booking model.Booking) error {
	if r.tx != nil {
		return r.InsertTx(ctx, r.tx, booking)
	}

	return r.Repository.Insert(ctx, booking)
}

func (r *repositoryImpl) Save(ctx context.Context, booking model.Booking) (int64, error) {
	if r.tx != nil {
		return r.UpdateTx(ctx, r.tx, booking.Mutable(), byID(booking.ID))
	}

	return r.Update(ctx, booking.Mutable(), byID(booking.ID))
}

func (r *repositoryImpl) Purge(ctx context.Context, id string) (int64, error) {
	if r.tx != nil {
		return r.DeleteTx(ctx, r.tx, byID(id))
	}

	return r.Delete(ctx, byID(id))
}

// Atomic runs fn in a serializable transaction. Nested calls reuse the
// outer transaction.
func (r *repositoryImpl) Atomic(ctx context.Context, fn func(tx Ledger) error) error {
	if r.tx != nil {
		return fn(r)
	}

	return r.db.Serializable(ctx, func(tx *sqlx.Tx) error {
		bound := *r
		bound.tx = tx

		return fn(&bound)
	})
}
