package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strings"

	"appointer/infras/otel"
	"appointer/infras/postgres"
	"appointer/internal/domains/businesshours/model"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/logger"
	gRepo "appointer/shared/repository"
)

type BusinessHours interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.BusinessHours, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.BusinessHours, error)
	Upsert(ctx context.Context, hours model.BusinessHours) error
}

type repositoryImpl struct {
	gRepo.Repository[model.BusinessHours]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) BusinessHours {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.BusinessHours](model.EntityName, model.TableName, model.FieldWeekday, db, otel),
		db:         db,
		otel:       otel,
	}
}

// Upsert writes the row for hours.Weekday, keeping its original creation
// metadata when the weekday already exists.
func (r *repositoryImpl) Upsert(ctx context.Context, hours model.BusinessHours) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".business_hours.upsert")
	defer scope.End()

	placeholders := make([]string, 0, len(r.InsertColumns))
	for _, col := range r.InsertColumns {
		placeholders = append(placeholders, ":"+col)
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s,
			%s = EXCLUDED.%s, %s = EXCLUDED.%s`,
		model.TableName, strings.Join(r.InsertColumns, ", "), strings.Join(placeholders, ", "),
		model.FieldWeekday,
		model.FieldOpenTime, model.FieldOpenTime,
		model.FieldCloseTime, model.FieldCloseTime,
		model.FieldIsOpen, model.FieldIsOpen,
		constant.FieldModifiedAt, constant.FieldModifiedAt,
		constant.FieldModifiedBy, constant.FieldModifiedBy,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := r.db.Write.NamedExecContext(ctx, query, hours); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to upsert business hours: %w", err)
	}

	return nil
}
