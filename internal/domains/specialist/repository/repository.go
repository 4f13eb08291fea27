package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"appointer/infras/otel"
	"appointer/infras/postgres"
	"appointer/internal/domains/specialist/model"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/logger"
	gRepo "appointer/shared/repository"
)

const queryReferenced = `SELECT EXISTS(SELECT 1 FROM bookings WHERE specialist_id = $1)`

type Specialist interface {
	Insert(ctx context.Context, model model.Specialist) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Specialist, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Specialist, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) (int64, error)
	// Referenced reports whether any booking, in any status, names the specialist.
	Referenced(ctx context.Context, id string) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Specialist]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Specialist {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Specialist](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) Referenced(ctx context.Context, id string) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".specialist.Referenced")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryReferenced)

	var referenced bool
	if err := r.db.Read.GetContext(ctx, &referenced, queryReferenced, id); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to check specialist references: %w", err)
	}

	return referenced, nil
}
