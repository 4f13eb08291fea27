package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"appointer/infras/otel"
	"appointer/infras/postgres"
	"appointer/internal/domains/resource/model"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/logger"
	gRepo "appointer/shared/repository"
)

const queryReferenced = `SELECT EXISTS(SELECT 1 FROM bookings WHERE resource_id = $1)`

type Resource interface {
	Insert(ctx context.Context, model model.Resource) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Resource, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Resource, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) (int64, error)
	// Referenced reports whether any booking, in any status, names the resource.
	Referenced(ctx context.Context, id string) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Resource]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Resource {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Resource](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) Referenced(ctx context.Context, id string) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".resource.Referenced")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryReferenced)

	var referenced bool
	if err := r.db.Read.GetContext(ctx, &referenced, queryReferenced, id); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to check resource references: %w", err)
	}

	return referenced, nil
}
