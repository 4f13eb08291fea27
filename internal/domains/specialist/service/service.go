package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"appointer/config"
	"appointer/infras/otel"
	"appointer/internal/domains/specialist/model"
	"appointer/internal/domains/specialist/model/dto"
	"appointer/internal/domains/specialist/repository"
	"appointer/shared"
	"appointer/shared/cache"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/failure"
)

const (
	cacheGetSpecialist    = "specialist:get"
	cacheGetAllSpecialist = "specialist:gets"
	cacheCountSpecialist  = "specialist:count"
)

type Specialist interface {
	Create(ctx context.Context, req dto.CreateSpecialistRequest) (dto.SpecialistResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetSpecialistsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.SpecialistResponse, error)
	Update(ctx context.Context, req dto.UpdateSpecialistRequest, id string) error
	Delete(ctx context.Context, id string) error
	// EnsureActive fails with not_found for an unknown id and validation for a deactivated one.
	EnsureActive(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.Specialist
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Specialist, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Specialist {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateSpecialistRequest) (res dto.SpecialistResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".specialist.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := shared.ActorFromContext(ctx)
	if !actor.IsAdmin() {
		return res, failure.Forbidden("only administrators can manage specialists")
	}

	specialist := req.ToModel(actor.Name())

	if err = s.repo.Insert(ctx, specialist); err != nil {
		log.Error().Err(err).Msg("failed to insert specialist")

		return res, failure.Storage(err)
	}

	_ = shared.InvalidateCaches(ctx, s.cache, cacheGetAllSpecialist, cacheCountSpecialist)

	res.FromModel(specialist)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetSpecialistsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".specialist.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllSpecialist, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for specialists")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get specialists")

		return res, failure.Storage(err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.CacheTTL()); err != nil {
			log.Error().Err(err).Msg("failed to save specialists to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".specialist.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountSpecialist, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count specialists")

		return res, failure.Storage(err)
	}

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.CacheTTL()); err != nil {
			log.Error().Err(err).Msg("failed to save specialist count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.SpecialistResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".specialist.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetSpecialist, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	specialist, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(specialist)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.CacheTTL()); err != nil {
			log.Error().Err(err).Msg("failed to save specialist to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Specialist, error) {
	specialist, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get specialist")

		return specialist, failure.Storage(err)
	}

	if specialist.ID == constant.Empty {
		return specialist, failure.NotFound("specialist not found")
	}

	return specialist, nil
}

func (s *serviceImpl) EnsureActive(ctx context.Context, id string) error {
	specialist, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if !specialist.Active {
		return failure.BadRequestFromString(fmt.Sprintf("specialist %s is not active", specialist.Name))
	}

	return nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateSpecialistRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".specialist.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := shared.ActorFromContext(ctx)
	if !actor.IsAdmin() {
		return failure.Forbidden("only administrators can manage specialists")
	}

	if _, err = s.find(ctx, id); err != nil {
		return err
	}

	if _, err = s.repo.Update(ctx, shared.TransformFields(req, actor.Name()), shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to update specialist")

		return failure.Storage(err)
	}

	s.invalidate(ctx, id)

	return nil
}

// Delete removes a specialist no booking has ever named. Referenced specialists
// are kept for history and can only be deactivated.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".specialist.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !shared.ActorFromContext(ctx).IsAdmin() {
		return failure.Forbidden("only administrators can manage specialists")
	}

	if _, err = s.find(ctx, id); err != nil {
		return err
	}

	referenced, err := s.repo.Referenced(ctx, id)
	if err != nil {
		return failure.Storage(err)
	}

	if referenced {
		return failure.BadRequestFromString("specialist is referenced by bookings; deactivate it instead")
	}

	if _, err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete specialist")

		return failure.Storage(err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	c := context.WithoutCancel(ctx)

	if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetSpecialist, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete specialist cache")
	}

	_ = shared.InvalidateCaches(c, s.cache, cacheGetAllSpecialist, cacheCountSpecialist)
}
