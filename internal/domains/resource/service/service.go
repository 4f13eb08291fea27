package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"appointer/config"
	"appointer/infras/otel"
	"appointer/infras/s3"
	"appointer/internal/domains/resource/model"
	"appointer/internal/domains/resource/model/dto"
	"appointer/internal/domains/resource/repository"
	"appointer/shared"
	"appointer/shared/cache"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/failure"
)

const (
	cacheGetResource    = "resource:get"
	cacheGetAllResource = "resource:gets"
	cacheCountResource  = "resource:count"
)

type Resource interface {
	Create(ctx context.Context, req dto.CreateResourceRequest) (dto.ResourceResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetResourcesResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.ResourceResponse, error)
	Update(ctx context.Context, req dto.UpdateResourceRequest, id string) error
	Delete(ctx context.Context, id string) error
	EnsureActive(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.Resource
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
	s3    s3.S3
}

func New(repo repository.Resource, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, s3 s3.S3) Resource {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
		s3:    s3,
	}
}

func photoName(original string) string {
	return uuid.NewString() + filepath.Ext(original)
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateResourceRequest) (res dto.ResourceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := shared.ActorFromContext(ctx)
	if !actor.IsAdmin() {
		return res, failure.Forbidden("only administrators can manage resources")
	}

	imageURL := constant.Empty
	uploaded := constant.Empty

	if req.Image != nil {
		uploaded = photoName(req.Image.Filename)

		imageURL, err = s.s3.UploadFile(ctx, model.EntityName, req.ImageFile, req.Image, uploaded)
		if err != nil {
			log.Error().Err(err).Msg("failed to upload resource photo")

			return res, failure.Storage(fmt.Errorf("failed to upload image: %w", err))
		}
	}

	resource := req.ToModel(actor.Name(), imageURL)

	if err = s.repo.Insert(ctx, resource); err != nil {
		log.Error().Err(err).Msg("failed to insert resource")

		if uploaded != constant.Empty {
			_ = s.s3.DeleteFile(context.WithoutCancel(ctx), model.EntityName, uploaded)
		}

		return res, failure.Storage(err)
	}

	_ = shared.InvalidateCaches(ctx, s.cache, cacheGetAllResource, cacheCountResource)

	res.FromModel(resource)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetResourcesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllResource, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for resources")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get resources")

		return res, failure.Storage(err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.CacheTTL()); err != nil {
			log.Error().Err(err).Msg("failed to save resources to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountResource, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count resources")

		return res, failure.Storage(err)
	}

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.CacheTTL()); err != nil {
			log.Error().Err(err).Msg("failed to save resource count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ResourceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetResource, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	resource, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(resource)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.CacheTTL()); err != nil {
			log.Error().Err(err).Msg("failed to save resource to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Resource, error) {
	resource, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get resource")

		return resource, failure.Storage(err)
	}

	if resource.ID == constant.Empty {
		return resource, failure.NotFound("resource not found")
	}

	return resource, nil
}

func (s *serviceImpl) EnsureActive(ctx context.Context, id string) error {
	resource, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if !resource.Active {
		return failure.BadRequestFromString(fmt.Sprintf("resource %s is not active", resource.Name))
	}

	return nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateResourceRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := shared.ActorFromContext(ctx)
	if !actor.IsAdmin() {
		return failure.Forbidden("only administrators can manage resources")
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	fields := shared.TransformFields(req, actor.Name())

	uploaded := constant.Empty
	if req.Image != nil {
		uploaded = photoName(req.Image.Filename)

		url, err := s.s3.UploadFile(ctx, model.EntityName, req.ImageFile, req.Image, uploaded)
		if err != nil {
			log.Error().Err(err).Msg("failed to upload resource photo")

			return failure.Storage(fmt.Errorf("failed to upload image: %w", err))
		}

		fields[model.FieldImage] = url
	}

	if _, err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to update resource")

		if uploaded != constant.Empty {
			_ = s.s3.DeleteFile(context.WithoutCancel(ctx), model.EntityName, uploaded)
		}

		return failure.Storage(err)
	}

	if uploaded != constant.Empty && current.Image != constant.Empty {
		if old := s.s3.ObjectNameFromURL(current.Image); old != constant.Empty {
			if err := s.s3.DeleteFile(context.WithoutCancel(ctx), model.EntityName, old); err != nil {
				log.Warn().Err(err).Str("object", old).Msg("failed to delete replaced resource photo")
			}
		}
	}

	s.invalidate(ctx, id)

	return nil
}

// Delete removes a resource no booking has ever named, along with its photo.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !shared.ActorFromContext(ctx).IsAdmin() {
		return failure.Forbidden("only administrators can manage resources")
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	referenced, err := s.repo.Referenced(ctx, id)
	if err != nil {
		return failure.Storage(err)
	}

	if referenced {
		return failure.BadRequestFromString("resource is referenced by bookings; deactivate it instead")
	}

	if _, err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete resource")

		return failure.Storage(err)
	}

	if current.Image != constant.Empty {
		if old := s.s3.ObjectNameFromURL(current.Image); old != constant.Empty {
			if err := s.s3.DeleteFile(context.WithoutCancel(ctx), model.EntityName, old); err != nil {
				log.Warn().Err(err).Str("object", old).Msg("failed to delete resource photo")
			}
		}
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	c := context.WithoutCancel(ctx)

	if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetResource, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete resource cache")
	}

	_ = shared.InvalidateCaches(c, s.cache, cacheGetAllResource, cacheCountResource)
}
