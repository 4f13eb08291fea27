package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"appointer/config"
	"appointer/infras/otel"
	"appointer/internal/domains/businesshours/model"
	"appointer/internal/domains/businesshours/model/dto"
	"appointer/internal/domains/businesshours/repository"
	"appointer/internal/scheduling/calendar"
	"appointer/shared"
	"appointer/shared/cache"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/failure"
)

const cacheBusinessHours = "business_hours:rows"

// BusinessHours is the calendar policy store.
type BusinessHours interface {
	List(ctx context.Context) (dto.WeekResponse, error)
	HoursFor(ctx context.Context, weekday calendar.Weekday) (calendar.Hours, bool, error)
	Policy(ctx context.Context) (calendar.WeeklyPolicy, error)
	Upsert(ctx context.Context, weekday calendar.Weekday, req dto.UpsertBusinessHoursRequest) (dto.BusinessHoursResponse, error)
}

type serviceImpl struct {
	repo  repository.BusinessHours
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.BusinessHours, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) BusinessHours {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) rows(ctx context.Context) ([]model.BusinessHours, error) {
	var rows []model.BusinessHours

	if err := s.cache.Get(ctx, cacheBusinessHours, &rows); err == nil {
		return rows, nil
	}

	rows, err := s.repo.GetAll(ctx, gDto.QueryParams{SortBy: model.FieldWeekday, SortDir: gDto.SortDirAsc}, gDto.FilterGroup{})
	if err != nil {
		log.Error().Err(err).Msg("failed to load business hours")

		return nil, failure.Storage(err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheBusinessHours, rows, s.cfg.CacheTTL()); err != nil {
			log.Error().Err(err).Msg("failed to save business hours to cache")
		}
	}()

	return rows, nil
}

func (s *serviceImpl) List(ctx context.Context) (res dto.WeekResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".businesshours.List")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	rows, err := s.rows(ctx)
	if err != nil {
		return res, err
	}

	res.FromModels(rows)

	return res, nil
}

func (s *serviceImpl) Policy(ctx context.Context) (calendar.WeeklyPolicy, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}

	return model.Policy(rows), nil
}

// HoursFor reports false for a closed or unconfigured weekday.
func (s *serviceImpl) HoursFor(ctx context.Context, weekday calendar.Weekday) (calendar.Hours, bool, error) {
	policy, err := s.Policy(ctx)
	if err != nil {
		return calendar.Hours{}, false, err
	}

	hours, ok := policy.HoursFor(weekday)

	return hours, ok, nil
}

func (s *serviceImpl) Upsert(ctx context.Context, weekday calendar.Weekday, req dto.UpsertBusinessHoursRequest) (res dto.BusinessHoursResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".businesshours.Upsert")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := shared.ActorFromContext(ctx)
	if !actor.IsAdmin() {
		return res, failure.Forbidden("only administrators can change business hours")
	}

	if !weekday.Valid() {
		return res, failure.BadRequestFromString(fmt.Sprintf("weekday must be between 1 and 7, got %d", weekday))
	}

	span, err := req.Interval()
	if err != nil {
		return res, failure.BadRequest(err)
	}

	row := req.ToModel(weekday, span, actor.Name())

	if err = s.repo.Upsert(ctx, row); err != nil {
		log.Error().Err(err).Int("weekday", int(weekday)).Msg("failed to upsert business hours")

		return res, failure.Storage(err)
	}

	if err := s.cache.Delete(context.WithoutCancel(ctx), cacheBusinessHours); err != nil {
		log.Error().Err(err).Msg("failed to invalidate business hours cache")
	}

	res.FromModel(row)

	return res, nil
}
