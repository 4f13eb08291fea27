package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"appointer/config"
	otelMocks "appointer/infras/otel/mocks"
	"appointer/internal/domains/specialist/mocks"
	"appointer/internal/domains/specialist/model"
	"appointer/internal/domains/specialist/model/dto"
	"appointer/internal/domains/specialist/service"
	"appointer/shared"
	"appointer/shared/cache"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/failure"
)

var (
	admin    = shared.Actor{UserID: "admin-1", Role: constant.RoleAdmin}
	customer = shared.Actor{UserID: "cust-1", Role: constant.RoleCustomer}
)

func setup(t *testing.T) (*mocks.MockSpecialist, service.Specialist, *miniredis.Miniredis) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockSpecialist(ctrl)

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	ot := otelMocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	return repo, service.New(repo, cfg, cache.NewRedisCache(client, ot), ot), server
}

func asAdmin() context.Context {
	return shared.WithActor(context.Background(), admin)
}

func TestSpecialist_Create(t *testing.T) {
	t.Run("admin creates an active specialist", func(t *testing.T) {
		repo, svc, _ := setup(t)

		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m model.Specialist) error {
			assert.NotEmpty(t, m.ID)
			assert.True(t, m.Active)
			assert.Equal(t, admin.UserID, m.CreatedBy)

			return nil
		})

		res, err := svc.Create(asAdmin(), dto.CreateSpecialistRequest{Name: "Dr. Rahma", Specialty: "dentist"})
		require.NoError(t, err)
		assert.Equal(t, "Dr. Rahma", res.Name)
		assert.True(t, res.Active)
	})

	t.Run("customer is forbidden", func(t *testing.T) {
		_, svc, _ := setup(t)

		_, err := svc.Create(shared.WithActor(context.Background(), customer), dto.CreateSpecialistRequest{Name: "x"})
		assert.Equal(t, failure.KindForbidden, failure.GetKind(err))
	})

	t.Run("storage failure", func(t *testing.T) {
		repo, svc, _ := setup(t)
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("dial tcp: refused"))

		_, err := svc.Create(asAdmin(), dto.CreateSpecialistRequest{Name: "x"})
		assert.Equal(t, failure.KindStorage, failure.GetKind(err))
		assert.True(t, failure.IsRetryable(err))
	})
}

func TestSpecialist_Get(t *testing.T) {
	t.Run("found and cached", func(t *testing.T) {
		repo, svc, server := setup(t)
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Specialist{ID: "s1", Name: "Ana", Active: true}, nil).Times(1)

		res, err := svc.Get(context.Background(), "s1")
		require.NoError(t, err)
		assert.Equal(t, "Ana", res.Name)

		assert.Eventually(t, func() bool { return server.Exists("specialist:get:s1") }, time.Second, 5*time.Millisecond)

		res, err = svc.Get(context.Background(), "s1")
		require.NoError(t, err)
		assert.Equal(t, "s1", res.ID)
	})

	t.Run("not found", func(t *testing.T) {
		repo, svc, _ := setup(t)
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Specialist{}, nil)

		_, err := svc.Get(context.Background(), "missing")
		assert.Equal(t, failure.KindNotFound, failure.GetKind(err))
	})
}

func TestSpecialist_GetAll(t *testing.T) {
	repo, svc, _ := setup(t)

	params := gDto.QueryParams{Page: 1, Limit: 2}
	repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
	repo.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).Return([]model.Specialist{{ID: "a"}, {ID: "b"}}, nil)

	res, err := svc.GetAll(context.Background(), params, gDto.FilterGroup{})
	require.NoError(t, err)
	assert.Len(t, res.Specialists, 2)
	assert.Equal(t, 3, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
}

func TestSpecialist_EnsureActive(t *testing.T) {
	tests := []struct {
		name     string
		found    model.Specialist
		wantKind failure.Kind
	}{
		{name: "active", found: model.Specialist{ID: "s1", Active: true}},
		{name: "deactivated", found: model.Specialist{ID: "s1", Name: "Ana"}, wantKind: failure.KindValidation},
		{name: "unknown", found: model.Specialist{}, wantKind: failure.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, svc, _ := setup(t)
			repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.found, nil)

			err := svc.EnsureActive(context.Background(), "s1")
			if tt.wantKind == "" {
				assert.NoError(t, err)

				return
			}

			assert.Equal(t, tt.wantKind, failure.GetKind(err))
		})
	}
}

func TestSpecialist_Update(t *testing.T) {
	repo, svc, server := setup(t)
	require.NoError(t, server.Set("specialist:get:s1", `{"id":"s1"}`))

	inactive := false
	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Specialist{ID: "s1", Active: true}, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
			assert.Equal(t, &inactive, fields[model.FieldActive])
			assert.NotContains(t, fields, model.FieldName)
			assert.Equal(t, admin.UserID, fields[constant.FieldModifiedBy])

			return 1, nil
		})

	err := svc.Update(asAdmin(), dto.UpdateSpecialistRequest{Active: &inactive}, "s1")
	require.NoError(t, err)
	assert.False(t, server.Exists("specialist:get:s1"))
}

func TestSpecialist_Delete(t *testing.T) {
	t.Run("referenced specialist is kept", func(t *testing.T) {
		repo, svc, _ := setup(t)
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Specialist{ID: "s1"}, nil)
		repo.EXPECT().Referenced(gomock.Any(), "s1").Return(true, nil)

		err := svc.Delete(asAdmin(), "s1")
		assert.Equal(t, failure.KindValidation, failure.GetKind(err))
	})

	t.Run("unreferenced specialist is removed", func(t *testing.T) {
		repo, svc, _ := setup(t)
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Specialist{ID: "s1"}, nil)
		repo.EXPECT().Referenced(gomock.Any(), "s1").Return(false, nil)
		repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(int64(1), nil)

		require.NoError(t, svc.Delete(asAdmin(), "s1"))
	})

	t.Run("unknown specialist", func(t *testing.T) {
		repo, svc, _ := setup(t)
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Specialist{}, nil)

		err := svc.Delete(asAdmin(), "nope")
		assert.Equal(t, failure.KindNotFound, failure.GetKind(err))
	})

	t.Run("customer is forbidden", func(t *testing.T) {
		_, svc, _ := setup(t)

		err := svc.Delete(shared.WithActor(context.Background(), customer), "s1")
		assert.Equal(t, failure.KindForbidden, failure.GetKind(err))
	})
}
