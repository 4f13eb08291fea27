package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"appointer/config"
	otelMocks "appointer/infras/otel/mocks"
	"appointer/internal/domains/user/mocks"
	"appointer/internal/domains/user/model"
	"appointer/internal/domains/user/model/dto"
	"appointer/internal/domains/user/service"
	"appointer/shared"
	"appointer/shared/cache"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/failure"
	"appointer/shared/password"
)

var (
	admin    = shared.Actor{UserID: "admin-1", Role: constant.RoleAdmin}
	customer = shared.Actor{UserID: "cust-1", Role: constant.RoleCustomer}
)

func setup(t *testing.T) (*mocks.MockUser, service.User) {
	t.Helper()

	repo := mocks.NewMockUser(gomock.NewController(t))

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	ot := otelMocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	return repo, service.New(repo, cfg, cache.NewRedisCache(client, ot), ot)
}

func as(actor shared.Actor) context.Context {
	return shared.WithActor(context.Background(), actor)
}

func strPtr(s string) *string {
	return &s
}

func TestUser_Create(t *testing.T) {
	req := dto.CreateUserRequest{Email: "budi@example.com", Password: "password123", FullName: strPtr("Budi")}

	t.Run("defaults to customer and hashes the password", func(t *testing.T) {
		repo, svc := setup(t)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m model.User) error {
			assert.Equal(t, constant.RoleCustomer, m.Role)
			assert.NoError(t, password.Verify("password123", m.Password))
			assert.Equal(t, admin.UserID, m.CreatedBy)

			return nil
		})

		res, err := svc.Create(as(admin), req)
		require.NoError(t, err)
		assert.Equal(t, "budi@example.com", res.Email)
		assert.True(t, res.Active)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo, svc := setup(t)
		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := svc.Create(as(admin), req)
		assert.Equal(t, failure.KindValidation, failure.GetKind(err))
	})

	t.Run("customer is forbidden", func(t *testing.T) {
		_, svc := setup(t)

		_, err := svc.Create(as(customer), req)
		assert.Equal(t, failure.KindForbidden, failure.GetKind(err))
	})
}

func TestUser_Get(t *testing.T) {
	t.Run("self", func(t *testing.T) {
		repo, svc := setup(t)
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{ID: customer.UserID, Role: constant.RoleCustomer}, nil)

		res, err := svc.Me(as(customer))
		require.NoError(t, err)
		assert.Equal(t, customer.UserID, res.ID)
	})

	t.Run("another user", func(t *testing.T) {
		_, svc := setup(t)

		_, err := svc.Get(as(customer), "cust-2")
		assert.Equal(t, failure.KindForbidden, failure.GetKind(err))
	})

	t.Run("guest", func(t *testing.T) {
		_, svc := setup(t)

		_, err := svc.Me(context.Background())
		assert.Equal(t, failure.KindUnauthorized, failure.GetKind(err))
	})

	t.Run("unknown", func(t *testing.T) {
		repo, svc := setup(t)
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)

		_, err := svc.Get(as(admin), "ghost")
		assert.Equal(t, failure.KindNotFound, failure.GetKind(err))
	})
}

func TestUser_GetAll(t *testing.T) {
	repo, svc := setup(t)
	params := gDto.QueryParams{Page: 1, Limit: 10}

	repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
	repo.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).Return([]model.User{{ID: "u1"}}, nil)

	res, err := svc.GetAll(as(admin), params, gDto.FilterGroup{})
	require.NoError(t, err)
	assert.Len(t, res.Users, 1)
	assert.Equal(t, 1, res.TotalPage)

	_, err = svc.GetAll(as(customer), params, gDto.FilterGroup{})
	assert.Equal(t, failure.KindForbidden, failure.GetKind(err))
}

func TestUser_UpdateProfile(t *testing.T) {
	t.Run("updates own row", func(t *testing.T) {
		repo, svc := setup(t)

		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{ID: customer.UserID}, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), shared.FilterByID(customer.UserID, model.FieldID, model.TableName)).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
				assert.Equal(t, strPtr("0812"), fields[model.FieldPhone])
				assert.NotContains(t, fields, model.FieldRole)

				return 1, nil
			})

		require.NoError(t, svc.UpdateProfile(as(customer), dto.UpdateProfileRequest{Phone: strPtr("0812")}))
	})

	t.Run("empty", func(t *testing.T) {
		_, svc := setup(t)

		err := svc.UpdateProfile(as(customer), dto.UpdateProfileRequest{})
		assert.Equal(t, failure.KindValidation, failure.GetKind(err))
	})
}

func TestUser_Delete(t *testing.T) {
	t.Run("owner of bookings", func(t *testing.T) {
		repo, svc := setup(t)

		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{ID: "cust-1"}, nil)
		repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(int64(0), &pq.Error{Code: constant.PqErrorCodeFkViolation})

		err := svc.Delete(as(admin), "cust-1")
		assert.Equal(t, failure.KindValidation, failure.GetKind(err))
	})

	t.Run("self", func(t *testing.T) {
		_, svc := setup(t)

		err := svc.Delete(as(admin), admin.UserID)
		assert.Equal(t, failure.KindValidation, failure.GetKind(err))
	})

	t.Run("storage", func(t *testing.T) {
		repo, svc := setup(t)

		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{ID: "cust-1"}, nil)
		repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("connection reset"))

		err := svc.Delete(as(admin), "cust-1")
		assert.Equal(t, failure.KindStorage, failure.GetKind(err))
	})
}
