package service_test

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"appointer/config"
	otelMocks "appointer/infras/otel/mocks"
	s3Mocks "appointer/infras/s3/mocks"
	"appointer/internal/domains/resource/mocks"
	"appointer/internal/domains/resource/model"
	"appointer/internal/domains/resource/model/dto"
	"appointer/internal/domains/resource/service"
	"appointer/shared"
	"appointer/shared/cache"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/failure"
)

const photoBase = "https://cdn.example.com/resource/"

var admin = shared.Actor{UserID: "admin-1", Role: constant.RoleAdmin}

type fixture struct {
	repo   *mocks.MockResource
	s3     *s3Mocks.MockS3
	svc    service.Resource
	server *miniredis.Miniredis
}

func setup(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockResource(ctrl)
	storage := s3Mocks.NewMockS3(ctrl)

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	ot := otelMocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	return fixture{
		repo:   repo,
		s3:     storage,
		svc:    service.New(repo, cfg, cache.NewRedisCache(client, ot), ot, storage),
		server: server,
	}
}

func asAdmin() context.Context {
	return shared.WithActor(context.Background(), admin)
}

func TestResource_Create(t *testing.T) {
	t.Run("without photo", func(t *testing.T) {
		f := setup(t)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.svc.Create(asAdmin(), dto.CreateResourceRequest{Name: "Chair 1", Category: "chair"})
		require.NoError(t, err)
		assert.Equal(t, "chair", res.Category)
		assert.Empty(t, res.Image)
		assert.True(t, res.Active)
	})

	t.Run("with photo keeps the extension", func(t *testing.T) {
		f := setup(t)

		f.s3.EXPECT().UploadFile(gomock.Any(), model.EntityName, gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ multipart.File, _ *multipart.FileHeader, name string) (string, error) {
				assert.True(t, strings.HasSuffix(name, ".png"))

				return photoBase + name, nil
			})
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.svc.Create(asAdmin(), dto.CreateResourceRequest{Name: "Room A", Image: &multipart.FileHeader{Filename: "room.png"}})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(res.Image, photoBase))
	})

	t.Run("insert failure removes the uploaded photo", func(t *testing.T) {
		f := setup(t)

		var uploaded string
		f.s3.EXPECT().UploadFile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ multipart.File, _ *multipart.FileHeader, name string) (string, error) {
				uploaded = name

				return photoBase + name, nil
			})
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
		f.s3.EXPECT().DeleteFile(gomock.Any(), model.EntityName, gomock.Any()).DoAndReturn(func(_ context.Context, _, name string) error {
			assert.Equal(t, uploaded, name)

			return nil
		})

		_, err := f.svc.Create(asAdmin(), dto.CreateResourceRequest{Name: "Room A", Image: &multipart.FileHeader{Filename: "room.jpg"}})
		assert.Equal(t, failure.KindStorage, failure.GetKind(err))
	})

	t.Run("customer is forbidden", func(t *testing.T) {
		f := setup(t)

		_, err := f.svc.Create(shared.WithActor(context.Background(), shared.Actor{UserID: "c", Role: constant.RoleCustomer}), dto.CreateResourceRequest{Name: "x"})
		assert.Equal(t, failure.KindForbidden, failure.GetKind(err))
	})
}

func TestResource_UpdateReplacesPhoto(t *testing.T) {
	f := setup(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Resource{ID: "r1", Image: photoBase + "old.png", Active: true}, nil)
	f.s3.EXPECT().UploadFile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(photoBase+"new.png", nil)
	f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
			assert.Equal(t, photoBase+"new.png", fields[model.FieldImage])

			return 1, nil
		})
	f.s3.EXPECT().ObjectNameFromURL(photoBase + "old.png").Return("old.png")
	f.s3.EXPECT().DeleteFile(gomock.Any(), model.EntityName, "old.png").Return(nil)

	err := f.svc.Update(asAdmin(), dto.UpdateResourceRequest{Image: &multipart.FileHeader{Filename: "new.png"}}, "r1")
	require.NoError(t, err)
}

func TestResource_EnsureActive(t *testing.T) {
	f := setup(t)
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Resource{ID: "r1", Name: "Chair 1"}, nil)

	err := f.svc.EnsureActive(context.Background(), "r1")
	assert.Equal(t, failure.KindValidation, failure.GetKind(err))
	assert.Contains(t, err.Error(), "Chair 1")
}

func TestResource_Delete(t *testing.T) {
	t.Run("referenced resource is kept", func(t *testing.T) {
		f := setup(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Resource{ID: "r1"}, nil)
		f.repo.EXPECT().Referenced(gomock.Any(), "r1").Return(true, nil)

		err := f.svc.Delete(asAdmin(), "r1")
		assert.Equal(t, failure.KindValidation, failure.GetKind(err))
	})

	t.Run("photo is removed with the resource", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, f.server.Set("resource:get:r1", `{"id":"r1"}`))

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Resource{ID: "r1", Image: photoBase + "a.png"}, nil)
		f.repo.EXPECT().Referenced(gomock.Any(), "r1").Return(false, nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.s3.EXPECT().ObjectNameFromURL(photoBase + "a.png").Return("a.png")
		f.s3.EXPECT().DeleteFile(gomock.Any(), model.EntityName, "a.png").Return(nil)

		require.NoError(t, f.svc.Delete(asAdmin(), "r1"))
		assert.False(t, f.server.Exists("resource:get:r1"))
	})
}
