package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"appointer/config"
	otelMocks "appointer/infras/otel/mocks"
	"appointer/internal/domains/availability/mocks"
	"appointer/internal/domains/availability/model"
	"appointer/internal/domains/availability/model/dto"
	"appointer/internal/domains/availability/service"
	"appointer/internal/scheduling/calendar"
	"appointer/shared"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/failure"
	"appointer/shared/lock"
)

var (
	admin  = shared.Actor{UserID: "admin-1", Role: constant.RoleAdmin}
	future = calendar.NewDate(2099, 6, 1)
)

type specialists map[string]error

func (s specialists) EnsureActive(_ context.Context, id string) error {
	if err, ok := s[id]; ok {
		return err
	}

	return failure.NotFound("specialist not found")
}

func setup(t *testing.T) (*mocks.MockWindow, service.Availability) {
	t.Helper()

	repo := mocks.NewMockWindow(gomock.NewController(t))
	known := specialists{
		"s1":       nil,
		"inactive": failure.BadRequestFromString("specialist Ana is not active"),
	}

	return repo, service.New(repo, known, lock.NewMemory(4), &config.Config{}, otelMocks.NewOtel())
}

func asAdmin() context.Context {
	return shared.WithActor(context.Background(), admin)
}

func window(id string, start, end calendar.Clock, available bool) model.Window {
	return model.Window{ID: id, SpecialistID: "s1", Date: future, StartTime: start, EndTime: end, IsAvailable: available}
}

func fields(date, start, end string) dto.WindowFields {
	return dto.WindowFields{Date: date, StartTime: start, EndTime: end}
}

func TestAvailability_Create(t *testing.T) {
	existing := []model.Window{window("w1", calendar.At(9, 0), calendar.At(10, 0), true)}

	tests := []struct {
		name       string
		actor      shared.Actor
		req        dto.CreateWindowRequest
		listed     bool
		wantInsert bool
		wantKind   failure.Kind
	}{
		{
			name:       "back-to-back with an existing window",
			actor:      admin,
			req:        dto.CreateWindowRequest{SpecialistID: "s1", WindowFields: fields("2099-06-01", "10:00", "11:00")},
			listed:     true,
			wantInsert: true,
		},
		{
			name:     "overlapping window",
			actor:    admin,
			req:      dto.CreateWindowRequest{SpecialistID: "s1", WindowFields: fields("2099-06-01", "09:30", "11:00")},
			listed:   true,
			wantKind: failure.KindValidation,
		},
		{
			name:     "past date",
			actor:    admin,
			req:      dto.CreateWindowRequest{SpecialistID: "s1", WindowFields: fields("2000-01-03", "09:00", "10:00")},
			wantKind: failure.KindValidation,
		},
		{
			name:     "end before start",
			actor:    admin,
			req:      dto.CreateWindowRequest{SpecialistID: "s1", WindowFields: fields("2099-06-01", "12:00", "09:00")},
			wantKind: failure.KindValidation,
		},
		{
			name:     "unknown specialist",
			actor:    admin,
			req:      dto.CreateWindowRequest{SpecialistID: "ghost", WindowFields: fields("2099-06-01", "09:00", "10:00")},
			wantKind: failure.KindValidation,
		},
		{
			name:     "inactive specialist",
			actor:    admin,
			req:      dto.CreateWindowRequest{SpecialistID: "inactive", WindowFields: fields("2099-06-01", "09:00", "10:00")},
			wantKind: failure.KindValidation,
		},
		{
			name:     "customer is forbidden",
			actor:    shared.Actor{UserID: "c1", Role: constant.RoleCustomer},
			req:      dto.CreateWindowRequest{SpecialistID: "s1", WindowFields: fields("2099-06-01", "09:00", "10:00")},
			wantKind: failure.KindForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, svc := setup(t)

			if tt.listed {
				repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(existing, nil)
			}

			if tt.wantInsert {
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, w model.Window) error {
					assert.True(t, w.IsAvailable, "windows default to available")
					assert.Equal(t, future, w.Date)

					return nil
				})
			}

			res, err := svc.Create(shared.WithActor(context.Background(), tt.actor), tt.req)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, failure.GetKind(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "10:00", res.StartTime.String())
			assert.Equal(t, "11:00", res.EndTime.String())
		})
	}
}

func TestAvailability_Update(t *testing.T) {
	t.Run("resizing a window ignores itself", func(t *testing.T) {
		repo, svc := setup(t)

		current := window("w1", calendar.At(9, 0), calendar.At(12, 0), true)
		resized := window("w1", calendar.At(9, 0), calendar.At(11, 0), true)

		gomock.InOrder(
			repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil),
			repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Window{current}, nil),
			repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, f map[string]any, _ gDto.FilterGroup) (int64, error) {
					assert.Equal(t, calendar.At(11, 0), f[model.FieldEndTime])
					assert.Equal(t, true, f[model.FieldIsAvailable])

					return 1, nil
				}),
			repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(resized, nil),
		)

		res, err := svc.Update(asAdmin(), "w1", dto.UpdateWindowRequest{WindowFields: fields("2099-06-01", "09:00", "11:00")})
		require.NoError(t, err)
		assert.Equal(t, calendar.At(11, 0), res.EndTime)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo, svc := setup(t)
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Window{}, nil)

		_, err := svc.Update(asAdmin(), "nope", dto.UpdateWindowRequest{WindowFields: fields("2099-06-01", "09:00", "11:00")})
		assert.Equal(t, failure.KindNotFound, failure.GetKind(err))
	})

	t.Run("collides with a sibling", func(t *testing.T) {
		repo, svc := setup(t)

		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(window("w1", calendar.At(9, 0), calendar.At(10, 0), true), nil)
		repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Window{
			window("w1", calendar.At(9, 0), calendar.At(10, 0), true),
			window("w2", calendar.At(13, 0), calendar.At(15, 0), true),
		}, nil)

		_, err := svc.Update(asAdmin(), "w1", dto.UpdateWindowRequest{WindowFields: fields("2099-06-01", "09:00", "14:00")})
		assert.Equal(t, failure.KindValidation, failure.GetKind(err))
	})
}

func TestAvailability_Delete(t *testing.T) {
	repo, svc := setup(t)

	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(window("w1", calendar.At(9, 0), calendar.At(12, 0), true), nil)
	repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(int64(1), nil)

	require.NoError(t, svc.Delete(asAdmin(), "w1"))

	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Window{}, nil)

	err := svc.Delete(asAdmin(), "w1")
	assert.Equal(t, failure.KindNotFound, failure.GetKind(err))
}

func TestAvailability_AffectedBookings(t *testing.T) {
	repo, svc := setup(t)

	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(window("w1", calendar.At(9, 0), calendar.At(12, 0), true), nil)
	repo.EXPECT().ConfirmedBookings(gomock.Any(), "s1", future).Return([]model.AffectedBooking{
		{ID: "before", StartTime: calendar.At(8, 0), DurationMinutes: 60},
		{ID: "first", StartTime: calendar.At(9, 0), DurationMinutes: 60},
		{ID: "second", StartTime: calendar.At(11, 30), DurationMinutes: 60},
		{ID: "after", StartTime: calendar.At(12, 0), DurationMinutes: 30},
	}, nil)

	res, err := svc.AffectedBookings(asAdmin(), "w1")
	require.NoError(t, err)

	ids := make([]string, 0, len(res.Bookings))
	for _, b := range res.Bookings {
		ids = append(ids, b.ID)
	}

	assert.Equal(t, []string{"first", "second"}, ids)
	assert.Equal(t, calendar.At(12, 30), res.Bookings[1].EndTime)
}

func TestAvailability_OpenWindows(t *testing.T) {
	repo, svc := setup(t)

	repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Window{
		window("w1", calendar.At(9, 0), calendar.At(12, 0), true),
		window("w2", calendar.At(12, 0), calendar.At(13, 0), false),
		window("w3", calendar.At(14, 0), calendar.At(17, 0), true),
	}, nil).Times(2)

	open, err := svc.OpenWindows(context.Background(), "s1", future)
	require.NoError(t, err)
	assert.Equal(t, []calendar.Interval{
		{Start: calendar.At(9, 0), End: calendar.At(12, 0)},
		{Start: calendar.At(14, 0), End: calendar.At(17, 0)},
	}, open)

	w, ok, err := svc.WindowFor(context.Background(), "s1", future)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "w1", w.ID)
}

func TestAvailability_StorageFailure(t *testing.T) {
	repo, svc := setup(t)
	repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("i/o timeout"))

	_, err := svc.OpenWindows(context.Background(), "s1", future)
	assert.Equal(t, failure.KindStorage, failure.GetKind(err))
}
